package handler

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
		"title": func(v any) string {
			return cases.Title(language.English).String(fmt.Sprint(v))
		},
		"lower": func(s string) string {
			return strings.ToLower(s)
		},
		"default": func(defaultVal, val any) any {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},
		// seconds renders a duration as whole seconds, rounding up, for
		// meta refresh.
		"seconds": func(d time.Duration) int {
			s := int(d / time.Second)
			if d%time.Second != 0 {
				s++
			}
			return s
		},
	}
}
