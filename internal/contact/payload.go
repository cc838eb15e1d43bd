package contact

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/DukeRupert/contactform/internal/email"
)

// FormPayload is the visitor's input. Presence of the fields is enforced by
// the browser form, not here.
type FormPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// NewFormPayload trims the fields and normalises them to NFC so the two
// outbound emails carry identical text regardless of the visitor's input
// method.
func NewFormPayload(name, emailAddr, message string) FormPayload {
	return FormPayload{
		Name:    clean(name),
		Email:   clean(emailAddr),
		Message: clean(message),
	}
}

// params converts the payload to the template parameter snapshot.
func (p FormPayload) params() email.Params {
	return email.Params{
		email.ParamName:    p.Name,
		email.ParamEmail:   p.Email,
		email.ParamMessage: p.Message,
	}
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
