package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_Embedded(t *testing.T) {
	r, err := NewRenderer(RendererConfig{Logger: testLogger()})
	require.NoError(t, err)

	assert.Equal(t, []string{"contact"}, r.ListTemplates())
}

func TestRenderer_Render_UnknownPage(t *testing.T) {
	r, err := NewRenderer(RendererConfig{Logger: testLogger()})
	require.NoError(t, err)

	var sb strings.Builder
	err = r.Render(&sb, "missing", nil)
	assert.Error(t, err)
	assert.Empty(t, sb.String())
}

func TestRenderer_RenderHTTP_FailureHidesDetail(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}<main>{{template "content" .}}</main>{{end}}`)},
		"pages/broken.html": {Data: []byte(`{{define "content"}}{{template "absent_partial" .}}{{end}}`)},
	}
	r, err := NewRendererFromFS(fsys, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.RenderHTTP(rec, httptest.NewRequest("GET", "/contact", nil), http.StatusOK, "broken", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An internal error occurred")
	assert.NotContains(t, rec.Body.String(), "absent_partial")
	assert.NotContains(t, rec.Body.String(), "<main>", "partial output must not leak")
}

func TestRenderer_ContactPage_Copy(t *testing.T) {
	r, err := NewRenderer(RendererConfig{Logger: testLogger()})
	require.NoError(t, err)

	tests := []struct {
		phase    string
		button   string
		disabled bool
	}{
		{"idle", ">Submit</button>", false},
		{"failed", ">Submit</button>", false},
		{"sending", " disabled>Sending...</button>", true},
	}

	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			var sb strings.Builder
			require.NoError(t, r.Render(&sb, "contact", ContactPageData{Heading: PageHeading, Phase: tt.phase}))
			body := sb.String()

			assert.Contains(t, body, `<label for="from_name">Name</label>`)
			assert.Contains(t, body, `<label for="from_email">E-mail</label>`)
			assert.Contains(t, body, `<label for="message">Message</label>`)
			assert.Contains(t, body, tt.button)
			assert.Equal(t, tt.disabled, strings.Contains(body, `required disabled>`))
		})
	}
}
