package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/contactform/internal/contact"
	"github.com/DukeRupert/contactform/internal/domain"
	"github.com/DukeRupert/contactform/internal/email"
)

// =============================================================================
// Fake EmailJS
// =============================================================================

type emailJSCall struct {
	TemplateID     string            `json:"template_id"`
	ServiceID      string            `json:"service_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// fakeEmailJS records calls and rejects the templates listed in reject.
type fakeEmailJS struct {
	mu     sync.Mutex
	calls  []emailJSCall
	reject map[string]string // template id -> rejection text
	srv    *httptest.Server
}

func newFakeEmailJS(t *testing.T) *fakeEmailJS {
	t.Helper()
	f := &fakeEmailJS{reject: make(map[string]string)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call emailJSCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.calls = append(f.calls, call)
		text, rejected := f.reject[call.TemplateID]
		f.mu.Unlock()

		if rejected {
			http.Error(w, text, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeEmailJS) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.TemplateID)
	}
	return out
}

// =============================================================================
// Test Setup
// =============================================================================

type testServer struct {
	provider *fakeEmailJS
	mux      *http.ServeMux
}

type serverOption func(*contact.FormOptions)

func withoutConfig() serverOption {
	return func(o *contact.FormOptions) { o.Config = nil }
}

func withSuccessDisplay(d time.Duration) serverOption {
	return func(o *contact.FormOptions) { o.SuccessDisplay = d }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	provider := newFakeEmailJS(t)
	sender := email.NewEmailJSSender(email.EmailJSConfig{APIURL: provider.srv.URL}, testLogger())

	cfg, err := contact.NewDeliveryConfig("service_abc", "template_admin", "template_reply", "pk_123")
	require.NoError(t, err)

	formOpts := contact.FormOptions{
		Orchestrator: contact.NewOrchestrator(contact.OrchestratorConfig{
			Sender: sender,
			Policy: contact.PolicySequential,
			Logger: testLogger(),
		}),
		Config:         cfg,
		SuccessDisplay: time.Minute,
	}
	for _, opt := range opts {
		opt(&formOpts)
	}

	registry := contact.NewRegistry(formOpts, time.Hour, testLogger())
	t.Cleanup(registry.Close)

	renderer, err := NewRenderer(RendererConfig{Logger: testLogger()})
	require.NoError(t, err)

	h := NewContactHandler(ContactHandlerConfig{
		Registry:       registry,
		Renderer:       renderer,
		Logger:         testLogger(),
		SuccessDisplay: formOpts.SuccessDisplay,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return &testServer{provider: provider, mux: mux}
}

func (s *testServer) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

// visit loads the page and returns the instance cookie it issued.
func (s *testServer) visit(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.do(httptest.NewRequest("GET", "/contact", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return formCookie(t, rec)
}

func formCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == FormCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", FormCookieName)
	return nil
}

func postForm(name, addr, message string) *http.Request {
	form := url.Values{
		fieldName:    {name},
		fieldEmail:   {addr},
		fieldMessage: {message},
	}
	req := httptest.NewRequest("POST", "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest("POST", "/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

// =============================================================================
// Page Tests
// =============================================================================

func TestShowForm_RendersPageAndIssuesCookie(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/contact"} {
		rec := s.do(httptest.NewRequest("GET", path, nil), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

		body := rec.Body.String()
		assert.Contains(t, body, "Send me a message. Let&#39;s have a chat!")
		assert.Contains(t, body, `name="from_name"`)
		assert.Contains(t, body, `name="from_email"`)
		assert.Contains(t, body, `name="message"`)
		assert.Contains(t, body, `data-state="idle"`)

		c := formCookie(t, rec)
		assert.True(t, c.HttpOnly)
	}
}

func TestShowForm_KeepsKnownInstance(t *testing.T) {
	s := newTestServer(t)
	cookie := s.visit(t)

	rec := s.do(httptest.NewRequest("GET", "/contact", nil), cookie)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "known instance needs no new cookie")
}

func TestUnknownPath_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest("GET", "/nope", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "The requested page was not found")

	req := httptest.NewRequest("GET", "/nope", nil)
	req.Header.Set("Accept", "application/json")
	rec = s.do(req, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Code)
}

// =============================================================================
// HTML Submission Tests
// =============================================================================

func TestSubmit_Form_SuccessRedirectsAndShowsBanner(t *testing.T) {
	s := newTestServer(t)
	cookie := s.visit(t)

	rec := s.do(postForm("Ann", "ann@x.com", "Hi"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact", rec.Header().Get("Location"))

	assert.Equal(t, []string{"template_admin", "template_reply"}, s.provider.templates())

	page := s.do(httptest.NewRequest("GET", "/contact", nil), cookie)
	body := page.Body.String()
	assert.Contains(t, body, "Message sent successfully!")
	assert.Contains(t, body, `data-state="succeeded"`)
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.NotContains(t, body, `value="Ann"`, "fields are cleared after success")
}

func TestSubmit_Form_BothEmailsCarrySameFields(t *testing.T) {
	s := newTestServer(t)
	cookie := s.visit(t)

	s.do(postForm("  Ann ", "ann@x.com", "Hello\nthere"), cookie)

	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	require.Len(t, s.provider.calls, 2)
	want := map[string]string{
		email.ParamName:    "Ann",
		email.ParamEmail:   "ann@x.com",
		email.ParamMessage: "Hello\nthere",
	}
	for _, c := range s.provider.calls {
		assert.Equal(t, "service_abc", c.ServiceID)
		assert.Equal(t, "pk_123", c.UserID)
		assert.Equal(t, want, c.TemplateParams)
	}
}

func TestSubmit_Form_AdminRejectedShowsGenericErrorAndKeepsFields(t *testing.T) {
	s := newTestServer(t)
	s.provider.reject["template_admin"] = "The template ID is invalid"
	cookie := s.visit(t)

	rec := s.do(postForm("Ann", "ann@x.com", "Hi"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Equal(t, []string{"template_admin"}, s.provider.templates(), "auto-reply must not be sent")

	body := s.do(httptest.NewRequest("GET", "/contact", nil), cookie).Body.String()
	assert.Contains(t, body, `data-state="failed"`)
	assert.Contains(t, body, "Something went wrong while sending your message. Please try again.")
	assert.NotContains(t, body, "template ID is invalid")
	assert.Contains(t, body, `value="Ann"`)
	assert.Contains(t, body, `value="ann@x.com"`)
}

func TestSubmit_Form_MissingConfigShowsUnavailable(t *testing.T) {
	s := newTestServer(t, withoutConfig())
	cookie := s.visit(t)

	rec := s.do(postForm("Ann", "ann@x.com", "Hi"), cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact?notice=unavailable", rec.Header().Get("Location"))
	assert.Empty(t, s.provider.templates())

	body := s.do(httptest.NewRequest("GET", "/contact?notice=unavailable", nil), cookie).Body.String()
	assert.Contains(t, body, "Sorry, the contact form is currently unavailable.")
	assert.Contains(t, body, `data-state="idle"`)
}

// =============================================================================
// JSON Submission Tests
// =============================================================================

func TestSubmit_JSON_Success(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(postJSON(`{"name":"Ann","email":"ann@x.com","message":"Hi"}`), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	got := decodeStatus(t, rec)
	assert.Equal(t, "succeeded", got["state"])
	assert.Equal(t, MsgSent, got["message"])
}

func TestSubmit_JSON_AdminRejected(t *testing.T) {
	s := newTestServer(t)
	s.provider.reject["template_admin"] = "bad template"

	rec := s.do(postJSON(`{"name":"Ann","email":"ann@x.com","message":"Hi"}`), nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	got := decodeStatus(t, rec)
	assert.Equal(t, "failed", got["state"])
	assert.Equal(t, domain.MsgDeliveryFailed, got["message"])
	assert.NotContains(t, rec.Body.String(), "bad template")
	assert.Equal(t, []string{"template_admin"}, s.provider.templates())
}

func TestSubmit_JSON_AutoReplyRejected(t *testing.T) {
	s := newTestServer(t)
	s.provider.reject["template_reply"] = "recipient blocked"

	rec := s.do(postJSON(`{"name":"Ann","email":"ann@x.com","message":"Hi"}`), nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "failed", decodeStatus(t, rec)["state"])
	assert.Equal(t, []string{"template_admin", "template_reply"}, s.provider.templates())
}

func TestSubmit_JSON_MissingConfig(t *testing.T) {
	s := newTestServer(t, withoutConfig())

	rec := s.do(postJSON(`{"name":"Ann","email":"ann@x.com","message":"Hi"}`), nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	got := decodeStatus(t, rec)
	assert.Equal(t, "idle", got["state"])
	assert.Equal(t, domain.MsgUnavailable, got["message"])
	assert.Empty(t, s.provider.templates())
}

func TestSubmit_JSON_Malformed(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(postJSON(`{"name":`), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.provider.templates())
}

func TestSubmit_JSON_TooLarge(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"Ann","email":"ann@x.com","message":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := s.do(postJSON(body), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too long")
	assert.Empty(t, s.provider.templates())
}

// =============================================================================
// Status Tests
// =============================================================================

func TestStatus_NewInstanceIsIdle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest("GET", "/contact/status", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decodeStatus(t, rec)["state"])
	formCookie(t, rec)
}

func TestStatus_ReturnsToIdleAfterSuccessDisplay(t *testing.T) {
	s := newTestServer(t, withSuccessDisplay(200*time.Millisecond))
	cookie := s.visit(t)

	s.do(postForm("Ann", "ann@x.com", "Hi"), cookie)

	status := func() string {
		return decodeStatus(t, s.do(httptest.NewRequest("GET", "/contact/status", nil), cookie))["state"]
	}
	assert.Equal(t, "succeeded", status())
	require.Eventually(t, func() bool { return status() == "idle" }, time.Second, 10*time.Millisecond)
}

func TestStatus_InstancesAreIsolated(t *testing.T) {
	s := newTestServer(t)
	s.provider.reject["template_admin"] = "down"

	a := s.visit(t)
	b := s.visit(t)
	require.NotEqual(t, a.Value, b.Value)

	s.do(postForm("Ann", "ann@x.com", "Hi"), a)

	statusOf := func(c *http.Cookie) string {
		return decodeStatus(t, s.do(httptest.NewRequest("GET", "/contact/status", nil), c))["state"]
	}
	assert.Equal(t, "failed", statusOf(a))
	assert.Equal(t, "idle", statusOf(b))
}

func TestSeconds_RoundsUp(t *testing.T) {
	seconds := TemplateFuncs()["seconds"].(func(time.Duration) int)
	assert.Equal(t, 4, seconds(4*time.Second))
	assert.Equal(t, 1, seconds(50*time.Millisecond))
}
