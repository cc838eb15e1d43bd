// Package handler contains the HTTP handlers for the contact form service.
//
// This file implements the contact page: rendering the form for a visitor's
// form instance, accepting submissions (HTML form posts and JSON) and
// reporting the instance state.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/contactform/internal/contact"
	"github.com/DukeRupert/contactform/internal/domain"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// FormCookieName holds the visitor's form instance id.
	FormCookieName = "contact_form"

	// Heading shown above the form.
	PageHeading = "Send me a message. Let's have a chat!"

	// MsgSent is shown while the form is in Succeeded.
	MsgSent = "Message sent successfully!"

	// maxBodyBytes bounds a submission body.
	maxBodyBytes = 64 << 10

	// noticeUnavailable marks a redirect after a refused submission.
	noticeUnavailable = "unavailable"

	opDecode = "contact.decode"
)

// Form field names posted by the page.
const (
	fieldName    = "from_name"
	fieldEmail   = "from_email"
	fieldMessage = "message"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// PageRenderer renders a named page. Satisfied by *Renderer.
type PageRenderer interface {
	RenderHTTP(w http.ResponseWriter, r *http.Request, status int, name string, data any)
}

// ContactHandlerConfig holds the dependencies of a ContactHandler.
type ContactHandlerConfig struct {
	Registry       *contact.Registry
	Renderer       PageRenderer
	Logger         *slog.Logger
	SuccessDisplay time.Duration // How long the success banner stays up
	IsSecure       bool          // Secure flag on the instance cookie
}

// ContactHandler serves the contact page.
//
// Routes handled:
// - GET  /               -> ShowForm
// - GET  /contact        -> ShowForm
// - POST /contact        -> Submit
// - GET  /contact/status -> Status
// - anything else        -> NotFound
type ContactHandler struct {
	registry       *contact.Registry
	renderer       PageRenderer
	logger         *slog.Logger
	successDisplay time.Duration
	isSecure       bool
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(cfg ContactHandlerConfig) *ContactHandler {
	if cfg.SuccessDisplay <= 0 {
		cfg.SuccessDisplay = contact.DefaultSuccessDisplay
	}
	return &ContactHandler{
		registry:       cfg.Registry,
		renderer:       cfg.Renderer,
		logger:         cfg.Logger,
		successDisplay: cfg.SuccessDisplay,
		isSecure:       cfg.IsSecure,
	}
}

// RegisterRoutes registers the contact routes on mux.
func (h *ContactHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.ShowForm)
	mux.HandleFunc("GET /contact", h.ShowForm)
	mux.HandleFunc("POST /contact", h.Submit)
	mux.HandleFunc("GET /contact/status", h.Status)
	mux.HandleFunc("/", h.NotFound)
}

// =============================================================================
// Template Data Types
// =============================================================================

// ContactPageData is passed to pages/contact.html.
type ContactPageData struct {
	Title        string
	Heading      string
	Phase        string // idle, sending, succeeded, failed
	Fields       contact.FormPayload
	Success      string
	Error        string
	RefreshAfter time.Duration // Non-zero adds a meta refresh
}

// Disabled reports whether inputs are locked.
func (d ContactPageData) Disabled() bool {
	return d.Phase == contact.Sending.String()
}

// StatusResponse is the JSON form of a form instance state.
type StatusResponse struct {
	State   contact.Phase `json:"state"`
	Message string        `json:"message,omitempty"`
}

// submitRequest is the JSON submission body.
type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

// ShowForm renders the form for the visitor's instance.
func (h *ContactHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	form := h.acquire(w, r)
	st := form.State()

	data := ContactPageData{
		Title:   "Contact",
		Heading: PageHeading,
		Phase:   st.Phase.String(),
		Fields:  form.Fields(),
	}

	switch st.Phase {
	case contact.Succeeded:
		data.Success = MsgSent
		data.RefreshAfter = h.successDisplay
	case contact.Failed:
		data.Error = st.Reason
	case contact.Sending:
		data.RefreshAfter = time.Second
	}

	// A refused submission leaves the state untouched, so the redirect
	// carries the notice.
	if r.URL.Query().Get("notice") == noticeUnavailable && st.Phase != contact.Succeeded {
		data.Error = domain.MsgUnavailable
	}

	h.renderer.RenderHTTP(w, r, http.StatusOK, "contact", data)
}

// Submit runs a submission for the visitor's instance.
//
// JSON requests get a StatusResponse with a status matching the outcome.
// Form posts are answered with a redirect to the page (Post/Redirect/Get).
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form := h.acquire(w, r)

	payload, err := h.decode(w, r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	st, err := form.Submit(r.Context(), payload)

	if isJSONBody(r) {
		status := http.StatusOK
		resp := StatusResponse{State: st.Phase, Message: st.Reason}
		if err != nil {
			status = ErrorCodeToHTTPStatus(domain.ErrorCode(err))
			resp.Message = domain.ErrorMessage(err)
			logError(h.logger, r, err, domain.ErrorCode(err), domain.ErrorOp(err), status)
		} else if st.Phase == contact.Succeeded {
			resp.Message = MsgSent
		}
		writeJSON(w, status, resp)
		return
	}

	target := "/contact"
	if err != nil {
		logError(h.logger, r, err, domain.ErrorCode(err), domain.ErrorOp(err), ErrorCodeToHTTPStatus(domain.ErrorCode(err)))
		if domain.IsConfig(err) {
			target += "?notice=" + noticeUnavailable
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Status reports the visitor's instance state as JSON.
func (h *ContactHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.acquire(w, r).State()
	writeJSON(w, http.StatusOK, StatusResponse{State: st.Phase, Message: st.Reason})
}

// NotFound answers paths no other route matches.
func (h *ContactHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundResponse(w, r, h.logger)
}

// =============================================================================
// Helpers
// =============================================================================

// acquire returns the visitor's form, issuing a cookie for new instances.
func (h *ContactHandler) acquire(w http.ResponseWriter, r *http.Request) *contact.Form {
	var id string
	if c, err := r.Cookie(FormCookieName); err == nil {
		id = c.Value
	}

	form := h.registry.Acquire(id)
	if form.ID() != id {
		http.SetCookie(w, &http.Cookie{
			Name:     FormCookieName,
			Value:    form.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.isSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return form
}

// decode reads the submission from a JSON body or a form post.
func (h *ContactHandler) decode(w http.ResponseWriter, r *http.Request) (contact.FormPayload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSONBody(r) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return contact.FormPayload{}, decodeError(err)
		}
		return contact.NewFormPayload(req.Name, req.Email, req.Message), nil
	}

	if err := r.ParseForm(); err != nil {
		return contact.FormPayload{}, decodeError(err)
	}
	return contact.NewFormPayload(
		r.PostForm.Get(fieldName),
		r.PostForm.Get(fieldEmail),
		r.PostForm.Get(fieldMessage),
	), nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.Invalid(opDecode, "Your message is too long.")
	}
	return domain.Wrap(err, domain.EINVALID, opDecode, "The submission could not be read.")
}
