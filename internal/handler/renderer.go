package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
)

//go:embed web/templates
var embeddedTemplates embed.FS

// Renderer manages template parsing and rendering.
//
// Templates are organized as:
//   - layouts/base.html - the page shell, defines "base"
//   - components/*.html - reusable fragments shared by every page
//   - pages/*.html - one file per page, each defines "content"
//
// Pages are parsed into an isolated clone of the layout so their "content"
// blocks do not collide.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex

	fsys fs.FS
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// TemplatesDir reads templates from disk instead of the embedded copy.
	TemplatesDir string
	Logger       *slog.Logger
	// IsDev reparses templates on every render (only useful with TemplatesDir).
	IsDev bool
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.TemplatesDir != "" {
		r := &Renderer{
			templates: make(map[string]*template.Template),
			logger:    cfg.Logger,
			isDev:     cfg.IsDev,
			fsys:      os.DirFS(cfg.TemplatesDir),
		}
		if err := r.loadTemplates(); err != nil {
			return nil, err
		}
		return r, nil
	}

	sub, err := fs.Sub(embeddedTemplates, "web/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	return NewRendererFromFS(sub, cfg.Logger)
}

// NewRendererFromFS creates a renderer from a filesystem rooted at the
// templates directory.
func NewRendererFromFS(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		logger:    logger,
		fsys:      fsys,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	base, err := template.New("base").Funcs(TemplateFuncs()).ParseFS(r.fsys, "layouts/base.html")
	if err != nil {
		return fmt.Errorf("failed to parse base layout: %w", err)
	}

	componentFiles, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob components: %w", err)
	}
	if len(componentFiles) > 0 {
		base, err = base.ParseFS(r.fsys, componentFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse components: %w", err)
		}
	}

	pages, err := fs.Glob(r.fsys, "pages/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob pages: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		pageTmpl, err := base.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone layout for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
		if err != nil {
			return fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		// Store as "contact", etc.
		name := strings.TrimSuffix(path.Base(page), path.Ext(page))
		templates[name] = pageTmpl
	}

	r.templates = templates
	r.logger.Info("templates loaded", "count", len(r.templates))
	return nil
}

// Reload reparses all templates. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadTemplates()
}

// Render renders a page to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderHTTP renders a page directly to an http.ResponseWriter with the
// given status.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	// Render to buffer first to catch errors before writing headers
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		InternalErrorResponse(w, req, r.logger, fmt.Errorf("render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ListTemplates returns a list of all loaded template names.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
