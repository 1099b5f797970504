// Package server exposes prepared meta boxes over net/http: an edit page per
// record, the save endpoint, the visibility payload, the client assets and
// the date localization endpoint.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-metabox/components/datelocalizer"
	"github.com/goliatone/go-metabox/pkg/metabox"
	"github.com/goliatone/go-metabox/pkg/render/template/gotemplate"
	"github.com/goliatone/go-metabox/pkg/visibility"
)

//go:embed templates/*.tmpl
var pageTemplates embed.FS

const (
	// AutosaveInput flags background saves in the posted form.
	AutosaveInput = "autosave"
	// AssetsRoute serves the client script and stylesheet.
	AssetsRoute = "/metabox/assets/"
)

// ErrUnknownBox is returned when a route names a box that is not registered.
var ErrUnknownBox = errors.New("server: unknown meta box")

// Server routes edit and save requests to registered meta boxes. It is safe
// for concurrent use.
type Server struct {
	mu    sync.RWMutex
	boxes map[string]*metabox.Box
	order []string

	pending     []*metabox.Box
	logger      *zap.Logger
	basePath    string
	localizer   []datelocalizer.OptionFn
	trusted     func(*http.Request) bool
	locale      func(*http.Request) string
	submitLabel string
	pages       *gotemplate.Engine
	handler     http.Handler
}

// New builds a server. Boxes passed with WithBoxes are registered in order.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		boxes:       make(map[string]*metabox.Box),
		logger:      zap.NewNop(),
		submitLabel: "Update",
		locale: func(r *http.Request) string {
			return r.URL.Query().Get("locale")
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	for _, box := range s.pending {
		if err := s.Register(box); err != nil {
			return nil, err
		}
	}
	s.pending = nil

	files, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("server: page templates: %w", err)
	}
	pages, err := gotemplate.New(gotemplate.WithFS(files), gotemplate.WithExtension(".tmpl"))
	if err != nil {
		return nil, fmt.Errorf("server: page templates: %w", err)
	}
	s.pages = pages

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

// Register adds a box. Ids must be unique.
func (s *Server) Register(box *metabox.Box) error {
	if box == nil {
		return errors.New("server: nil meta box")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.boxes[box.ID()]; exists {
		return fmt.Errorf("server: meta box %q already registered", box.ID())
	}
	s.boxes[box.ID()] = box
	s.order = append(s.order, box.ID())
	return nil
}

// Box looks up a registered box.
func (s *Server) Box(id string) (*metabox.Box, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	box, ok := s.boxes[id]
	return box, ok
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// LocalizeURL is the path date fields post to for localized markup. Pass it
// to metabox.WithLocalizeURL.
func (s *Server) LocalizeURL() string {
	return datelocalizer.MountPath(s.basePath, s.localizer...)
}

// AssetURL returns the public path of an embedded client asset.
func (s *Server) AssetURL(name string) string {
	return s.basePath + AssetsRoute + strings.TrimLeft(name, "/")
}

// EditURL returns the edit page path of a record.
func (s *Server) EditURL(boxID, recordID string) string {
	return s.basePath + "/boxes/" + url.PathEscape(boxID) + "/records/" + url.PathEscape(recordID)
}

// ListenAndServe serves until ctx is cancelled, then shuts down within grace.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	s.logger.Info("listening", zap.String("addr", addr), zap.String("base_path", s.basePath))

	select {
	case err := <-errChan:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) routes() (http.Handler, error) {
	mux := http.NewServeMux()
	base := s.basePath

	mux.Handle("GET "+base+"/boxes", http.HandlerFunc(s.handleList))
	mux.Handle("GET "+base+"/boxes/{box}/visibility", http.HandlerFunc(s.handleVisibility))
	mux.Handle("GET "+base+"/boxes/{box}/records/{record}", http.HandlerFunc(s.handleEdit))
	mux.Handle("POST "+base+"/boxes/{box}/records/{record}", http.HandlerFunc(s.handleSave))
	mux.Handle("GET "+base+"/boxes/{box}/records/{record}/values", http.HandlerFunc(s.handleValues))
	mux.Handle("GET "+base+AssetsRoute, http.StripPrefix(base+AssetsRoute, http.FileServerFS(visibility.AssetsFS())))
	mux.HandleFunc("GET "+base+"/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if _, err := datelocalizer.RegisterRoutes(mux, base, s.localizer...); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return mux, nil
}

type boxSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Context  string `json:"context,omitempty"`
	Priority string `json:"priority,omitempty"`
	Fields   int    `json:"fields"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	summaries := make([]boxSummary, 0, len(s.order))
	for _, id := range s.order {
		def := s.boxes[id].Definition()
		summaries = append(summaries, boxSummary{
			ID:       def.ID,
			Title:    def.Title,
			Context:  def.Context,
			Priority: def.Priority,
			Fields:   len(def.Fields),
		})
	}
	s.mu.RUnlock()
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	box, ok := s.Box(r.PathValue("box"))
	if !ok {
		s.writeError(w, r, ErrUnknownBox)
		return
	}
	payload, err := box.VisibilityPayload()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	box, recordID, ok := s.target(w, r)
	if !ok {
		return
	}
	values, err := box.Values(r.Context(), recordID, isSet(r.URL.Query().Get("first_add")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	box, recordID, ok := s.target(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	pageTemplate := query.Get("page_template")
	locale := s.locale(r)

	markup, err := box.Render(r.Context(), recordID, metabox.RenderRequest{
		FirstAdd:     isSet(query.Get("first_add")),
		PageTemplate: pageTemplate,
		Locale:       locale,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isSet(query.Get("fragment")) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(markup)
		return
	}

	stylesheets, scripts := box.Assets()
	styleURLs := make([]string, 0, len(stylesheets))
	for _, href := range stylesheets {
		styleURLs = append(styleURLs, s.AssetURL(href))
	}
	scriptData := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		if script.Src == "" {
			continue
		}
		scriptData = append(scriptData, map[string]any{
			"src":    s.AssetURL(script.Src),
			"defer":  script.Defer,
			"async":  script.Async,
			"module": script.Module,
		})
	}

	lang := strings.ReplaceAll(locale, "_", "-")
	if lang == "" {
		lang = "en"
	}
	page, err := s.pages.RenderTemplate("page", map[string]any{
		"lang":          lang,
		"title":         box.Definition().Title,
		"action":        r.URL.Path,
		"page_template": pageTemplate,
		"box":           string(markup),
		"submit":        s.submitLabel,
		"stylesheets":   styleURLs,
		"scripts":       scriptData,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	box, recordID, ok := s.target(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := r.PostForm
	autosave := isSet(form.Get(AutosaveInput))
	trusted := s.trusted != nil && s.trusted(r)

	values, err := box.Save(r.Context(), recordID, metabox.SaveRequest{
		Form:           form,
		Autosave:       autosave,
		UnfilteredHTML: trusted,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsJSON(r) {
		s.writeJSON(w, http.StatusOK, values)
		return
	}
	http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
}

func (s *Server) target(w http.ResponseWriter, r *http.Request) (*metabox.Box, string, bool) {
	box, ok := s.Box(r.PathValue("box"))
	if !ok {
		s.writeError(w, r, ErrUnknownBox)
		return nil, "", false
	}
	recordID := strings.TrimSpace(r.PathValue("record"))
	if recordID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, "", false
	}
	if r.Method == http.MethodGet && !box.CanEdit(r.Context(), recordID) {
		s.writeError(w, r, metabox.ErrForbidden)
		return nil, "", false
	}
	return box, recordID, true
}

// StatusCode maps save and lookup errors onto HTTP statuses.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnknownBox):
		return http.StatusNotFound
	case errors.Is(err, metabox.ErrEmptySubmission):
		return http.StatusBadRequest
	case errors.Is(err, metabox.ErrAutosave):
		return http.StatusNoContent
	case errors.Is(err, metabox.ErrInvalidNonce), errors.Is(err, metabox.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", code),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}
	http.Error(w, http.StatusText(code), code)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("write json response", zap.Error(err))
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isSet(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
