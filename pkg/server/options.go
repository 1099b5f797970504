package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-metabox/components/datelocalizer"
	"github.com/goliatone/go-metabox/pkg/metabox"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBasePath mounts every route under path.
func WithBasePath(path string) Option {
	return func(s *Server) {
		s.basePath = normalizeBase(path)
	}
}

// WithBoxes registers prepared meta boxes.
func WithBoxes(boxes ...*metabox.Box) Option {
	return func(s *Server) {
		s.pending = append(s.pending, boxes...)
	}
}

// WithLocalizer configures the date localization endpoint mounted next to
// the edit routes.
func WithLocalizer(fns ...datelocalizer.OptionFn) Option {
	return func(s *Server) {
		s.localizer = append(s.localizer, fns...)
	}
}

// WithTrustedHTML decides per request whether the submitter may post raw
// HTML. Defaults to never.
func WithTrustedHTML(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.trusted = fn
	}
}

// WithLocaleResolver picks the display locale for a request. Defaults to the
// "locale" query parameter.
func WithLocaleResolver(fn func(*http.Request) string) Option {
	return func(s *Server) {
		if fn != nil {
			s.locale = fn
		}
	}
}

// WithSubmitLabel sets the edit page's submit button text.
func WithSubmitLabel(label string) Option {
	return func(s *Server) {
		if label = strings.TrimSpace(label); label != "" {
			s.submitLabel = label
		}
	}
}

func normalizeBase(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}
