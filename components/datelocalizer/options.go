package datelocalizer

import "net/http"

// DefaultAction is the token action accepted by the endpoint.
const DefaultAction = "ctmb_localize_dates"

// GuardFunc authorizes a request before any work is done. Returning an error
// implementing HTTPError selects the response status.
type GuardFunc func(r *http.Request) error

// Verifier checks anti-forgery tokens. *nonce.Manager satisfies it.
type Verifier interface {
	Verify(token, action, subject string) error
}

type Options struct {
	RoutePath   string
	DatesParam  string
	NonceParam  string
	LocaleParam string
	Action      string
	Locale      string
	DateFormat  string
	MaxDates    int
	Guard       GuardFunc
	Verifier    Verifier
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:   "/metabox/localize-dates",
		DatesParam:  "dates",
		NonceParam:  "nonce",
		LocaleParam: "locale",
		Action:      DefaultAction,
		MaxDates:    366,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/metabox/localize-dates"
	}
	if opts.DatesParam == "" {
		opts.DatesParam = "dates"
	}
	if opts.NonceParam == "" {
		opts.NonceParam = "nonce"
	}
	if opts.Action == "" {
		opts.Action = DefaultAction
	}
	if opts.MaxDates <= 0 {
		opts.MaxDates = 366
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithDatesParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DatesParam = name
	}
}

// WithLocaleParam names the optional request parameter that selects the
// locale. An empty name disables per-request locales.
func WithLocaleParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LocaleParam = name
	}
}

func WithLocale(tag string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Locale = tag
	}
}

func WithDateFormat(format string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DateFormat = format
	}
}

func WithMaxDates(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxDates = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithVerifier requires a valid token scoped to action on every request.
func WithVerifier(verifier Verifier, action string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Verifier = verifier
		if action != "" {
			o.Action = action
		}
	}
}
