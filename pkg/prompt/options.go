package prompt

import "go.uber.org/zap"

// Option customises a Filler.
type Option func(*Filler)

// WithDriver swaps the terminal driver, mainly for tests.
func WithDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLocale selects the locale used for date previews.
func WithLocale(tag string) Option {
	return func(f *Filler) {
		f.locale = tag
	}
}

// WithDateFormat overrides the date preview format.
func WithDateFormat(format string) Option {
	return func(f *Filler) {
		f.dateFormat = format
	}
}

// WithPageTemplate restricts the prompts to fields allowed on the template.
func WithPageTemplate(name string) Option {
	return func(f *Filler) {
		f.pageTemplate = name
		f.hasTemplate = true
	}
}

// WithUnfilteredHTML lets HTML fields keep raw markup when sanitized.
func WithUnfilteredHTML(allowed bool) Option {
	return func(f *Filler) {
		f.unfilteredHTML = allowed
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}
