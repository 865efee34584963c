package flash

import "log/slog"

// Option configures the [Framework].
type Option func(*Framework)

// WithMinimumLevel sets the minimum level a message must have to be
// dispatched. Messages below the threshold are dropped on [Send].
// Default: [LevelInfo].
//
// A common pattern is to lower the threshold outside production:
//
//	minLevel := flash.LevelInfo
//	if os.Getenv("APP_ENV") == "local" {
//		minLevel = flash.LevelDebug
//	}
//	framework := flash.NewFramework(store, flash.WithMinimumLevel(minLevel))
func WithMinimumLevel(level Level) Option {
	return func(f *Framework) {
		f.minLevel = level
	}
}

// WithLogger sets the logger used for load and store failures.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Framework) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithErrorHandler sets the handler rendering load and store failures.
// Default: a plain-text http.Error with the status the framework picked.
func WithErrorHandler(h ErrorHandler) Option {
	return func(f *Framework) {
		if h != nil {
			f.errorHandler = h
		}
	}
}
