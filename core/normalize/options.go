package normalize

import "github.com/leofalp/sceneplan/providers/observability"

// options holds the per-call pipeline configuration.
type options struct {
	toleranceRelative  float64
	toleranceFloorSec  float64
	lenientIDs         bool
	defaultAspectRatio string
	defaultFPS         int
	defaultLanguage    string
	observer           observability.Provider
}

func defaultOptions() options {
	return options{
		toleranceRelative:  DefaultToleranceRelative,
		toleranceFloorSec:  DefaultToleranceFloorSec,
		defaultAspectRatio: "16:9",
		defaultFPS:         30,
		defaultLanguage:    "en",
	}
}

// Option customizes a single [Normalize] call.
type Option func(*options)

// WithTolerance overrides the reconciliation acceptance band: relative is a
// fraction of the requested total duration, floorSec the absolute minimum in
// seconds. Non-positive values keep the corresponding default.
func WithTolerance(relative, floorSec float64) Option {
	return func(o *options) {
		if relative > 0 {
			o.toleranceRelative = relative
		}
		if floorSec > 0 {
			o.toleranceFloorSec = floorSec
		}
	}
}

// WithLenientIDs makes the coercer synthesize "scene_N" identifiers for
// scenes that arrive without one, instead of failing coercion. Off by
// default: a missing scene id is normally a hard coercion failure.
func WithLenientIDs() Option {
	return func(o *options) {
		o.lenientIDs = true
	}
}

// WithDefaults overrides the metadata fallbacks used when the caller's
// constraints leave aspect ratio, fps or language unset. Zero values keep the
// built-in defaults ("16:9", 30, "en").
func WithDefaults(aspectRatio string, fps int, language string) Option {
	return func(o *options) {
		if aspectRatio != "" {
			o.defaultAspectRatio = aspectRatio
		}
		if fps > 0 {
			o.defaultFPS = fps
		}
		if language != "" {
			o.defaultLanguage = language
		}
	}
}

// WithObserver attaches an observability provider. The pipeline opens a span
// per stage, counts failures per kind, and records stage durations; with no
// observer attached all instrumentation is skipped.
func WithObserver(obs observability.Provider) Option {
	return func(o *options) {
		o.observer = obs
	}
}
