package skematic

import "github.com/skematic/skematic/transform"

// UnknownPolicy controls how unknown object keys are handled.
type UnknownPolicy int

const (
	UnknownStrict UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                       // Drop unknown keys from the output.
	UnknownAllow                       // Keep unknown keys untouched.
)

// ValidateOpt bundles per-call validation options. The zero value is the
// strict default: unknown keys rejected, no transformation, stop at the
// first failing child.
type ValidateOpt struct {
	// CollectAll gathers every issue across array elements and object
	// properties instead of stopping at the first failure.
	CollectAll bool
	// Unknown selects the unknown-object-key policy.
	Unknown UnknownPolicy
	// AllowExtraElements accepts surplus tuple elements unchecked.
	AllowExtraElements bool
	// AutoTransform runs the transformation pipeline before structural
	// checks at every node, regardless of per-descriptor settings.
	AutoTransform bool
	// Transform configures the failure strategy, depth bound, and fallback
	// for the transformation pipeline.
	Transform transform.Strategy
	// Results short-circuits validation for previously seen inputs when
	// non-nil.
	Results *ResultCache
}

// takeOpt collapses variadic options: the last one wins.
func takeOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) == 0 {
		return ValidateOpt{}
	}
	return opts[len(opts)-1]
}

// fingerprintable reports whether the options can participate in a result
// cache key. Function-valued fields make a call uncacheable.
func (o ValidateOpt) fingerprintable() bool {
	return o.Transform.Fallback == nil
}

// fingerprint returns the stable, hashable projection of the options.
func (o ValidateOpt) fingerprint() map[string]any {
	return map[string]any{
		"collectAll":    o.CollectAll,
		"unknown":       int(o.Unknown),
		"extraElements": o.AllowExtraElements,
		"autoTransform": o.AutoTransform,
		"onError":       string(o.Transform.OnError),
		"default":       o.Transform.Default,
		"maxDepth":      o.Transform.MaxDepth,
		"txFailFast":    o.Transform.FailFast,
		"noChaining":    o.Transform.NoChaining,
	}
}
