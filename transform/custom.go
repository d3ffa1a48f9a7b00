package transform

import (
	"context"
	"fmt"
	"sync"
)

// Transformer is a named, pre-registered conversion. Fn receives the current
// value and the rule params; CanTransform optionally guards applicability.
// SourceTypes restricts the runtime kinds the transformer accepts (empty
// means any).
type Transformer struct {
	SourceTypes  []Target
	Target       Target
	Fn           func(ctx context.Context, v any, params map[string]any) (any, error)
	CanTransform func(v any) bool
}

var (
	customMu sync.RWMutex
	custom   = map[string]Transformer{}
)

// RegisterTransformer installs a named transformer. Registering the same name
// again overwrites the previous definition.
func RegisterTransformer(name string, t Transformer) {
	customMu.Lock()
	custom[name] = t
	customMu.Unlock()
}

// UnregisterTransformer removes a named transformer.
func UnregisterTransformer(name string) {
	customMu.Lock()
	delete(custom, name)
	customMu.Unlock()
}

// LookupTransformer returns the named transformer, if registered.
func LookupTransformer(name string) (Transformer, bool) {
	customMu.RLock()
	t, ok := custom[name]
	customMu.RUnlock()
	return t, ok
}

// applyCustom runs the named transformer. applied is false when the
// transformer declined the value via SourceTypes or CanTransform.
func applyCustom(ctx context.Context, v any, name, path string, params map[string]any) (out any, applied bool, err *Error) {
	t, ok := LookupTransformer(name)
	if !ok {
		return nil, false, newError(path, CodeNoTransformer,
			fmt.Sprintf("no transformer registered under %q", name), v, name, nil)
	}
	if len(t.SourceTypes) > 0 {
		st := TypeOf(v)
		match := false
		for _, s := range t.SourceTypes {
			if s == TargetAny || s == st {
				match = true
				break
			}
		}
		if !match {
			return v, false, nil
		}
	}
	if t.CanTransform != nil && !t.CanTransform(v) {
		return v, false, nil
	}
	res, ferr := t.Fn(ctx, v, params)
	if ferr != nil {
		return nil, false, newError(path, CodeCustomFailed, ferr.Error(), v, name, ferr)
	}
	return res, true, nil
}
