package skematic

import (
	"context"
	"fmt"

	"github.com/skematic/skematic/cache"
)

// Validate checks v against an inline descriptor without a registry.
// Reference descriptors fail as unresolved; use (*Registry).Validate when the
// descriptor graph names other schemas. On success the returned value is the
// validated (and possibly transformed) input.
func Validate(ctx context.Context, d *Descriptor, v any, opts ...ValidateOpt) (any, error) {
	return validateEntry(ctx, nil, d, v, takeOpt(opts))
}

// Validate checks v against an inline descriptor, resolving references
// through the registry.
func (r *Registry) Validate(ctx context.Context, d *Descriptor, v any, opts ...ValidateOpt) (any, error) {
	return validateEntry(ctx, r, d, v, takeOpt(opts))
}

// ValidateNamed checks v against the schema registered under name, going
// through the compiled-validator cache.
func (r *Registry) ValidateNamed(ctx context.Context, name string, v any, opts ...ValidateOpt) (any, error) {
	c, err := r.Compiled(name)
	if err != nil {
		return nil, err
	}
	return c.Validate(ctx, v, opts...)
}

func validateEntry(ctx context.Context, reg *Registry, d *Descriptor, v any, opt ValidateOpt) (any, error) {
	key, cacheable := resultKey(opt, d, v)
	if cacheable {
		if out, ok := opt.Results.get(key); ok {
			return out, nil
		}
	}
	s := &state{reg: reg, opt: opt}
	out, iss := s.node(ctx, d, v, "/")
	if len(iss) > 0 {
		return nil, iss
	}
	if cacheable {
		opt.Results.set(key, out)
	}
	return out, nil
}

// resultKey fingerprints a validation call over the descriptor's structural
// signature, the value, and the options, so distinct descriptors sharing one
// cache never collide. Inputs holding values the canonical serializer cannot
// represent make the call uncacheable rather than failing it.
func resultKey(opt ValidateOpt, d *Descriptor, v any) (string, bool) {
	if opt.Results == nil || !opt.fingerprintable() {
		return "", false
	}
	sig, ok := d.signature()
	if !ok {
		return "", false
	}
	key, err := cache.Fingerprint(sig, v, opt.fingerprint())
	if err != nil {
		return "", false
	}
	return key, true
}

// Compiled is the validator closure built once per schema name.
type Compiled struct {
	name string
	reg  *Registry
	desc *Descriptor
}

// Compiled returns the validator for the named schema, building it on first
// use. Repeated calls for the same name return the identical instance until
// the schema is re-registered.
func (r *Registry) Compiled(name string) (*Compiled, error) {
	r.mu.RLock()
	c, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.compiled[name]; ok {
		return c, nil
	}
	props, ok := r.schemas[name]
	if !ok {
		return nil, Issues{{
			Path:     "/",
			Code:     CodeUnresolvedRef,
			Message:  fmt.Sprintf("unknown schema %q", name),
			Expected: "registered schema",
			Received: "unregistered name",
			Hint:     availableHint(r.namesLocked()),
		}}
	}
	desc := descriptorForSchema(props)
	c = &Compiled{name: name, reg: r, desc: desc}
	r.compiled[name] = c
	return c, nil
}

// Validate runs the compiled validator against v.
func (c *Compiled) Validate(ctx context.Context, v any, opts ...ValidateOpt) (any, error) {
	return validateEntry(ctx, c.reg, c.desc, v, takeOpt(opts))
}

// Name reports the schema name this validator was compiled for.
func (c *Compiled) Name() string { return c.name }

// ClearCompiled drops every compiled validator while keeping the schemas.
func (r *Registry) ClearCompiled() {
	r.mu.Lock()
	r.compiled = make(map[string]*Compiled)
	r.mu.Unlock()
}

// CompiledSize reports how many validators are currently compiled.
func (r *Registry) CompiledSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.compiled)
}

// descriptorForSchema wraps a registered property list into a descriptor.
// Alias schemas delegate to the wrapped descriptor instead of requiring an
// object wrapper around the value.
func descriptorForSchema(props []Property) *Descriptor {
	if wrapped, ok := aliasOf(props); ok {
		return wrapped
	}
	return &Descriptor{Kind: KindObject, Properties: props}
}

// namesLocked must be called with at least a read lock held.
func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// ResultCache memoizes validation outputs keyed by input fingerprints under
// bounded LRU eviction. It never persists across process restarts.
type ResultCache struct {
	lru *cache.LRU[string, any]
}

// NewResultCache returns a result cache bounded to max entries.
func NewResultCache(max int) *ResultCache {
	return &ResultCache{lru: cache.NewLRU[string, any](max)}
}

func (rc *ResultCache) get(key string) (any, bool) { return rc.lru.Get(key) }
func (rc *ResultCache) set(key string, v any)      { rc.lru.Put(key, v) }

// Clear empties the cache.
func (rc *ResultCache) Clear() { rc.lru.Clear() }

// Size reports the number of memoized results.
func (rc *ResultCache) Size() int { return rc.lru.Len() }
