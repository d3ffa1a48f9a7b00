// Package dsl provides fluent builders for Descriptor trees. Builders are
// construction-time conveniences only; the engine consumes the immutable
// Descriptor values they produce.
package dsl

import (
	"regexp"

	skematic "github.com/skematic/skematic"
	"github.com/skematic/skematic/transform"
)

// Builder wraps a Descriptor under construction.
type Builder struct {
	d *skematic.Descriptor
}

func of(k skematic.Kind) *Builder { return &Builder{d: &skematic.Descriptor{Kind: k}} }

// String returns a string descriptor builder.
func String() *Builder { return of(skematic.KindString) }

// Number returns a number descriptor builder.
func Number() *Builder { return of(skematic.KindNumber) }

// Bool returns a boolean descriptor builder.
func Bool() *Builder { return of(skematic.KindBoolean) }

// Date returns a date descriptor builder.
func Date() *Builder { return of(skematic.KindDate) }

// Null returns a descriptor matching only null.
func Null() *Builder { return of(skematic.KindNull) }

// Undefined returns a descriptor matching only an absent value.
func Undefined() *Builder { return of(skematic.KindUndefined) }

// Any returns a descriptor accepting anything.
func Any() *Builder { return of(skematic.KindAny) }

// Unknown returns a descriptor accepting anything (unknown semantics).
func Unknown() *Builder { return of(skematic.KindUnknown) }

// Never returns a descriptor accepting nothing.
func Never() *Builder { return of(skematic.KindNever) }

// Literal returns a descriptor requiring exact equality with v.
func Literal(v any) *Builder {
	b := of(skematic.KindLiteral)
	b.d.Literal = v
	return b
}

// Array returns a descriptor for sequences of elem.
func Array(elem *Builder) *Builder {
	b := of(skematic.KindArray)
	b.d.Elem = elem.Build()
	return b
}

// Tuple returns a descriptor for fixed-arity sequences.
func Tuple(elems ...*Builder) *Builder {
	b := of(skematic.KindTuple)
	b.d.Elems = buildAll(elems)
	return b
}

// Union returns a descriptor matched by any member, tried in declaration
// order.
func Union(members ...*Builder) *Builder {
	b := of(skematic.KindUnion)
	b.d.Members = buildAll(members)
	return b
}

// DiscriminatedUnion returns a union dispatched directly on the named
// discriminator property.
func DiscriminatedUnion(discriminator string, variants map[string]*Builder) *Builder {
	b := of(skematic.KindUnion)
	b.d.Discriminator = discriminator
	b.d.Variants = make(map[string]*skematic.Descriptor, len(variants))
	for tag, vb := range variants {
		b.d.Variants[tag] = vb.Build()
	}
	return b
}

// Intersection returns a descriptor every member must independently accept.
func Intersection(members ...*Builder) *Builder {
	b := of(skematic.KindIntersection)
	b.d.Members = buildAll(members)
	return b
}

// Ref returns a descriptor naming another registered schema.
func Ref(name string) *Builder {
	b := of(skematic.KindReference)
	b.d.Ref = name
	return b
}

func buildAll(bs []*Builder) []*skematic.Descriptor {
	out := make([]*skematic.Descriptor, len(bs))
	for i, b := range bs {
		out[i] = b.Build()
	}
	return out
}

// Nullable lets an explicit null satisfy the descriptor.
func (b *Builder) Nullable() *Builder {
	b.d.Nullable = true
	return b
}

func (b *Builder) constraints() *skematic.Constraints {
	if b.d.Constraints == nil {
		b.d.Constraints = &skematic.Constraints{}
	}
	return b.d.Constraints
}

// MinLen bounds string length or array item count from below.
func (b *Builder) MinLen(n int) *Builder {
	b.constraints().MinLen = &n
	return b
}

// MaxLen bounds string length or array item count from above.
func (b *Builder) MaxLen(n int) *Builder {
	b.constraints().MaxLen = &n
	return b
}

// Min bounds a number from below.
func (b *Builder) Min(f float64) *Builder {
	b.constraints().Min = &f
	return b
}

// Max bounds a number from above.
func (b *Builder) Max(f float64) *Builder {
	b.constraints().Max = &f
	return b
}

// Pattern requires string values to match the regular expression. It panics
// on an invalid expression, matching regexp.MustCompile.
func (b *Builder) Pattern(expr string) *Builder {
	b.constraints().Pattern = regexp.MustCompile(expr)
	return b
}

func (b *Builder) spec() *transform.Spec {
	if b.d.Transform == nil {
		b.d.Transform = &transform.Spec{}
	}
	return b.d.Transform
}

// AutoTransform enables the transformation pipeline for this descriptor even
// when the caller did not request it globally.
func (b *Builder) AutoTransform() *Builder {
	b.spec().Auto = true
	return b
}

// Pre appends rules applied before automatic coercion.
func (b *Builder) Pre(rules ...transform.Rule) *Builder {
	s := b.spec()
	s.Pre = append(s.Pre, rules...)
	return b
}

// Post appends rules applied after automatic coercion.
func (b *Builder) Post(rules ...transform.Rule) *Builder {
	s := b.spec()
	s.Post = append(s.Post, rules...)
	return b
}

// CustomTransform names a registered transformer applied between coercion and
// the post rules.
func (b *Builder) CustomTransform(name string) *Builder {
	b.spec().Custom = name
	return b
}

// Build returns the finished descriptor.
func (b *Builder) Build() *skematic.Descriptor { return b.d }

// ObjectBuilder accumulates object properties.
type ObjectBuilder struct {
	b     *Builder
	props []skematic.Property
}

// Object returns an empty object schema builder. Fields are required unless
// marked Optional.
func Object() *ObjectBuilder { return &ObjectBuilder{b: of(skematic.KindObject)} }

// Field appends a required property.
func (o *ObjectBuilder) Field(name string, t *Builder) *ObjectBuilder {
	o.props = append(o.props, skematic.Property{Name: name, Type: t.Build()})
	return o
}

// Optional marks previously added properties as optional.
func (o *ObjectBuilder) Optional(names ...string) *ObjectBuilder {
	o.mark(names, func(p *skematic.Property) { p.Optional = true })
	return o
}

// ReadOnly marks previously added properties as read-only.
func (o *ObjectBuilder) ReadOnly(names ...string) *ObjectBuilder {
	o.mark(names, func(p *skematic.Property) { p.ReadOnly = true })
	return o
}

func (o *ObjectBuilder) mark(names []string, fn func(*skematic.Property)) {
	for _, name := range names {
		for i := range o.props {
			if o.props[i].Name == name {
				fn(&o.props[i])
			}
		}
	}
}

// Nullable lets an explicit null satisfy the object descriptor.
func (o *ObjectBuilder) Nullable() *ObjectBuilder {
	o.b.Nullable()
	return o
}

// AutoTransform enables the transformation pipeline for the object node.
func (o *ObjectBuilder) AutoTransform() *ObjectBuilder {
	o.b.AutoTransform()
	return o
}

// Properties returns the accumulated property list, for direct registration.
func (o *ObjectBuilder) Properties() []skematic.Property { return o.props }

// RegisterTo installs the object schema in the registry under name.
func (o *ObjectBuilder) RegisterTo(reg *skematic.Registry, name string) {
	reg.Register(name, o.Properties())
}

// Done returns the object as a Builder so it can nest inside unions or
// intersections.
func (o *ObjectBuilder) Done() *Builder {
	o.b.d.Properties = o.props
	return o.b
}

// Build returns the finished object descriptor.
func (o *ObjectBuilder) Build() *skematic.Descriptor { return o.Done().Build() }
