package skematic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/skematic/skematic/transform"
)

// Kind discriminates the Descriptor tagged union. Adding a Kind requires
// updating every switch that dispatches on it; the engine treats an unhandled
// Kind as a programming error.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindDate
	KindNull
	KindUndefined
	KindAny
	KindUnknown
	KindNever
	KindLiteral
	KindArray
	KindTuple
	KindObject
	KindUnion
	KindIntersection
	KindReference
)

var kindNames = map[Kind]string{
	KindString:       "string",
	KindNumber:       "number",
	KindBoolean:      "boolean",
	KindDate:         "date",
	KindNull:         "null",
	KindUndefined:    "undefined",
	KindAny:          "any",
	KindUnknown:      "unknown",
	KindNever:        "never",
	KindLiteral:      "literal",
	KindArray:        "array",
	KindTuple:        "tuple",
	KindObject:       "object",
	KindUnion:        "union",
	KindIntersection: "intersection",
	KindReference:    "reference",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Constraints are optional bounds applied after the base type check passes.
// Length bounds apply to strings and arrays, numeric bounds to numbers, and
// Pattern to strings.
type Constraints struct {
	MinLen  *int
	MaxLen  *int
	Min     *float64
	Max     *float64
	Pattern *regexp.Regexp
}

// Property describes one object member. A Property belongs to exactly one
// Object descriptor; list order drives deterministic error ordering only.
type Property struct {
	Name     string
	Type     *Descriptor
	Optional bool
	ReadOnly bool
}

// Descriptor describes one value's required shape. Descriptors are immutable
// once constructed and may be shared freely; the engine never mutates them.
// Which fields are meaningful depends on Kind:
//
//	Literal       -> Literal
//	Array         -> Elem
//	Tuple         -> Elems
//	Object        -> Properties
//	Union         -> Members, and optionally Discriminator+Variants
//	Intersection  -> Members
//	Reference     -> Ref
type Descriptor struct {
	Kind       Kind
	Literal    any
	Elem       *Descriptor
	Elems      []*Descriptor
	Properties []Property
	Members    []*Descriptor

	// Discriminator/Variants enable direct dispatch for discriminated
	// unions: the engine reads the named property and selects the variant
	// instead of trying every member.
	Discriminator string
	Variants      map[string]*Descriptor

	Ref string

	// Nullable lets an explicit null satisfy this descriptor regardless of
	// Kind.
	Nullable    bool
	Constraints *Constraints
	Transform   *transform.Spec
}

// signature renders a stable structural identity for result-cache keys, so
// two descriptors of the same kind but different shape never share an entry.
// cacheable is false when the descriptor carries state with no deterministic
// rendering (predicate conditions on transform rules).
func (d *Descriptor) signature() (sig string, cacheable bool) {
	var b strings.Builder
	ok := d.writeSignature(&b, make(map[*Descriptor]bool))
	return b.String(), ok
}

func (d *Descriptor) writeSignature(b *strings.Builder, seen map[*Descriptor]bool) bool {
	if d == nil {
		b.WriteString("<nil>")
		return true
	}
	if seen[d] {
		b.WriteString("<cycle>")
		return true
	}
	seen[d] = true
	defer delete(seen, d)

	b.WriteString(d.Kind.String())
	if d.Nullable {
		b.WriteByte('?')
	}
	ok := true
	switch d.Kind {
	case KindLiteral:
		fmt.Fprintf(b, "(%T:%v)", d.Literal, d.Literal)
	case KindArray:
		b.WriteByte('[')
		ok = d.Elem.writeSignature(b, seen) && ok
		b.WriteByte(']')
	case KindTuple, KindIntersection:
		b.WriteByte('[')
		for _, m := range d.Elems {
			ok = m.writeSignature(b, seen) && ok
			b.WriteByte(',')
		}
		for _, m := range d.Members {
			ok = m.writeSignature(b, seen) && ok
			b.WriteByte(',')
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for _, p := range d.Properties {
			b.WriteString(p.Name)
			if p.Optional {
				b.WriteByte('?')
			}
			b.WriteByte(':')
			ok = p.Type.writeSignature(b, seen) && ok
			b.WriteByte(',')
		}
		b.WriteByte('}')
	case KindUnion:
		if d.Discriminator != "" {
			b.WriteString("<" + d.Discriminator + ">")
			tags := make([]string, 0, len(d.Variants))
			for tag := range d.Variants {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			b.WriteByte('{')
			for _, tag := range tags {
				b.WriteString(tag)
				b.WriteByte(':')
				ok = d.Variants[tag].writeSignature(b, seen) && ok
				b.WriteByte(',')
			}
			b.WriteByte('}')
		}
		b.WriteByte('[')
		for _, m := range d.Members {
			ok = m.writeSignature(b, seen) && ok
			b.WriteByte(',')
		}
		b.WriteByte(']')
	case KindReference:
		b.WriteString("(" + d.Ref + ")")
	}
	if c := d.Constraints; c != nil {
		fmt.Fprintf(b, "!c(%v,%v,%v,%v,", ptrVal(c.MinLen), ptrVal(c.MaxLen), ptrVal(c.Min), ptrVal(c.Max))
		if c.Pattern != nil {
			b.WriteString(c.Pattern.String())
		}
		b.WriteByte(')')
	}
	if s := d.Transform; s != nil {
		fmt.Fprintf(b, "!t(%t,%s,", s.Auto, s.Custom)
		ok = writeRules(b, s.Pre) && ok
		b.WriteByte('|')
		ok = writeRules(b, s.Post) && ok
		b.WriteByte(')')
	}
	return ok
}

func writeRules(b *strings.Builder, rules []transform.Rule) bool {
	ok := true
	for _, r := range rules {
		// Maps print with sorted keys, so Params renders deterministically.
		fmt.Fprintf(b, "%s:%s%v", r.Op, r.Target, r.Params)
		if c := r.Condition; c != nil {
			fmt.Fprintf(b, "@%v", c.SourceTypes)
			if c.ValuePattern != nil {
				b.WriteString("~" + c.ValuePattern.String())
			}
			if c.Predicate != nil {
				ok = false
			}
		}
		b.WriteByte(';')
	}
	return ok
}

func ptrVal[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// target maps a descriptor kind onto the transformation engine's target
// vocabulary. Kinds without a coercible shape map to TargetAny, which
// disables automatic coercion.
func (d *Descriptor) target() transform.Target {
	switch d.Kind {
	case KindString:
		return transform.TargetString
	case KindNumber:
		return transform.TargetNumber
	case KindBoolean:
		return transform.TargetBoolean
	case KindDate:
		return transform.TargetDate
	case KindArray, KindTuple:
		return transform.TargetArray
	case KindObject:
		return transform.TargetObject
	default:
		return transform.TargetAny
	}
}
