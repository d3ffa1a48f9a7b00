package skematic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/skematic/skematic/i18n"
	"github.com/skematic/skematic/transform"
)

// state carries the per-call validation context. It holds no mutable shared
// data, so concurrent validations stay independent.
type state struct {
	reg *Registry
	opt ValidateOpt
}

// node validates one value against one descriptor. The returned value is the
// (possibly transformed) conforming value; a non-empty Issues means failure.
func (s *state) node(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	if d == nil {
		return nil, Issues{{Path: path, Code: CodeParseError, Message: "nil descriptor"}}
	}

	if v != nil && (s.opt.AutoTransform || (d.Transform != nil && d.Transform.Auto)) {
		res, terr := transform.Apply(ctx, v, d.target(), d.Transform, s.opt.Transform, path, pathDepth(path))
		out, terr := transform.Recover(v, res, terr, s.opt.Transform)
		if terr != nil {
			return nil, Issues{{
				Path:     terr.Path,
				Code:     CodeTransformFailed,
				Message:  i18n.T(CodeTransformFailed, nil) + ": " + terr.Message,
				Expected: string(d.target()),
				Received: received(v),
				Value:    v,
				Cause:    terr,
				Params:   map[string]any{"transformCode": terr.Code},
			}}
		}
		v = out
	}

	if v == nil {
		switch {
		case d.Nullable, d.Kind == KindNull, d.Kind == KindUndefined, d.Kind == KindAny, d.Kind == KindUnknown:
			return nil, nil
		default:
			return nil, Issues{s.typeIssue(d, v, path)}
		}
	}

	switch d.Kind {
	case KindAny, KindUnknown:
		return v, nil
	case KindNever:
		return nil, Issues{{
			Path: path, Code: CodeNever, Message: i18n.T(CodeNever, nil),
			Expected: "never", Received: received(v), Value: v,
		}}
	case KindNull, KindUndefined:
		// v != nil here.
		return nil, Issues{s.typeIssue(d, v, path)}
	case KindString:
		return s.stringNode(d, v, path)
	case KindNumber:
		return s.numberNode(d, v, path)
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return nil, Issues{s.typeIssue(d, v, path)}
		}
		return v, nil
	case KindDate:
		return s.dateNode(d, v, path)
	case KindLiteral:
		if !literalEqual(d.Literal, v) {
			return nil, Issues{{
				Path: path, Code: CodeInvalidLiteral, Message: i18n.T(CodeInvalidLiteral, nil),
				Expected: renderLiteral(d.Literal), Received: received(v), Value: v,
			}}
		}
		return v, nil
	case KindArray:
		return s.arrayNode(ctx, d, v, path)
	case KindTuple:
		return s.tupleNode(ctx, d, v, path)
	case KindObject:
		return s.objectNode(ctx, d, v, path)
	case KindUnion:
		return s.unionNode(ctx, d, v, path)
	case KindIntersection:
		return s.intersectionNode(ctx, d, v, path)
	case KindReference:
		return s.referenceNode(ctx, d, v, path)
	}
	return nil, Issues{{Path: path, Code: CodeParseError, Message: fmt.Sprintf("unhandled descriptor kind %d", d.Kind)}}
}

func (s *state) typeIssue(d *Descriptor, v any, path string) Issue {
	return Issue{
		Path:     path,
		Code:     CodeInvalidType,
		Message:  i18n.T(CodeInvalidType, nil),
		Expected: d.Kind.String(),
		Received: received(v),
		Value:    v,
	}
}

func (s *state) stringNode(d *Descriptor, v any, path string) (any, Issues) {
	str, ok := v.(string)
	if !ok {
		return nil, Issues{s.typeIssue(d, v, path)}
	}
	var iss Issues
	if c := d.Constraints; c != nil {
		n := len([]rune(str))
		if c.MinLen != nil && n < *c.MinLen {
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodeTooShort, Message: i18n.T(CodeTooShort, nil),
				Value: v, Params: map[string]any{"min": *c.MinLen, "got": n},
			})
		}
		if c.MaxLen != nil && n > *c.MaxLen {
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodeTooLong, Message: i18n.T(CodeTooLong, nil),
				Value: v, Params: map[string]any{"max": *c.MaxLen, "got": n},
			})
		}
		if c.Pattern != nil && !c.Pattern.MatchString(str) {
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodePattern, Message: i18n.T(CodePattern, nil),
				Value: v, Params: map[string]any{"pattern": c.Pattern.String()},
			})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return str, nil
}

func (s *state) numberNode(d *Descriptor, v any, path string) (any, Issues) {
	f, ok := asNumber(v)
	if !ok {
		return nil, Issues{s.typeIssue(d, v, path)}
	}
	if math.IsNaN(f) {
		return nil, Issues{{
			Path: path, Code: CodeNotANumber, Message: i18n.T(CodeNotANumber, nil),
			Expected: "number", Received: "NaN", Value: v,
		}}
	}
	var iss Issues
	if c := d.Constraints; c != nil {
		if c.Min != nil && f < *c.Min {
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodeTooSmall, Message: i18n.T(CodeTooSmall, nil),
				Value: v, Params: map[string]any{"min": *c.Min, "got": f},
			})
		}
		if c.Max != nil && f > *c.Max {
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodeTooBig, Message: i18n.T(CodeTooBig, nil),
				Value: v, Params: map[string]any{"max": *c.Max, "got": f},
			})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	// Preserve the caller's numeric representation so repeated validation is
	// byte-stable.
	return v, nil
}

func (s *state) dateNode(d *Descriptor, v any, path string) (any, Issues) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, Issues{s.typeIssue(d, v, path)}
	}
	if t.IsZero() {
		return nil, Issues{{
			Path: path, Code: CodeInvalidDate, Message: i18n.T(CodeInvalidDate, nil),
			Expected: "date", Received: "invalid date", Value: v,
		}}
	}
	return t, nil
}

func (s *state) arrayNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	arr, ok := v.([]any)
	if !ok {
		return nil, Issues{s.typeIssue(d, v, path)}
	}
	if c := d.Constraints; c != nil {
		if c.MinLen != nil && len(arr) < *c.MinLen {
			return nil, Issues{{
				Path: path, Code: CodeTooShort, Message: i18n.T(CodeTooShort, nil),
				Value: v, Params: map[string]any{"minItems": *c.MinLen, "got": len(arr)},
			}}
		}
		if c.MaxLen != nil && len(arr) > *c.MaxLen {
			return nil, Issues{{
				Path: path, Code: CodeTooLong, Message: i18n.T(CodeTooLong, nil),
				Value: v, Params: map[string]any{"maxItems": *c.MaxLen, "got": len(arr)},
			}}
		}
	}
	out := make([]any, len(arr))
	var iss Issues
	for i, el := range arr {
		ev, eiss := s.node(ctx, d.Elem, el, joinPath(path, strconv.Itoa(i)))
		if len(eiss) > 0 {
			iss = AppendIssues(iss, eiss...)
			if !s.opt.CollectAll {
				return nil, iss
			}
			continue
		}
		out[i] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (s *state) tupleNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	arr, ok := v.([]any)
	if !ok {
		return nil, Issues{s.typeIssue(d, v, path)}
	}
	want := len(d.Elems)
	if len(arr) < want || (len(arr) > want && !s.opt.AllowExtraElements) {
		return nil, Issues{{
			Path: path, Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil),
			Expected: fmt.Sprintf("tuple of %d elements", want),
			Received: fmt.Sprintf("sequence of %d elements", len(arr)),
			Value:    v,
			Params:   map[string]any{"want": want, "got": len(arr)},
		}}
	}
	out := make([]any, len(arr))
	var iss Issues
	for i, ed := range d.Elems {
		ev, eiss := s.node(ctx, ed, arr[i], joinPath(path, strconv.Itoa(i)))
		if len(eiss) > 0 {
			iss = AppendIssues(iss, eiss...)
			if !s.opt.CollectAll {
				return nil, iss
			}
			continue
		}
		out[i] = ev
	}
	// Surplus elements are accepted unchecked when extras are allowed.
	copy(out[want:], arr[want:])
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (s *state) objectNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{s.typeIssue(d, v, path)}
	}
	out := make(map[string]any, len(m))
	var iss Issues
	known := make(map[string]struct{}, len(d.Properties))
	for _, p := range d.Properties {
		known[p.Name] = struct{}{}
		pp := joinPath(path, p.Name)
		val, present := m[p.Name]
		if !present {
			if p.Optional {
				continue
			}
			iss = AppendIssues(iss, Issue{
				Path: pp, Code: CodeRequired, Message: i18n.T(CodeRequired, nil),
				Expected: p.Type.Kind.String(), Received: "missing",
				Hint: "required property missing",
			})
			if !s.opt.CollectAll {
				return nil, iss
			}
			continue
		}
		pv, piss := s.node(ctx, p.Type, val, pp)
		if len(piss) > 0 {
			iss = AppendIssues(iss, piss...)
			if !s.opt.CollectAll {
				return nil, iss
			}
			continue
		}
		out[p.Name] = pv
	}

	// Unknown keys in sorted order for deterministic reporting.
	var unknown []string
	for k := range m {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		switch s.opt.Unknown {
		case UnknownStrict:
			iss = AppendIssues(iss, Issue{
				Path: joinPath(path, k), Code: CodeUnknownKey,
				Message: i18n.T(CodeUnknownKey, nil),
				Value:   m[k],
				Params:  map[string]any{"key": k},
			})
			if !s.opt.CollectAll {
				return nil, iss
			}
		case UnknownStrip:
			// drop
		case UnknownAllow:
			out[k] = m[k]
		}
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// ---- helpers ----

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// literalEqual compares a literal descriptor value with an input. Numbers
// compare by numeric value so 1 and 1.0 are the same literal.
func literalEqual(want, got any) bool {
	if wf, ok := asNumber(want); ok {
		gf, ok2 := asNumber(got)
		return ok2 && wf == gf
	}
	return want == got
}

func renderLiteral(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}

// received describes a runtime value for error messages.
func received(v any) string {
	if v == nil {
		return "null"
	}
	if t := transform.TypeOf(v); t != transform.TargetAny {
		return string(t)
	}
	return fmt.Sprintf("%T", v)
}

func availableHint(names []string) string {
	sort.Strings(names)
	return "available: [" + strings.Join(names, ", ") + "]"
}
