package skematic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/skematic/skematic/i18n"
)

func (s *state) unionNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	if d.Discriminator != "" && len(d.Variants) > 0 {
		return s.discriminatedNode(ctx, d, v, path)
	}
	if allLiteralMembers(d.Members) {
		return s.literalSetNode(d, v, path)
	}

	// Try each member in declaration order; first success wins.
	branchIssues := make([]Issues, 0, len(d.Members))
	for _, m := range d.Members {
		out, iss := s.node(ctx, m, v, path)
		if len(iss) == 0 {
			return out, nil
		}
		branchIssues = append(branchIssues, iss)
	}

	// Total failure: aggregate every branch and report the lowest-path-depth
	// failure as the likely intended branch. Equal depths resolve to the
	// first declared member so the ranking stays deterministic.
	options := make([]string, len(branchIssues))
	best := 0
	bestDepth := int(^uint(0) >> 1)
	for i, iss := range branchIssues {
		first := iss[0]
		options[i] = fmt.Sprintf("option %d: %s at %s", i, first.messageOrCode(), first.Path)
		if depth := pathDepth(first.Path); depth < bestDepth {
			best, bestDepth = i, depth
		}
	}
	return nil, Issues{{
		Path:     path,
		Code:     CodeUnionNoMatch,
		Message:  i18n.T(CodeUnionNoMatch, nil) + ": " + strings.Join(options, "; "),
		Expected: "one of " + memberKinds(d.Members),
		Received: received(v),
		Value:    v,
		Hint:     fmt.Sprintf("closest match: option %d", best),
		Params:   map[string]any{"options": options, "best": best},
	}}
}

// messageOrCode keeps aggregate messages readable when a child issue carries
// no message.
func (it Issue) messageOrCode() string {
	if it.Message != "" {
		return it.Message
	}
	return it.Code
}

func allLiteralMembers(members []*Descriptor) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if m == nil || m.Kind != KindLiteral {
			return false
		}
	}
	return true
}

// literalSetNode degrades an all-literal union to a single set-membership
// check instead of one validation per member.
func (s *state) literalSetNode(d *Descriptor, v any, path string) (any, Issues) {
	allowed := make([]string, 0, len(d.Members))
	for _, m := range d.Members {
		if literalEqual(m.Literal, v) {
			return v, nil
		}
		allowed = append(allowed, renderLiteral(m.Literal))
	}
	sort.Strings(allowed)
	return nil, Issues{{
		Path:     path,
		Code:     CodeInvalidEnum,
		Message:  i18n.T(CodeInvalidEnum, nil) + ": allowed " + strings.Join(allowed, ", "),
		Expected: "one of " + strings.Join(allowed, ", "),
		Received: received(v),
		Value:    v,
		Params:   map[string]any{"allowed": allowed},
	}}
}

func (s *state) discriminatedNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{s.typeIssue(&Descriptor{Kind: KindObject}, v, path)}
	}
	keys := make([]string, 0, len(d.Variants))
	for k := range d.Variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dv, present := m[d.Discriminator]
	if !present {
		return nil, Issues{{
			Path:     joinPath(path, d.Discriminator),
			Code:     CodeDiscriminatorMissing,
			Message:  i18n.T(CodeDiscriminatorMissing, nil),
			Expected: "one of " + strings.Join(keys, ", "),
			Received: received(dv),
			Params:   map[string]any{"valid": keys},
		}}
	}
	// Non-string tags render through %v so numeric discriminants still
	// dispatch against their string-keyed variants.
	tag, ok := dv.(string)
	if !ok {
		tag = fmt.Sprintf("%v", dv)
	}
	variant, ok := d.Variants[tag]
	if !ok {
		return nil, Issues{{
			Path:     joinPath(path, d.Discriminator),
			Code:     CodeDiscriminatorUnknown,
			Message:  i18n.T(CodeDiscriminatorUnknown, nil),
			Expected: "one of " + strings.Join(keys, ", "),
			Received: renderLiteral(tag),
			Value:    dv,
			Params:   map[string]any{"valid": keys},
		}}
	}
	return s.node(ctx, variant, v, path)
}

func (s *state) intersectionNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	// Members validate with unknown keys stripped so a key owned by one
	// member does not fail its siblings; strictness is re-applied against the
	// union of all member properties afterwards.
	member := &state{reg: s.reg, opt: s.opt}
	member.opt.Unknown = UnknownStrip

	outs := make([]any, len(d.Members))
	lines := make([]string, len(d.Members))
	failed := false
	for i, md := range d.Members {
		out, iss := member.node(ctx, md, v, path)
		if len(iss) > 0 {
			failed = true
			first := iss[0]
			lines[i] = fmt.Sprintf("member %d: %s at %s", i, first.messageOrCode(), first.Path)
			continue
		}
		outs[i] = out
		lines[i] = fmt.Sprintf("member %d: ok", i)
	}
	if failed {
		return nil, Issues{{
			Path:     path,
			Code:     CodeIntersectionMember,
			Message:  i18n.T(CodeIntersectionMember, nil) + ": " + strings.Join(lines, "; "),
			Expected: "all of " + memberKinds(d.Members),
			Received: received(v),
			Value:    v,
			Params:   map[string]any{"members": lines},
		}}
	}

	merged, allObjects := mergeObjects(outs)
	if !allObjects {
		return outs[0], nil
	}

	if s.opt.Unknown == UnknownAllow {
		// Members ran with stripping, so keys unknown to every member are
		// restored from the input here.
		if m, ok := v.(map[string]any); ok {
			for k, val := range m {
				if _, ok := merged[k]; !ok {
					merged[k] = val
				}
			}
		}
	}

	if s.opt.Unknown == UnknownStrict {
		if m, ok := v.(map[string]any); ok {
			var iss Issues
			var extra []string
			for k := range m {
				if _, ok := merged[k]; !ok {
					extra = append(extra, k)
				}
			}
			sort.Strings(extra)
			for _, k := range extra {
				iss = AppendIssues(iss, Issue{
					Path: joinPath(path, k), Code: CodeUnknownKey,
					Message: i18n.T(CodeUnknownKey, nil),
					Value:   m[k],
					Params:  map[string]any{"key": k},
				})
				if !s.opt.CollectAll {
					return nil, iss
				}
			}
			if len(iss) > 0 {
				return nil, iss
			}
		}
	}
	return merged, nil
}

// mergeObjects merges member outputs right-most wins. allObjects is false
// when any member produced a non-object result.
func mergeObjects(outs []any) (map[string]any, bool) {
	merged := make(map[string]any)
	for _, o := range outs {
		m, ok := o.(map[string]any)
		if !ok {
			return nil, false
		}
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged, true
}

func (s *state) referenceNode(ctx context.Context, d *Descriptor, v any, path string) (any, Issues) {
	var props []Property
	ok := false
	var names []string
	if s.reg != nil {
		props, ok = s.reg.Resolve(d.Ref)
		if !ok {
			names = s.reg.Names()
		}
	}
	if !ok {
		return nil, Issues{{
			Path:     path,
			Code:     CodeUnresolvedRef,
			Message:  i18n.T(CodeUnresolvedRef, nil) + ": " + fmt.Sprintf("%q", d.Ref),
			Expected: "registered schema",
			Received: fmt.Sprintf("unknown reference %q", d.Ref),
			Hint:     availableHint(names),
		}}
	}
	return s.node(ctx, descriptorForSchema(props), v, path)
}

func memberKinds(members []*Descriptor) string {
	kinds := make([]string, len(members))
	for i, m := range members {
		if m == nil {
			kinds[i] = "invalid"
			continue
		}
		kinds[i] = m.Kind.String()
	}
	return "[" + strings.Join(kinds, ", ") + "]"
}
