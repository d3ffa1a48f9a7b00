package skematic_test

import (
	"context"
	"strings"
	"testing"

	skematic "github.com/skematic/skematic"
	g "github.com/skematic/skematic/dsl"
)

func TestUnion_LiteralSetMembership(t *testing.T) {
	ctx := context.Background()
	d := g.Union(g.Literal("success"), g.Literal("error"), g.Literal("pending")).Build()

	if _, err := skematic.Validate(ctx, d, "pending"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err := skematic.Validate(ctx, d, "unknown")
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 {
		t.Fatalf("expected a single issue, got %v", err)
	}
	it := iss[0]
	// The all-literal fast path reports a set-membership failure, not a
	// per-member union aggregate.
	if it.Code != skematic.CodeInvalidEnum {
		t.Fatalf("expected invalid_enum from the literal fast path, got %q", it.Code)
	}
	allowed, _ := it.Params["allowed"].([]string)
	want := []string{`"error"`, `"pending"`, `"success"`}
	if len(allowed) != len(want) {
		t.Fatalf("allowed set wrong: %v", allowed)
	}
	for i := range want {
		if allowed[i] != want[i] {
			t.Fatalf("allowed set not sorted: %v", allowed)
		}
	}
}

func TestUnion_FirstSuccessWins(t *testing.T) {
	ctx := context.Background()
	d := g.Union(g.Number(), g.String()).Build()

	out, err := skematic.Validate(ctx, d, "hello")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "hello" {
		t.Fatalf("unexpected value: %#v", out)
	}
}

func TestUnion_AggregateFailure(t *testing.T) {
	ctx := context.Background()
	d := g.Union(
		g.Object().Field("id", g.Number()).Done(),
		g.Bool(),
	).Build()

	_, err := skematic.Validate(ctx, d, "neither")
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeUnionNoMatch {
		t.Fatalf("expected union_no_match, got %v", err)
	}
	it := iss[0]
	if !strings.Contains(it.Message, "option 0:") || !strings.Contains(it.Message, "option 1:") {
		t.Fatalf("aggregate message must enumerate options: %q", it.Message)
	}
	if _, ok := it.Params["best"]; !ok {
		t.Fatalf("best candidate missing: %+v", it)
	}
}

func TestUnion_DiscriminatedDispatch(t *testing.T) {
	ctx := context.Background()

	card := g.Object().
		Field("type", g.String()).
		Field("number", g.String()).
		Done()
	bank := g.Object().
		Field("type", g.String()).
		Field("iban", g.String()).
		Done()
	d := g.DiscriminatedUnion("type", map[string]*g.Builder{
		"card": card,
		"bank": bank,
	}).Build()

	out, err := skematic.Validate(ctx, d, map[string]any{"type": "card", "number": "4111"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.(map[string]any)["number"] != "4111" {
		t.Fatalf("unexpected value: %#v", out)
	}

	// wrong variant shape fails inside the dispatched branch
	_, err = skematic.Validate(ctx, d, map[string]any{"type": "bank", "number": "4111"})
	if err == nil {
		t.Fatalf("expected missing iban failure")
	}
}

func TestUnion_DiscriminatorMissingAndUnknown(t *testing.T) {
	ctx := context.Background()
	d := g.DiscriminatedUnion("kind", map[string]*g.Builder{
		"b": g.Object().Field("kind", g.String()).Done(),
		"a": g.Object().Field("kind", g.String()).Done(),
	}).Build()

	_, err := skematic.Validate(ctx, d, map[string]any{})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeDiscriminatorMissing {
		t.Fatalf("expected discriminator_missing, got %v", err)
	}

	_, err = skematic.Validate(ctx, d, map[string]any{"kind": "c"})
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeDiscriminatorUnknown {
		t.Fatalf("expected discriminator_unknown, got %v", err)
	}
	valid, _ := iss[0].Params["valid"].([]string)
	if len(valid) != 2 || valid[0] != "a" || valid[1] != "b" {
		t.Fatalf("valid discriminants must be listed sorted: %v", valid)
	}
}

func TestUnion_DiscriminatorNonStringTag(t *testing.T) {
	ctx := context.Background()
	d := g.DiscriminatedUnion("version", map[string]*g.Builder{
		"1": g.Object().Field("version", g.Number()).Field("v", g.Number()).Done(),
	}).Build()

	// numeric tags stringify and still dispatch
	out, err := skematic.Validate(ctx, d, map[string]any{"version": float64(1), "v": float64(2)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.(map[string]any)["v"] != float64(2) {
		t.Fatalf("unexpected value: %#v", out)
	}

	// a present but unrecognized tag is unknown, not missing
	_, err = skematic.Validate(ctx, d, map[string]any{"version": true})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeDiscriminatorUnknown {
		t.Fatalf("expected discriminator_unknown, got %v", err)
	}
}

func TestIntersection_MergeAndFailure(t *testing.T) {
	ctx := context.Background()
	d := g.Intersection(
		g.Object().Field("name", g.String()).Done(),
		g.Object().Field("age", g.Number()).Done(),
	).Build()

	out, err := skematic.Validate(ctx, d, map[string]any{"name": "Jo", "age": float64(30)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := out.(map[string]any)
	if m["name"] != "Jo" || m["age"] != float64(30) {
		t.Fatalf("merged output wrong: %#v", m)
	}

	_, err = skematic.Validate(ctx, d, map[string]any{"name": "Jo", "age": "x"})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeIntersectionMember {
		t.Fatalf("expected intersection_member, got %v", err)
	}
	msg := iss[0].Message
	if !strings.Contains(msg, "member 0:") || !strings.Contains(msg, "member 1:") {
		t.Fatalf("composite must name both evaluated members: %q", msg)
	}
}

func TestIntersection_UnknownKeyStillStrict(t *testing.T) {
	ctx := context.Background()
	d := g.Intersection(
		g.Object().Field("name", g.String()).Done(),
		g.Object().Field("age", g.Number()).Done(),
	).Build()

	_, err := skematic.Validate(ctx, d, map[string]any{"name": "Jo", "age": float64(1), "x": true})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeUnknownKey || iss[0].Path != "/x" {
		t.Fatalf("keys unknown to every member must still fail strict mode: %v", err)
	}
}

func TestIntersection_UnknownAllowKeepsExtras(t *testing.T) {
	ctx := context.Background()
	d := g.Intersection(
		g.Object().Field("name", g.String()).Done(),
		g.Object().Field("age", g.Number()).Done(),
	).Build()

	out, err := skematic.Validate(ctx, d, map[string]any{"name": "Jo", "age": float64(1), "x": true},
		skematic.ValidateOpt{Unknown: skematic.UnknownAllow})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := out.(map[string]any)
	if m["x"] != true {
		t.Fatalf("allow mode must keep keys unknown to every member: %#v", m)
	}
	if m["name"] != "Jo" || m["age"] != float64(1) {
		t.Fatalf("merged output wrong: %#v", m)
	}
}

func TestUnion_RightmostWinsOnIntersectionCollision(t *testing.T) {
	ctx := context.Background()
	d := g.Intersection(
		g.Object().Field("v", g.Any()).Done(),
		g.Object().Field("v", g.Any()).Field("w", g.Any()).Done(),
	).Build()

	out, err := skematic.Validate(ctx, d, map[string]any{"v": "kept", "w": float64(2)},
		skematic.ValidateOpt{Unknown: skematic.UnknownAllow})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.(map[string]any)["v"] != "kept" {
		t.Fatalf("merge lost the colliding key: %#v", out)
	}
}
