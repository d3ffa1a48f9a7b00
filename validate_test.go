package skematic_test

import (
	"context"
	"math"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	skematic "github.com/skematic/skematic"
	g "github.com/skematic/skematic/dsl"
	"github.com/skematic/skematic/transform"
)

func userDescriptor() *skematic.Descriptor {
	return g.Object().
		Field("id", g.Number()).
		Field("name", g.String()).
		Field("email", g.String()).
		Optional("email").
		Build()
}

func TestValidate_ObjectHappyPath(t *testing.T) {
	ctx := context.Background()

	in := map[string]any{"id": float64(1), "name": "Ann"}
	out, err := skematic.Validate(ctx, userDescriptor(), in)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected object output, got %#v", out)
	}
	if m["id"] != float64(1) || m["name"] != "Ann" {
		t.Fatalf("output differs from input: %#v", m)
	}
}

func TestValidate_TypeMismatchWithoutTransform(t *testing.T) {
	ctx := context.Background()

	in := map[string]any{"id": "1", "name": "Ann"}
	_, err := skematic.Validate(ctx, userDescriptor(), in)
	if err == nil {
		t.Fatalf("expected error")
	}
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	it := iss[0]
	if it.Path != "/id" || it.Code != skematic.CodeInvalidType {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if it.Expected != "number" || it.Received != "string" {
		t.Fatalf("expected/received not populated: %+v", it)
	}
}

func TestValidate_AutoTransformCoercesString(t *testing.T) {
	ctx := context.Background()

	in := map[string]any{"id": "1", "name": "Ann"}
	out, err := skematic.Validate(ctx, userDescriptor(), in, skematic.ValidateOpt{AutoTransform: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	m := out.(map[string]any)
	if m["id"] != float64(1) {
		t.Fatalf("id not coerced: %#v", m["id"])
	}
	if m["name"] != "Ann" {
		t.Fatalf("name changed: %#v", m["name"])
	}
}

func TestValidate_MissingRequiredProperty(t *testing.T) {
	ctx := context.Background()

	_, err := skematic.Validate(ctx, userDescriptor(), map[string]any{"id": float64(1)})
	if err == nil {
		t.Fatalf("expected error")
	}
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/name" || iss[0].Code != skematic.CodeRequired {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestValidate_OptionalPropertyMayBeAbsent(t *testing.T) {
	ctx := context.Background()

	out, err := skematic.Validate(ctx, userDescriptor(), map[string]any{"id": float64(2), "name": "Bo"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, present := out.(map[string]any)["email"]; present {
		t.Fatalf("absent optional property must stay absent")
	}
}

func TestValidate_UnknownKeyPolicies(t *testing.T) {
	ctx := context.Background()
	in := map[string]any{"id": float64(1), "name": "Ann", "extra": true}

	_, err := skematic.Validate(ctx, userDescriptor(), in)
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeUnknownKey || iss[0].Path != "/extra" {
		t.Fatalf("strict policy should reject unknown key: %v", err)
	}

	out, err := skematic.Validate(ctx, userDescriptor(), in, skematic.ValidateOpt{Unknown: skematic.UnknownStrip})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, present := out.(map[string]any)["extra"]; present {
		t.Fatalf("strip policy should drop unknown key")
	}

	out, err = skematic.Validate(ctx, userDescriptor(), in, skematic.ValidateOpt{Unknown: skematic.UnknownAllow})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.(map[string]any)["extra"] != true {
		t.Fatalf("allow policy should keep unknown key")
	}
}

func TestValidate_NullableAndNull(t *testing.T) {
	ctx := context.Background()

	d := g.Object().Field("nick", g.String().Nullable()).Build()
	out, err := skematic.Validate(ctx, d, map[string]any{"nick": nil})
	if err != nil {
		t.Fatalf("explicit null must satisfy a nullable property: %v", err)
	}
	if v, present := out.(map[string]any)["nick"]; !present || v != nil {
		t.Fatalf("null must be treated as present: %#v", out)
	}

	d2 := g.Object().Field("nick", g.String()).Build()
	_, err = skematic.Validate(ctx, d2, map[string]any{"nick": nil})
	if err == nil {
		t.Fatalf("null must fail a non-nullable string")
	}
}

func TestValidate_ArrayIndexedPaths(t *testing.T) {
	ctx := context.Background()
	d := g.Array(g.Number()).Build()

	in := []any{float64(1), "x", "y"}
	_, err := skematic.Validate(ctx, d, in)
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/1" {
		t.Fatalf("default run should stop at the first element failure: %v", iss)
	}

	_, err = skematic.Validate(ctx, d, in, skematic.ValidateOpt{CollectAll: true})
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 2 {
		t.Fatalf("expected both element failures collected, got %v", iss)
	}
	if iss[0].Path != "/1" || iss[1].Path != "/2" {
		t.Fatalf("indexed paths wrong: %v", iss)
	}
}

func TestValidate_TupleArity(t *testing.T) {
	ctx := context.Background()
	d := g.Tuple(g.String(), g.Number()).Build()

	if _, err := skematic.Validate(ctx, d, []any{"a", float64(1)}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err := skematic.Validate(ctx, d, []any{"a", float64(1), true})
	if err == nil {
		t.Fatalf("surplus element must fail without AllowExtraElements")
	}

	out, err := skematic.Validate(ctx, d, []any{"a", float64(1), true},
		skematic.ValidateOpt{AllowExtraElements: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if arr := out.([]any); len(arr) != 3 || arr[2] != true {
		t.Fatalf("surplus elements must pass through unchecked: %#v", out)
	}

	if _, err := skematic.Validate(ctx, d, []any{"a"}); err == nil {
		t.Fatalf("short tuple must fail")
	}
}

func TestValidate_Primitives(t *testing.T) {
	ctx := context.Background()

	if _, err := skematic.Validate(ctx, g.Number().Build(), math.NaN()); err == nil {
		t.Fatalf("NaN must be rejected")
	}
	if _, err := skematic.Validate(ctx, g.Date().Build(), time.Time{}); err == nil {
		t.Fatalf("zero date must be rejected")
	}
	if _, err := skematic.Validate(ctx, g.Date().Build(), time.Now()); err != nil {
		t.Fatalf("valid date rejected: %v", err)
	}
	if _, err := skematic.Validate(ctx, g.Never().Build(), "anything"); err == nil {
		t.Fatalf("never must always fail")
	}
	if _, err := skematic.Validate(ctx, g.Any().Build(), map[string]any{"free": true}); err != nil {
		t.Fatalf("any must accept anything: %v", err)
	}
	if _, err := skematic.Validate(ctx, g.Literal("on").Build(), "off"); err == nil {
		t.Fatalf("literal mismatch must fail")
	}
	if _, err := skematic.Validate(ctx, g.Literal(float64(1)).Build(), 1); err != nil {
		t.Fatalf("numeric literals compare by value: %v", err)
	}
}

func TestValidate_Constraints(t *testing.T) {
	ctx := context.Background()

	_, err := skematic.Validate(ctx, g.String().MinLen(3).Build(), "ab")
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeTooShort {
		t.Fatalf("expected too_short, got %v", err)
	}

	_, err = skematic.Validate(ctx, g.Number().Min(10).Max(20).Build(), float64(42))
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeTooBig {
		t.Fatalf("expected too_big, got %v", err)
	}

	_, err = skematic.Validate(ctx, g.String().Pattern(`^[a-z]+$`).Build(), "Nope1")
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodePattern {
		t.Fatalf("expected pattern, got %v", err)
	}

	// Constraints run only after the base type check passes.
	_, err = skematic.Validate(ctx, g.String().MinLen(3).Build(), float64(1))
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("expected invalid_type only, got %v", err)
	}
}

func TestValidate_IdempotentOutput(t *testing.T) {
	ctx := context.Background()
	d := userDescriptor()
	opt := skematic.ValidateOpt{AutoTransform: true}

	first, err := skematic.Validate(ctx, d, map[string]any{"id": "7", "name": "Kim"}, opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := skematic.Validate(ctx, d, first, opt)
	if err != nil {
		t.Fatalf("revalidation failed: %v", err)
	}

	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	if string(b1) != string(b2) {
		t.Fatalf("output not idempotent: %s vs %s", b1, b2)
	}
}

func TestValidate_TransformStrategies(t *testing.T) {
	ctx := context.Background()
	d := g.Number().Build()

	// throw (default)
	_, err := skematic.Validate(ctx, d, "not-a-number", skematic.ValidateOpt{AutoTransform: true})
	iss, _ := skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeTransformFailed {
		t.Fatalf("expected transform_failed, got %v", err)
	}

	// skip keeps the original value and lets the structural check report it
	_, err = skematic.Validate(ctx, d, "not-a-number", skematic.ValidateOpt{
		AutoTransform: true,
		Transform:     transform.Strategy{OnError: transform.OnErrorSkip},
	})
	iss, _ = skematic.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != skematic.CodeInvalidType {
		t.Fatalf("skip strategy should surface the structural issue, got %v", err)
	}

	// default substitutes the configured value
	out, err := skematic.Validate(ctx, d, "not-a-number", skematic.ValidateOpt{
		AutoTransform: true,
		Transform:     transform.Strategy{OnError: transform.OnErrorDefault, Default: float64(0)},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != float64(0) {
		t.Fatalf("default not substituted: %#v", out)
	}

	// custom fallback decides
	out, err = skematic.Validate(ctx, d, "not-a-number", skematic.ValidateOpt{
		AutoTransform: true,
		Transform: transform.Strategy{
			OnError:  transform.OnErrorCustom,
			Fallback: func(v any, err error) (any, error) { return float64(-1), nil },
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != float64(-1) {
		t.Fatalf("fallback not applied: %#v", out)
	}
}

func TestValidate_TransformDepthBound(t *testing.T) {
	ctx := context.Background()
	d := g.Object().
		Field("a", g.Object().Field("b", g.Number()).Done()).
		Build()
	opt := skematic.ValidateOpt{
		AutoTransform: true,
		Transform:     transform.Strategy{MaxDepth: 1},
	}

	_, err := skematic.Validate(ctx, d, map[string]any{"a": map[string]any{"b": "1"}}, opt)
	iss, ok := skematic.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected a single issue, got %v", err)
	}
	if iss[0].Path != "/a/b" || iss[0].Code != skematic.CodeTransformFailed {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
	if iss[0].Params["transformCode"] != transform.CodeDepthExceeded {
		t.Fatalf("expected depth guard to trip, got %+v", iss[0].Params)
	}

	// within bounds the nested value still coerces
	out, err := skematic.Validate(ctx, d, map[string]any{"a": map[string]any{"b": "1"}},
		skematic.ValidateOpt{AutoTransform: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.(map[string]any)["a"].(map[string]any)["b"] != float64(1) {
		t.Fatalf("nested coercion missing: %#v", out)
	}
}

func TestValidate_InputNeverMutated(t *testing.T) {
	ctx := context.Background()
	in := map[string]any{"id": "5", "name": "Lee"}

	_, err := skematic.Validate(ctx, userDescriptor(), in, skematic.ValidateOpt{AutoTransform: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if in["id"] != "5" {
		t.Fatalf("input mutated: %#v", in)
	}
}
