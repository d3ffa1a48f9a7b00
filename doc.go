// Package skematic validates untyped JSON-like values against declared
// structural schemas at runtime and optionally coerces them into the declared
// shape.
//
// A schema is described once as a tree of Descriptor values (or registered by
// name in a Registry) and validated with Validate:
//
//	d := dsl.Object().
//		Field("id", dsl.Number()).
//		Field("name", dsl.String().MinLen(1)).
//		Field("email", dsl.String()).Optional("email").
//		Build()
//
//	out, err := skematic.Validate(ctx, d, value)
//
// Validation is a pure, synchronous recursive descent over the input value:
// no I/O, no mutation of the input, and path-qualified Issues on failure.
// Named schemas resolve through a Registry, which also memoizes the compiled
// validator per name; mutually recursive schemas are legal because references
// resolve lazily at validation time and recursion is bounded by the finite
// input value.
//
// The transform subpackage supplies the coerce/parse/format/sanitize pipeline
// that runs per node before structural checks when auto-transformation is
// enabled.
package skematic
