// Package transform implements the rule-based value transformation pipeline:
// automatic coercion between runtime kinds, structured parsing, output
// formatting, sanitization, and named custom transformers, with conditional
// rule application and configurable failure recovery. The validation engine
// invokes it per node before structural checks when auto-transformation is
// requested.
package transform
