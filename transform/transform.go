package transform

import (
	"context"
	"fmt"
	"regexp"
	"time"

	json "github.com/goccy/go-json"
)

// Target names the runtime shape a value should take after transformation.
type Target string

const (
	TargetString  Target = "string"
	TargetNumber  Target = "number"
	TargetBoolean Target = "boolean"
	TargetDate    Target = "date"
	TargetArray   Target = "array"
	TargetObject  Target = "object"
	TargetAny     Target = "any"
)

// Op identifies a rule kind in the pipeline.
type Op string

const (
	OpCoerce   Op = "coerce"
	OpParse    Op = "parse"
	OpFormat   Op = "format"
	OpSanitize Op = "sanitize"
	OpCustom   Op = "custom"
)

// Error codes reported by the transformation engine.
const (
	CodeUnsupported   = "unsupported_transform"
	CodeCoerceFailed  = "coerce_failed"
	CodeParseFailed   = "parse_failed"
	CodeFormatFailed  = "format_failed"
	CodeSanitizeError = "sanitize_failed"
	CodeCustomFailed  = "custom_failed"
	CodeNoTransformer = "no_transformer"
	CodeDepthExceeded = "depth_exceeded"
)

// DefaultMaxDepth bounds nested transformation recursion per call.
const DefaultMaxDepth = 10

// Rule is one step of a transformation chain. Target names the op-specific
// goal: a Target kind for coerce, a parse format ("json", "csv", "url",
// "email", "phone"), a format style ("currency", "percentage", "date-string",
// "title-case", "kebab-case"), a sanitizer ("html", "alphanumeric", "email",
// "phone", "trim", "lowercase", "uppercase"), or a registered custom
// transformer name.
type Rule struct {
	Op        Op
	Target    string
	Params    map[string]any
	Condition *Condition
}

// Condition gates a rule. An unmet condition skips the rule without recording
// it as applied. Empty SourceTypes (or one containing TargetAny) matches any
// runtime type.
type Condition struct {
	SourceTypes  []Target
	ValuePattern *regexp.Regexp
	Predicate    func(v any) bool
}

// When builds a condition matching the given source types.
func When(types ...Target) *Condition { return &Condition{SourceTypes: types} }

// WhenPattern builds a condition matching string values against pattern.
func WhenPattern(pattern string) *Condition {
	return &Condition{ValuePattern: regexp.MustCompile(pattern)}
}

// WhenValue builds a condition from an arbitrary predicate over the value.
func WhenValue(pred func(v any) bool) *Condition { return &Condition{Predicate: pred} }

func (c *Condition) met(v any) bool {
	if c == nil {
		return true
	}
	if len(c.SourceTypes) > 0 {
		typeOK := false
		st := TypeOf(v)
		for _, t := range c.SourceTypes {
			if t == TargetAny || t == st {
				typeOK = true
				break
			}
		}
		if !typeOK {
			return false
		}
	}
	if c.ValuePattern != nil {
		s, ok := v.(string)
		if !ok || !c.ValuePattern.MatchString(s) {
			return false
		}
	}
	if c.Predicate != nil && !c.Predicate(v) {
		return false
	}
	return true
}

// Spec is the per-descriptor transformation request. Pre rules run before
// automatic coercion, Post rules after; Custom names a registered transformer
// applied between the two.
type Spec struct {
	Auto   bool
	Pre    []Rule
	Post   []Rule
	Custom string
}

// OnError selects the recovery strategy for a failed transformation.
type OnError string

const (
	OnErrorThrow   OnError = "throw"
	OnErrorSkip    OnError = "skip"
	OnErrorDefault OnError = "default"
	OnErrorCustom  OnError = "custom"
)

// Strategy is the caller-level transformation configuration.
type Strategy struct {
	OnError  OnError
	Default  any
	Fallback func(v any, err error) (any, error)
	MaxDepth int
	FailFast bool
	// NoChaining stops the pipeline after the first rule that applies,
	// instead of feeding each rule's output into the next.
	NoChaining bool
}

// Result carries the transformed value and the names of the rules that
// actually ran, in application order.
type Result struct {
	Value   any
	Applied []string
}

// Error reports a transformation failure with enough context to render and
// serialize it.
type Error struct {
	Path        string `json:"path"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	SourceValue any    `json:"sourceValue,omitempty"`
	Target      string `json:"target,omitempty"`
	Cause       error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Path != "" && e.Path != "/" {
		return fmt.Sprintf("transform: %s at %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("transform: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(path, code, msg string, src any, target string, cause error) *Error {
	return &Error{Path: path, Code: code, Message: msg, SourceValue: src, Target: target, Cause: cause}
}

// TypeOf reports the runtime Target kind of a JSON-like value.
func TypeOf(v any) Target {
	switch v.(type) {
	case string:
		return TargetString
	case bool:
		return TargetBoolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return TargetNumber
	case time.Time:
		return TargetDate
	case []any:
		return TargetArray
	case map[string]any:
		return TargetObject
	default:
		return TargetAny
	}
}

// Apply runs the full pipeline for one value: pre rules, automatic coercion
// toward target when the runtime type still differs, the named custom
// transformer, then post rules. nil values bypass transformation entirely;
// presence and nullability are the structural validator's concern.
func Apply(ctx context.Context, v any, target Target, spec *Spec, st Strategy, path string, depth int) (Result, *Error) {
	res := Result{Value: v}
	if v == nil {
		return res, nil
	}
	maxDepth := st.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if depth > maxDepth {
		return res, newError(path, CodeDepthExceeded,
			fmt.Sprintf("transformation recursion exceeded depth %d", maxDepth), v, string(target), nil)
	}

	var lastErr *Error
	var pre, post []Rule
	custom := ""
	if spec != nil {
		pre, post, custom = spec.Pre, spec.Post, spec.Custom
	}

	runChain := func(rules []Rule) *Error {
		for _, r := range rules {
			if st.NoChaining && len(res.Applied) > 0 {
				return nil
			}
			if !r.Condition.met(res.Value) {
				continue
			}
			out, err := applyRule(ctx, res.Value, r, path)
			if err != nil {
				if st.FailFast {
					return err
				}
				lastErr = err
				continue
			}
			res.Value = out
			res.Applied = append(res.Applied, string(r.Op)+":"+r.Target)
		}
		return nil
	}

	if err := runChain(pre); err != nil {
		return res, err
	}

	if target != TargetAny && TypeOf(res.Value) != target {
		out, err := Coerce(res.Value, target, nil)
		if err != nil {
			if st.FailFast {
				return res, err.withPath(path)
			}
			lastErr = err.withPath(path)
		} else {
			res.Value = out
			res.Applied = append(res.Applied, "coerce:"+string(target))
		}
	}

	if custom != "" && !(st.NoChaining && len(res.Applied) > 0) {
		out, applied, err := applyCustom(ctx, res.Value, custom, path, nil)
		if err != nil {
			if st.FailFast {
				return res, err
			}
			lastErr = err
		} else if applied {
			res.Value = out
			res.Applied = append(res.Applied, "custom:"+custom)
		}
	}

	if err := runChain(post); err != nil {
		return res, err
	}

	// The chain as a whole fails only when the value never reached the target
	// shape; a later rule may have recovered an earlier failure.
	if lastErr != nil && target != TargetAny && TypeOf(res.Value) != target {
		return res, lastErr
	}
	return res, nil
}

// Recover resolves a failed transformation according to the strategy.
// It returns the value structural validation should proceed with, or the
// terminal error when the strategy is (or defaults to) throw.
func Recover(original any, res Result, err *Error, st Strategy) (any, *Error) {
	if err == nil {
		return res.Value, nil
	}
	switch st.OnError {
	case OnErrorSkip:
		return original, nil
	case OnErrorDefault:
		return st.Default, nil
	case OnErrorCustom:
		if st.Fallback != nil {
			out, ferr := st.Fallback(original, err)
			if ferr != nil {
				return nil, newError(err.Path, CodeCustomFailed, ferr.Error(), original, err.Target, ferr)
			}
			return out, nil
		}
		return nil, err
	default: // throw, including unrecognized strategies
		return nil, err
	}
}

func applyRule(ctx context.Context, v any, r Rule, path string) (any, *Error) {
	switch r.Op {
	case OpCoerce:
		out, err := Coerce(v, Target(r.Target), r.Params)
		if err != nil {
			return nil, err.withPath(path)
		}
		return out, nil
	case OpParse:
		out, err := parseValue(v, r.Target, r.Params)
		if err != nil {
			return nil, err.withPath(path)
		}
		return out, nil
	case OpFormat:
		out, err := formatValue(v, r.Target, r.Params)
		if err != nil {
			return nil, err.withPath(path)
		}
		return out, nil
	case OpSanitize:
		out, err := sanitizeValue(v, r.Target, r.Params)
		if err != nil {
			return nil, err.withPath(path)
		}
		return out, nil
	case OpCustom:
		out, applied, err := applyCustom(ctx, v, r.Target, path, r.Params)
		if err != nil {
			return nil, err
		}
		if !applied {
			return v, nil
		}
		return out, nil
	default:
		return nil, newError(path, CodeUnsupported, fmt.Sprintf("unsupported rule op %q", r.Op), v, r.Target, nil)
	}
}

func (e *Error) withPath(path string) *Error {
	if e.Path == "" {
		e.Path = path
	}
	return e
}
