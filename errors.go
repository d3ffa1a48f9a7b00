package skematic

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeTooShort             = "too_short"
	CodeTooLong              = "too_long"
	CodePattern              = "pattern"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidLiteral       = "invalid_literal"
	CodeInvalidDate          = "invalid_date"
	CodeNotANumber           = "not_a_number"
	CodeNever                = "never"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeUnionNoMatch         = "union_no_match"
	CodeIntersectionMember   = "intersection_member"
	CodeUnresolvedRef        = "unresolved_ref"
	CodeTransformFailed      = "transform_failed"
	CodeParseError           = "parse_error"
)

// Issue represents a single validation failure.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string `json:"code"` // One of the codes listed above.
	Message string `json:"message"`
	// Expected/Received describe the shape mismatch in human terms.
	Expected string `json:"expected,omitempty"`
	Received string `json:"received,omitempty"`
	// Value is the offending input value; it is never mutated or logged by
	// the engine.
	Value any    `json:"value,omitempty"`
	Hint  string `json:"hint,omitempty"`
	Cause error  `json:"-"`
	// Params carries structured parameters (e.g., {"min":1, "got":42})
	// for i18n and observability.
	Params map[string]any `json:"params,omitempty"`
}

// Issues is a collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// JSON renders the issues as a structured JSON document.
func (iss Issues) JSON() ([]byte, error) { return json.Marshal([]Issue(iss)) }

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// joinPath appends a property name or index segment to a JSON Pointer.
func joinPath(base, segment string) string {
	if base == "" || base == "/" {
		return "/" + segment
	}
	return base + "/" + segment
}

// pathDepth counts the segments of a JSON Pointer; used to rank union branch
// candidates.
func pathDepth(p string) int {
	if p == "" || p == "/" {
		return 0
	}
	return strings.Count(p, "/")
}
