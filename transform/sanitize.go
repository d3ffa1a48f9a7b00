package transform

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptTagRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	onEventRe   = regexp.MustCompile(`(?i)\s*on\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsURIRe     = regexp.MustCompile(`(?i)javascript\s*:`)
	spacesRe    = regexp.MustCompile(`\s+`)
	multiDotRe  = regexp.MustCompile(`\.{2,}`)
)

// sanitizeValue cleans a string value with the named sanitizer. All sanitize
// rules require a string input.
func sanitizeValue(v any, kind string, params map[string]any) (any, *Error) {
	s, ok := v.(string)
	if !ok {
		return nil, newError("", CodeSanitizeError,
			fmt.Sprintf("sanitize %q requires a string input, got %s", kind, TypeOf(v)), v, kind, nil)
	}
	switch kind {
	case "html":
		return sanitizeHTML(s), nil
	case "alphanumeric":
		keepSpaces, _ := params["keepSpaces"].(bool)
		return sanitizeAlphanumeric(s, keepSpaces), nil
	case "email":
		return sanitizeEmail(s), nil
	case "phone":
		return sanitizePhone(s), nil
	case "trim":
		s = strings.TrimSpace(s)
		if collapse, _ := params["trimInternal"].(bool); collapse {
			s = spacesRe.ReplaceAllString(s, " ")
		}
		return s, nil
	case "lowercase":
		return strings.ToLower(s), nil
	case "uppercase":
		return strings.ToUpper(s), nil
	default:
		return nil, newError("", CodeUnsupported,
			fmt.Sprintf("unsupported sanitizer %q", kind), v, kind, nil)
	}
}

// sanitizeHTML strips script tags, inline event handlers, and javascript:
// URIs. It does not escape the remaining markup.
func sanitizeHTML(s string) string {
	s = scriptTagRe.ReplaceAllString(s, "")
	s = onEventRe.ReplaceAllString(s, "")
	return jsURIRe.ReplaceAllString(s, "")
}

func sanitizeAlphanumeric(s string, keepSpaces bool) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case keepSpaces && unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	if keepSpaces {
		return strings.TrimSpace(spacesRe.ReplaceAllString(b.String(), " "))
	}
	return b.String()
}

// sanitizeEmail lowercases, trims, and collapses consecutive dots in the
// local part. Invalid shapes are returned mostly untouched so validation can
// report them.
func sanitizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return s
	}
	local := strings.Trim(multiDotRe.ReplaceAllString(s[:at], "."), ".")
	return local + "@" + s[at+1:]
}

func sanitizePhone(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
