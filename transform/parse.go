package transform

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// parseValue structurally parses a string into the named format. All parse
// rules require a string input.
func parseValue(v any, format string, params map[string]any) (any, *Error) {
	s, ok := v.(string)
	if !ok {
		return nil, newError("", CodeParseFailed,
			fmt.Sprintf("parse %q requires a string input, got %s", format, TypeOf(v)), v, format, nil)
	}
	switch format {
	case "json":
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, newError("", CodeParseFailed, "invalid JSON: "+err.Error(), v, format, err)
		}
		return out, nil
	case "csv":
		return parseCSV(s, params)
	case "url":
		return parseURL(s)
	case "email":
		return parseEmail(s)
	case "phone":
		return parsePhone(s)
	default:
		return nil, newError("", CodeUnsupported,
			fmt.Sprintf("unsupported parse format %q", format), v, format, nil)
	}
}

func parseCSV(s string, params map[string]any) (any, *Error) {
	r := csv.NewReader(strings.NewReader(s))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, newError("", CodeParseFailed, "invalid CSV: "+err.Error(), s, "csv", err)
	}
	header, _ := params["header"].(bool)
	if !header {
		out := make([]any, 0, len(records))
		for _, rec := range records {
			row := make([]any, 0, len(rec))
			for _, c := range rec {
				row = append(row, c)
			}
			out = append(out, row)
		}
		return out, nil
	}
	if len(records) == 0 {
		return []any{}, nil
	}
	cols := records[0]
	out := make([]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func parseURL(s string) (any, *Error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, newError("", CodeParseFailed, fmt.Sprintf("invalid URL %q", s), s, "url", err)
	}
	return map[string]any{
		"scheme":   u.Scheme,
		"host":     u.Host,
		"path":     u.Path,
		"query":    u.RawQuery,
		"fragment": u.Fragment,
		"full":     u.String(),
	}, nil
}

func parseEmail(s string) (any, *Error) {
	addr := strings.TrimSpace(strings.ToLower(s))
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 || !strings.Contains(addr[at+1:], ".") {
		return nil, newError("", CodeParseFailed, fmt.Sprintf("invalid email %q", s), s, "email", nil)
	}
	return map[string]any{
		"localPart": addr[:at],
		"domain":    addr[at+1:],
		"full":      addr,
	}, nil
}

func parsePhone(s string) (any, *Error) {
	raw := strings.TrimSpace(s)
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if len(cleaned) < 7 {
		return nil, newError("", CodeParseFailed, fmt.Sprintf("invalid phone number %q", s), s, "phone", nil)
	}
	international := "+" + cleaned
	return map[string]any{
		"raw":           raw,
		"cleaned":       cleaned,
		"international": international,
	}, nil
}
