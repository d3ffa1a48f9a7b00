package transform

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatValue renders a value into the named output style.
func formatValue(v any, style string, params map[string]any) (any, *Error) {
	switch style {
	case "currency":
		return formatCurrency(v, params)
	case "percentage":
		return formatPercentage(v, params)
	case "date-string":
		return formatDateString(v, params)
	case "title-case":
		return formatTitleCase(v, params)
	case "kebab-case":
		return formatKebabCase(v)
	default:
		return nil, newError("", CodeUnsupported,
			fmt.Sprintf("unsupported format style %q", style), v, style, nil)
	}
}

func localeTag(params map[string]any) language.Tag {
	if loc, ok := params["locale"].(string); ok && loc != "" {
		if tag, err := language.Parse(loc); err == nil {
			return tag
		}
	}
	return language.English
}

func formatCurrency(v any, params map[string]any) (any, *Error) {
	f, err := numberAsFloat(v)
	if err != nil {
		return nil, newError("", CodeFormatFailed, "currency formatting requires a number", v, "currency", err)
	}
	code := "USD"
	if c, ok := params["currency"].(string); ok && c != "" {
		code = c
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, newError("", CodeFormatFailed, fmt.Sprintf("unknown currency %q", code), v, "currency", err)
	}
	p := message.NewPrinter(localeTag(params))
	return p.Sprint(currency.NarrowSymbol(unit.Amount(f))), nil
}

func formatPercentage(v any, params map[string]any) (any, *Error) {
	f, err := numberAsFloat(v)
	if err != nil {
		return nil, newError("", CodeFormatFailed, "percentage formatting requires a number", v, "percentage", err)
	}
	scale := 0
	if s, ok := params["scale"].(int); ok && s >= 0 {
		scale = s
	}
	p := message.NewPrinter(localeTag(params))
	return p.Sprint(number.Percent(f, number.Scale(scale))), nil
}

func formatDateString(v any, params map[string]any) (any, *Error) {
	t, ok := v.(time.Time)
	if !ok {
		// Accept date-like strings by running the date coercer first.
		coerced, cerr := Coerce(v, TargetDate, nil)
		if cerr != nil {
			return nil, newError("", CodeFormatFailed, "date-string formatting requires a date", v, "date-string", cerr)
		}
		t = coerced.(time.Time)
	}
	style, _ := params["style"].(string)
	switch style {
	case "", "iso":
		return t.Format(time.RFC3339), nil
	case "locale":
		return t.Format("January 2, 2006"), nil
	case "custom":
		layout, _ := params["format"].(string)
		if layout == "" {
			layout = "YYYY-MM-DD"
		}
		return t.Format(goLayout(layout)), nil
	default:
		return nil, newError("", CodeFormatFailed,
			fmt.Sprintf("unsupported date style %q", style), v, "date-string", nil)
	}
}

// goLayout translates YYYY-MM-DD style tokens into a Go reference layout.
func goLayout(layout string) string {
	r := strings.NewReplacer(
		"YYYY", "2006",
		"MM", "01",
		"DD", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
	)
	return r.Replace(layout)
}

func formatTitleCase(v any, params map[string]any) (any, *Error) {
	s, ok := v.(string)
	if !ok {
		return nil, newError("", CodeFormatFailed, "title-case requires a string", v, "title-case", nil)
	}
	return cases.Title(localeTag(params)).String(s), nil
}

func formatKebabCase(v any) (any, *Error) {
	s, ok := v.(string)
	if !ok {
		return nil, newError("", CodeFormatFailed, "kebab-case requires a string", v, "kebab-case", nil)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prevDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-"), nil
}
