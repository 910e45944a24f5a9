package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Output renders v in exactly s.W columns. Numbers that cannot fit even
// without decimals are shown as asterisks. A value whose kind does not match
// s is rendered with the default format of its width.
func Output(v value.Value, s Spec) string {
	if v.IsNumeric() == s.Type.IsString() {
		s = Default(v.Width())
	}
	if s.Type == A {
		return fitLeft(v.Str(), s.W)
	}
	if v.IsSysMis() {
		return fitRight(".", s.W)
	}
	f := v.Float()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fitRight(strconv.FormatFloat(f, 'f', -1, 64), s.W)
	}

	switch s.Type {
	case E:
		for d := s.D; d >= 0; d-- {
			if out := strconv.FormatFloat(f, 'E', d, 64); len(out) <= s.W {
				return fitRight(out, s.W)
			}
		}
	case N:
		scaled := math.Round(f * math.Pow10(s.D))
		if scaled >= 0 && scaled < math.Pow10(s.W) {
			out := strconv.FormatFloat(scaled, 'f', 0, 64)
			return strings.Repeat("0", s.W-len(out)) + out
		}
	default:
		for d := s.D; d >= 0; d-- {
			if out, ok := fixed(f, s.Type, d, s.W); ok {
				return fitRight(out, s.W)
			}
		}
	}
	return strings.Repeat("*", s.W)
}

// fixed formats f with d decimals in the style of t, dropping grouping when
// it does not fit.
func fixed(f float64, t Type, d, w int) (string, bool) {
	digits := strconv.FormatFloat(f, 'f', d, 64)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	if neg && strings.Trim(digits, "0.") == "" {
		neg = false
	}
	intPart, frac, _ := strings.Cut(digits, ".")

	point, group := ".", ""
	switch t {
	case Comma, Dollar:
		group = ","
	case Dot:
		point, group = ",", "."
	}
	prefix, suffix := "", ""
	if neg {
		prefix = "-"
	}
	switch t {
	case Dollar:
		prefix += "$"
	case Pct:
		suffix = "%"
	}

	build := func(grouped bool) string {
		var b strings.Builder
		b.WriteString(prefix)
		if grouped && group != "" {
			b.WriteString(groupThousands(intPart, group))
		} else {
			b.WriteString(intPart)
		}
		if d > 0 {
			b.WriteString(point)
			b.WriteString(frac)
		}
		b.WriteString(suffix)
		return b.String()
	}
	if out := build(true); len(out) <= w {
		return out, true
	}
	if out := build(false); len(out) <= w {
		return out, true
	}
	return "", false
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func fitRight(s string, w int) string {
	if len(s) >= w {
		return s[len(s)-w:]
	}
	return strings.Repeat(" ", w-len(s)) + s
}

func fitLeft(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}
