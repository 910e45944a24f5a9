package format

import (
	"math"
	"strconv"
	"strings"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Input parses text as a value of the variable width s formats. Blank text
// and "." read as SYSMIS for numeric formats. String input is padded or
// truncated to s.W.
func Input(text string, s Spec) (value.Value, error) {
	if s.Type == A {
		return value.String(text, s.W), nil
	}
	t := strings.TrimSpace(text)
	if t == "" || t == "." {
		return value.SystemMissing(), nil
	}

	var (
		f   float64
		err error
	)
	switch s.Type {
	case Comma, Dollar:
		t = strings.ReplaceAll(t, ",", "")
		f, err = parseFloat(dropDollar(t))
	case Dot:
		t = strings.ReplaceAll(t, ".", "")
		f, err = parseFloat(strings.Replace(t, ",", ".", 1))
	case Pct:
		f, err = parseFloat(strings.TrimSpace(strings.TrimSuffix(t, "%")))
	case N:
		f, err = parseDigits(t, s.D)
	default:
		f, err = parseFloat(t)
	}
	if err != nil {
		return value.Value{}, errs.Wrap(err, errs.ErrorTypeConversion, "cannot read "+strconv.Quote(text)+" as "+s.String()).
			WithDetail("format", s.String())
	}
	return value.Number(f), nil
}

// parseFloat accepts a comma decimal separator when the text has exactly one
// comma and no point.
func parseFloat(t string) (float64, error) {
	f, err := strconv.ParseFloat(t, 64)
	if err == nil {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, strconv.ErrSyntax
		}
		return f, nil
	}
	if strings.Count(t, ",") == 1 && !strings.Contains(t, ".") {
		if g, e := strconv.ParseFloat(strings.Replace(t, ",", ".", 1), 64); e == nil {
			return g, nil
		}
	}
	return 0, err
}

func dropDollar(t string) string {
	switch {
	case strings.HasPrefix(t, "$"):
		return t[1:]
	case strings.HasPrefix(t, "-$"):
		return "-" + t[2:]
	}
	return t
}

// parseDigits reads N format input: digits only, d implied decimals.
func parseDigits(t string, d int) (float64, error) {
	for _, r := range t {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, err
	}
	return f / math.Pow10(d), nil
}
