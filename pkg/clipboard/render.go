package clipboard

import (
	"html"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/format"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// each calls fn for every copied cell in row order. A cell that cannot be
// read ends the walk.
func (s *Snapshot) each(fn func(row, col int, v *dictionary.Variable, val value.Value)) error {
	if s.taken {
		return errs.New(errs.ErrorTypeConsumed, "clipboard cases already taken")
	}
	vars := s.dict.Vars()
	for row := 0; row < s.cases.Rows(); row++ {
		for col, v := range vars {
			val, err := s.cases.Value(row, v.CaseIndex())
			if err != nil {
				s.log.Warn("clipboard cell unreadable", zap.Int("row", row), zap.Int("column", col), zap.Error(err))
				return err
			}
			fn(row, col, v, val)
		}
	}
	return nil
}

func cellText(v *dictionary.Variable, val value.Value) string {
	return strings.TrimSpace(format.Output(val, v.PrintFormat()))
}

// Text renders the copied cells with their print formats, tab separated,
// one newline terminated line per case.
func (s *Snapshot) Text() (string, error) {
	var b strings.Builder
	last := s.dict.VarCount() - 1
	err := s.each(func(_, col int, v *dictionary.Variable, val value.Value) {
		b.WriteString(cellText(v, val))
		if col < last {
			b.WriteByte('\t')
		} else {
			b.WriteByte('\n')
		}
	})
	return b.String(), err
}

// HTML renders the copied cells as a table.
func (s *Snapshot) HTML() (string, error) {
	var b strings.Builder
	b.WriteString("<meta http-equiv=\"Content-Type\" content=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<table>\n")
	last := s.dict.VarCount() - 1
	err := s.each(func(_, col int, v *dictionary.Variable, val value.Value) {
		if col == 0 {
			b.WriteString("<tr>\n")
		}
		b.WriteString("<td>")
		b.WriteString(html.EscapeString(cellText(v, val)))
		b.WriteString("</td>\n")
		if col == last {
			b.WriteString("</tr>\n")
		}
	})
	b.WriteString("</table>\n")
	return b.String(), err
}

type snapshotJSON struct {
	Dictionary *dictionary.Dictionary `json:"dictionary"`
	Rows       [][]any                `json:"rows"`
}

// JSON encodes the dictionary and the raw values of the copied cases.
// System-missing numbers are null and strings lose their padding.
func (s *Snapshot) JSON() ([]byte, error) {
	out := snapshotJSON{Dictionary: s.dict, Rows: [][]any{}}
	var row []any
	last := s.dict.VarCount() - 1
	err := s.each(func(_, col int, _ *dictionary.Variable, val value.Value) {
		switch {
		case !val.IsNumeric():
			row = append(row, strings.TrimRight(val.Str(), " "))
		case val.IsSysMis():
			row = append(row, nil)
		default:
			row = append(row, val.Float())
		}
		if col == last {
			out.Rows = append(out.Rows, row)
			row = nil
		}
	})
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrorTypeIO, "failed to encode clipboard")
	}
	return data, nil
}
