package dictionary

import (
	json "github.com/goccy/go-json"

	"github.com/ajitpratap0/casesheet/pkg/value"
)

type variableJSON struct {
	Name         string           `json:"name"`
	Width        int              `json:"width"`
	CaseIndex    int              `json:"case_index"`
	Print        string           `json:"print_format"`
	Write        string           `json:"write_format"`
	DisplayWidth int              `json:"display_width"`
	Alignment    string           `json:"alignment"`
	Measure      string           `json:"measure"`
	Label        string           `json:"label,omitempty"`
	ValueLabels  []valueLabelJSON `json:"value_labels,omitempty"`
	Missing      *missingJSON     `json:"missing,omitempty"`
}

type valueLabelJSON struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

type missingJSON struct {
	Values []any     `json:"values,omitempty"`
	Range  []float64 `json:"range,omitempty"`
}

type dictionaryJSON struct {
	Variables []variableJSON `json:"variables"`
	Filter    string         `json:"filter,omitempty"`
}

func jsonValue(v value.Value) any {
	if v.IsNumeric() {
		if v.IsSysMis() {
			return nil
		}
		return v.Float()
	}
	return v.Str()
}

func (v *Variable) toJSON() variableJSON {
	out := variableJSON{
		Name:         v.name,
		Width:        v.width,
		CaseIndex:    v.caseIndex,
		Print:        v.print.String(),
		Write:        v.write.String(),
		DisplayWidth: v.displayWidth,
		Alignment:    v.align.String(),
		Measure:      v.measure.String(),
		Label:        v.label,
	}
	for _, l := range v.labels.Sorted() {
		out.ValueLabels = append(out.ValueLabels, valueLabelJSON{Value: jsonValue(l.Value), Label: l.Label})
	}
	if !v.missing.IsEmpty() {
		m := &missingJSON{}
		for _, x := range v.missing.values {
			m.Values = append(m.Values, jsonValue(x))
		}
		if lo, hi, ok := v.missing.Range(); ok {
			m.Range = []float64{lo, hi}
		}
		out.Missing = m
	}
	return out
}

// MarshalJSON encodes the variables in display order.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	out := dictionaryJSON{Variables: make([]variableJSON, 0, len(d.vars))}
	for _, v := range d.vars {
		out.Variables = append(out.Variables, v.toJSON())
	}
	if d.filter != nil {
		out.Filter = d.filter.name
	}
	return json.Marshal(out)
}
