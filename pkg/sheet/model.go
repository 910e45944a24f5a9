// Package sheet adapts the dictionary and the datasheet to the row, column
// and cell accessors a spreadsheet view needs.
//
// DataStore shows one row per case and one column per variable. VarStore
// shows one row per variable and one column per variable attribute. Both
// implement Model and translate the changes below them into notify events
// in their own row and column space.
package sheet

import (
	"strings"

	"github.com/ajitpratap0/casesheet/pkg/dictionary"
	"github.com/ajitpratap0/casesheet/pkg/notify"
)

// Justification is the horizontal placement of cell text.
type Justification int

const (
	JustifyLeft Justification = iota
	JustifyRight
	JustifyCenter
)

// Model is the capability set a sheet view relies on. Rows and columns are
// display positions.
type Model interface {
	RowCount() int
	ColumnCount() int
	GetString(row, col int) (string, error)
	SetString(row, col int, text string) error
	Clear(row, col int) error
	IsEditable(row, col int) bool
	RowTitle(row int) string
	ColumnTitle(col int) string
	RowSensitive(row int) bool
	ColumnSensitive(col int) bool
	ColumnJustification(col int) Justification
	Subscribe(o notify.Observer) *notify.Subscription
}

var (
	_ Model = (*DataStore)(nil)
	_ Model = (*VarStore)(nil)
)

func justify(a dictionary.Alignment) Justification {
	switch a {
	case dictionary.AlignRight:
		return JustifyRight
	case dictionary.AlignCenter:
		return JustifyCenter
	}
	return JustifyLeft
}

func chomp(s string) string { return strings.TrimRight(s, " \t\r\n") }
