package clipboard

import (
	"strings"
)

// Paste writes tab separated text into s with its first field at (row, col).
// Each line fills the next row starting again at col; rows past the last
// case are appended. Fields beyond the last variable are ignored. The first
// field that cannot be stored stops the paste and its error is returned,
// leaving the fields before it in place.
func Paste(s Store, row, col int, text string) error {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	for i, line := range strings.Split(text, "\n") {
		r := row + i
		line = strings.TrimSuffix(line, "\r")
		for j, field := range strings.Split(line, "\t") {
			c := col + j
			if c >= s.ColumnCount() {
				break
			}
			for r >= s.RowCount() {
				if err := s.InsertCase(s.RowCount()); err != nil {
					return err
				}
			}
			if err := s.SetString(r, c, field); err != nil {
				return err
			}
		}
	}
	return nil
}
