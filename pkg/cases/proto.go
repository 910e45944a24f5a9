// Package cases holds the row representation of a dataset: the Proto that
// describes row shape, the reference counted copy-on-write Case, and the
// forward-only Reader and Writer used to stream cases between components.
package cases

import (
	"fmt"
	"strconv"
	"strings"
)

// Proto is an immutable ordered list of value widths, one per case index.
// Protos are shared by pointer between every case of a dataset.
type Proto struct {
	widths []int
}

// NewProto returns a prototype with the given widths.
func NewProto(widths ...int) *Proto {
	w := make([]int, len(widths))
	copy(w, widths)
	return &Proto{widths: w}
}

// N returns the number of values in a case of this shape.
func (p *Proto) N() int {
	if p == nil {
		return 0
	}
	return len(p.widths)
}

// Width returns the width at case index i.
func (p *Proto) Width(i int) int { return p.widths[i] }

// Widths returns a copy of the width list.
func (p *Proto) Widths() []int {
	w := make([]int, p.N())
	if p != nil {
		copy(w, p.widths)
	}
	return w
}

// Equal reports whether both prototypes have identical width sequences.
func (p *Proto) Equal(o *Proto) bool {
	if p == o {
		return true
	}
	if p.N() != o.N() {
		return false
	}
	for i := range p.widths {
		if p.widths[i] != o.widths[i] {
			return false
		}
	}
	return true
}

// Insert returns a prototype with a column of width inserted before index.
func (p *Proto) Insert(before, width int) *Proto {
	w := make([]int, 0, p.N()+1)
	if p != nil {
		w = append(w, p.widths[:before]...)
	}
	w = append(w, width)
	if p != nil {
		w = append(w, p.widths[before:]...)
	}
	return &Proto{widths: w}
}

// Remove returns a prototype without columns [first, first+count).
func (p *Proto) Remove(first, count int) *Proto {
	w := make([]int, 0, p.N()-count)
	w = append(w, p.widths[:first]...)
	w = append(w, p.widths[first+count:]...)
	return &Proto{widths: w}
}

// SetWidth returns a prototype whose column i has the new width.
func (p *Proto) SetWidth(i, width int) *Proto {
	q := NewProto(p.widths...)
	q.widths[i] = width
	return q
}

// RowBytes is the encoded size of one case: 8 bytes per number and the
// width for strings.
func (p *Proto) RowBytes() int {
	n := 0
	for _, w := range p.Widths() {
		if w == 0 {
			n += 8
		} else {
			n += w
		}
	}
	return n
}

// String renders the width list, e.g. "[0 8]".
func (p *Proto) String() string {
	parts := make([]string, p.N())
	for i, w := range p.Widths() {
		parts[i] = strconv.Itoa(w)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
