package cases

import (
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Map projects cases of one prototype onto a narrower or reordered one. Entry
// i of the map names the source case index that feeds destination index i.
type Map struct {
	src   []int
	proto *Proto
}

// NewMap returns a map producing cases of shape dst from the listed source
// case indices. len(src) must equal dst.N().
func NewMap(dst *Proto, src []int) *Map {
	s := make([]int, len(src))
	copy(s, src)
	return &Map{src: s, proto: dst}
}

// Proto returns the destination prototype.
func (m *Map) Proto() *Proto { return m.proto }

// Source returns the source case index feeding destination index i.
func (m *Map) Source(i int) int { return m.src[i] }

// Execute builds a new destination case from c.
func (m *Map) Execute(c *Case) *Case {
	vals := make([]value.Value, len(m.src))
	for i, s := range m.src {
		vals[i] = c.Value(s)
	}
	n := New(m.proto)
	for i, v := range vals {
		n.RawSet(i, v)
	}
	return n
}
