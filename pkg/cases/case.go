package cases

import (
	"sync/atomic"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Case is one row of a dataset. Cases are reference counted: Ref shares a
// case with another owner, and an owner that wants to modify a shared case
// must call Unshare first, which clones it. A case visible to a reader or a
// clipboard snapshot is therefore never changed underneath it.
type Case struct {
	proto *Proto
	refs  atomic.Int32
	vals  []value.Value
}

// New creates an all-missing case of the given shape with one reference.
func New(proto *Proto) *Case {
	c := &Case{proto: proto, vals: make([]value.Value, proto.N())}
	for i := range c.vals {
		c.vals[i] = value.Missing(proto.Width(i))
	}
	c.refs.Store(1)
	return c
}

// FromValues builds a case from vals, which must match proto exactly.
func FromValues(proto *Proto, vals ...value.Value) (*Case, error) {
	if len(vals) != proto.N() {
		return nil, errs.Newf(errs.ErrorTypeShape, "case has %d values, prototype %s has %d", len(vals), proto, proto.N())
	}
	for i, v := range vals {
		if v.Width() != proto.Width(i) {
			return nil, errs.Newf(errs.ErrorTypeShape, "value %d has width %d, prototype wants %d", i, v.Width(), proto.Width(i))
		}
	}
	c := &Case{proto: proto, vals: make([]value.Value, len(vals))}
	copy(c.vals, vals)
	c.refs.Store(1)
	return c, nil
}

// MustFromValues is FromValues that panics on a shape mismatch.
func MustFromValues(proto *Proto, vals ...value.Value) *Case {
	c, err := FromValues(proto, vals...)
	if err != nil {
		panic(err)
	}
	return c
}

// Proto returns the shape of the case.
func (c *Case) Proto() *Proto { return c.proto }

// N returns the number of values.
func (c *Case) N() int { return len(c.vals) }

// Value returns the value at case index i.
func (c *Case) Value(i int) value.Value { return c.vals[i] }

// Values returns a copy of all values.
func (c *Case) Values() []value.Value {
	v := make([]value.Value, len(c.vals))
	copy(v, c.vals)
	return v
}

// Ref adds a reference and returns c.
func (c *Case) Ref() *Case {
	c.refs.Add(1)
	return c
}

// Unref drops a reference.
func (c *Case) Unref() {
	c.refs.Add(-1)
}

// IsShared reports whether more than one owner holds the case.
func (c *Case) IsShared() bool {
	return c.refs.Load() > 1
}

// Unshare returns a case the caller owns exclusively. If c is shared it is
// cloned and the caller's reference to c is released.
func (c *Case) Unshare() *Case {
	if !c.IsShared() {
		return c
	}
	clone := c.Clone()
	c.Unref()
	return clone
}

// Clone returns an unshared copy of c.
func (c *Case) Clone() *Case {
	n := &Case{proto: c.proto, vals: make([]value.Value, len(c.vals))}
	copy(n.vals, c.vals)
	n.refs.Store(1)
	return n
}

// Set replaces the value at case index i. The case must not be shared and
// v must have the width the prototype declares for i.
func (c *Case) Set(i int, v value.Value) error {
	if i < 0 || i >= len(c.vals) {
		return errs.Bounds("case index", i, len(c.vals))
	}
	if v.Width() != c.proto.Width(i) {
		return errs.Newf(errs.ErrorTypeShape, "value width %d does not match column width %d", v.Width(), c.proto.Width(i))
	}
	if c.IsShared() {
		return errs.New(errs.ErrorTypeValidation, "cannot modify a shared case; call Unshare first")
	}
	c.vals[i] = v
	return nil
}

// SetMissing blanks every value of an unshared case.
func (c *Case) SetMissing() {
	for i := range c.vals {
		c.vals[i] = value.Missing(c.proto.Width(i))
	}
}

// Equal reports whether both cases have the same shape and values.
func (c *Case) Equal(o *Case) bool {
	if !c.proto.Equal(o.proto) {
		return false
	}
	for i := range c.vals {
		if !c.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}

// WithInserted returns a new case of shape proto with v inserted before
// case index before.
func (c *Case) WithInserted(proto *Proto, before int, v value.Value) *Case {
	n := &Case{proto: proto, vals: make([]value.Value, 0, len(c.vals)+1)}
	n.vals = append(n.vals, c.vals[:before]...)
	n.vals = append(n.vals, v)
	n.vals = append(n.vals, c.vals[before:]...)
	n.refs.Store(1)
	return n
}

// WithRemoved returns a new case of shape proto without values
// [first, first+count).
func (c *Case) WithRemoved(proto *Proto, first, count int) *Case {
	n := &Case{proto: proto, vals: make([]value.Value, 0, len(c.vals)-count)}
	n.vals = append(n.vals, c.vals[:first]...)
	n.vals = append(n.vals, c.vals[first+count:]...)
	n.refs.Store(1)
	return n
}

// WithResized returns a new case of shape proto whose value i was passed
// through remap.
func (c *Case) WithResized(proto *Proto, i int, remap value.RemapFunc) *Case {
	n := c.Clone()
	n.proto = proto
	n.vals[i] = remap(c.vals[i], proto.Width(i))
	return n
}

// RawSet stores v without width or sharing checks. It exists for storage
// backends that decode cases they exclusively own.
func (c *Case) RawSet(i int, v value.Value) {
	c.vals[i] = v
}
