// Package dictionary holds the variables that give the columns of a case
// store their meaning.
//
// Display order and case-index order are independent: a new variable always
// takes the next case index, whatever display position it is inserted at.
// Every structural edit is validated in full before a bound column store is
// touched, and a store failure leaves the dictionary as it was. Case indices
// stay dense, so deleting a variable renumbers the ones above it, exactly
// as the store's column removal does.
package dictionary

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/logger"
	"github.com/ajitpratap0/casesheet/pkg/notify"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// ColumnStore is the row storage a dictionary drives. Datasheet implements
// it.
type ColumnStore interface {
	Proto() *cases.Proto
	InsertColumn(def *value.Value, width, before int) error
	DeleteColumns(first, count int) error
	ResizeColumn(col, width int, remap value.RemapFunc) error
}

// Dictionary is an ordered collection of variables.
type Dictionary struct {
	vars   []*Variable
	byName map[string]*Variable
	proto  *cases.Proto
	filter *Variable
	store  ColumnStore
	hub    notify.Hub
	log    *zap.Logger
}

// New returns an empty dictionary. A nil logger uses the global one.
func New(l *zap.Logger) *Dictionary {
	return &Dictionary{
		byName: make(map[string]*Variable),
		proto:  cases.NewProto(),
		log:    logger.Or(l).Named("dictionary"),
	}
}

// VarCount returns the number of variables.
func (d *Dictionary) VarCount() int { return len(d.vars) }

// Var returns the variable at display position i, or nil.
func (d *Dictionary) Var(i int) *Variable {
	if i < 0 || i >= len(d.vars) {
		return nil
	}
	return d.vars[i]
}

// Vars returns the variables in display order.
func (d *Dictionary) Vars() []*Variable {
	return append([]*Variable(nil), d.vars...)
}

// Lookup finds a variable by name, ignoring case.
func (d *Dictionary) Lookup(name string) *Variable {
	return d.byName[strings.ToUpper(name)]
}

// Proto returns the case shape the variables define, in case-index order.
func (d *Dictionary) Proto() *cases.Proto { return d.proto }

// Filter returns the filter variable, or nil.
func (d *Dictionary) Filter() *Variable { return d.filter }

// Subscribe registers o for the dictionary's column events.
func (d *Dictionary) Subscribe(o notify.Observer) *notify.Subscription {
	return d.hub.Subscribe(o)
}

// Hub exposes the dictionary's event hub, for blocking delivery.
func (d *Dictionary) Hub() *notify.Hub { return &d.hub }

// Bind attaches a column store whose shape equals the dictionary's.
func (d *Dictionary) Bind(s ColumnStore) error {
	if !s.Proto().Equal(d.proto) {
		return errs.Newf(errs.ErrorTypeShape, "store shape %s does not match dictionary shape %s", s.Proto(), d.proto)
	}
	d.store = s
	return nil
}

// Unbind detaches the column store.
func (d *Dictionary) Unbind() { d.store = nil }

// Bound reports whether a column store is attached.
func (d *Dictionary) Bound() bool { return d.store != nil }

func (d *Dictionary) checkIndex(i int) error {
	if i < 0 || i >= len(d.vars) {
		return errs.Bounds("variable", i, len(d.vars))
	}
	return nil
}

func (d *Dictionary) checkNewName(name string, self *Variable) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if o := d.Lookup(name); o != nil && o != self {
		return errs.Newf(errs.ErrorTypeConflict, "a variable named %s already exists", o.name).
			WithDetail("name", name)
	}
	return nil
}

func checkWidth(width int) error {
	if !value.ValidWidth(width) {
		return errs.Newf(errs.ErrorTypeValidation, "width %d is out of range 0..%d", width, value.MaxStringWidth)
	}
	return nil
}

func (d *Dictionary) renumber(from int) {
	for i := from; i < len(d.vars); i++ {
		d.vars[i].index = i
	}
}

// NextName returns the first unused name of the form VAR00001.
func (d *Dictionary) NextName() string {
	for i := len(d.vars) + 1; ; i++ {
		name := fmt.Sprintf("VAR%05d", i)
		if d.Lookup(name) == nil {
			return name
		}
	}
}

// CreateVar appends a variable.
func (d *Dictionary) CreateVar(name string, width int) (*Variable, error) {
	return d.InsertVar(len(d.vars), name, width)
}

// InsertVar inserts a variable at display position pos. Its column is
// appended to the case shape and filled with missing values in the store.
func (d *Dictionary) InsertVar(pos int, name string, width int) (*Variable, error) {
	if pos < 0 || pos > len(d.vars) {
		return nil, errs.Bounds("variable position", pos, len(d.vars)+1)
	}
	if err := d.checkNewName(name, nil); err != nil {
		return nil, err
	}
	if err := checkWidth(width); err != nil {
		return nil, err
	}

	ci := d.proto.N()
	if d.store != nil {
		if err := d.store.InsertColumn(nil, width, ci); err != nil {
			return nil, err
		}
	}

	v := newVariable(name, width)
	v.caseIndex = ci
	d.vars = append(d.vars, nil)
	copy(d.vars[pos+1:], d.vars[pos:])
	d.vars[pos] = v
	d.renumber(pos)
	d.byName[strings.ToUpper(name)] = v
	d.proto = d.proto.Insert(ci, width)

	d.log.Debug("variable inserted",
		zap.String("name", name), zap.Int("index", pos),
		zap.Int("case_index", ci), zap.Int("width", width))
	d.hub.Emit(notify.ColumnEvent(notify.ColumnsInserted, pos, 1, ci))
	return v, nil
}

// DeleteVars removes count variables starting at display position first,
// along with their store columns.
func (d *Dictionary) DeleteVars(first, count int) error {
	if count < 0 || first < 0 || first+count > len(d.vars) {
		return errs.Bounds("variable", first+count, len(d.vars)+1).
			WithDetail("first", first).WithDetail("count", count)
	}
	if count == 0 {
		return nil
	}

	// Highest case index first, so that earlier removals never renumber a
	// column still waiting to go.
	victims := append([]*Variable(nil), d.vars[first:first+count]...)
	for i := 1; i < len(victims); i++ {
		for j := i; j > 0 && victims[j].caseIndex > victims[j-1].caseIndex; j-- {
			victims[j], victims[j-1] = victims[j-1], victims[j]
		}
	}

	// Adjacent case indices go to the store as one run, so deleting a block
	// of variables that was never reordered is a single store call.
	for n := 0; n < len(victims); {
		end := n + 1
		for end < len(victims) && victims[end].caseIndex == victims[end-1].caseIndex-1 {
			end++
		}
		run := victims[n:end]
		if d.store != nil {
			if err := d.store.DeleteColumns(run[len(run)-1].caseIndex, len(run)); err != nil {
				if n > 0 {
					e := notify.ColumnEvent(notify.ColumnsDeleted, 0, 0, -1)
					e.Cols = notify.All
					d.hub.Emit(e)
				}
				return err
			}
		}
		for _, v := range run {
			d.removeVar(v)
		}
		n = end
	}

	d.log.Debug("variables deleted", zap.Int("first", first), zap.Int("count", count))
	ci := -1
	if count == 1 {
		ci = victims[0].caseIndex
	}
	d.hub.Emit(notify.ColumnEvent(notify.ColumnsDeleted, first, count, ci))
	return nil
}

func (d *Dictionary) removeVar(v *Variable) {
	i := v.index
	d.vars = append(d.vars[:i], d.vars[i+1:]...)
	d.renumber(i)
	delete(d.byName, strings.ToUpper(v.name))
	for _, o := range d.vars {
		if o.caseIndex > v.caseIndex {
			o.caseIndex--
		}
	}
	d.proto = d.proto.Remove(v.caseIndex, 1)
	if d.filter == v {
		d.filter = nil
	}
}

// Clear removes every variable.
func (d *Dictionary) Clear() error {
	if len(d.vars) == 0 {
		return nil
	}
	if d.store != nil {
		if err := d.store.DeleteColumns(0, d.proto.N()); err != nil {
			return err
		}
	}
	d.vars = nil
	d.byName = make(map[string]*Variable)
	d.proto = cases.NewProto()
	d.filter = nil
	d.log.Debug("dictionary cleared")
	d.hub.Emit(notify.ResetEvent())
	return nil
}

// RenameVar renames the variable at i. Names are unique regardless of
// case; a colliding name is rejected and nothing changes.
func (d *Dictionary) RenameVar(i int, name string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	v := d.vars[i]
	if err := d.checkNewName(name, v); err != nil {
		return err
	}
	delete(d.byName, strings.ToUpper(v.name))
	old := v.name
	v.name = name
	d.byName[strings.ToUpper(name)] = v
	d.log.Debug("variable renamed", zap.String("from", old), zap.String("to", name))
	d.changed(i)
	return nil
}

// MoveVar moves the variable at from to display position to. Case indices
// are unaffected.
func (d *Dictionary) MoveVar(from, to int) error {
	if err := d.checkIndex(from); err != nil {
		return err
	}
	if err := d.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	v := d.vars[from]
	d.vars = append(d.vars[:from], d.vars[from+1:]...)
	d.vars = append(d.vars[:to], append([]*Variable{v}, d.vars[to:]...)...)
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	d.renumber(lo)
	d.hub.Emit(notify.ColumnEvent(notify.ColumnsChanged, lo, hi-lo+1, -1))
	return nil
}

// SetFilter makes the numeric variable at i the filter variable. A negative
// i clears the filter.
func (d *Dictionary) SetFilter(i int) error {
	if i < 0 {
		d.filter = nil
		return nil
	}
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if !d.vars[i].IsNumeric() {
		return errs.Newf(errs.ErrorTypeValidation, "filter variable %s must be numeric", d.vars[i].name)
	}
	d.filter = d.vars[i]
	return nil
}

// Clone copies the variables at display positions first..last inclusive
// into a new, unbound dictionary with dense case indices. The returned map
// projects source cases onto the new shape.
func (d *Dictionary) Clone(first, last int) (*Dictionary, *cases.Map, error) {
	if first < 0 || last >= len(d.vars) || first > last+1 {
		return nil, nil, errs.Bounds("variable", last, len(d.vars)).WithDetail("first", first)
	}
	c := &Dictionary{byName: make(map[string]*Variable), log: d.log}
	src := make([]int, 0, last-first+1)
	widths := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		v := d.vars[i].clone()
		src = append(src, v.caseIndex)
		widths = append(widths, v.width)
		v.caseIndex = len(c.vars)
		v.index = len(c.vars)
		c.vars = append(c.vars, v)
		c.byName[strings.ToUpper(v.name)] = v
		if d.filter == d.vars[i] {
			c.filter = v
		}
	}
	c.proto = cases.NewProto(widths...)
	return c, cases.NewMap(c.proto, src), nil
}

func (d *Dictionary) changed(i int) {
	d.hub.Emit(notify.ColumnEvent(notify.ColumnsChanged, i, 1, d.vars[i].caseIndex))
}
