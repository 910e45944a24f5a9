package datasheet

import (
	"go.uber.org/zap"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// InsertColumn inserts a column of the given width before case index
// before. Every existing row gets def, or the missing value of width when
// def is nil.
func (s *Datasheet) InsertColumn(def *value.Value, width, before int) error {
	if err := s.check(); err != nil {
		return err
	}
	if !value.ValidWidth(width) {
		return errs.Newf(errs.ErrorTypeValidation, "invalid column width %d", width)
	}
	if n := s.Columns(); before < 0 || before > n {
		return errs.Bounds("column insertion index", before, n+1)
	}
	fill := value.Missing(width)
	if def != nil {
		if def.Width() != width {
			return errs.Newf(errs.ErrorTypeShape, "default value width %d does not match column width %d", def.Width(), width)
		}
		fill = *def
	}
	if err := s.realize(); err != nil {
		return err
	}
	cur := s.ops.cur
	s.applyOp(colOp{kind: opInsert, before: cur, after: cur.Insert(before, width), first: before, def: fill})
	return nil
}

// DeleteColumns removes case indices [first, first+count).
func (s *Datasheet) DeleteColumns(first, count int) error {
	if err := s.check(); err != nil {
		return err
	}
	n := s.Columns()
	if count < 0 {
		return errs.Newf(errs.ErrorTypeValidation, "negative column count %d", count)
	}
	if first < 0 || first > n {
		return errs.Bounds("column", first, n)
	}
	if first+count > n {
		return errs.Bounds("column", first+count-1, n)
	}
	if count == 0 {
		return nil
	}
	if err := s.realize(); err != nil {
		return err
	}
	cur := s.ops.cur
	s.applyOp(colOp{kind: opDelete, before: cur, after: cur.Remove(first, count), first: first, count: count})
	return nil
}

// ResizeColumn changes the width of case index ci, converting every value
// with remap. A nil remap selects value.Resize. remap may run long after
// ResizeColumn returns, when spilled pages are paged back in, so it must
// depend only on its arguments.
func (s *Datasheet) ResizeColumn(ci, newWidth int, remap value.RemapFunc) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.checkColumn(ci); err != nil {
		return err
	}
	if !value.ValidWidth(newWidth) {
		return errs.Newf(errs.ErrorTypeValidation, "invalid column width %d", newWidth)
	}
	if remap == nil {
		remap = value.Resize
	}
	if err := s.realize(); err != nil {
		return err
	}
	cur := s.ops.cur
	if cur.Width(ci) == newWidth {
		return nil
	}
	s.applyOp(colOp{kind: opResize, before: cur, after: cur.SetWidth(ci, newWidth), first: ci, remap: remap})
	return nil
}

// applyOp reshapes every resident page and logs op for the rest. Clean
// pages stay clean: their spill copy plus the log still describes them.
func (s *Datasheet) applyOp(op colOp) {
	for e := s.cache.lru.Front(); e != nil; e = e.Next() {
		p := e.Value.(*page)
		for i, c := range p.rows {
			p.rows[i] = op.apply(c)
			c.Unref()
		}
	}
	s.ops.push(op)
	s.compactOps()
	s.log.Debug("column shape changed", zap.Stringer("proto", s.ops.cur), zap.Int("pending_ops", len(s.ops.ops)))
}

// compactOps drops log entries no spill copy still needs. A clean resident
// page needs its spill version for the day it is evicted without writing.
func (s *Datasheet) compactOps() {
	oldest := s.ops.version()
	for _, p := range s.dir.pages {
		if p.spill == nil || p.unreadable != nil || (p.resident() && p.dirty) {
			continue
		}
		if p.spill.version < oldest {
			oldest = p.spill.version
		}
	}
	s.ops.compact(oldest)
}
