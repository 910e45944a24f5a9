// Package datasheet implements the random access case store behind the data
// editor: a growable table of cases addressed by row number and case index,
// optionally backed by a source reader that is realized on first use, and
// paged to a private spill file when the resident page budget is exceeded.
//
// # Paging
//
// Rows live in an ordered directory of pages of at most PageRows rows. At
// most MaxResidentPages pages are held in memory; the least recently used
// unpinned page is evicted first. Evicted dirty pages are encoded, checksummed
// with xxhash64, optionally compressed and appended to the spill backing.
//
// Column inserts, deletes and resizes are applied to resident pages at once
// and recorded in an op log that spilled pages replay when they are paged
// back in, so a column operation never performs I/O on a realized sheet and
// column shape is never partially applied.
//
// A page that fails to read is marked unreadable: later access to its rows
// fails with an I/O error while the rest of the sheet keeps working.
//
// A Datasheet is not safe for concurrent use.
package datasheet

import (
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/compression"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/metrics"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

type state int

const (
	stateLive state = iota
	stateConsumed
	stateClosed
)

// Datasheet is a mutable, randomly addressable table of cases.
type Datasheet struct {
	opts   Options
	log    *zap.Logger
	dir    directory
	cache  cache
	ops    opLog
	spill  spillStore
	codec  pageCodec
	rows   int
	source cases.Reader
	state  state
	stats  Stats
}

// New returns an empty datasheet whose cases have shape proto.
func New(proto *cases.Proto, opts Options) (*Datasheet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	comp, err := compression.NewCompressor(opts.Compression)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrorTypeValidation, "invalid spill compression")
	}
	if proto == nil {
		proto = cases.NewProto()
	}
	s := &Datasheet{
		opts:  opts,
		log:   opts.Logger,
		cache: cache{max: opts.MaxResidentPages},
		ops:   opLog{cur: proto},
		spill: spillStore{open: opts.opener(), log: opts.Logger},
		codec: pageCodec{comp: comp},
	}
	return s, nil
}

// FromReader returns a datasheet backed by r. The reader is consumed lazily:
// nothing is read until the first random access or mutation, and MakeReader
// on a sheet that was never touched hands r back unchanged.
//
// A reader that cannot report its length is realized immediately. If that
// fails, the returned sheet holds the cases read before the failure and the
// error is returned alongside it.
func FromReader(r cases.Reader, opts Options) (*Datasheet, error) {
	s, err := New(r.Proto(), opts)
	if err != nil {
		return nil, err
	}
	s.source = r
	if n := r.Len(); n >= 0 {
		s.rows = n
		return s, nil
	}
	return s, s.realize()
}

// Rows returns the number of cases.
func (s *Datasheet) Rows() int { return s.rows }

// Columns returns the number of values per case.
func (s *Datasheet) Columns() int { return s.ops.cur.N() }

// Proto returns the current case shape.
func (s *Datasheet) Proto() *cases.Proto { return s.ops.cur }

func (s *Datasheet) check() error {
	switch s.state {
	case stateConsumed:
		return errs.New(errs.ErrorTypeConsumed, "datasheet was converted into a reader")
	case stateClosed:
		return errs.New(errs.ErrorTypeConsumed, "datasheet is closed")
	}
	return nil
}

func (s *Datasheet) checkRow(row int) error {
	if row < 0 || row >= s.rows {
		return errs.Bounds("row", row, s.rows)
	}
	return nil
}

func (s *Datasheet) checkColumn(ci int) error {
	if n := s.Columns(); ci < 0 || ci >= n {
		return errs.Bounds("column", ci, n)
	}
	return nil
}

// realize drains the source reader into pages. On failure the cases read so
// far are kept and the row count shrinks to match.
func (s *Datasheet) realize() error {
	if s.source == nil {
		return nil
	}
	src := s.source
	s.source = nil
	expected := s.rows
	s.rows = 0

	var err error
	for {
		c, rerr := src.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			metrics.PageIOErrors.WithLabelValues("source").Inc()
			err = errs.Wrap(rerr, errs.ErrorTypeIO, "source read failed")
			break
		}
		if !c.Proto().Equal(s.ops.cur) {
			c.Unref()
			err = errs.Newf(errs.ErrorTypeShape, "source case shape %s does not match %s", c.Proto(), s.ops.cur)
			break
		}
		if aerr := s.appendCase(c); aerr != nil {
			c.Unref()
			err = aerr
			break
		}
	}
	if cerr := src.Close(); cerr != nil && err == nil {
		err = errs.Wrap(cerr, errs.ErrorTypeIO, "source close failed")
	}
	s.trim()

	if err != nil {
		s.log.Warn("realization stopped early", zap.Int("rows", s.rows), zap.Int("expected", expected), zap.Error(err))
		return err
	}
	s.log.Debug("datasheet realized", zap.Int("rows", s.rows), zap.Int("pages", len(s.dir.pages)))
	return nil
}

// appendCase adds c after the last row, filling the last page when it is
// resident and starting a new page otherwise.
func (s *Datasheet) appendCase(c *cases.Case) error {
	if n := len(s.dir.pages); n > 0 {
		p := s.dir.pages[n-1]
		if p.resident() && p.n < s.opts.PageRows {
			p.rows = append(p.rows, c)
			p.n++
			p.dirty = true
			s.touch(p)
			s.dir.changed()
			s.rows++
			return nil
		}
	}
	if err := s.ensureRoom(1); err != nil {
		return err
	}
	rows := make([]*cases.Case, 1, s.opts.PageRows)
	rows[0] = c
	s.dir.pages = append(s.dir.pages, s.newPage(rows))
	s.dir.changed()
	s.rows++
	return nil
}

// locate pages in the row and pins its page. The caller must unpin.
func (s *Datasheet) locate(row int) (*page, int, error) {
	k, off := s.dir.locate(row)
	p := s.dir.pages[k]
	if err := s.pageIn(p); err != nil {
		return nil, 0, err
	}
	return p, off, nil
}

// Value returns the value at row and case index ci.
func (s *Datasheet) Value(row, ci int) (value.Value, error) {
	if err := s.check(); err != nil {
		return value.Value{}, err
	}
	if err := s.checkRow(row); err != nil {
		return value.Value{}, err
	}
	if err := s.checkColumn(ci); err != nil {
		return value.Value{}, err
	}
	if err := s.realize(); err != nil {
		return value.Value{}, err
	}
	if err := s.checkRow(row); err != nil {
		return value.Value{}, err
	}
	p, off, err := s.locate(row)
	if err != nil {
		return value.Value{}, err
	}
	defer unpin(p)
	return p.rows[off].Value(ci), nil
}

// SetValue stores v at row and case index ci. v must have the column's
// width. A case shared with a reader or another caller is cloned first.
func (s *Datasheet) SetValue(row, ci int, v value.Value) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.checkRow(row); err != nil {
		return err
	}
	if err := s.checkColumn(ci); err != nil {
		return err
	}
	if w := s.ops.cur.Width(ci); v.Width() != w {
		return errs.Newf(errs.ErrorTypeShape, "value width %d does not match column %d width %d", v.Width(), ci, w)
	}
	if err := s.realize(); err != nil {
		return err
	}
	if err := s.checkRow(row); err != nil {
		return err
	}
	p, off, err := s.locate(row)
	if err != nil {
		return err
	}
	defer unpin(p)

	c := p.rows[off].Unshare()
	p.rows[off] = c
	if err := c.Set(ci, v); err != nil {
		return err
	}
	p.dirty = true
	return nil
}

// Row returns a shared reference to the case at row. The caller must Unref
// it; modifying it requires Unshare, which leaves the sheet untouched.
func (s *Datasheet) Row(row int) (*cases.Case, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := s.checkRow(row); err != nil {
		return nil, err
	}
	if err := s.realize(); err != nil {
		return nil, err
	}
	if err := s.checkRow(row); err != nil {
		return nil, err
	}
	p, off, err := s.locate(row)
	if err != nil {
		return nil, err
	}
	defer unpin(p)
	return p.rows[off].Ref(), nil
}

func chunk(rows []*cases.Case, size int) [][]*cases.Case {
	var out [][]*cases.Case
	for len(rows) > 0 {
		n := size
		if n > len(rows) {
			n = len(rows)
		}
		part := make([]*cases.Case, n, size)
		copy(part, rows[:n])
		out = append(out, part)
		rows = rows[n:]
	}
	return out
}

// InsertRows inserts cs so that the first of them becomes row before. Every
// case must have the sheet's shape. The sheet takes over the references.
func (s *Datasheet) InsertRows(before int, cs []*cases.Case) error {
	if err := s.check(); err != nil {
		return err
	}
	if before < 0 || before > s.rows {
		return errs.Bounds("insertion row", before, s.rows+1)
	}
	for i, c := range cs {
		if !c.Proto().Equal(s.ops.cur) {
			return errs.Newf(errs.ErrorTypeShape, "case %d has shape %s, sheet has %s", i, c.Proto(), s.ops.cur)
		}
	}
	if len(cs) == 0 {
		return nil
	}
	if err := s.realize(); err != nil {
		return err
	}
	if before > s.rows {
		return errs.Bounds("insertion row", before, s.rows+1)
	}

	at, merge := s.insertionPoint(before)
	if merge == nil {
		parts := chunk(cs, s.opts.PageRows)
		if err := s.ensureRoom(len(parts)); err != nil {
			return err
		}
		pages := make([]*page, len(parts))
		for i, part := range parts {
			pages[i] = s.newPage(part)
		}
		s.dir.splice(at, 0, pages...)
	} else {
		p, off := merge.p, merge.off
		if err := s.pageIn(p); err != nil {
			return err
		}
		combined := make([]*cases.Case, 0, p.n+len(cs))
		combined = append(combined, p.rows[:off]...)
		combined = append(combined, cs...)
		combined = append(combined, p.rows[off:]...)
		parts := chunk(combined, s.opts.PageRows)
		if err := s.ensureRoom(len(parts) - 1); err != nil {
			unpin(p)
			return err
		}
		p.rows = parts[0]
		p.n = len(parts[0])
		p.dirty = true
		extra := make([]*page, 0, len(parts)-1)
		for _, part := range parts[1:] {
			extra = append(extra, s.newPage(part))
		}
		s.dir.splice(at+1, 0, extra...)
		unpin(p)
	}
	s.rows += len(cs)
	s.dir.changed()
	s.trim()
	return nil
}

type mergeTarget struct {
	p   *page
	off int
}

// insertionPoint decides where rows inserted before row go. A nil target
// means whole new pages are spliced in at the returned directory index
// without touching any existing page; otherwise the rows are merged into
// the target page at the returned index.
func (s *Datasheet) insertionPoint(before int) (int, *mergeTarget) {
	pages := s.dir.pages
	if len(pages) == 0 {
		return 0, nil
	}
	if before == s.rows {
		k := len(pages) - 1
		p := pages[k]
		if p.resident() && p.n < s.opts.PageRows {
			return k, &mergeTarget{p: p, off: p.n}
		}
		return len(pages), nil
	}
	k, off := s.dir.locate(before)
	if off == 0 {
		return k, nil
	}
	return k, &mergeTarget{p: pages[k], off: off}
}

// DeleteRows removes rows [first, first+count).
func (s *Datasheet) DeleteRows(first, count int) error {
	if err := s.check(); err != nil {
		return err
	}
	if count < 0 {
		return errs.Newf(errs.ErrorTypeValidation, "negative row count %d", count)
	}
	if first < 0 || first > s.rows {
		return errs.Bounds("row", first, s.rows)
	}
	if first+count > s.rows {
		return errs.Bounds("row", first+count-1, s.rows)
	}
	if count == 0 {
		return nil
	}
	if err := s.realize(); err != nil {
		return err
	}
	if first+count > s.rows {
		return errs.Bounds("row", first+count-1, s.rows)
	}

	last := first + count - 1
	k1, off1 := s.dir.locate(first)
	k2, off2 := s.dir.locate(last)
	head, tail := s.dir.pages[k1], s.dir.pages[k2]
	headPartial := off1 > 0 || (k1 == k2 && off2 < head.n-1)
	tailPartial := k2 != k1 && off2 < tail.n-1

	// Page in every partially covered page before changing anything.
	if headPartial {
		if err := s.pageIn(head); err != nil {
			return err
		}
		defer unpin(head)
	}
	if tailPartial {
		if err := s.pageIn(tail); err != nil {
			return err
		}
		defer unpin(tail)
	}

	var keep []*page
	if k1 == k2 {
		if headPartial {
			removeRows(head, off1, off2+1)
			keep = append(keep, head)
		} else {
			s.drop(head)
		}
	} else {
		if headPartial {
			removeRows(head, off1, head.n)
			keep = append(keep, head)
		} else {
			s.drop(head)
		}
		for _, p := range s.dir.pages[k1+1 : k2] {
			s.drop(p)
		}
		if tailPartial {
			removeRows(tail, 0, off2+1)
			keep = append(keep, tail)
		} else {
			s.drop(tail)
		}
	}
	s.dir.splice(k1, k2-k1+1, keep...)
	s.rows -= count
	s.compactOps()
	return nil
}

// removeRows deletes rows [from, to) of a resident page.
func removeRows(p *page, from, to int) {
	for _, c := range p.rows[from:to] {
		c.Unref()
	}
	rows := make([]*cases.Case, 0, cap(p.rows))
	rows = append(rows, p.rows[:from]...)
	rows = append(rows, p.rows[to:]...)
	p.rows = rows
	p.n = len(rows)
	p.dirty = true
}

// Close releases all pages and removes the spill file. A closed sheet
// rejects every operation. Closing a sheet that became a reader is a no-op.
func (s *Datasheet) Close() error {
	if s.state != stateLive {
		return nil
	}
	s.state = stateClosed
	return s.release()
}

func (s *Datasheet) release() error {
	for _, p := range s.dir.pages {
		s.forget(p)
	}
	s.dir = directory{}
	var err error
	if s.source != nil {
		err = s.source.Close()
		s.source = nil
	}
	if serr := s.spill.close(); serr != nil && err == nil {
		err = errs.Wrap(serr, errs.ErrorTypeIO, "spill close failed")
	}
	s.rows = 0
	return err
}
