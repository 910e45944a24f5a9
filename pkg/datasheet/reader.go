package datasheet

import (
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
)

// MakeReader converts the sheet into a forward-only reader over its rows in
// order. The sheet is consumed: every later operation on it fails. A
// reader-backed sheet that was never accessed returns its source reader
// without materializing anything.
func (s *Datasheet) MakeReader() (cases.Reader, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	s.state = stateConsumed
	if s.source != nil {
		src := s.source
		s.source = nil
		s.log.Debug("handing back unrealized source reader", zap.Int("rows", s.rows))
		return src, nil
	}
	return &sheetReader{s: s, remaining: s.rows}, nil
}

// sheetReader walks the pages of a consumed sheet. Fully read pages are
// released as it goes.
type sheetReader struct {
	s         *Datasheet
	k         int
	off       int
	remaining int
	closed    bool
}

func (r *sheetReader) Proto() *cases.Proto { return r.s.ops.cur }

func (r *sheetReader) Len() int { return r.remaining }

// Read returns the next case. When a page cannot be read its rows are
// skipped and the I/O error is returned; the following Read continues with
// the next page.
func (r *sheetReader) Read() (*cases.Case, error) {
	if r.closed {
		return nil, errs.New(errs.ErrorTypeConsumed, "reader is closed")
	}
	s := r.s
	for r.k < len(s.dir.pages) {
		p := s.dir.pages[r.k]
		if r.off >= p.n {
			s.drop(p)
			r.k++
			r.off = 0
			continue
		}
		if err := s.pageIn(p); err != nil {
			r.remaining -= p.n - r.off
			s.drop(p)
			r.k++
			r.off = 0
			return nil, err
		}
		c := p.rows[r.off].Ref()
		unpin(p)
		r.off++
		r.remaining--
		return c, nil
	}
	return nil, io.EOF
}

func (r *sheetReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.s.release()
}
