package datasheet

import (
	"github.com/ajitpratap0/casesheet/pkg/cases"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
)

// Writer appends cases into a private datasheet, paging as the budget
// requires, and converts into a reader once.
type Writer struct {
	s *Datasheet
}

var _ cases.Writer = (*Writer)(nil)

// NewWriter returns an autopaging writer for cases of shape proto.
func NewWriter(proto *cases.Proto, opts Options) (*Writer, error) {
	s, err := New(proto, opts)
	if err != nil {
		return nil, err
	}
	return &Writer{s: s}, nil
}

// Proto returns the case shape the writer accepts.
func (w *Writer) Proto() *cases.Proto { return w.s.Proto() }

// Rows returns the number of cases written so far.
func (w *Writer) Rows() int { return w.s.Rows() }

// Write appends c. The writer takes over the reference.
func (w *Writer) Write(c *cases.Case) error {
	if err := w.s.check(); err != nil {
		return err
	}
	if !c.Proto().Equal(w.s.Proto()) {
		return errs.Newf(errs.ErrorTypeShape, "case shape %s does not match writer shape %s", c.Proto(), w.s.Proto())
	}
	return w.s.appendCase(c)
}

// MakeReader converts the written cases into a reader. The writer is
// consumed.
func (w *Writer) MakeReader() (cases.Reader, error) {
	return w.s.MakeReader()
}

// Close discards the written cases. It is a no-op after MakeReader.
func (w *Writer) Close() error {
	return w.s.Close()
}
