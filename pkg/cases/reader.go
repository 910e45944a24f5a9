package cases

import (
	"io"

	errs "github.com/ajitpratap0/casesheet/pkg/errors"
)

// Reader is a forward-only stream of cases that all share one prototype.
// Read returns io.EOF after the last case. The caller owns each returned
// case reference.
type Reader interface {
	Proto() *Proto
	// Len returns the number of cases not yet read, or -1 if unknown.
	Len() int
	Read() (*Case, error)
	Close() error
}

// Writer accepts cases and is converted into a Reader exactly once.
type Writer interface {
	Proto() *Proto
	Write(c *Case) error
	MakeReader() (Reader, error)
}

// SliceReader reads from an in-memory slice of cases.
type SliceReader struct {
	proto  *Proto
	cases  []*Case
	pos    int
	closed bool
}

// NewSliceReader returns a reader over cs. Ownership of the case references
// passes to the reader.
func NewSliceReader(proto *Proto, cs []*Case) *SliceReader {
	return &SliceReader{proto: proto, cases: cs}
}

// Proto returns the shape of the cases.
func (r *SliceReader) Proto() *Proto { return r.proto }

// Len returns the number of cases not yet read.
func (r *SliceReader) Len() int { return len(r.cases) - r.pos }

// Read returns the next case, or io.EOF after the last one.
func (r *SliceReader) Read() (*Case, error) {
	if r.closed {
		return nil, errs.New(errs.ErrorTypeConsumed, "reader is closed")
	}
	if r.pos >= len(r.cases) {
		return nil, io.EOF
	}
	c := r.cases[r.pos]
	r.cases[r.pos] = nil
	r.pos++
	return c, nil
}

// Close releases unread cases.
func (r *SliceReader) Close() error {
	if r.closed {
		return nil
	}
	for _, c := range r.cases[r.pos:] {
		if c != nil {
			c.Unref()
		}
	}
	r.cases = nil
	r.pos = 0
	r.closed = true
	return nil
}

// ReadAll drains r into a slice and closes it. On error the cases read so
// far are returned together with the error.
func ReadAll(r Reader) ([]*Case, error) {
	var out []*Case
	if n := r.Len(); n > 0 {
		out = make([]*Case, 0, n)
	}
	for {
		c, err := r.Read()
		if err == io.EOF {
			return out, r.Close()
		}
		if err != nil {
			_ = r.Close()
			return out, err
		}
		out = append(out, c)
	}
}
