package datasheet

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/metrics"
)

// Backing is the random access storage that evicted pages are written to.
// The datasheet owns its backing and closes it on Close.
type Backing interface {
	io.ReaderAt
	io.WriterAt
	Close() error
}

// tempFileBacking is a spill file that is removed when closed.
type tempFileBacking struct {
	f *os.File
}

func newTempFileBacking(dir string) (*tempFileBacking, error) {
	f, err := os.CreateTemp(dir, "casesheet-*.spill")
	if err != nil {
		return nil, err
	}
	return &tempFileBacking{f: f}, nil
}

func (b *tempFileBacking) ReadAt(p []byte, off int64) (int, error)  { return b.f.ReadAt(p, off) }
func (b *tempFileBacking) WriteAt(p []byte, off int64) (int, error) { return b.f.WriteAt(p, off) }

func (b *tempFileBacking) Close() error {
	name := b.f.Name()
	err := b.f.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}

// extent locates a spilled page frame. version is the column op version the
// rows were encoded at.
type extent struct {
	off     int64
	length  int
	version int
}

// spillStore appends page frames to a backing created on first use. Space
// of superseded frames is not reused.
type spillStore struct {
	open    func() (Backing, error)
	backing Backing
	end     int64
	log     *zap.Logger
	tried   bool
	openErr error
}

// ensure opens the backing once; a failed open is not retried.
func (s *spillStore) ensure() error {
	if s.backing != nil || s.tried {
		return s.openErr
	}
	s.tried = true
	s.backing, s.openErr = s.open()
	if s.openErr == nil {
		s.log.Debug("spill backing opened")
	}
	return s.openErr
}

func (s *spillStore) write(frame []byte, version int) (extent, error) {
	if err := s.ensure(); err != nil {
		return extent{}, err
	}
	if _, err := s.backing.WriteAt(frame, s.end); err != nil {
		return extent{}, err
	}
	e := extent{off: s.end, length: len(frame), version: version}
	s.end += int64(len(frame))
	metrics.SpillBytes.Add(float64(len(frame)))
	return e, nil
}

func (s *spillStore) read(e extent) ([]byte, error) {
	if s.backing == nil {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, e.length)
	n, err := s.backing.ReadAt(buf, e.off)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

func (s *spillStore) close() error {
	metrics.SpillBytes.Sub(float64(s.end))
	s.end = 0
	if s.backing == nil {
		return nil
	}
	err := s.backing.Close()
	s.backing = nil
	return err
}
