package datasheet

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/compression"
	"github.com/ajitpratap0/casesheet/pkg/pool"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

// Spilled page frame:
//
//	magic    uint32  "CSP1"
//	rawLen   uint32  length of the encoded rows before compression
//	checksum uint64  xxhash64 of the payload as stored
//	payload  []byte  compressed rows
//
// Rows are fixed width, little endian: 8 bytes of IEEE bits per number and
// the declared width per string.
const (
	frameMagic  uint32 = 0x31505343
	frameHeader        = 16
)

type pageCodec struct {
	comp compression.Compressor
}

func (pc pageCodec) encode(proto *cases.Proto, rows []*cases.Case) ([]byte, error) {
	rowBytes := proto.RowBytes()
	buf := pool.Bytes.Get(rowBytes * len(rows))
	defer pool.Bytes.Put(buf)
	raw := buf.B
	off := 0
	for _, c := range rows {
		for i := 0; i < proto.N(); i++ {
			v := c.Value(i)
			if w := proto.Width(i); w == 0 {
				binary.LittleEndian.PutUint64(raw[off:], math.Float64bits(v.Float()))
				off += 8
			} else {
				copy(raw[off:off+w], v.Str())
				off += w
			}
		}
	}

	var payload []byte
	if len(raw) > 0 {
		p, err := pc.comp.Compress(raw)
		if err != nil {
			return nil, fmt.Errorf("compress page: %w", err)
		}
		payload = p
	}

	frame := make([]byte, frameHeader+len(payload))
	binary.LittleEndian.PutUint32(frame[0:], frameMagic)
	binary.LittleEndian.PutUint32(frame[4:], uint32(len(raw)))
	binary.LittleEndian.PutUint64(frame[8:], xxhash.Sum64(payload))
	copy(frame[frameHeader:], payload)
	return frame, nil
}

func (pc pageCodec) decode(proto *cases.Proto, frame []byte, n int) ([]*cases.Case, error) {
	if len(frame) < frameHeader {
		return nil, fmt.Errorf("short page frame: %d bytes", len(frame))
	}
	if m := binary.LittleEndian.Uint32(frame[0:]); m != frameMagic {
		return nil, fmt.Errorf("bad page magic %#x", m)
	}
	rawLen := int(binary.LittleEndian.Uint32(frame[4:]))
	payload := frame[frameHeader:]
	if sum := binary.LittleEndian.Uint64(frame[8:]); sum != xxhash.Sum64(payload) {
		return nil, fmt.Errorf("page checksum mismatch")
	}
	rowBytes := proto.RowBytes()
	if rawLen != rowBytes*n {
		return nil, fmt.Errorf("page holds %d bytes, want %d rows of %d", rawLen, n, rowBytes)
	}

	var raw []byte
	if rawLen > 0 {
		r, err := pc.comp.Decompress(payload, rawLen)
		if err != nil {
			return nil, fmt.Errorf("decompress page: %w", err)
		}
		raw = r
	}

	rows := make([]*cases.Case, n)
	off := 0
	for r := range rows {
		c := cases.New(proto)
		for i := 0; i < proto.N(); i++ {
			if w := proto.Width(i); w == 0 {
				c.RawSet(i, value.Number(math.Float64frombits(binary.LittleEndian.Uint64(raw[off:]))))
				off += 8
			} else {
				c.RawSet(i, value.String(string(raw[off:off+w]), w))
				off += w
			}
		}
		rows[r] = c
	}
	return rows, nil
}
