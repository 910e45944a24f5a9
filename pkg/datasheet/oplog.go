package datasheet

import (
	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/value"
)

type opKind int

const (
	opInsert opKind = iota
	opDelete
	opResize
)

// colOp is one column reshape. before is the prototype the op applies to.
type colOp struct {
	kind   opKind
	before *cases.Proto
	after  *cases.Proto
	first  int
	count  int
	def    value.Value
	remap  value.RemapFunc
}

func (op colOp) apply(c *cases.Case) *cases.Case {
	switch op.kind {
	case opInsert:
		return c.WithInserted(op.after, op.first, op.def)
	case opDelete:
		return c.WithRemoved(op.after, op.first, op.count)
	default:
		return c.WithResized(op.after, op.first, op.remap)
	}
}

// opLog records column reshapes so non-resident pages can catch up when
// they are paged in. Version v is the column shape after the first v ops;
// ops below base have been discarded because no page needs them.
//
// Remap functions are replayed long after ResizeColumn returns, so they
// must depend only on their arguments.
type opLog struct {
	base int
	ops  []colOp
	cur  *cases.Proto
}

func (l *opLog) version() int { return l.base + len(l.ops) }

// protoAt returns the column shape at version v.
func (l *opLog) protoAt(v int) *cases.Proto {
	if v == l.version() {
		return l.cur
	}
	return l.ops[v-l.base].before
}

func (l *opLog) push(op colOp) {
	l.ops = append(l.ops, op)
	l.cur = op.after
}

// replay brings rows encoded at version from up to the current version.
func (l *opLog) replay(rows []*cases.Case, from int) []*cases.Case {
	for _, op := range l.ops[from-l.base:] {
		for i, c := range rows {
			rows[i] = op.apply(c)
			c.Unref()
		}
	}
	return rows
}

// compact discards ops older than the oldest version still needed.
func (l *opLog) compact(oldest int) {
	if oldest <= l.base {
		return
	}
	drop := oldest - l.base
	l.ops = append([]colOp(nil), l.ops[drop:]...)
	l.base = oldest
}
