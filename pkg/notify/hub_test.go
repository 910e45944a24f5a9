package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Notify(e Event) { *r.log = append(*r.log, r.name+":"+string(e.Kind)) }

func TestEmitInSubscriptionOrder(t *testing.T) {
	var log []string
	var h Hub
	h.Subscribe(recorder{"a", &log})
	h.Subscribe(recorder{"b", &log})

	h.Emit(RowEvent(RowsInserted, 0, 1))
	h.Emit(CellEvent(0, 0))
	assert.Equal(t, []string{"a:rows_inserted", "b:rows_inserted", "a:cells_changed", "b:cells_changed"}, log)
}

func TestCancel(t *testing.T) {
	var log []string
	var h Hub
	a := h.Subscribe(recorder{"a", &log})
	h.Subscribe(recorder{"b", &log})

	a.Cancel()
	a.Cancel()
	h.Emit(ResetEvent())
	assert.Equal(t, []string{"b:reset"}, log)
	assert.Equal(t, 1, h.Len())
}

func TestCancelDuringEmit(t *testing.T) {
	var log []string
	var h Hub
	var second *Subscription
	h.Subscribe(ObserverFunc(func(Event) { second.Cancel() }))
	second = h.Subscribe(recorder{"b", &log})

	h.Emit(ResetEvent())
	assert.Empty(t, log)
}

func TestBlockDropsEvents(t *testing.T) {
	var n int
	var h Hub
	h.Subscribe(ObserverFunc(func(Event) { n++ }))

	h.Block()
	h.Block()
	h.Emit(ResetEvent())
	h.Unblock()
	assert.True(t, h.Blocked())
	h.Emit(ResetEvent())
	h.Unblock()
	h.Unblock()
	h.Emit(ResetEvent())
	assert.Equal(t, 1, n)
}

func TestSpan(t *testing.T) {
	s := Range(2, 3)
	assert.False(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.True(t, All.Contains(1<<30))
	assert.False(t, None.Contains(0))
	assert.Equal(t, "[2,5)", s.String())
	assert.Equal(t, "all", All.String())

	e := ColumnEvent(ColumnsInserted, 1, 1, 4)
	assert.Equal(t, ScopeAll, e.Rows.Scope)
	assert.Equal(t, 4, e.CaseIndex)
	assert.Equal(t, -1, e.OldWidth)
}
