// Package notify carries change events from the case store to its observers.
//
// Events are delivered synchronously, in subscription order, after the
// mutation they describe has been applied. A Span with ScopeAll invalidates
// the whole axis.
package notify

import "fmt"

// Kind identifies what changed.
type Kind string

const (
	RowsInserted    Kind = "rows_inserted"
	RowsDeleted     Kind = "rows_deleted"
	CellsChanged    Kind = "cells_changed"
	ColumnsInserted Kind = "columns_inserted"
	ColumnsDeleted  Kind = "columns_deleted"
	ColumnsResized  Kind = "columns_resized"
	// ColumnsChanged covers metadata edits such as renames and labels.
	ColumnsChanged Kind = "columns_changed"
	// Reset replaces the whole backing store.
	Reset Kind = "reset"
)

// Scope tells whether a Span is bounded.
type Scope int

const (
	ScopeRange Scope = iota
	ScopeAll
)

// Span is a range along one axis.
type Span struct {
	Scope Scope
	First int
	Count int
}

// Range returns the span [first, first+count).
func Range(first, count int) Span {
	return Span{Scope: ScopeRange, First: first, Count: count}
}

// All is the whole-axis span.
var All = Span{Scope: ScopeAll}

// None is an empty span.
var None = Span{}

// Contains reports whether i lies in s.
func (s Span) Contains(i int) bool {
	if s.Scope == ScopeAll {
		return true
	}
	return i >= s.First && i < s.First+s.Count
}

func (s Span) String() string {
	if s.Scope == ScopeAll {
		return "all"
	}
	return fmt.Sprintf("[%d,%d)", s.First, s.First+s.Count)
}

// Event describes one applied change. Cols are display columns. CaseIndex
// and OldWidth are set for column events that have them and are -1
// otherwise.
type Event struct {
	Kind      Kind
	Rows      Span
	Cols      Span
	CaseIndex int
	OldWidth  int
}

func (e Event) String() string {
	return fmt.Sprintf("%s rows=%s cols=%s", e.Kind, e.Rows, e.Cols)
}

// RowEvent builds a row-axis event over every column.
func RowEvent(k Kind, first, count int) Event {
	return Event{Kind: k, Rows: Range(first, count), Cols: All, CaseIndex: -1, OldWidth: -1}
}

// ColumnEvent builds a column-axis event over every row.
func ColumnEvent(k Kind, first, count, caseIndex int) Event {
	return Event{Kind: k, Rows: All, Cols: Range(first, count), CaseIndex: caseIndex, OldWidth: -1}
}

// CellEvent builds a single-cell change event.
func CellEvent(row, col int) Event {
	return Event{Kind: CellsChanged, Rows: Range(row, 1), Cols: Range(col, 1), CaseIndex: -1, OldWidth: -1}
}

// ResetEvent invalidates both axes.
func ResetEvent() Event {
	return Event{Kind: Reset, Rows: All, Cols: All, CaseIndex: -1, OldWidth: -1}
}

// Observer receives events.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }
