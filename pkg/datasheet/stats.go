package datasheet

// Stats reports the paging activity of one datasheet. Process-wide totals
// are exported through the metrics package.
type Stats struct {
	Rows            int
	Columns         int
	Pages           int
	ResidentPages   int
	UnreadablePages int
	PendingOps      int
	SpillBytes      int64
	PageIns         int64
	PageOuts        int64
	Hits            int64
	Misses          int64
	ReadErrors      int64
	WriteErrors     int64
}

// Stats returns a snapshot of the sheet's counters.
func (s *Datasheet) Stats() Stats {
	st := s.stats
	st.Rows = s.rows
	st.Columns = s.Columns()
	st.Pages = len(s.dir.pages)
	st.ResidentPages = s.cache.size()
	st.PendingOps = len(s.ops.ops)
	st.SpillBytes = s.spill.end
	for _, p := range s.dir.pages {
		if p.unreadable != nil {
			st.UnreadablePages++
		}
	}
	return st
}
