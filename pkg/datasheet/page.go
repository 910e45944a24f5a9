package datasheet

import (
	"container/list"
	"sort"

	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/metrics"
)

// page is a run of consecutive rows. A resident page holds its rows at the
// current column version. A non-resident page has a spill copy at
// spill.version and catches up by replaying the column op log on page-in.
//
// A resident page is clean when its rows equal the spill copy with the op
// log replayed; clean pages are evicted without I/O.
type page struct {
	n          int
	rows       []*cases.Case
	dirty      bool
	spill      *extent
	pins       int
	elem       *list.Element
	unreadable error
}

func (p *page) resident() bool { return p.elem != nil }

// directory is the ordered list of pages plus a lazily rebuilt prefix
// index of first-row numbers.
type directory struct {
	pages  []*page
	starts []int
	stale  bool
}

func (d *directory) index() []int {
	if !d.stale && len(d.starts) == len(d.pages) {
		return d.starts
	}
	d.starts = d.starts[:0]
	n := 0
	for _, p := range d.pages {
		d.starts = append(d.starts, n)
		n += p.n
	}
	d.stale = false
	return d.starts
}

// locate returns the page containing row and the offset in it. row must be
// less than the total row count.
func (d *directory) locate(row int) (int, int) {
	starts := d.index()
	k := sort.Search(len(starts), func(i int) bool { return starts[i] > row }) - 1
	return k, row - starts[k]
}

func (d *directory) start(k int) int { return d.index()[k] }

// splice replaces drop pages starting at k with add.
func (d *directory) splice(k, drop int, add ...*page) {
	pages := make([]*page, 0, len(d.pages)-drop+len(add))
	pages = append(pages, d.pages[:k]...)
	pages = append(pages, add...)
	pages = append(pages, d.pages[k+drop:]...)
	d.pages = pages
	d.stale = true
}

func (d *directory) changed() { d.stale = true }

// cache tracks resident pages in LRU order, most recent at the front.
type cache struct {
	lru list.List
	max int
}

func (c *cache) size() int { return c.lru.Len() }

func (s *Datasheet) touch(p *page) {
	s.cache.lru.MoveToFront(p.elem)
}

func (s *Datasheet) admit(p *page) {
	p.elem = s.cache.lru.PushFront(p)
	metrics.ResidentPages.Inc()
}

// forget removes p from the cache and releases its rows without writing.
func (s *Datasheet) forget(p *page) {
	if p.elem != nil {
		s.cache.lru.Remove(p.elem)
		p.elem = nil
		metrics.ResidentPages.Dec()
	}
	for _, c := range p.rows {
		c.Unref()
	}
	p.rows = nil
}

// ensureRoom evicts unpinned pages, least recently used first, until extra
// more pages fit in the budget. Pinned pages may push the cache over
// budget. A failed write leaves the victim resident and returns an I/O
// error.
func (s *Datasheet) ensureRoom(extra int) error {
	if s.cache.max == 0 {
		return nil
	}
	for e := s.cache.lru.Back(); e != nil && s.cache.size()+extra > s.cache.max; {
		p := e.Value.(*page)
		prev := e.Prev()
		if p.pins == 0 {
			if err := s.evict(p); err != nil {
				return err
			}
		}
		e = prev
	}
	return nil
}

// trim evicts down to the budget after an operation that grew the cache.
// Failures are logged only: the operation already succeeded and its rows
// stay resident.
func (s *Datasheet) trim() {
	if err := s.ensureRoom(0); err != nil {
		s.log.Warn("page cache over budget", zap.Int("resident", s.cache.size()), zap.Error(err))
	}
}

func (s *Datasheet) evict(p *page) error {
	if p.dirty || p.spill == nil {
		frame, err := s.codec.encode(s.ops.cur, p.rows)
		if err == nil {
			var e extent
			e, err = s.spill.write(frame, s.ops.version())
			if err == nil {
				p.spill = &e
			}
		}
		if err != nil {
			metrics.PageIOErrors.WithLabelValues("write").Inc()
			s.stats.WriteErrors++
			s.log.Warn("page write failed", zap.Int("rows", p.n), zap.Error(err))
			return errs.Wrap(err, errs.ErrorTypeIO, "page out failed")
		}
		p.dirty = false
		s.stats.PageOuts++
		metrics.PagesOut.Inc()
		s.log.Debug("page spilled", zap.Int("rows", p.n), zap.Int64("offset", p.spill.off), zap.Int("bytes", p.spill.length))
	}
	s.forget(p)
	return nil
}

// pageIn makes p resident at the current column version and pins it. The
// caller must unpin.
func (s *Datasheet) pageIn(p *page) error {
	if p.resident() {
		s.stats.Hits++
		metrics.PageCache.WithLabelValues("hit").Inc()
		s.touch(p)
		p.pins++
		return nil
	}
	if p.unreadable != nil {
		return errs.Wrap(p.unreadable, errs.ErrorTypeIO, "page is unreadable")
	}
	s.stats.Misses++
	metrics.PageCache.WithLabelValues("miss").Inc()
	if err := s.ensureRoom(1); err != nil {
		return err
	}

	timer := metrics.NewTimer()
	rows, err := s.loadPage(p)
	if err != nil {
		p.unreadable = err
		s.stats.ReadErrors++
		metrics.PageIOErrors.WithLabelValues("read").Inc()
		s.log.Warn("page read failed; page marked unreadable", zap.Int("rows", p.n), zap.Error(err))
		return errs.Wrap(err, errs.ErrorTypeIO, "page in failed")
	}
	metrics.PageInLatency.Observe(float64(timer.Stop().Nanoseconds()))
	s.stats.PageIns++
	metrics.PagesIn.Inc()

	p.rows = s.ops.replay(rows, p.spill.version)
	s.admit(p)
	p.pins++
	return nil
}

func (s *Datasheet) loadPage(p *page) ([]*cases.Case, error) {
	frame, err := s.spill.read(*p.spill)
	if err != nil {
		return nil, err
	}
	return s.codec.decode(s.ops.protoAt(p.spill.version), frame, p.n)
}

func unpin(p *page) { p.pins-- }

// newPage creates a resident dirty page holding rows.
func (s *Datasheet) newPage(rows []*cases.Case) *page {
	p := &page{n: len(rows), rows: rows, dirty: true}
	s.admit(p)
	return p
}

// drop removes a page from the cache without writing it.
func (s *Datasheet) drop(p *page) {
	s.forget(p)
	p.unreadable = nil
	p.spill = nil
}
