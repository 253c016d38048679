package schedule

import "fmt"

// Pager partitions an ordered event sequence into fixed-size pages.
type Pager struct {
	events   []Event
	pageSize int
}

// NewPager panics on a non-positive page size; callers pass a constant.
func NewPager(events []Event, pageSize int) *Pager {
	if pageSize < 1 {
		panic(fmt.Sprintf("schedule: page size must be positive, got %d", pageSize))
	}
	return &Pager{events: events, pageSize: pageSize}
}

// PageCount is ceil(len/pageSize) with a floor of one, so an empty sequence
// still renders a single empty page.
func (p *Pager) PageCount() int {
	n := (len(p.events) + p.pageSize - 1) / p.pageSize
	if n < 1 {
		return 1
	}
	return n
}

// Page returns the contiguous slice for the given 0-based index. An
// out-of-range index is a programming error: the interaction controller
// clamps navigation, so it must never be reachable.
func (p *Pager) Page(i int) []Event {
	if i < 0 || i >= p.PageCount() {
		panic(fmt.Sprintf("schedule: page %d out of range [0,%d)", i, p.PageCount()))
	}
	lo := i * p.pageSize
	hi := lo + p.pageSize
	if hi > len(p.events) {
		hi = len(p.events)
	}
	return p.events[lo:hi]
}
