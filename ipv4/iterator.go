package ipv4

import "sort"

// AddrIter enumerates the addresses of a parent subnet in ascending
// host order, skipping any address contained in an avoid subnet.
//
// Avoid ranges are sorted by (start asc, end desc) so that overlapping
// or nested ranges coalesce: when current lands inside a range we jump
// to range.end+1 and advance the cursor past every range whose end is
// already behind the new current, in one pass.
type AddrIter struct {
	parent  Subnet
	ranges  []addrRange
	cursor  int
	current Addr
	started bool
	done    bool
}

type addrRange struct {
	start, end Addr
}

// NewAddrIter constructs an iterator over parent minus the addresses
// covered by avoid.
func NewAddrIter(parent Subnet, avoid []Subnet) *AddrIter {
	ranges := make([]addrRange, 0, len(avoid))
	for _, s := range avoid {
		ranges = append(ranges, addrRange{start: s.Addr(), end: s.Last()})
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].end > ranges[j].end
	})
	it := &AddrIter{parent: parent, ranges: ranges, current: parent.Addr()}
	return it
}

// skipAvoided advances it.current past any avoid range it currently
// sits inside, repeating until current is outside of every relevant
// range (handles coalesced/nested ranges).
func (it *AddrIter) skipAvoided() {
	for it.cursor < len(it.ranges) {
		r := it.ranges[it.cursor]
		if it.current.Compare(r.end) > 0 {
			// this range is entirely behind us; advance past it.
			it.cursor++
			continue
		}
		if it.current.Compare(r.start) < 0 {
			// current is before this (and therefore every later) range.
			return
		}
		// current falls inside [start,end]; jump past it and re-check.
		if r.end == ^Addr(0) {
			it.done = true
			return
		}
		it.current = r.end.Add(1)
		it.cursor++
	}
}

// Next returns the next address in ascending order, or ok=false once
// the parent subnet is exhausted.
func (it *AddrIter) Next() (addr Addr, ok bool) {
	if it.done {
		return 0, false
	}
	if !it.started {
		it.started = true
	} else {
		if it.current == it.parent.Last() {
			it.done = true
			return 0, false
		}
		it.current = it.current.Add(1)
	}
	it.skipAvoided()
	if it.done || it.current.Compare(it.parent.Last()) > 0 {
		it.done = true
		return 0, false
	}
	return it.current, true
}
