// Package tlb provides a translation-lookaside buffer that caches page to
// frame mappings.
//
// The buffer replaces entries in insertion order. A hit neither reorders nor
// refreshes an entry, and entries are never invalidated when the page table
// evicts the page they describe. A stale entry therefore keeps answering for
// its page until it is pushed out by newer insertions.
package tlb

import "github.com/sarchlab/vmsim/mem/vm"

// DefaultCapacity is the number of entries of a TLB unless configured
// otherwise.
const DefaultCapacity = 16

// An Entry maps a page to a frame.
type Entry struct {
	Page  vm.PageNumber
	Frame vm.FrameIndex
}

// A TLB is a fixed-capacity, insertion-ordered cache of translations.
type TLB struct {
	entries []Entry
}

// New creates an empty TLB that can hold up to capacity entries.
func New(capacity int) *TLB {
	if capacity <= 0 {
		panic("tlb capacity must be positive")
	}

	return &TLB{
		entries: make([]Entry, 0, capacity),
	}
}

// Capacity returns the maximum number of entries.
func (t *TLB) Capacity() int {
	return cap(t.entries)
}

// Len returns the number of entries currently held.
func (t *TLB) Len() int {
	return len(t.entries)
}

// Lookup returns the frame of the first entry, in insertion order, that maps
// the page.
func (t *TLB) Lookup(page vm.PageNumber) (vm.FrameIndex, bool) {
	for _, e := range t.entries {
		if e.Page == page {
			return e.Frame, true
		}
	}

	return 0, false
}

// Insert appends a mapping. When the TLB is full, the oldest entry is dropped
// and the rest shift toward the front.
func (t *TLB) Insert(page vm.PageNumber, frame vm.FrameIndex) {
	if len(t.entries) == cap(t.entries) {
		copy(t.entries, t.entries[1:])
		t.entries = t.entries[:len(t.entries)-1]
	}

	t.entries = append(t.entries, Entry{Page: page, Frame: frame})
}

// Entries returns a copy of the entries from the oldest to the newest.
func (t *TLB) Entries() []Entry {
	entries := make([]Entry, len(t.entries))
	copy(entries, t.entries)

	return entries
}
