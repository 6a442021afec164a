package mmu

import "github.com/sarchlab/vmsim/mem/vm"

// A VictimFinder decides which page should give up its frame.
type VictimFinder interface {
	FindVictim(pt *vm.PageTable) vm.PageNumber
}

// LRUVictimFinder evicts the valid page with the oldest last access time.
// Ties go to the lowest page number.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim scans the whole page table for the least recently used valid
// page. It panics if no page is valid.
func (e *LRUVictimFinder) FindVictim(pt *vm.PageTable) vm.PageNumber {
	var (
		victim vm.PageTableEntry
		found  bool
	)

	pt.Visit(func(entry vm.PageTableEntry) {
		if !found || entry.LastAccess < victim.LastAccess {
			victim = entry
			found = true
		}
	})

	if !found {
		panic("no valid page to evict")
	}

	return victim.Page
}
