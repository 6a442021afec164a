package vm

// A PageTableEntry describes the translation state of one page.
type PageTableEntry struct {
	Page       PageNumber
	Frame      FrameIndex
	Valid      bool
	LastAccess LogicalTime
}

// A PageTable maps every page of the address space to its frame. Slots are
// never removed, only invalidated and reused.
type PageTable struct {
	entries  [NumPages]PageTableEntry
	numValid int
}

// NewPageTable creates a page table where all the entries are invalid.
func NewPageTable() *PageTable {
	pt := &PageTable{}
	for i := range pt.entries {
		pt.entries[i].Page = PageNumber(i)
	}

	return pt
}

// Lookup returns the frame assigned to the page. The bool return value
// indicates if the page is valid.
func (pt *PageTable) Lookup(page PageNumber) (FrameIndex, bool) {
	e := &pt.entries[page]
	if !e.Valid {
		return 0, false
	}

	return e.Frame, true
}

// Install marks the page as valid and maps it to the frame.
func (pt *PageTable) Install(page PageNumber, frame FrameIndex, t LogicalTime) {
	e := &pt.entries[page]
	if !e.Valid {
		pt.numValid++
	}

	e.Valid = true
	e.Frame = frame
	e.LastAccess = t
}

// Touch refreshes the last access time of a valid page. It reports false and
// changes nothing if the page is not valid.
func (pt *PageTable) Touch(page PageNumber, t LogicalTime) bool {
	e := &pt.entries[page]
	if !e.Valid {
		return false
	}

	e.LastAccess = t

	return true
}

// Evict invalidates the page and returns the entry as it was before the
// eviction.
func (pt *PageTable) Evict(page PageNumber) PageTableEntry {
	e := &pt.entries[page]
	pageMustBeValid(e)

	old := *e
	*e = PageTableEntry{Page: page}
	pt.numValid--

	return old
}

// Entry returns a copy of the entry of the page.
func (pt *PageTable) Entry(page PageNumber) PageTableEntry {
	return pt.entries[page]
}

// NumValid returns the number of valid entries.
func (pt *PageTable) NumValid() int {
	return pt.numValid
}

// ValidEntries returns copies of all valid entries in ascending page order.
func (pt *PageTable) ValidEntries() []PageTableEntry {
	entries := make([]PageTableEntry, 0, pt.numValid)
	pt.Visit(func(e PageTableEntry) {
		entries = append(entries, e)
	})

	return entries
}

// Visit calls the function with each valid entry in ascending page order.
func (pt *PageTable) Visit(f func(e PageTableEntry)) {
	for i := range pt.entries {
		if pt.entries[i].Valid {
			f(pt.entries[i])
		}
	}
}

func pageMustBeValid(e *PageTableEntry) {
	if !e.Valid {
		panic("page is not valid")
	}
}
