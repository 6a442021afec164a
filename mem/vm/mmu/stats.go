package mmu

// Statistics counts the outcomes of the references a Processor has handled.
// References that fail are counted in Failed only.
type Statistics struct {
	References    uint64
	TLBHits       uint64
	PageTableHits uint64
	PageFaults    uint64
	Evictions     uint64
	Failed        uint64
}

// PageFaultRate returns the percentage of references that caused a page fault.
func (s Statistics) PageFaultRate() float64 {
	return percentage(s.PageFaults, s.References)
}

// TLBHitRate returns the percentage of references that hit in the TLB.
func (s Statistics) TLBHitRate() float64 {
	return percentage(s.TLBHits, s.References)
}

func (s *Statistics) count(o Outcome) {
	s.References++

	switch o {
	case OutcomeTLBHit:
		s.TLBHits++
	case OutcomePageTableHit:
		s.PageTableHits++
	case OutcomePageFault:
		s.PageFaults++
	}
}

func percentage(n, total uint64) float64 {
	if total == 0 {
		return 0
	}

	return float64(n) * 100 / float64(total)
}
