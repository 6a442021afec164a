// Package mmu resolves logical addresses to physical addresses. It probes the
// TLB first, then the page table, and on a page fault loads the page from the
// backing store into the frame store, evicting the least recently used page
// when no frame is free.
package mmu

import (
	"fmt"
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/sim/hooking"
)

// Hook positions triggered by a Processor.
var (
	// HookPosTranslated is triggered after a reference is resolved. The item
	// is the Result.
	HookPosTranslated = &hooking.HookPos{Name: "Translated"}

	// HookPosPageEvicted is triggered when a page gives up its frame. The
	// item is an Eviction.
	HookPosPageEvicted = &hooking.HookPos{Name: "PageEvicted"}

	// HookPosLoadFailed is triggered when a page cannot be read from the
	// backing store. The item is the *BackingStoreError.
	HookPosLoadFailed = &hooking.HookPos{Name: "LoadFailed"}
)

// Outcome tells which level of the lookup hierarchy resolved a reference.
type Outcome int

// Possible outcomes of a reference.
const (
	OutcomeTLBHit Outcome = iota
	OutcomePageTableHit
	OutcomePageFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTLBHit:
		return "TLB hit"
	case OutcomePageTableHit:
		return "page-table hit"
	case OutcomePageFault:
		return "page fault"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// A Result describes how a reference was resolved.
type Result struct {
	Time            vm.LogicalTime
	LogicalAddress  uint32
	Page            vm.PageNumber
	Offset          vm.Offset
	Frame           vm.FrameIndex
	PhysicalAddress vm.PhysicalAddress
	Value           int8
	Outcome         Outcome
}

// An Eviction records a page that gave up its frame.
type Eviction struct {
	Time       vm.LogicalTime
	Page       vm.PageNumber
	Frame      vm.FrameIndex
	LastAccess vm.LogicalTime
}

// TranslationContext bundles all the state that a Processor mutates.
type TranslationContext struct {
	Clock     vm.LogicalClock
	PageTable *vm.PageTable
	TLB       *tlb.TLB
	Frames    *FrameStore
	Stats     Statistics
}

// A Snapshot is a copy of the translation state at one point in time.
type Snapshot struct {
	Time           vm.LogicalTime
	TLBEntries     []tlb.Entry
	Pages          []vm.PageTableEntry
	OccupiedFrames int
	NumFrames      int
	Stats          Statistics
}

// A Processor handles address references one at a time.
type Processor struct {
	hooking.HookableBase

	name         string
	backingStore BackingStore
	victimFinder VictimFinder
	pageBuf      []byte

	lock sync.Mutex
	ctx  *TranslationContext
}

// Name returns the name of the processor.
func (p *Processor) Name() string {
	return p.name
}

// Translate resolves a logical address and reads the byte it refers to. A
// *BackingStoreError is returned if the page of the address must be loaded
// and cannot be read. The reference is then not counted in the statistics.
func (p *Processor) Translate(logicalAddr uint32) (Result, error) {
	p.lock.Lock()
	res, eviction, err := p.translate(logicalAddr)
	p.lock.Unlock()

	if eviction != nil {
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosPageEvicted,
			Item:   *eviction,
		})
	}

	if err != nil {
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosLoadFailed,
			Item:   err,
		})

		return Result{}, err
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosTranslated,
		Item:   res,
	})

	return res, nil
}

func (p *Processor) translate(
	logicalAddr uint32,
) (Result, *Eviction, error) {
	ctx := p.ctx
	now := ctx.Clock.Tick()
	page, offset := vm.Decompose(logicalAddr)

	res := Result{
		Time:           now,
		LogicalAddress: logicalAddr,
		Page:           page,
		Offset:         offset,
	}

	var eviction *Eviction

	if frame, found := ctx.TLB.Lookup(page); found {
		res.Frame = frame
		res.Outcome = OutcomeTLBHit
		ctx.PageTable.Touch(page, now)
	} else if frame, found := ctx.PageTable.Lookup(page); found {
		res.Frame = frame
		res.Outcome = OutcomePageTableHit
		ctx.PageTable.Touch(page, now)
		ctx.TLB.Insert(page, frame)
	} else {
		frame, evicted, err := p.loadPage(page, now)
		if err != nil {
			ctx.Stats.Failed++
			return Result{}, nil, err
		}

		res.Frame = frame
		res.Outcome = OutcomePageFault
		eviction = evicted
	}

	res.PhysicalAddress = vm.Compose(res.Frame, offset)
	res.Value = int8(ctx.Frames.Read(res.Frame, offset))
	ctx.Stats.count(res.Outcome)

	return res, eviction, nil
}

func (p *Processor) loadPage(
	page vm.PageNumber,
	now vm.LogicalTime,
) (vm.FrameIndex, *Eviction, error) {
	ctx := p.ctx

	err := readPage(p.backingStore, page, p.pageBuf)
	if err != nil {
		return 0, nil, err
	}

	var (
		frame    vm.FrameIndex
		eviction *Eviction
	)

	if ctx.Frames.IsFull() {
		victim := p.victimFinder.FindVictim(ctx.PageTable)
		old := ctx.PageTable.Evict(victim)
		frame = old.Frame
		ctx.Stats.Evictions++

		eviction = &Eviction{
			Time:       now,
			Page:       victim,
			Frame:      old.Frame,
			LastAccess: old.LastAccess,
		}
	} else {
		frame = ctx.Frames.Allocate()
	}

	ctx.Frames.Write(frame, p.pageBuf)
	ctx.PageTable.Install(page, frame, now)
	ctx.TLB.Insert(page, frame)

	return frame, eviction, nil
}

// Stats returns a copy of the statistics collected so far.
func (p *Processor) Stats() Statistics {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.ctx.Stats
}

// Snapshot copies the current translation state.
func (p *Processor) Snapshot() Snapshot {
	p.lock.Lock()
	defer p.lock.Unlock()

	ctx := p.ctx

	return Snapshot{
		Time:           ctx.Clock.Now(),
		TLBEntries:     ctx.TLB.Entries(),
		Pages:          ctx.PageTable.ValidEntries(),
		OccupiedFrames: ctx.Frames.Occupied(),
		NumFrames:      ctx.Frames.NumFrames(),
		Stats:          ctx.Stats,
	}
}
