package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
)

// A Builder can build a Processor.
type Builder struct {
	numFrames    int
	tlbCapacity  int
	backingStore BackingStore
	victimFinder VictimFinder
}

// MakeBuilder creates a new builder with 256 frames and a 16-entry TLB.
func MakeBuilder() Builder {
	return Builder{
		numFrames:   256,
		tlbCapacity: tlb.DefaultCapacity,
	}
}

// WithNumFrames sets the number of frames in the frame store.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithTLBCapacity sets the number of entries the TLB can hold.
func (b Builder) WithTLBCapacity(n int) Builder {
	b.tlbCapacity = n
	return b
}

// WithBackingStore sets the store that pages are loaded from.
func (b Builder) WithBackingStore(s BackingStore) Builder {
	b.backingStore = s
	return b
}

// WithVictimFinder replaces the default LRU victim finder.
func (b Builder) WithVictimFinder(f VictimFinder) Builder {
	b.victimFinder = f
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.numFrames <= 0 {
		panic("number of frames must be positive")
	}

	if b.backingStore == nil {
		panic("backing store is not set")
	}
}

// Build creates a Processor with empty translation state.
func (b Builder) Build(name string) *Processor {
	b.parametersMustBeValid()

	victimFinder := b.victimFinder
	if victimFinder == nil {
		victimFinder = NewLRUVictimFinder()
	}

	p := &Processor{
		name:         name,
		backingStore: b.backingStore,
		victimFinder: victimFinder,
		pageBuf:      make([]byte, vm.PageSize),
		ctx: &TranslationContext{
			PageTable: vm.NewPageTable(),
			TLB:       tlb.New(b.tlbCapacity),
			Frames:    NewFrameStore(b.numFrames),
		},
	}

	return p
}
