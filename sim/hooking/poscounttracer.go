package hooking

import "sync"

// PosCountTracer counts how many times each hook position is triggered.
type PosCountTracer struct {
	lock     sync.Mutex
	posNames []string
	counts   map[string]uint64
}

// NewPosCountTracer creates a new PosCountTracer.
func NewPosCountTracer() *PosCountTracer {
	return &PosCountTracer{
		counts: make(map[string]uint64),
	}
}

// Func counts the position of the hook context.
func (t *PosCountTracer) Func(ctx HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.counts[ctx.Pos.Name]
	if !ok {
		t.posNames = append(t.posNames, ctx.Pos.Name)
	}

	t.counts[ctx.Pos.Name]++
}

// PosNames returns the names of the positions seen, in the order they were
// first triggered.
func (t *PosCountTracer) PosNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.posNames))
	copy(names, t.posNames)

	return names
}

// Count returns the number of times the position has been triggered.
func (t *PosCountTracer) Count(pos *HookPos) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[pos.Name]
}
