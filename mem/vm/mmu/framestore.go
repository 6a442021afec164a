package mmu

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
)

// A FrameStore is the simulated physical memory. It holds a fixed number of
// page-sized frames. Frames are handed out in index order and, once handed
// out, are only ever reused through eviction.
type FrameStore struct {
	data     []byte
	occupied int
}

// NewFrameStore creates a frame store with numFrames empty frames.
func NewFrameStore(numFrames int) *FrameStore {
	if numFrames <= 0 {
		panic("number of frames must be positive")
	}

	return &FrameStore{
		data: make([]byte, numFrames*vm.PageSize),
	}
}

// NumFrames returns the capacity of the frame store.
func (s *FrameStore) NumFrames() int {
	return len(s.data) / vm.PageSize
}

// Occupied returns the number of frames that have been handed out.
func (s *FrameStore) Occupied() int {
	return s.occupied
}

// IsFull reports whether every frame has been handed out.
func (s *FrameStore) IsFull() bool {
	return s.occupied == s.NumFrames()
}

// Allocate hands out the next free frame.
func (s *FrameStore) Allocate() vm.FrameIndex {
	if s.IsFull() {
		panic("frame store is full")
	}

	frame := vm.FrameIndex(s.occupied)
	s.occupied++

	return frame
}

// Write copies a page of data into the frame.
func (s *FrameStore) Write(frame vm.FrameIndex, data []byte) {
	if len(data) != vm.PageSize {
		panic(fmt.Sprintf("frame data must be %d bytes, got %d",
			vm.PageSize, len(data)))
	}

	copy(s.frame(frame), data)
}

// Read returns the byte at the offset of the frame.
func (s *FrameStore) Read(frame vm.FrameIndex, offset vm.Offset) byte {
	return s.frame(frame)[offset]
}

func (s *FrameStore) frame(frame vm.FrameIndex) []byte {
	s.frameMustBeInRange(frame)

	start := int(frame) * vm.PageSize

	return s.data[start : start+vm.PageSize]
}

func (s *FrameStore) frameMustBeInRange(frame vm.FrameIndex) {
	if int(frame) >= s.NumFrames() {
		panic(fmt.Sprintf("frame %d out of range [0, %d)",
			frame, s.NumFrames()))
	}
}
