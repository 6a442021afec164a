// Package vm defines the address space, the page table, and the logical clock
// shared by the translation components.
package vm

import "fmt"

const (
	// NumPages is the number of pages in the logical address space.
	NumPages = 256

	// PageSize is the number of bytes in a page and in a frame.
	PageSize = 256

	log2PageSize = 8
	offsetMask   = PageSize - 1
)

// PageNumber identifies a page in the logical address space.
type PageNumber uint8

// Offset locates a byte within a page or a frame.
type Offset uint8

// FrameIndex identifies a frame in the physical frame store.
type FrameIndex uint32

// PhysicalAddress is an address inside the simulated physical memory.
type PhysicalAddress uint32

// Decompose splits a logical address into its page number and offset. Only
// the low 16 bits of the address are used.
func Decompose(logicalAddr uint32) (PageNumber, Offset) {
	page := PageNumber((logicalAddr >> log2PageSize) & 0xff)
	offset := Offset(logicalAddr & offsetMask)

	return page, offset
}

// Compose calculates the physical address of a byte in a frame.
func Compose(frame FrameIndex, offset Offset) PhysicalAddress {
	return PhysicalAddress(uint32(frame)*PageSize + uint32(offset))
}

func (p PageNumber) String() string {
	return fmt.Sprintf("page %d", int(p))
}
