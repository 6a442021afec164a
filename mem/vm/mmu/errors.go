package mmu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
)

// SupportedMemorySizes lists the frame pool capacities a run can be configured
// with.
var SupportedMemorySizes = []int{128, 256}

// ErrUnsupportedMemorySize is returned when the configured number of frames is
// not one of the SupportedMemorySizes.
var ErrUnsupportedMemorySize = errors.New("unsupported memory size")

// ValidateMemorySize checks that the number of frames is supported.
func ValidateMemorySize(numFrames int) error {
	for _, s := range SupportedMemorySizes {
		if numFrames == s {
			return nil
		}
	}

	return fmt.Errorf("%w: %d frames, expecting one of %v",
		ErrUnsupportedMemorySize, numFrames, SupportedMemorySizes)
}

// A BackingStoreError reports that a page could not be read from the backing
// store.
type BackingStoreError struct {
	Page   vm.PageNumber
	Offset int64
	Err    error
}

func (e *BackingStoreError) Error() string {
	return fmt.Sprintf("backing store error: cannot read %s at offset %d: %v",
		e.Page, e.Offset, e.Err)
}

func (e *BackingStoreError) Unwrap() error {
	return e.Err
}
