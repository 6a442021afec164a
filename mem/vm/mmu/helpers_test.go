package mmu

import (
	"bytes"

	"github.com/sarchlab/vmsim/mem/vm"
)

// storeByte is the value the test backing store holds at the offset of the
// page. Page 0 holds 1, 2, 3, ...
func storeByte(page vm.PageNumber, offset vm.Offset) byte {
	return byte(int(page)*7 + int(offset) + 1)
}

func newTestStore() *bytes.Reader {
	data := make([]byte, ExpectedBackingStoreSize)
	for p := 0; p < vm.NumPages; p++ {
		for o := 0; o < vm.PageSize; o++ {
			data[p*vm.PageSize+o] = storeByte(vm.PageNumber(p), vm.Offset(o))
		}
	}

	return bytes.NewReader(data)
}

func addr(page vm.PageNumber, offset vm.Offset) uint32 {
	return uint32(page)<<8 | uint32(offset)
}
