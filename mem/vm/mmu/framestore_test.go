package mmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
)

var _ = Describe("FrameStore", func() {
	var s *FrameStore

	BeforeEach(func() {
		s = NewFrameStore(2)
	})

	It("should hand out frames in order", func() {
		Expect(s.NumFrames()).To(Equal(2))
		Expect(s.Allocate()).To(Equal(vm.FrameIndex(0)))
		Expect(s.IsFull()).To(BeFalse())
		Expect(s.Allocate()).To(Equal(vm.FrameIndex(1)))
		Expect(s.IsFull()).To(BeTrue())
		Expect(s.Occupied()).To(Equal(2))
	})

	It("should panic when allocating from a full store", func() {
		s.Allocate()
		s.Allocate()

		Expect(func() { s.Allocate() }).To(Panic())
	})

	It("should store frame contents", func() {
		data := make([]byte, vm.PageSize)
		data[10] = 0xab

		s.Write(1, data)

		Expect(s.Read(1, 10)).To(Equal(byte(0xab)))
		Expect(s.Read(0, 10)).To(Equal(byte(0)))
	})

	It("should panic on out of range frames", func() {
		Expect(func() { s.Read(2, 0) }).To(Panic())
	})

	It("should panic on partial frame data", func() {
		Expect(func() { s.Write(0, make([]byte, 10)) }).To(Panic())
	})
})
