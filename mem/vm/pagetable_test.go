package vm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
)

var _ = Describe("PageTable", func() {
	var pt *vm.PageTable

	BeforeEach(func() {
		pt = vm.NewPageTable()
	})

	It("should start with all entries invalid", func() {
		for i := 0; i < vm.NumPages; i++ {
			_, found := pt.Lookup(vm.PageNumber(i))
			Expect(found).To(BeFalse())
		}
		Expect(pt.NumValid()).To(Equal(0))
	})

	It("should install and look up pages", func() {
		pt.Install(7, 3, 10)

		frame, found := pt.Lookup(7)

		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(vm.FrameIndex(3)))
		Expect(pt.Entry(7).LastAccess).To(Equal(vm.LogicalTime(10)))
		Expect(pt.NumValid()).To(Equal(1))
	})

	It("should not double count a reinstalled page", func() {
		pt.Install(7, 3, 10)
		pt.Install(7, 4, 11)

		Expect(pt.NumValid()).To(Equal(1))
		Expect(pt.Entry(7).Frame).To(Equal(vm.FrameIndex(4)))
	})

	It("should touch only the timestamp", func() {
		pt.Install(7, 3, 10)

		Expect(pt.Touch(7, 20)).To(BeTrue())

		e := pt.Entry(7)
		Expect(e.Frame).To(Equal(vm.FrameIndex(3)))
		Expect(e.Valid).To(BeTrue())
		Expect(e.LastAccess).To(Equal(vm.LogicalTime(20)))
	})

	It("should ignore touches on invalid pages", func() {
		Expect(pt.Touch(9, 20)).To(BeFalse())
		Expect(pt.Entry(9).LastAccess).To(Equal(vm.LogicalTime(0)))
	})

	It("should evict pages", func() {
		pt.Install(7, 3, 10)

		old := pt.Evict(7)

		Expect(old.Frame).To(Equal(vm.FrameIndex(3)))
		Expect(old.LastAccess).To(Equal(vm.LogicalTime(10)))
		Expect(pt.Entry(7)).To(Equal(vm.PageTableEntry{Page: 7}))
		Expect(pt.NumValid()).To(Equal(0))
	})

	It("should panic when evicting an invalid page", func() {
		Expect(func() { pt.Evict(7) }).To(Panic())
	})

	It("should list valid entries in page order", func() {
		pt.Install(200, 0, 1)
		pt.Install(5, 1, 2)
		pt.Install(60, 2, 3)

		pages := []vm.PageNumber{}
		for _, e := range pt.ValidEntries() {
			pages = append(pages, e.Page)
		}

		Expect(pages).To(Equal([]vm.PageNumber{5, 60, 200}))
	})
})
