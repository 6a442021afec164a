package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var (
	posA = &HookPos{Name: "A"}
	posB = &HookPos{Name: "B"}
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in registration order", func() {
		first := NewMockHook(mockCtrl)
		second := NewMockHook(mockCtrl)
		ctx := HookCtx{Domain: base, Pos: posA, Item: 1}

		gomock.InOrder(
			first.EXPECT().Func(ctx),
			second.EXPECT().Func(ctx),
		)

		base.AcceptHook(first)
		base.AcceptHook(second)
		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should panic on duplicated hook", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should accept function hooks", func() {
		items := []any{}
		base.AcceptHook(HookFunc(func(ctx HookCtx) {
			items = append(items, ctx.Item)
		}))

		base.InvokeHook(HookCtx{Pos: posA, Item: "x"})

		Expect(items).To(Equal([]any{"x"}))
	})
})

var _ = Describe("PosCountTracer", func() {
	It("should count positions", func() {
		t := NewPosCountTracer()

		t.Func(HookCtx{Pos: posB})
		t.Func(HookCtx{Pos: posA})
		t.Func(HookCtx{Pos: posB})

		Expect(t.Count(posA)).To(Equal(uint64(1)))
		Expect(t.Count(posB)).To(Equal(uint64(2)))
		Expect(t.PosNames()).To(Equal([]string{"B", "A"}))
	})
})
