package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/la32sim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name every operation", func() {
		for op := insts.OpUnknown; op < insts.NumOps; op++ {
			Expect(op.String()).NotTo(BeEmpty())
		}
		Expect(insts.NumOps.String()).To(Equal("unknown"))
	})

	It("should name every addressing mode", func() {
		for _, m := range insts.Modes() {
			Expect(m.String()).NotTo(Equal("Mode(?)"))
		}
		Expect(insts.Mode(200).String()).To(Equal("Mode(?)"))
	})
})
