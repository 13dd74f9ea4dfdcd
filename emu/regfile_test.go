package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/la32sim/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read back written registers", func() {
		regFile.Set(12, 0xCAFEBABE)
		Expect(regFile.Get(12)).To(Equal(uint32(0xCAFEBABE)))
	})

	It("should ignore out of range indices", func() {
		regFile.Set(40, 1)
		Expect(regFile.Get(40)).To(BeZero())
	})

	It("should clear every register on reset", func() {
		regFile.Set(3, 3)
		regFile.Reset()
		Expect(regFile.GPR).To(Equal([emu.NumRegs]uint32{}))
	})

	DescribeTable("name lookup",
		func(name string, idx uint8) {
			got, ok := emu.RegIndex(name)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(idx))
		},
		Entry("zero", "0", uint8(0)),
		Entry("zero alias", "zero", uint8(0)),
		Entry("ra", "ra", uint8(1)),
		Entry("sp", "sp", uint8(3)),
		Entry("a0", "a0", uint8(4)),
		Entry("t0", "t0", uint8(12)),
		Entry("r21", "r21", uint8(21)),
		Entry("fp", "fp", uint8(22)),
		Entry("s8", "s8", uint8(31)),
		Entry("dollar prefix", "$a1", uint8(5)),
		Entry("numeric", "r17", uint8(17)),
		Entry("upper case", "A7", uint8(11)),
	)

	It("should reject unknown names", func() {
		for _, name := range []string{"", "pc", "r32", "x1", "a8"} {
			_, ok := emu.RegIndex(name)
			Expect(ok).To(BeFalse(), name)
		}
	})

	It("should round trip every index through its name", func() {
		for i := uint8(0); i < emu.NumRegs; i++ {
			idx, ok := emu.RegIndex(emu.RegName(i))
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(i))
		}
	})

	It("should display registers and pc", func() {
		regFile.Set(4, 0xFFFFFFFF)

		var buf bytes.Buffer
		regFile.Display(&buf, 0x80000000)

		Expect(buf.String()).To(ContainSubstring("a0   0xffffffff -1\n"))
		Expect(buf.String()).To(HaveSuffix("pc   0x80000000\n"))
	})
})
