package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/la32sim/insts"
)

var _ = Describe("Template", func() {
	It("should ignore whitespace in patterns", func() {
		t, err := insts.NewTemplate("0000000000\t0100000 ????? ?????\n?????", "add.w", insts.ModeThreeReg, insts.OpADDW)

		Expect(err).NotTo(HaveOccurred())
		Expect(t.Pattern).To(HaveLen(insts.PatternLen))
		Expect(t.Mask).To(Equal(uint32(0xFFFF8000)))
		Expect(t.Match).To(Equal(uint32(0x00100000)))
	})

	It("should reject a short pattern", func() {
		_, err := insts.NewTemplate("0000 ????", "bad", insts.ModeNoOperand, insts.OpINV)
		Expect(err).To(MatchError(insts.ErrPatternLength))
	})

	It("should reject an unknown symbol", func() {
		_, err := insts.NewTemplate("0000000000 0100000x???? ????? ?????", "bad", insts.ModeNoOperand, insts.OpINV)
		Expect(err).To(MatchError(insts.ErrPatternSymbol))
	})

	It("should panic from MustTemplate on a malformed pattern", func() {
		Expect(func() {
			insts.MustTemplate("01", "bad", insts.ModeNoOperand, insts.OpINV)
		}).To(Panic())
	})

	It("should match only on fixed bits", func() {
		t := insts.MustTemplate("1??????????????????????????????0", "edge", insts.ModeNoOperand, insts.OpINV)

		Expect(t.Matches(0x80000000)).To(BeTrue())
		Expect(t.Matches(0xFFFFFFFE)).To(BeTrue())
		Expect(t.Matches(0xFFFFFFFF)).To(BeFalse())
		Expect(t.Matches(0x00000000)).To(BeFalse())
	})

	It("should describe coverage between templates", func() {
		catchAll := insts.MustTemplate("????????????????????????????????", "inv", insts.ModeNoOperand, insts.OpINV)
		addw := insts.MustTemplate("0000000000 0100000????? ????? ?????", "add.w", insts.ModeThreeReg, insts.OpADDW)

		Expect(catchAll.Covers(&addw)).To(BeTrue())
		Expect(addw.Covers(&catchAll)).To(BeFalse())
		Expect(addw.Covers(&addw)).To(BeTrue())
	})
})

var _ = Describe("Canonical table", func() {
	It("should end with the catch-all", func() {
		templates := insts.Templates()
		last := templates[len(templates)-1]

		Expect(last.Op).To(Equal(insts.OpINV))
		Expect(last.Mask).To(BeZero())
	})

	It("should have 32-symbol patterns throughout", func() {
		for _, t := range insts.Templates() {
			Expect(t.Pattern).To(HaveLen(insts.PatternLen), t.Mnemonic)
		}
	})

	It("should hand out copies", func() {
		templates := insts.Templates()
		templates[0].Op = insts.OpINV

		Expect(insts.Templates()[0].Op).To(Equal(insts.OpPCADDU12I))
	})

	It("should report every unreachable template", func() {
		type pair struct{ shadowed, by string }
		var got []pair
		for _, s := range insts.Shadowed() {
			Expect(s.ByIndex).To(BeNumerically("<", s.Index))
			got = append(got, pair{s.Template.Mnemonic, s.By.Mnemonic})
		}

		Expect(got).To(Equal([]pair{
			{"mod.wu", "mod.w"},
			{"addi.w", "addi.w"},
			{"slti", "sltui"},
			{"xori", "andi"},
			{"mulh.wu", "mulh.w"},
			{"srai.w", "srli.w"},
			{"or", "or"},
			{"bl", "bl"},
		}))
	})

	It("should find no shadowing in a disjoint table", func() {
		shadows := insts.ShadowedIn([]insts.Template{
			insts.MustTemplate("0000000000 0100000????? ????? ?????", "add.w", insts.ModeThreeReg, insts.OpADDW),
			insts.MustTemplate("0000000000 0100010????? ????? ?????", "sub.w", insts.ModeThreeReg, insts.OpSUBW),
		})
		Expect(shadows).To(BeEmpty())
	})

	It("should format templates for listings", func() {
		t := insts.Templates()[0]
		Expect(t.String()).To(ContainSubstring("pcaddu12i"))
		Expect(t.String()).To(ContainSubstring("RegImm20"))
		Expect(t.String()).To(ContainSubstring(t.Pattern))
	})
})
