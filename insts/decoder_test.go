package insts_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/la32sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Three register (3R)", func() {
		// add.w $r3, $r1, $r2 -> 0x00100823
		It("should decode add.w $r3, $r1, $r2", func() {
			inst := decoder.Decode(0x00100823)

			Expect(inst.Op).To(Equal(insts.OpADDW))
			Expect(inst.Mode).To(Equal(insts.ModeThreeReg))
			Expect(inst.Mnemonic).To(Equal("add.w"))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rj).To(Equal(uint8(1)))
			Expect(inst.Rk).To(Equal(uint8(2)))
			Expect(inst.UsesRj).To(BeTrue())
			Expect(inst.UsesRk).To(BeTrue())
			Expect(inst.Imm).To(Equal(int32(0)))
		})

		It("should decode the rest of the 3R group", func() {
			cases := map[uint32]insts.Op{
				encode3R(0x22, 1, 2, 3): insts.OpSUBW,
				encode3R(0x2a, 1, 2, 3): insts.OpOR,
				encode3R(0x2b, 1, 2, 3): insts.OpXOR,
				encode3R(0x29, 1, 2, 3): insts.OpAND,
				encode3R(0x28, 1, 2, 3): insts.OpNOR,
				encode3R(0x24, 1, 2, 3): insts.OpSLT,
				encode3R(0x25, 1, 2, 3): insts.OpSLTU,
				encode3R(0x38, 1, 2, 3): insts.OpMULW,
				encode3R(0x2e, 1, 2, 3): insts.OpSLLW,
				encode3R(0x2f, 1, 2, 3): insts.OpSRLW,
				encode3R(0x30, 1, 2, 3): insts.OpSRAW,
				encode3R(0x40, 1, 2, 3): insts.OpDIVW,
				encode3R(0x42, 1, 2, 3): insts.OpDIVWU,
			}
			for word, op := range cases {
				Expect(decoder.Decode(word).Op).To(Equal(op), "word 0x%08X", word)
			}
		})
	})

	Describe("Register with 12-bit immediate (2RI12)", func() {
		// addi.w $r4, $r5, -1 -> 0x02BFFCA4
		It("should sign-extend a negative immediate", func() {
			inst := decoder.Decode(0x02BFFCA4)

			Expect(inst.Op).To(Equal(insts.OpADDIW))
			Expect(inst.Mode).To(Equal(insts.ModeRegImm12Signed))
			Expect(inst.Rd).To(Equal(uint8(4)))
			Expect(inst.Rj).To(Equal(uint8(5)))
			Expect(inst.UsesRj).To(BeTrue())
			Expect(inst.UsesRk).To(BeFalse())
			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		// addi.w $r4, $r5, 2047 -> 0x029FFCA4
		It("should keep the largest positive immediate", func() {
			inst := decoder.Decode(0x029FFCA4)
			Expect(inst.Imm).To(Equal(int32(2047)))
		})

		It("should sign-extend the unsigned-mode immediate at decode time", func() {
			// andi $r1, $r2, 0x800
			inst := decoder.Decode(encode2RI12(0x00d, 1, 2, 0x800))

			Expect(inst.Op).To(Equal(insts.OpANDI))
			Expect(inst.Mode).To(Equal(insts.ModeRegImm12Unsigned))
			Expect(inst.Imm).To(Equal(int32(-2048)))
		})

		It("should decode loads and stores", func() {
			cases := map[uint32]insts.Op{
				encode2RI12(0x0a2, 1, 2, 8): insts.OpLDW,
				encode2RI12(0x0a1, 1, 2, 8): insts.OpLDH,
				encode2RI12(0x0a0, 1, 2, 8): insts.OpLDB,
				encode2RI12(0x0a8, 1, 2, 8): insts.OpLDBU,
				encode2RI12(0x0a9, 1, 2, 8): insts.OpLDHU,
				encode2RI12(0x0a6, 1, 2, 8): insts.OpSTW,
				encode2RI12(0x0a5, 1, 2, 8): insts.OpSTH,
				encode2RI12(0x0a4, 1, 2, 8): insts.OpSTB,
			}
			for word, op := range cases {
				inst := decoder.Decode(word)
				Expect(inst.Op).To(Equal(op), "word 0x%08X", word)
				Expect(inst.Imm).To(Equal(int32(8)))
			}
		})
	})

	Describe("Register with 20-bit immediate (1RI20)", func() {
		// pcaddu12i $t0, 0 -> 0x1C00000C
		It("should decode pcaddu12i", func() {
			inst := decoder.Decode(0x1C00000C)

			Expect(inst.Op).To(Equal(insts.OpPCADDU12I))
			Expect(inst.Mode).To(Equal(insts.ModeRegImm20))
			Expect(inst.Rd).To(Equal(uint8(12)))
			Expect(inst.UsesRj).To(BeFalse())
			Expect(inst.Imm).To(Equal(int32(0)))
		})

		It("should shift the immediate into the upper 20 bits", func() {
			inst := decoder.Decode(encode1RI20(0x0e, 1, 1))
			Expect(inst.Imm).To(Equal(int32(4096)))
		})

		// lu12i.w $t0, -524288 -> 0x1500000C
		It("should sign-extend the 20-bit field", func() {
			inst := decoder.Decode(0x1500000C)

			Expect(inst.Op).To(Equal(insts.OpLU12IW))
			Expect(inst.Imm).To(Equal(int32(math.MinInt32)))
		})
	})

	Describe("26-bit offset (I26)", func() {
		It("should decode b +8", func() {
			inst := decoder.Decode(0x50000800)

			Expect(inst.Op).To(Equal(insts.OpB))
			Expect(inst.Mode).To(Equal(insts.ModeImm26))
			Expect(inst.Imm).To(Equal(int32(8)))
		})

		It("should decode b -8", func() {
			inst := decoder.Decode(0x53FFFBFF)
			Expect(inst.Imm).To(Equal(int32(-8)))
		})

		It("should decode b -4096", func() {
			inst := decoder.Decode(encodeI26(0x14, -4096))
			Expect(inst.Imm).To(Equal(int32(-4096)))
		})

		It("should decode bl +256", func() {
			inst := decoder.Decode(0x54010000)

			Expect(inst.Op).To(Equal(insts.OpBL))
			Expect(inst.Imm).To(Equal(int32(256)))
		})
	})

	Describe("16-bit offset (2RI16)", func() {
		// beq $a0, $a1, -4 -> 0x5BFFFCA4
		It("should decode a backward beq", func() {
			inst := decoder.Decode(0x5BFFFCA4)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Mode).To(Equal(insts.ModeRegImm16))
			Expect(inst.Rd).To(Equal(uint8(4)))
			Expect(inst.Rj).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(-4)))
		})

		It("should decode every compare-and-branch", func() {
			cases := map[uint32]insts.Op{
				encode2RI16(0x13, 1, 2, 16): insts.OpJIRL,
				encode2RI16(0x17, 1, 2, 16): insts.OpBNE,
				encode2RI16(0x18, 1, 2, 16): insts.OpBLT,
				encode2RI16(0x19, 1, 2, 16): insts.OpBGE,
				encode2RI16(0x1a, 1, 2, 16): insts.OpBLTU,
				encode2RI16(0x1b, 1, 2, 16): insts.OpBGEU,
			}
			for word, op := range cases {
				inst := decoder.Decode(word)
				Expect(inst.Op).To(Equal(op), "word 0x%08X", word)
				Expect(inst.Imm).To(Equal(int32(16)))
			}
		})
	})

	Describe("5-bit shift amount (2RUI5)", func() {
		It("should decode slli.w $r1, $r2, 3", func() {
			inst := decoder.Decode(0x00408C41)

			Expect(inst.Op).To(Equal(insts.OpSLLIW))
			Expect(inst.Mode).To(Equal(insts.ModeRegUImm5))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rj).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(3)))
		})

		It("should sign-extend a shift amount with the top bit set", func() {
			inst := decoder.Decode(0x0040FC41) // slli.w $r1, $r2, 31
			Expect(inst.Imm).To(Equal(int32(-1)))
		})
	})

	Describe("Barriers and system", func() {
		It("should decode the dbar pattern with its hint", func() {
			inst := decoder.Decode(0x383A0005)

			Expect(inst.Op).To(Equal(insts.OpDBAR))
			Expect(inst.Mode).To(Equal(insts.ModeBarrier))
			Expect(inst.Imm).To(Equal(int32(5)))
		})

		It("should include bit 15 in the ibar hint payload", func() {
			inst := decoder.Decode(0x383A8000)

			Expect(inst.Op).To(Equal(insts.OpIBAR))
			Expect(inst.Imm).To(Equal(int32(-32768)))
		})

		It("should decode break 0", func() {
			inst := decoder.Decode(0x002A0000)

			Expect(inst.Op).To(Equal(insts.OpBREAK))
			Expect(inst.Mode).To(Equal(insts.ModeNoOperand))
			Expect(inst.Imm).To(Equal(int32(0)))
		})
	})

	Describe("String", func() {
		It("should list only the fields the mode uses", func() {
			Expect(decoder.Decode(0x00100823).String()).To(Equal("add.w     ThreeReg         rd=3 rj=1 rk=2"))
			Expect(decoder.Decode(0x28804184).String()).To(Equal("ld.w      RegImm12Signed   rd=4 rj=12 imm=16"))
			Expect(decoder.Decode(0x002a0000).String()).To(Equal("break     NoOperand        rd=0"))
		})
	})

	Describe("Catch-all", func() {
		It("should decode an unassigned word as inv", func() {
			Expect(decoder.Decode(0xFFFFFFFF).Op).To(Equal(insts.OpINV))
			Expect(decoder.Decode(0x00000000).Op).To(Equal(insts.OpINV))
		})

		It("should not recognise the architectural dbar encoding", func() {
			Expect(decoder.Decode(0x38720000).Op).To(Equal(insts.OpINV))
		})
	})

	Describe("Overlapping templates", func() {
		It("should select the first declared template", func() {
			// sltui and slti share 0000001001.
			Expect(decoder.Decode(encode2RI12(0x009, 1, 2, 5)).Op).To(Equal(insts.OpSLTUI))
			// andi and xori share 0000001101.
			Expect(decoder.Decode(encode2RI12(0x00d, 1, 2, 5)).Op).To(Equal(insts.OpANDI))
			// mod.w and mod.wu share 00000000001000001.
			Expect(decoder.Decode(encode3R(0x41, 1, 2, 3)).Op).To(Equal(insts.OpMODW))
			// mulh.w and mulh.wu share 00000000000111001.
			Expect(decoder.Decode(encode3R(0x39, 1, 2, 3)).Op).To(Equal(insts.OpMULHW))
			// srli.w and srai.w share 00000000010001001.
			Expect(decoder.Decode(encode3R(0x89, 1, 2, 3)).Op).To(Equal(insts.OpSRLIW))
		})

		It("should return the same template on repeated matches", func() {
			for _, word := range []uint32{0x00100823, 0x02400000, 0xDEADBEEF, 0x002A0000} {
				first := decoder.Match(word)
				second := decoder.Match(word)
				Expect(first).NotTo(BeNil())
				Expect(second).To(BeIdenticalTo(first))
			}
		})
	})

	Describe("Custom tables", func() {
		It("should decode OpUnknown when nothing matches", func() {
			d := insts.NewDecoderWithTable([]insts.Template{
				insts.MustTemplate("0000000000 0100000????? ????? ?????", "add.w", insts.ModeThreeReg, insts.OpADDW),
			})

			Expect(d.Match(0xFFFFFFFF)).To(BeNil())
			inst := d.Decode(0xFFFFFFFF)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Rd).To(Equal(uint8(31)))
			Expect(d.Decode(0x00100823).Op).To(Equal(insts.OpADDW))
		})

		It("should not be affected by later changes to the caller's slice", func() {
			templates := insts.Templates()
			d := insts.NewDecoderWithTable(templates)
			templates[0].Mask = 0

			Expect(d.Decode(0x00100823).Op).To(Equal(insts.OpADDW))
		})
	})
})

var _ = Describe("SignExtend", func() {
	It("should produce field - 2^n when the top bit is set", func() {
		for _, n := range []uint{5, 12, 16, 20, 26} {
			field := uint32(1)<<(n-1) | 3
			Expect(insts.SignExtend(field, n)).To(Equal(int32(int64(field)-int64(1)<<n)), "n=%d", n)
		}
	})

	It("should keep the field when the top bit is clear", func() {
		for _, n := range []uint{5, 12, 16, 20, 26} {
			field := uint32(1)<<(n-1) - 1
			Expect(insts.SignExtend(field, n)).To(Equal(int32(field)), "n=%d", n)
		}
	})

	It("should ignore bits above the field", func() {
		Expect(insts.SignExtend(0xFFFFF00F, 4)).To(Equal(int32(-1)))
		Expect(insts.SignExtend(0xFFFFF007, 4)).To(Equal(int32(7)))
	})

	It("should pass 32-bit values through", func() {
		Expect(insts.SignExtend(0x80000000, 32)).To(Equal(int32(math.MinInt32)))
	})
})

func encode3R(opc17, rd, rj, rk uint32) uint32 {
	return opc17<<15 | rk<<10 | rj<<5 | rd
}

func encode2RI12(opc10, rd, rj uint32, imm int32) uint32 {
	return opc10<<22 | (uint32(imm)&0xFFF)<<10 | rj<<5 | rd
}

func encode1RI20(opc7, rd uint32, imm int32) uint32 {
	return opc7<<25 | (uint32(imm)&0xFFFFF)<<5 | rd
}

// encodeI26 encodes b/bl with a byte offset.
func encodeI26(opc6 uint32, offset int32) uint32 {
	offs := uint32(offset>>2) & 0x3FFFFFF
	return opc6<<26 | (offs&0xFFFF)<<10 | offs>>16
}

// encode2RI16 encodes jirl and the compare-and-branch group with a byte
// offset.
func encode2RI16(opc6, rd, rj uint32, offset int32) uint32 {
	offs := uint32(offset>>2) & 0xFFFF
	return opc6<<26 | offs<<10 | rj<<5 | rd
}
