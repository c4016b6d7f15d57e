package isa_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apparentlymart/dis86/isa"
)

var _ = Describe("Load", func() {
	It("parses every field of a descriptor line", func() {
		t, err := isa.Load(strings.NewReader(`
# comment line
ADD   80     /0   rm8,imm8   8086   # trailing comment
FADD  d8     r/0  st,sti     8087
"REP MOVSB" f3.a4 - - 8086
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Descriptors).To(HaveLen(3))

		add := t.Descriptors[0]
		Expect(add.Mnemonic).To(Equal("ADD"))
		Expect(add.Opcode).To(Equal(isa.Opcode{Bytes: [2]byte{0x80}, Len: 1}))
		Expect(add.Ext).To(Equal(isa.ExtField))
		Expect(add.N).To(Equal(uint8(0)))
		Expect(add.Operands()).To(Equal([]isa.OperandSlot{
			{Kind: isa.OperandRegMem, Width: isa.WidthByte},
			{Kind: isa.OperandImm, Width: isa.WidthByte},
		}))
		Expect(add.Standard).To(Equal(isa.I8086))
		Expect(add.Line).To(Equal(3))

		fadd := t.Descriptors[1]
		Expect(fadd.Ext).To(Equal(isa.ExtFPURegister))
		Expect(fadd.Operands()).To(Equal([]isa.OperandSlot{
			{Kind: isa.OperandST},
			{Kind: isa.OperandSTReg},
		}))

		rep := t.Descriptors[2]
		Expect(rep.Mnemonic).To(Equal("REP MOVSB"))
		Expect(rep.Opcode).To(Equal(isa.Opcode{Bytes: [2]byte{0xF3, 0xA4}, Len: 2}))
		Expect(rep.Operands()).To(BeEmpty())
	})

	It("reports every bad line with its line number", func() {
		_, err := isa.Load(strings.NewReader(strings.Join([]string{
			"NOP 90 - - 8086",
			"BAD 1ff - - 8086",
			"BAD 80 /9 rm8 8086",
			"BAD 80 - rm12 8086",
			"BAD 80 - - 9999",
			"BAD 80 -",
			`"UNTERMINATED 80 - - 8086`,
		}, "\n")))
		Expect(err).To(HaveOccurred())
		msg := err.Error()
		Expect(msg).To(ContainSubstring(`line 2: BAD: invalid opcode byte "1ff"`))
		Expect(msg).To(ContainSubstring("line 3: BAD: extension"))
		Expect(msg).To(ContainSubstring(`line 4: BAD: invalid operand width in "rm12"`))
		Expect(msg).To(ContainSubstring(`line 5: BAD: unknown level "9999"`))
		Expect(msg).To(ContainSubstring("line 6: BAD: want opcode, extension, operands and level"))
		Expect(msg).To(ContainSubstring("line 7: unterminated quoted mnemonic"))
		Expect(msg).NotTo(ContainSubstring("line 1:"))
	})

	It("rejects operand widths too large for any slot", func() {
		_, err := isa.Load(strings.NewReader("FOO 8b - r16,rm2064 8086\n"))
		Expect(err).To(MatchError(ContainSubstring(`operand "rm2064" does not support a 2064-bit width`)))
	})

	It("rejects stack operands outside FPU register forms", func() {
		_, err := isa.Load(strings.NewReader("FOO d8 m/0 st 8087\n"))
		Expect(err).To(MatchError(ContainSubstring("only allowed in register forms")))
	})

	It("rejects FPU forms on integer levels", func() {
		_, err := isa.Load(strings.NewReader("FOO d8 m/0 rm32 8086\n"))
		Expect(err).To(MatchError(ContainSubstring("only valid for FPU levels")))
	})

	It("rejects more than three operands", func() {
		_, err := isa.Load(strings.NewReader("FOO 69 - r16,rm16,imm16,imm8 186\n"))
		Expect(err).To(MatchError(ContainSubstring("at most 3 allowed")))
	})

	It("rejects an empty table", func() {
		_, err := isa.Load(strings.NewReader("# nothing here\n\n"))
		Expect(err).To(MatchError("no descriptors"))
	})

	It("loads a table from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "opcodes")
		Expect(os.WriteFile(path, []byte("HLT f4 - - 8086\n"), 0o644)).To(Succeed())

		t, err := isa.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Descriptors).To(HaveLen(1))
		Expect(t.Descriptors[0].String()).To(Equal("HLT (F4)"))
	})

	It("names the file when its content is invalid", func() {
		path := filepath.Join(GinkgoT().TempDir(), "opcodes")
		Expect(os.WriteFile(path, []byte("HLT zz - - 8086\n"), 0o644)).To(Succeed())

		_, err := isa.LoadFile(path)
		Expect(err).To(MatchError(ContainSubstring("failed to load " + path)))
	})
})

var _ = DescribeTable("ParseOperandSlot",
	func(raw string, want isa.OperandSlot) {
		got, err := isa.ParseOperandSlot(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(got.String()).To(Equal(raw))
	},
	Entry(nil, "rm8", isa.OperandSlot{Kind: isa.OperandRegMem, Width: isa.WidthByte}),
	Entry(nil, "rm80", isa.OperandSlot{Kind: isa.OperandRegMem, Width: isa.WidthTbyte}),
	Entry(nil, "m", isa.OperandSlot{Kind: isa.OperandMem}),
	Entry(nil, "r16", isa.OperandSlot{Kind: isa.OperandReg, Width: isa.WidthWord}),
	Entry(nil, "sreg", isa.OperandSlot{Kind: isa.OperandSegReg, Width: isa.WidthWord}),
	Entry(nil, "imm32", isa.OperandSlot{Kind: isa.OperandImm, Width: isa.WidthDword}),
	Entry(nil, "moffs8", isa.OperandSlot{Kind: isa.OperandAbsMem, Width: isa.WidthByte}),
	Entry(nil, "CL", isa.OperandSlot{Kind: isa.OperandFixedReg, Width: isa.WidthByte, Value: 1}),
	Entry(nil, "DI", isa.OperandSlot{Kind: isa.OperandFixedReg, Width: isa.WidthWord, Value: 7}),
	Entry(nil, "SS", isa.OperandSlot{Kind: isa.OperandFixedSeg, Width: isa.WidthWord, Value: 2}),
	Entry(nil, "1", isa.OperandSlot{Kind: isa.OperandConst, Width: isa.WidthByte, Value: 1}),
	Entry(nil, "st", isa.OperandSlot{Kind: isa.OperandST}),
	Entry(nil, "sti", isa.OperandSlot{Kind: isa.OperandSTReg}),
)

var _ = DescribeTable("ParseOperandSlot errors",
	func(raw string) {
		_, err := isa.ParseOperandSlot(raw)
		Expect(err).To(HaveOccurred())
	},
	Entry(nil, ""),
	Entry(nil, "xyz"),
	Entry(nil, "r32"),
	Entry(nil, "imm64"),
	Entry(nil, "rm7"),
	Entry(nil, "300"),
	Entry("width wrapping to rm16", "rm2064"),
	Entry("width wrapping to imm8", "imm2056"),
)
