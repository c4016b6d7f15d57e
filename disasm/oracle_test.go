package disasm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/arch/x86/x86asm"

	"github.com/apparentlymart/dis86/disasm"
	"github.com/apparentlymart/dis86/isa"
)

// These encodings are ones where every 16-bit decoder must agree on the
// instruction boundary, so x86asm serves as an independent check on the
// lengths computed from the opcode table.
var _ = DescribeTable("instruction lengths agree with x86asm",
	func(buf []byte) {
		want, err := x86asm.Decode(buf, 16)
		Expect(err).NotTo(HaveOccurred())

		table := isa.MustBuiltin()
		w := disasm.NewWindow(buf, 0)
		d, ok := disasm.Match(table, w)
		Expect(ok).To(BeTrue(), "no descriptor for % X (x86asm: %s)", buf, want)
		Expect(disasm.Length(d, w)).To(Equal(want.Len), "%s vs x86asm %s", d, want)
	},
	Entry(nil, []byte{0x90}),
	Entry(nil, []byte{0xB8, 0x34, 0x12}),
	Entry(nil, []byte{0xCD, 0x21}),
	Entry(nil, []byte{0xD8, 0xC1}),
	Entry(nil, []byte{0x80, 0x3E, 0x34, 0x12, 0x00}),
	Entry(nil, []byte{0x8B, 0x46, 0xFE}),
	Entry(nil, []byte{0x81, 0xC3, 0x34, 0x12}),
	Entry(nil, []byte{0x83, 0x7E, 0xFE, 0x00}),
	Entry(nil, []byte{0x8C, 0xD8}),
	Entry(nil, []byte{0xA1, 0x34, 0x12}),
	Entry(nil, []byte{0xE6, 0x60}),
	Entry(nil, []byte{0xD1, 0xE0}),
	Entry(nil, []byte{0xC4, 0x5E, 0x04}),
	Entry(nil, []byte{0x8D, 0x87, 0x34, 0x12}),
	Entry(nil, []byte{0xFF, 0x1E, 0x34, 0x12}),
	Entry(nil, []byte{0x9A, 0x78, 0x56, 0x34, 0x12}),
	Entry(nil, []byte{0xC8, 0x10, 0x00, 0x01}),
	Entry(nil, []byte{0xF6, 0x06, 0x34, 0x12, 0xFF}),
	Entry(nil, []byte{0x69, 0x40, 0x02, 0x34, 0x12}),
	Entry(nil, []byte{0x6B, 0xC0, 0x02}),
	Entry(nil, []byte{0xDD, 0x46, 0x08}),
	Entry(nil, []byte{0xDB, 0x2E, 0x34, 0x12}),
	Entry(nil, []byte{0xDE, 0xC1}),
	Entry(nil, []byte{0xE8, 0x00, 0x01}),
	Entry(nil, []byte{0xF3, 0xA4}),
	Entry(nil, []byte{0xD5, 0x0A}),
	Entry(nil, []byte{0x0F, 0x01, 0x16, 0x34, 0x12}),
	Entry(nil, []byte{0x0F, 0x00, 0x57, 0x10}),
)
