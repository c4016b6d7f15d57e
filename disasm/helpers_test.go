package disasm_test

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	. "github.com/onsi/gomega"

	"github.com/apparentlymart/dis86/disasm"
	"github.com/apparentlymart/dis86/isa"
)

func mustTable(src string) *isa.Table {
	t, err := isa.Load(strings.NewReader(src))
	Expect(err).NotTo(HaveOccurred())
	return t
}

// instLine is the expected listing line for an instruction at addr.
func instLine(addr uint32, raw []byte, mnemonic, operands string) string {
	return fmt.Sprintf("%-36s%-14s%s", linePrefix(addr, raw), mnemonic, operands)
}

// dataLine is the expected listing line for bytes no instruction claims.
func dataLine(addr uint32, raw []byte, text string) string {
	return fmt.Sprintf("%-36s%s", linePrefix(addr, raw), text)
}

func linePrefix(addr uint32, raw []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "0x%08X:  ", addr)
	for _, c := range raw {
		fmt.Fprintf(&b, "%02X ", c)
	}
	b.WriteString("; ")
	return b.String()
}

// minimalEncoding builds the shortest byte sequence d describes: the
// opcode, an addressing byte selecting d's form with no displacement, and
// zeroed immediates.
func minimalEncoding(d *isa.Descriptor) []byte {
	buf := append([]byte(nil), d.Opcode.Bytes[:d.Opcode.Len]...)
	if d.NeedsAddressingByte() {
		var m byte
		switch d.Ext {
		case isa.ExtFPUMemory:
			m = d.N << 3
		default:
			m = 0xC0 | d.N<<3
		}
		buf = append(buf, m)
	}
	for _, s := range d.Operands() {
		for i := 0; i < s.StreamBytes(); i++ {
			buf = append(buf, 0)
		}
	}
	return buf
}

func dumpSteps(steps []disasm.Step) string {
	return spew.Sdump(steps)
}
