package disasm

import "fmt"

// Mode is the top two bits of an addressing byte.
type Mode uint8

const (
	ModeMemNoDisp Mode = 0x0
	ModeMemDisp8  Mode = 0x1
	ModeMemDisp16 Mode = 0x2
	ModeReg       Mode = 0x3
)

// ModRM is the addressing byte that follows an opcode: mod in bits 7-6,
// reg in bits 5-3 and r/m in bits 2-0.
type ModRM byte

func (m ModRM) Mode() Mode {
	return Mode(m >> 6)
}

func (m ModRM) Reg() uint8 {
	return uint8(m>>3) & 0x7
}

func (m ModRM) RM() uint8 {
	return uint8(m) & 0x7
}

// IsDirect reports the mod 00, r/m 110 special case, where a 16-bit
// address replaces the base expression.
func (m ModRM) IsDirect() bool {
	return m.Mode() == ModeMemNoDisp && m.RM() == 0x6
}

// DisplacementBytes is how many bytes follow the addressing byte when it
// selects memory.
func (m ModRM) DisplacementBytes() int {
	switch m.Mode() {
	case ModeMemNoDisp:
		if m.IsDirect() {
			return 2
		}
		return 0
	case ModeMemDisp8:
		return 1
	case ModeMemDisp16:
		return 2
	default:
		return 0
	}
}

func (m ModRM) String() string {
	return fmt.Sprintf("0b%08b", uint8(m))
}

// BaseExpr is one of the eight register sums a memory operand is formed
// from, indexed by r/m.
type BaseExpr uint8

const (
	BaseBXSI BaseExpr = iota
	BaseBXDI
	BaseBPSI
	BaseBPDI
	BaseSI
	BaseDI
	BaseBP
	BaseBX
)

var baseExprNames = [8]string{
	BaseBXSI: "BX + SI",
	BaseBXDI: "BX + DI",
	BaseBPSI: "BP + SI",
	BaseBPDI: "BP + DI",
	BaseSI:   "SI",
	BaseDI:   "DI",
	BaseBP:   "BP",
	BaseBX:   "BX",
}

func (b BaseExpr) String() string {
	return baseExprNames[b&0x7]
}
