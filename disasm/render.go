package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apparentlymart/dis86/isa"
)

const (
	mnemonicColumn = 36
	operandColumn  = 50

	// LegacyWidth is the fixed line width of the classic output, for use
	// as Formatter.MaxWidth when lines must be cut exactly as there.
	LegacyWidth = 256
)

// Line accumulates one output line. With a non-zero limit, text past the
// limit is silently dropped.
type Line struct {
	buf   []byte
	limit int
}

func NewLine(limit int) *Line {
	return &Line{limit: limit}
}

func (l *Line) WriteString(s string) {
	if l.limit > 0 {
		rem := l.limit - len(l.buf)
		if rem <= 0 {
			return
		}
		if len(s) > rem {
			s = s[:rem]
		}
	}
	l.buf = append(l.buf, s...)
}

// Pad appends spaces until the line reaches col. A line already at or past
// col is left alone, and so is everything when col is not below the limit.
func (l *Line) Pad(col int) {
	if l.limit > 0 && col >= l.limit {
		return
	}
	for len(l.buf) < col {
		l.buf = append(l.buf, ' ')
	}
}

func (l *Line) Len() int {
	return len(l.buf)
}

func (l *Line) String() string {
	return string(l.buf)
}

// Formatter turns decoded steps into text lines.
type Formatter struct {
	// MaxWidth caps the length of each line; zero means unlimited.
	MaxWidth int
}

// prefix writes the address and raw byte columns shared by every line
// kind, up to and including the "; " separator.
func (f Formatter) prefix(addr uint32, raw []byte) *Line {
	l := NewLine(f.MaxWidth)
	l.WriteString(fmt.Sprintf("0x%08X:  ", addr))
	for _, b := range raw {
		l.WriteString(fmt.Sprintf("%02X ", b))
	}
	l.WriteString("; ")
	l.Pad(mnemonicColumn)
	return l
}

// FormatInstruction renders a fully decoded instruction.
func (f Formatter) FormatInstruction(addr uint32, raw []byte, inst Instruction) string {
	l := f.prefix(addr, raw)
	l.WriteString(inst.Descriptor.Mnemonic)
	l.Pad(operandColumn)
	for i, op := range inst.Operands {
		if i == 0 {
			l.WriteString(" ")
		} else {
			l.WriteString(", ")
		}
		l.WriteString(FormatOperand(op))
	}
	return l.String()
}

// FormatData renders raw as literal data bytes.
func (f Formatter) FormatData(addr uint32, raw []byte) string {
	l := f.prefix(addr, raw)
	l.WriteString("DB ")
	for i, b := range raw {
		if i > 0 {
			l.WriteString(", ")
		}
		l.WriteString(hexByte(b))
	}
	return l.String()
}

// FormatFPUReserved renders a coprocessor escape no descriptor accepts.
func (f Formatter) FormatFPUReserved(addr uint32, raw []byte) string {
	l := f.prefix(addr, raw)
	l.WriteString("FPU RESERVED")
	return l.String()
}

// FormatOperand renders one decoded operand in the canonical syntax.
func FormatOperand(op Operand) string {
	switch op := op.(type) {
	case Register:
		if op.Width == isa.WidthByte {
			return isa.Reg8Names[op.Index&0x7]
		}
		return isa.Reg16Names[op.Index&0x7]
	case SegmentRegister:
		if int(op.Index) >= len(isa.SegmentNames) {
			return "?"
		}
		return isa.SegmentNames[op.Index]
	case Immediate:
		var s string
		switch op.Width {
		case isa.WidthByte:
			s = hexByte(byte(op.Value))
		case isa.WidthWord:
			s = hexWord(uint16(op.Value))
		default:
			s = fmt.Sprintf("0x%08X", op.Value)
		}
		return sized(op.Width, s)
	case MemoryDirect:
		return memory(op.Width, "["+hexWord(op.Address)+"]")
	case MemoryIndexed:
		var b strings.Builder
		b.WriteByte('[')
		b.WriteString(op.Base.String())
		switch op.DispBytes {
		case 1:
			b.WriteString(" + " + hexByte(byte(op.Disp)))
		case 2:
			b.WriteString(" + " + hexWord(op.Disp))
		}
		b.WriteByte(']')
		return memory(op.Width, b.String())
	case Constant:
		return strconv.Itoa(int(op.Value))
	case FPUStackTop:
		return "ST"
	case FPUStackRegister:
		return "ST" + strconv.Itoa(int(op.Index&0x7))
	default:
		return "?"
	}
}

// sized prefixes s with the width keyword. Unsized operands have none.
func sized(w isa.Width, s string) string {
	if kw := w.String(); kw != "" {
		return kw + " " + s
	}
	return s
}

// memory prefixes a memory operand with its width keyword, or MEM when the
// operand has no size.
func memory(w isa.Width, s string) string {
	if w == isa.WidthNone {
		return "MEM " + s
	}
	return sized(w, s)
}

func hexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

func hexWord(v uint16) string {
	return fmt.Sprintf("0x%04X", v)
}
