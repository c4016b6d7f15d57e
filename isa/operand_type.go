package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind says where an operand's value comes from and how much of the
// instruction stream it occupies.
type OperandKind string

const (
	OperandNone     OperandKind = ""
	OperandRegMem   OperandKind = "rm"    // mod and r/m fields of the addressing byte
	OperandMem      OperandKind = "m"     // like OperandRegMem, but unsized
	OperandReg      OperandKind = "r"     // reg field of the addressing byte
	OperandSegReg   OperandKind = "sreg"  // reg field, as a segment register
	OperandFixedReg OperandKind = "reg"   // register implied by the opcode
	OperandFixedSeg OperandKind = "seg"   // segment register implied by the opcode
	OperandImm      OperandKind = "imm"   // immediate data following the addressing bytes
	OperandAbsMem   OperandKind = "moffs" // 16-bit absolute address in the stream
	OperandConst    OperandKind = "const" // literal embedded in the descriptor
	OperandST       OperandKind = "st"    // top of the FPU register stack
	OperandSTReg    OperandKind = "sti"   // FPU stack register selected by r/m
)

// Width is an operand size in bytes.
type Width uint8

const (
	WidthNone  Width = 0
	WidthByte  Width = 1
	WidthWord  Width = 2
	WidthDword Width = 4
	WidthQword Width = 8
	WidthTbyte Width = 10
)

func (w Width) String() string {
	switch w {
	case WidthByte:
		return "BYTE"
	case WidthWord:
		return "WORD"
	case WidthDword:
		return "DWORD"
	case WidthQword:
		return "QWORD"
	case WidthTbyte:
		return "TBYTE"
	default:
		return ""
	}
}

// OperandSlot describes one operand position of a descriptor. Value is the
// register index, segment index or literal for the kinds that resolve from
// the descriptor rather than from the stream.
type OperandSlot struct {
	Kind  OperandKind
	Width Width
	Value uint8
}

// NeedsAddressingByte reports whether decoding this slot reads the byte
// following the opcode.
func (s OperandSlot) NeedsAddressingByte() bool {
	switch s.Kind {
	case OperandRegMem, OperandMem, OperandReg, OperandSegReg, OperandSTReg:
		return true
	default:
		return false
	}
}

// AddressesMemory reports whether the slot's addressing byte may select a
// memory operand, and so may be followed by displacement bytes.
func (s OperandSlot) AddressesMemory() bool {
	return s.Kind == OperandRegMem || s.Kind == OperandMem
}

// StreamBytes is the number of bytes the slot occupies after the
// addressing bytes.
func (s OperandSlot) StreamBytes() int {
	switch s.Kind {
	case OperandImm:
		return int(s.Width)
	case OperandAbsMem:
		return 2
	default:
		return 0
	}
}

func (s OperandSlot) String() string {
	switch s.Kind {
	case OperandRegMem, OperandReg, OperandImm, OperandAbsMem:
		return fmt.Sprintf("%s%d", s.Kind, int(s.Width)*8)
	case OperandFixedReg:
		if s.Width == WidthByte {
			return Reg8Names[s.Value]
		}
		return Reg16Names[s.Value]
	case OperandFixedSeg:
		return SegmentNames[s.Value]
	case OperandConst:
		return strconv.Itoa(int(s.Value))
	default:
		return string(s.Kind)
	}
}

// Register names under the standard Intel numbering.
var (
	Reg8Names    = [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}
	Reg16Names   = [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
	SegmentNames = [4]string{"ES", "CS", "SS", "DS"}
)

var sizedKinds = map[string]OperandKind{
	"rm":    OperandRegMem,
	"r":     OperandReg,
	"imm":   OperandImm,
	"moffs": OperandAbsMem,
}

var allowedWidths = map[OperandKind][]Width{
	OperandRegMem: {WidthByte, WidthWord, WidthDword, WidthQword, WidthTbyte},
	OperandReg:    {WidthByte, WidthWord},
	OperandImm:    {WidthByte, WidthWord, WidthDword},
	OperandAbsMem: {WidthByte, WidthWord},
}

// ParseOperandSlot parses one operand token from the descriptor data file.
func ParseOperandSlot(raw string) (OperandSlot, error) {
	switch raw {
	case "m":
		return OperandSlot{Kind: OperandMem}, nil
	case "sreg":
		return OperandSlot{Kind: OperandSegReg, Width: WidthWord}, nil
	case "st":
		return OperandSlot{Kind: OperandST}, nil
	case "sti":
		return OperandSlot{Kind: OperandSTReg}, nil
	}

	upper := strings.ToUpper(raw)
	for i, name := range Reg8Names {
		if upper == name {
			return OperandSlot{Kind: OperandFixedReg, Width: WidthByte, Value: uint8(i)}, nil
		}
	}
	for i, name := range Reg16Names {
		if upper == name {
			return OperandSlot{Kind: OperandFixedReg, Width: WidthWord, Value: uint8(i)}, nil
		}
	}
	for i, name := range SegmentNames {
		if upper == name {
			return OperandSlot{Kind: OperandFixedSeg, Width: WidthWord, Value: uint8(i)}, nil
		}
	}

	if raw != "" && raw[0] >= '0' && raw[0] <= '9' {
		v, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return OperandSlot{}, fmt.Errorf("invalid constant operand %q", raw)
		}
		return OperandSlot{Kind: OperandConst, Width: WidthByte, Value: uint8(v)}, nil
	}

	// Everything else is a kind prefix followed by a width in bits, like
	// "rm16" or "imm8".
	split := strings.IndexFunc(raw, func(r rune) bool { return r >= '0' && r <= '9' })
	if split <= 0 {
		return OperandSlot{}, fmt.Errorf("unknown operand %q", raw)
	}
	kind, ok := sizedKinds[raw[:split]]
	if !ok {
		return OperandSlot{}, fmt.Errorf("unknown operand %q", raw)
	}
	bits, err := strconv.Atoi(raw[split:])
	if err != nil || bits%8 != 0 {
		return OperandSlot{}, fmt.Errorf("invalid operand width in %q", raw)
	}
	for _, allowed := range allowedWidths[kind] {
		if bits == int(allowed)*8 {
			return OperandSlot{Kind: kind, Width: allowed}, nil
		}
	}
	return OperandSlot{}, fmt.Errorf("operand %q does not support a %d-bit width", raw, bits)
}
