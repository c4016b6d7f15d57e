package disasm

import "github.com/apparentlymart/dis86/isa"

// Operand is a decoded operand value. The concrete types are Register,
// SegmentRegister, Immediate, MemoryDirect, MemoryIndexed, Constant,
// FPUStackTop and FPUStackRegister.
type Operand interface {
	isOperand()
}

// Register is a general register; Width selects the byte or word bank.
type Register struct {
	Width isa.Width
	Index uint8
}

type SegmentRegister struct {
	Index uint8
}

type Immediate struct {
	Value uint32
	Width isa.Width
}

// MemoryDirect is a memory operand at a 16-bit absolute address, either
// from the mod 00 r/m 110 form or from an absolute-address slot.
type MemoryDirect struct {
	Width   isa.Width
	Address uint16
}

// MemoryIndexed is a memory operand formed from a base expression plus an
// optional displacement. DispBytes is 0, 1 or 2.
type MemoryIndexed struct {
	Width     isa.Width
	Base      BaseExpr
	Disp      uint16
	DispBytes int
}

type Constant struct {
	Value uint8
}

type FPUStackTop struct{}

type FPUStackRegister struct {
	Index uint8
}

func (Register) isOperand()         {}
func (SegmentRegister) isOperand()  {}
func (Immediate) isOperand()        {}
func (MemoryDirect) isOperand()     {}
func (MemoryIndexed) isOperand()    {}
func (Constant) isOperand()         {}
func (FPUStackTop) isOperand()      {}
func (FPUStackRegister) isOperand() {}

// Instruction is a descriptor matched at Offset plus its decoded operands.
type Instruction struct {
	Descriptor *isa.Descriptor
	Offset     int
	Len        int
	Operands   []Operand
}

// addressingLen is the number of bytes taken by the addressing byte and
// its displacement, or zero when nothing in d reads an addressing byte.
func addressingLen(d *isa.Descriptor, w Window) int {
	if !d.NeedsAddressingByte() {
		return 0
	}
	n := 1
	if d.AddressesMemory() {
		// The matcher has already checked the addressing byte exists.
		b, _ := w.At(d.Opcode.Len)
		n += ModRM(b).DisplacementBytes()
	}
	return n
}

// Length is the total length in bytes of the instruction d describes at
// the start of w, opcode included. The result can exceed w.Len() when the
// instruction is cut off by the end of the buffer.
func Length(d *isa.Descriptor, w Window) int {
	n := d.Opcode.Len + addressingLen(d, w)
	for _, s := range d.Operands() {
		n += s.StreamBytes()
	}
	return n
}

// Decode resolves every operand slot of d against the bytes in w. Bytes
// missing from a truncated window read as zero, so the operands are only
// meaningful when inst.Len <= w.Len().
func Decode(d *isa.Descriptor, w Window) Instruction {
	opLen := d.Opcode.Len
	b, _ := w.At(opLen)
	m := ModRM(b)

	inst := Instruction{
		Descriptor: d,
		Offset:     w.Offset(),
		Len:        Length(d, w),
		Operands:   make([]Operand, 0, d.NumOperands),
	}

	// Stream operands start after the addressing bytes and are consumed
	// in slot order, exactly as Length counts them.
	cursor := opLen + addressingLen(d, w)

	for _, s := range d.Operands() {
		var op Operand
		switch s.Kind {
		case isa.OperandRegMem, isa.OperandMem:
			op = decodeRM(m, s.Width, w, opLen+1)
		case isa.OperandReg:
			op = Register{Width: s.Width, Index: m.Reg()}
		case isa.OperandSegReg:
			op = SegmentRegister{Index: m.Reg()}
		case isa.OperandFixedReg:
			op = Register{Width: s.Width, Index: s.Value}
		case isa.OperandFixedSeg:
			op = SegmentRegister{Index: s.Value}
		case isa.OperandImm:
			var v uint32
			switch s.Width {
			case isa.WidthByte:
				b, _ := w.At(cursor)
				v = uint32(b)
			case isa.WidthWord:
				word, _ := w.Word(cursor)
				v = uint32(word)
			case isa.WidthDword:
				v, _ = w.Dword(cursor)
			}
			op = Immediate{Value: v, Width: s.Width}
		case isa.OperandAbsMem:
			addr, _ := w.Word(cursor)
			op = MemoryDirect{Width: s.Width, Address: addr}
		case isa.OperandConst:
			op = Constant{Value: s.Value}
		case isa.OperandST:
			op = FPUStackTop{}
		case isa.OperandSTReg:
			op = FPUStackRegister{Index: m.RM()}
		default:
			continue
		}
		cursor += s.StreamBytes()
		inst.Operands = append(inst.Operands, op)
	}

	return inst
}

// decodeRM resolves a register-or-memory slot. dispAt is the window index
// of the first byte after the addressing byte.
func decodeRM(m ModRM, width isa.Width, w Window, dispAt int) Operand {
	switch {
	case m.Mode() == ModeReg:
		if width != isa.WidthByte {
			// Unsized memory-only slots and wide FPU slots fall back to
			// the word bank when the encoding names a register.
			width = isa.WidthWord
		}
		return Register{Width: width, Index: m.RM()}
	case m.IsDirect():
		addr, _ := w.Word(dispAt)
		return MemoryDirect{Width: width, Address: addr}
	}

	op := MemoryIndexed{
		Width:     width,
		Base:      BaseExpr(m.RM()),
		DispBytes: m.DisplacementBytes(),
	}
	switch op.DispBytes {
	case 1:
		b, _ := w.At(dispAt)
		op.Disp = uint16(b)
	case 2:
		op.Disp, _ = w.Word(dispAt)
	}
	return op
}
