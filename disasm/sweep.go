// Package disasm decodes 16-bit x86 machine code into text, one line per
// instruction, in a single linear sweep over a buffer.
package disasm

import (
	"bufio"
	"io"

	"github.com/apparentlymart/dis86/isa"
)

// DefaultBase is the address the first byte is listed at when no base is
// given, the load address of a .COM program.
const DefaultBase = 0x100

// fpuEscapeFirst and fpuEscapeLast bound the coprocessor escape opcodes.
const (
	fpuEscapeFirst = 0xD8
	fpuEscapeLast  = 0xDF
)

// StepKind says how the sweep handled the bytes at one cursor position.
type StepKind int

const (
	// StepInstruction is a matched descriptor whose bytes all fit.
	StepInstruction StepKind = iota
	// StepTruncated is a matched descriptor cut off by the end of the
	// buffer; the remaining bytes are listed as data.
	StepTruncated
	// StepFPUReserved is an unmatched coprocessor escape.
	StepFPUReserved
	// StepData is a single unmatched byte.
	StepData
)

func (k StepKind) String() string {
	switch k {
	case StepInstruction:
		return "instruction"
	case StepTruncated:
		return "truncated"
	case StepFPUReserved:
		return "fpu-reserved"
	case StepData:
		return "data"
	default:
		return "unknown"
	}
}

// Step is the outcome of one sweep iteration.
type Step struct {
	Kind    StepKind
	Offset  int
	Address uint32

	// Advance is how far the cursor moves. For StepTruncated it is the
	// declared instruction length, which runs past the end of the buffer
	// and so ends the sweep.
	Advance int

	// Raw holds the bytes the line lists.
	Raw []byte

	// Instruction is set for StepInstruction and StepTruncated.
	Instruction *Instruction

	Text string
}

// Disassembler sweeps buffers against one descriptor table. It holds no
// per-sweep state, so one value can serve any number of buffers.
type Disassembler struct {
	Table     *isa.Table
	Base      uint32
	Formatter Formatter
}

func New(t *isa.Table, base uint32) *Disassembler {
	return &Disassembler{Table: t, Base: base}
}

// Step decodes the bytes of buf at cursor, which must be within buf.
func (d *Disassembler) Step(buf []byte, cursor int) Step {
	w := NewWindow(buf, cursor)
	addr := d.Base + uint32(cursor)

	if desc, ok := Match(d.Table, w); ok {
		inst := Decode(desc, w)
		if inst.Len <= w.Len() {
			raw := w.Bytes(inst.Len)
			return Step{
				Kind:        StepInstruction,
				Offset:      cursor,
				Address:     addr,
				Advance:     inst.Len,
				Raw:         raw,
				Instruction: &inst,
				Text:        d.Formatter.FormatInstruction(addr, raw, inst),
			}
		}

		raw := w.Bytes(w.Len())
		return Step{
			Kind:        StepTruncated,
			Offset:      cursor,
			Address:     addr,
			Advance:     inst.Len,
			Raw:         raw,
			Instruction: &inst,
			Text:        d.Formatter.FormatData(addr, raw),
		}
	}

	if n := fpuReservedLen(w); n > 0 {
		raw := w.Bytes(n)
		return Step{
			Kind:    StepFPUReserved,
			Offset:  cursor,
			Address: addr,
			Advance: n,
			Raw:     raw,
			Text:    d.Formatter.FormatFPUReserved(addr, raw),
		}
	}

	raw := w.Bytes(1)
	return Step{
		Kind:    StepData,
		Offset:  cursor,
		Address: addr,
		Advance: 1,
		Raw:     raw,
		Text:    d.Formatter.FormatData(addr, raw),
	}
}

// fpuReservedLen applies the resynchronization rule for coprocessor
// escapes that no descriptor accepted: the escape byte and the following
// byte, plus one or two more when its mod field asks for a displacement
// and the bytes are there. It returns 0 when the rule does not apply.
func fpuReservedLen(w Window) int {
	first, _ := w.At(0)
	if w.Len() < 2 || first < fpuEscapeFirst || first > fpuEscapeLast {
		return 0
	}
	second, _ := w.At(1)
	switch mode := ModRM(second).Mode(); {
	case mode == ModeMemDisp8 && w.Len() >= 3:
		return 3
	case mode == ModeMemDisp16 && w.Len() >= 4:
		return 4
	default:
		return 2
	}
}

// Sweep walks buf from the start, calling fn with each step, until the
// cursor reaches the end. Every step advances the cursor by at least one
// byte. It stops early only if fn returns an error.
func (d *Disassembler) Sweep(buf []byte, fn func(Step) error) error {
	for cursor := 0; cursor < len(buf); {
		step := d.Step(buf, cursor)
		if err := fn(step); err != nil {
			return err
		}
		cursor += step.Advance
	}
	return nil
}

// Run writes the listing of buf to w, one line per step.
func (d *Disassembler) Run(w io.Writer, buf []byte) error {
	bw := bufio.NewWriter(w)
	err := d.Sweep(buf, func(s Step) error {
		if _, err := bw.WriteString(s.Text); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Lines returns the listing of buf as a slice of lines.
func (d *Disassembler) Lines(buf []byte) []string {
	var lines []string
	_ = d.Sweep(buf, func(s Step) error {
		lines = append(lines, s.Text)
		return nil
	})
	return lines
}
