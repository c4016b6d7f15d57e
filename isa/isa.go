// Package isa holds the declarative 16-bit x86 instruction table: the
// descriptor schema, the data file loader and the builtin table.
package isa

import (
	"fmt"
	"strings"
)

// MaxOperands is the largest number of operand slots a descriptor has.
const MaxOperands = 3

// Extension selects how the byte after the opcode gates a match.
type Extension uint8

const (
	ExtNone        Extension = iota
	ExtField                 // reg field must equal the discriminant
	ExtFPUMemory             // mod != 0b11, and reg field must equal the discriminant
	ExtFPURegister           // mod == 0b11, and reg field must equal the discriminant
)

func (e Extension) String() string {
	switch e {
	case ExtNone:
		return "-"
	case ExtField:
		return "/"
	case ExtFPUMemory:
		return "m/"
	case ExtFPURegister:
		return "r/"
	default:
		return fmt.Sprintf("Extension(%d)", uint8(e))
	}
}

// Opcode is the one or two opcode bytes of a descriptor.
type Opcode struct {
	Bytes [2]byte
	Len   int
}

func (o Opcode) String() string {
	if o.Len == 2 {
		return fmt.Sprintf("%02X %02X", o.Bytes[0], o.Bytes[1])
	}
	return fmt.Sprintf("%02X", o.Bytes[0])
}

// Descriptor is one entry of the instruction table. Operand slots are held
// by value so no two descriptors share them.
type Descriptor struct {
	Mnemonic    string
	Opcode      Opcode
	Ext         Extension
	N           uint8
	Slots       [MaxOperands]OperandSlot
	NumOperands int
	Standard    Standard

	// Line is the data file line the descriptor was declared on.
	Line int
}

// Operands returns the declared operand slots in order.
func (d *Descriptor) Operands() []OperandSlot {
	return d.Slots[:d.NumOperands]
}

// NeedsAddressingByte reports whether any part of the descriptor reads the
// byte following the opcode.
func (d *Descriptor) NeedsAddressingByte() bool {
	if d.Ext != ExtNone {
		return true
	}
	for _, s := range d.Operands() {
		if s.NeedsAddressingByte() {
			return true
		}
	}
	return false
}

// AddressesMemory reports whether one of the slots can select a memory
// operand through the addressing byte.
func (d *Descriptor) AddressesMemory() bool {
	for _, s := range d.Operands() {
		if s.AddressesMemory() {
			return true
		}
	}
	return false
}

func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.Mnemonic)
	for i, s := range d.Operands() {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	if d.Ext != ExtNone {
		fmt.Fprintf(&b, " (%s %s%d)", d.Opcode, d.Ext, d.N)
	} else {
		fmt.Fprintf(&b, " (%s)", d.Opcode)
	}
	return b.String()
}

// Table is the ordered descriptor table. Declaration order decides between
// descriptors that accept the same bytes, so it must never be reordered.
type Table struct {
	Descriptors []Descriptor

	// byFirst lists, for each first opcode byte, the indices of the
	// descriptors starting with it, in declaration order.
	byFirst [256][]int
}

// NewTable builds a table over descs, keeping their order.
func NewTable(descs []Descriptor) *Table {
	t := &Table{Descriptors: descs}
	for i := range descs {
		first := descs[i].Opcode.Bytes[0]
		t.byFirst[first] = append(t.byFirst[first], i)
	}
	return t
}

// Candidates returns the indices of the descriptors whose opcode begins
// with first, in declaration order.
func (t *Table) Candidates(first byte) []int {
	return t.byFirst[first]
}

// Filter returns a new table holding only the descriptors that run on the
// given CPU and FPU generations.
func (t *Table) Filter(cpu, fpu Standard) *Table {
	var kept []Descriptor
	for _, d := range t.Descriptors {
		switch d.Standard.Family() {
		case FamilyCPU:
			if !cpu.Includes(d.Standard) {
				continue
			}
		case FamilyFPU:
			if !fpu.Includes(d.Standard) {
				continue
			}
		}
		kept = append(kept, d)
	}
	return NewTable(kept)
}

// Standards returns the set of levels the table's descriptors belong to.
func (t *Table) Standards() Standards {
	ret := make(Standards)
	for _, d := range t.Descriptors {
		ret.Add(d.Standard)
	}
	return ret
}
