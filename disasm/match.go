package disasm

import "github.com/apparentlymart/dis86/isa"

// Match returns the first descriptor, in table order, that accepts the
// bytes at the start of w. It only consults descriptors sharing w's first
// byte, which gives the same answer as MatchLinear.
func Match(t *isa.Table, w Window) (*isa.Descriptor, bool) {
	first, ok := w.At(0)
	if !ok {
		return nil, false
	}
	for _, i := range t.Candidates(first) {
		d := &t.Descriptors[i]
		if accepts(d, w) {
			return d, true
		}
	}
	return nil, false
}

// MatchLinear is Match without the first-byte index: a scan over the
// whole table in declaration order.
func MatchLinear(t *isa.Table, w Window) (*isa.Descriptor, bool) {
	for i := range t.Descriptors {
		d := &t.Descriptors[i]
		if accepts(d, w) {
			return d, true
		}
	}
	return nil, false
}

func accepts(d *isa.Descriptor, w Window) bool {
	opLen := d.Opcode.Len
	if !w.HasPrefix(d.Opcode.Bytes[:opLen]) {
		return false
	}

	if d.Ext == isa.ExtNone {
		// Without an extension the only requirement is that the
		// addressing byte, if anything reads it, is present. A window too
		// short for it just means this candidate doesn't apply.
		return !d.NeedsAddressingByte() || w.Len() > opLen
	}

	b, ok := w.At(opLen)
	if !ok {
		return false
	}
	m := ModRM(b)
	switch d.Ext {
	case isa.ExtFPUMemory:
		if m.Mode() == ModeReg {
			return false
		}
	case isa.ExtFPURegister:
		if m.Mode() != ModeReg {
			return false
		}
	}
	return m.Reg() == d.N
}
