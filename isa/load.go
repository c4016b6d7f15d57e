package isa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadFile reads a descriptor table from the named data file.
func LoadFile(filename string) (*Table, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t, err := Load(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return t, nil
}

// Load reads a descriptor table in the data file format: one descriptor per
// line, as mnemonic, opcode, extension, operands and level.
func Load(r io.Reader) (*Table, error) {
	var descs []Descriptor
	var errs []error

	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(trimComments(sc.Text()))
		if line == "" {
			continue
		}

		d, err := parseDescriptor(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		d.Line = lineNum
		descs = append(descs, d)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(descs) == 0 {
		return nil, errors.New("no descriptors")
	}

	return NewTable(descs), nil
}

func parseDescriptor(line string) (Descriptor, error) {
	var d Descriptor

	// Mnemonics such as "REP MOVSB" contain a space, so those are quoted
	// and everything else is a plain whitespace-separated field.
	var fields []string
	if strings.HasPrefix(line, `"`) {
		if !strings.Contains(line[1:], `"`) {
			return d, errors.New("unterminated quoted mnemonic")
		}
		mnem, rest := partition(line[1:], `"`)
		d.Mnemonic = mnem
		fields = strings.Fields(rest)
	} else {
		fields = strings.Fields(line)
		d.Mnemonic = fields[0]
		fields = fields[1:]
	}
	if d.Mnemonic == "" {
		return d, errors.New("empty mnemonic")
	}
	if len(fields) != 4 {
		return d, fmt.Errorf("%s: want opcode, extension, operands and level, got %d fields", d.Mnemonic, len(fields))
	}

	var err error
	var errs []error
	if d.Opcode, err = parseOpcode(fields[0]); err != nil {
		errs = append(errs, err)
	}
	if d.Ext, d.N, err = parseExtension(fields[1]); err != nil {
		errs = append(errs, err)
	}
	if d.NumOperands, err = parseOperands(fields[2], &d.Slots); err != nil {
		errs = append(errs, err)
	}
	if d.Standard = ParseStandard(fields[3]); d.Standard == Invalid {
		errs = append(errs, fmt.Errorf("unknown level %q", fields[3]))
	}
	if len(errs) == 0 {
		errs = append(errs, d.validate())
	}
	if err := errors.Join(errs...); err != nil {
		return d, fmt.Errorf("%s: %w", d.Mnemonic, err)
	}
	return d, nil
}

// parseOpcode accepts one or two hex bytes joined by a dot, like "d5.0a".
func parseOpcode(raw string) (Opcode, error) {
	parts := strings.Split(raw, ".")
	if len(parts) > 2 {
		return Opcode{}, fmt.Errorf("opcode %q has more than two bytes", raw)
	}
	var op Opcode
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return Opcode{}, fmt.Errorf("invalid opcode byte %q", part)
		}
		op.Bytes[i] = byte(v)
	}
	op.Len = len(parts)
	return op, nil
}

// parseExtension accepts "-", "/n", "m/n" and "r/n".
func parseExtension(raw string) (Extension, uint8, error) {
	if raw == "-" {
		return ExtNone, 0, nil
	}
	prefix, rawN := partition(raw, "/")
	var ext Extension
	switch prefix {
	case "":
		ext = ExtField
	case "m":
		ext = ExtFPUMemory
	case "r":
		ext = ExtFPURegister
	default:
		return ExtNone, 0, fmt.Errorf("unknown extension %q", raw)
	}
	n, err := strconv.ParseUint(rawN, 10, 8)
	if err != nil || n > 7 {
		return ExtNone, 0, fmt.Errorf("extension %q needs a discriminant between 0 and 7", raw)
	}
	return ext, uint8(n), nil
}

func parseOperands(raw string, slots *[MaxOperands]OperandSlot) (int, error) {
	if raw == "-" {
		return 0, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > MaxOperands {
		return 0, fmt.Errorf("%d operands, at most %d allowed", len(parts), MaxOperands)
	}
	var errs []error
	for i, part := range parts {
		s, err := ParseOperandSlot(part)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slots[i] = s
	}
	return len(parts), errors.Join(errs...)
}

// validate checks the constraints between fields that the matcher and
// decoder rely on.
func (d *Descriptor) validate() error {
	var errs []error
	for _, s := range d.Operands() {
		switch s.Kind {
		case OperandST, OperandSTReg:
			if d.Ext != ExtFPURegister {
				errs = append(errs, fmt.Errorf("%s operand only allowed in register forms (r/n)", s.Kind))
			}
		case OperandRegMem, OperandMem:
			if d.Ext == ExtFPURegister {
				errs = append(errs, fmt.Errorf("%s operand not allowed in register forms (r/n)", s))
			}
		}
	}
	fpu := d.Standard.Family() == FamilyFPU
	if (d.Ext == ExtFPUMemory || d.Ext == ExtFPURegister) && !fpu {
		errs = append(errs, fmt.Errorf("extension %s%d is only valid for FPU levels", d.Ext, d.N))
	}
	return errors.Join(errs...)
}

func trimComments(line string) string {
	hash := strings.IndexByte(line, '#')
	if hash == -1 {
		return line
	}
	return line[:hash]
}

func partition(s string, sep string) (l, r string) {
	idx := strings.Index(s, sep)
	if idx == -1 {
		return s, ""
	}
	return s[:idx], s[idx+len(sep):]
}
