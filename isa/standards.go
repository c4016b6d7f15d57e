package isa

import (
	"fmt"
	"sort"
	"strings"
)

// Family separates the integer processor line from the floating point
// coprocessor line, since the two are chosen independently.
type Family uint8

// Standard identifies the processor generation that introduced an
// encoding. The family lives in the high byte and the generation in the
// low byte, so two standards of one family compare by generation.
type Standard uint16

type Standards map[Standard]struct{}

const (
	FamilyInvalid Family = 0
	FamilyCPU     Family = 'C'
	FamilyFPU     Family = 'F'
)

const (
	Invalid = Standard(0)

	I8086 = Standard(uint16(FamilyCPU)<<8 | 0)
	I186  = Standard(uint16(FamilyCPU)<<8 | 1)
	I286  = Standard(uint16(FamilyCPU)<<8 | 2)

	// NoFPU is below every FPU generation, so filtering with it drops all
	// coprocessor encodings.
	NoFPU = Standard(uint16(FamilyFPU)<<8 | 0)
	I8087 = Standard(uint16(FamilyFPU)<<8 | 1)
	I287  = Standard(uint16(FamilyFPU)<<8 | 2)
)

var standardNames = map[Standard]string{
	I8086: "8086",
	I186:  "186",
	I286:  "286",
	NoFPU: "none",
	I8087: "8087",
	I287:  "287",
}

func (s Standard) Family() Family {
	return Family(s >> 8)
}

func (s Standard) Generation() uint8 {
	return uint8(s & 0xff)
}

// Includes reports whether code written for other runs on s: same family
// and a generation no newer than s.
func (s Standard) Includes(other Standard) bool {
	return s.Family() == other.Family() && other.Generation() <= s.Generation()
}

func (s Standard) String() string {
	if name, ok := standardNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Standard(%#04x)", uint16(s))
}

func (ss Standards) Has(s Standard) bool {
	_, ok := ss[s]
	return ok
}

func (ss Standards) Add(s Standard) {
	ss[s] = struct{}{}
}

func (ss Standards) String() string {
	var ssList []Standard
	for s := range ss {
		ssList = append(ssList, s)
	}
	sort.Slice(ssList, func(i, j int) bool {
		return ssList[i] < ssList[j]
	})
	var buf strings.Builder
	for i, s := range ssList {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s.String())
	}
	return buf.String()
}

// ParseStandard accepts the level names used in the descriptor data file
// and on the command line, as printed by String. It returns Invalid for
// anything else.
func ParseStandard(s string) Standard {
	s = strings.ToLower(strings.TrimSpace(s))
	for std, name := range standardNames {
		if s == name {
			return std
		}
	}
	return Invalid
}
