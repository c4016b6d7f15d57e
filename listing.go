package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/apparentlymart/dis86/isa"
)

// writeListing prints a reference listing of the table, one section per
// level and the descriptors of each level in declaration order.
func writeListing(w io.Writer, t *isa.Table) error {
	var stds []isa.Standard
	for s := range t.Standards() {
		stds = append(stds, s)
	}
	sort.Slice(stds, func(i, j int) bool {
		return stds[i] < stds[j]
	})

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for i, std := range stds {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "; %s\n", std)

		for j := range t.Descriptors {
			d := &t.Descriptors[j]
			if d.Standard != std {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Opcode, listingExt(d), d.Mnemonic, listingOperands(d))
		}
	}
	return tw.Flush()
}

func listingExt(d *isa.Descriptor) string {
	if d.Ext == isa.ExtNone {
		return ""
	}
	return fmt.Sprintf("%s%d", d.Ext, d.N)
}

func listingOperands(d *isa.Descriptor) string {
	ops := d.Operands()
	names := make([]string, len(ops))
	for i, s := range ops {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
