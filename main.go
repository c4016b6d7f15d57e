// Command dis86 lists 16-bit x86 machine code as text, one instruction per
// line.
//
// Usage:
//
//	dis86 [flags] <filename> [hex-base-offset]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/term"

	"github.com/apparentlymart/dis86/disasm"
	"github.com/apparentlymart/dis86/isa"
)

const (
	exitUsage = 2
	exitLoad  = 3 // input file could not be read
	exitData  = 4 // descriptor table is invalid
	exitWrite = 5 // output could not be written
)

// dumpConfig prints the table's fields rather than each descriptor's
// summary String.
var dumpConfig = spew.ConfigState{Indent: " ", DisableMethods: true}

// errUsage marks errors caused by bad command line arguments.
var errUsage = errors.New("usage error")

type config struct {
	Path     string
	Base     uint32
	CPU      isa.Standard
	FPU      isa.Standard
	Width    string
	DataPath string
	Dump     bool
	Table    bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("dis86: ")

	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Print(err)
		os.Exit(exitUsage)
	}

	os.Exit(run(cfg, os.Stdout))
}

func newFlagSet(cfg *config, cpu, fpu *string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("dis86", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(cpu, "cpu", "286", "newest CPU whose encodings are decoded: 8086, 186 or 286")
	fs.StringVar(fpu, "fpu", "287", "newest coprocessor whose encodings are decoded: none, 8087 or 287")
	fs.StringVar(&cfg.Width, "width", "0", `maximum line width: a number (0 for unlimited), "auto" or "legacy"`)
	fs.StringVar(&cfg.DataPath, "data", "", "descriptor table file to use instead of the builtin table")
	fs.BoolVar(&cfg.Dump, "dump", false, "dump the loaded descriptor table and exit")
	fs.BoolVar(&cfg.Table, "table", false, "print a listing of the descriptor table and exit")
	fs.Usage = func() {
		fmt.Fprintf(output, "usage: dis86 [flags] <filename> [hex-base-offset]\n")
		fs.PrintDefaults()
	}
	return fs
}

func parseArgs(args []string, output io.Writer) (config, error) {
	cfg := config{Base: disasm.DefaultBase}
	var cpu, fpu string
	fs := newFlagSet(&cfg, &cpu, &fpu, output)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %s", errUsage, err)
	}

	if cfg.CPU = isa.ParseStandard(cpu); cfg.CPU.Family() != isa.FamilyCPU {
		return cfg, fmt.Errorf("%w: unknown CPU %q", errUsage, cpu)
	}
	if cfg.FPU = isa.ParseStandard(fpu); cfg.FPU.Family() != isa.FamilyFPU {
		return cfg, fmt.Errorf("%w: unknown FPU %q", errUsage, fpu)
	}
	if _, err := resolveWidth(cfg.Width, -1); err != nil {
		return cfg, err
	}

	rest := fs.Args()
	if cfg.Dump || cfg.Table {
		if len(rest) > 0 {
			return cfg, fmt.Errorf("%w: -dump and -table take no file arguments", errUsage)
		}
		return cfg, nil
	}

	switch len(rest) {
	case 2:
		base, err := parseBase(rest[1])
		if err != nil {
			return cfg, err
		}
		cfg.Base = base
		fallthrough
	case 1:
		cfg.Path = rest[0]
	default:
		fs.Usage()
		return cfg, fmt.Errorf("%w: want <filename> [hex-base-offset]", errUsage)
	}
	return cfg, nil
}

// parseBase parses the base offset argument as hexadecimal, with or
// without a 0x prefix. Anything that is not entirely hex digits is
// rejected.
func parseBase(s string) (uint32, error) {
	digits := s
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: offset %q is not a hexadecimal number", errUsage, s)
	}
	return uint32(v), nil
}

// resolveWidth turns the -width flag into a line limit. "auto" uses the
// width of the terminal on fd, or no limit when fd is not a terminal.
func resolveWidth(value string, fd int) (int, error) {
	switch value {
	case "", "0":
		return 0, nil
	case "legacy":
		return disasm.LegacyWidth, nil
	case "auto":
		if !term.IsTerminal(fd) {
			return 0, nil
		}
		width, _, err := term.GetSize(fd)
		if err != nil {
			return 0, nil
		}
		return width, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid -width %q", errUsage, value)
	}
	return n, nil
}

func loadTable(cfg config) (*isa.Table, error) {
	var t *isa.Table
	var err error
	if cfg.DataPath != "" {
		t, err = isa.LoadFile(cfg.DataPath)
	} else {
		t, err = isa.Builtin()
	}
	if err != nil {
		return nil, err
	}
	return t.Filter(cfg.CPU, cfg.FPU), nil
}

// run carries out cfg, writing the listing to out, and returns the process
// exit code.
func run(cfg config, out *os.File) int {
	table, err := loadTable(cfg)
	if err != nil {
		log.Print(err)
		return exitData
	}

	switch {
	case cfg.Dump:
		dumpConfig.Fdump(out, table.Descriptors)
		return 0
	case cfg.Table:
		if err := writeListing(out, table); err != nil {
			log.Printf("failed to write listing: %s", err)
			return exitWrite
		}
		return 0
	}

	// Already validated by parseArgs.
	width, _ := resolveWidth(cfg.Width, int(out.Fd()))

	buf, err := loadFile(cfg.Path)
	if err != nil {
		log.Print(err)
		return exitLoad
	}

	d := disasm.New(table, cfg.Base)
	d.Formatter.MaxWidth = width
	if err := d.Run(out, buf); err != nil {
		log.Printf("failed to write listing: %s", err)
		return exitWrite
	}
	return 0
}
