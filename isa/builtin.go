package isa

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed opcodes
var builtinData string

var (
	builtinOnce  sync.Once
	builtinTable *Table
	builtinErr   error
)

// Builtin returns the table parsed from the embedded opcodes file. It is
// parsed on first use and shared afterwards; callers must not modify it.
func Builtin() (*Table, error) {
	builtinOnce.Do(func() {
		builtinTable, builtinErr = Load(strings.NewReader(builtinData))
		if builtinErr != nil {
			builtinErr = fmt.Errorf("failed to load builtin opcodes: %w", builtinErr)
		}
	})
	return builtinTable, builtinErr
}

// MustBuiltin is like Builtin but panics if the embedded data is invalid.
func MustBuiltin() *Table {
	t, err := Builtin()
	if err != nil {
		panic(err)
	}
	return t
}
