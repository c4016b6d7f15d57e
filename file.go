package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrShortRead reports that a file yielded fewer bytes than its size.
var ErrShortRead = errors.New("short read")

// LoadError is a failure to load the input file. Op is "open", "stat" or
// "read".
type LoadError struct {
	Op   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	// A *fs.PathError already names the operation and path.
	cause := e.Err
	var pe *fs.PathError
	if errors.As(cause, &pe) {
		cause = pe.Err
	}
	return fmt.Sprintf("cannot %s %s: %s", e.Op, e.Path, cause)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// statReader is the part of *os.File that loading needs.
type statReader interface {
	io.Reader
	Stat() (fs.FileInfo, error)
}

// loadFile reads the whole of the named file into memory.
func loadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return readAll(path, f)
}

// readAll reads exactly as many bytes as f's size claims, so a file that
// shrinks while being read is an error rather than a silently short input.
func readAll(path string, f statReader) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Op: "stat", Path: path, Err: err}
	}

	buf := make([]byte, info.Size())
	n, err := io.ReadFull(f, buf)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return nil, &LoadError{
			Op:   "read",
			Path: path,
			Err:  fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, len(buf)),
		}
	case err != nil:
		return nil, &LoadError{Op: "read", Path: path, Err: err}
	}
	return buf, nil
}
