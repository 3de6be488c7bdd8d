package common

import (
	"fmt"
	"io"

	"github.com/iley/gifscript/internal/machine"
)

// Version is printed in generated headers. Release builds set it with
// -ldflags "-X github.com/iley/gifscript/internal/codegen/common.Version=...".
var Version = "dev"

// CodeGenerator receives closed blocks from the machine and writes them to
// its output. Close flushes anything left and reports the first write error.
type CodeGenerator interface {
	machine.Emitter
	Close() error
}

// Writer wraps an io.Writer and remembers the first error, so backends can
// print freely and check once.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.err = err
	return n, err
}

func (w *Writer) Printf(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

func (w *Writer) Err() error {
	return w.err
}
