package codegen

import (
	"fmt"
	"io"

	"github.com/iley/gifscript/internal/codegen/binary"
	"github.com/iley/gifscript/internal/codegen/ccode"
	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/codegen/gifscript"
)

type Target int

const (
	TargetCCode Target = iota
	TargetGIFScript
	TargetBinary
)

var targetNames = []string{"c_code", "gifscript", "binary"}

// TargetNames lists the accepted backend names.
func TargetNames() []string {
	return append([]string(nil), targetNames...)
}

func TargetFromName(name string) (Target, error) {
	for i, n := range targetNames {
		if n == name {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("unknown backend: %s", name)
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// New returns the code generator for target writing to out. mode only
// affects the C backend.
func New(target Target, out io.Writer, mode ccode.EmitMode) (common.CodeGenerator, error) {
	switch target {
	case TargetCCode:
		return ccode.New(out, mode), nil
	case TargetGIFScript:
		return gifscript.New(out), nil
	case TargetBinary:
		return binary.New(out), nil
	}
	return nil, fmt.Errorf("unknown target: %v", target)
}
