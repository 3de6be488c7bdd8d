// Package opt holds the per-block optimization passes.
package opt

import (
	"strings"

	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/logger"
)

// Flags selects which passes Run applies.
type Flags uint8

const (
	DeadStoreElimination Flags = 1 << iota
	TagPrim

	None Flags = 0
	All        = DeadStoreElimination | TagPrim
)

func (f Flags) Has(o Flags) bool {
	return f&o == o
}

func (f Flags) Without(o Flags) Flags {
	return f &^ o
}

func (f Flags) String() string {
	var names []string
	if f.Has(DeadStoreElimination) {
		names = append(names, "dse")
	}
	if f.Has(TagPrim) {
		names = append(names, "tag-prim")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Run optimizes block in place. Dead store elimination runs before PRIM
// packing.
func Run(block *ir.Block, flags Flags, log *logger.Logger) {
	if flags.Has(DeadStoreElimination) {
		block.Writes = eliminateDeadStores(block.Writes, log)
	}
	if flags.Has(TagPrim) {
		packPrim(block, log)
	}
}
