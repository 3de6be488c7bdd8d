package opt

import (
	"slices"

	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/logger"
)

// packPrim moves the first PRIM write into the GIF tag slot of the block and
// remembers where it stood.
func packPrim(block *ir.Block, log *logger.Logger) {
	if block.Prim != nil {
		return
	}
	for i, w := range block.Writes {
		p, ok := w.(ir.Prim)
		if !ok {
			continue
		}
		log.Infof("packing PRIM into GIF tag")
		block.Prim = &p
		block.PrimIndex = i
		block.Writes = slices.Delete(slices.Clone(block.Writes), i, i+1)
		return
	}
}
