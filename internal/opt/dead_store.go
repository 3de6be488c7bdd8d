package opt

import (
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/logger"
)

// eliminateDeadStores removes writes that are overwritten before they can
// have an effect. Only the most recent write without side effects is
// tracked: when the next write targets the same register, the tracked one
// is dropped. Side-effecting writes are always kept and clear the tracking.
func eliminateDeadStores(writes []ir.Write, log *logger.Logger) []ir.Write {
	res := make([]ir.Write, 0, len(writes))
	last := -1 // index into res
	for _, w := range writes {
		if w.ID().HasSideEffects() {
			res = append(res, w)
			last = -1
			continue
		}

		if last >= 0 && res[last].ID() == w.ID() {
			log.Infof("dead store elimination: %s", res[last].ID())
			res = append(res[:last], res[last+1:]...)
		}
		res = append(res, w)
		last = len(res) - 1
	}
	return res
}
