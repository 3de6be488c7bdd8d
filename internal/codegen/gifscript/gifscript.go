// Package gifscript prints blocks back as GIFScript source.
package gifscript

import (
	"fmt"
	"io"
	"strings"

	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/registers"
)

type CodeGenerator struct {
	out     *common.Writer
	started bool
}

func New(out io.Writer) *CodeGenerator {
	return &CodeGenerator{out: common.NewWriter(out)}
}

func (g *CodeGenerator) Emit(block *ir.Block) error {
	var sb strings.Builder
	if !g.started {
		fmt.Fprintf(&sb, "// Generated with GIFScript version %s\n", common.Version)
		g.started = true
	}

	fmt.Fprintf(&sb, "%s {\n", block.Name)
	for _, w := range unpackPrim(block) {
		fmt.Fprintf(&sb, "\t%s;\n", Statement(w))
	}
	sb.WriteString("}\n")

	g.out.Printf("%s", sb.String())
	return g.out.Err()
}

// unpackPrim puts the tag PRIM back where it stood among the writes, so the
// printed block compiles to the same block again.
func unpackPrim(block *ir.Block) []ir.Write {
	if block.Prim == nil {
		return block.Writes
	}
	i := min(max(block.PrimIndex, 0), len(block.Writes))
	writes := make([]ir.Write, 0, len(block.Writes)+1)
	writes = append(writes, block.Writes[:i]...)
	writes = append(writes, *block.Prim)
	return append(writes, block.Writes[i:]...)
}

func (g *CodeGenerator) Close() error {
	return g.out.Err()
}

// Statement formats w as one statement without the trailing semicolon.
// Parsing it into an empty register completes to w, except that TEX0 TCC
// has no source form.
func Statement(w ir.Write) string {
	name := strings.ToLower(w.ID().String())
	switch w := w.(type) {
	case ir.Prim:
		mods := registers.Modifiers(w)
		parts := make([]string, len(mods))
		for i, m := range mods {
			parts[i] = m.String()
		}
		return name + " " + strings.Join(parts, " ")
	case ir.RGBAQ:
		return name + " " + w.Color.String()
	case ir.UV:
		return name + " " + w.Coord.String()
	case ir.XYZ2:
		return name + " " + w.Pos.String()
	case ir.TEX0:
		return fmt.Sprintf("%s 0x%x 0x%x 0x%x,0x%x %s %s", name, w.TBP, w.TBW, w.TW, w.TH, w.PSM, w.TFX)
	case ir.FOG:
		return fmt.Sprintf("%s 0x%x", name, w.Value)
	case ir.FOGCOL:
		return name + " " + w.Color.String()
	case ir.SCISSOR:
		return name + " " + w.Rect.String()
	case ir.SIGNAL:
		return fmt.Sprintf("%s 0x%x,0x%x", name, w.Value, w.Mask)
	case ir.FINISH:
		return fmt.Sprintf("%s 0x%x", name, w.Value)
	case ir.LABEL:
		return fmt.Sprintf("%s 0x%x,0x%x", name, w.Value, w.Mask)
	}
	panic(fmt.Sprintf("gifscript: unexpected write %T", w))
}
