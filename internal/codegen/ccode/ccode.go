// Package ccode emits blocks as ps2sdk C arrays ready to be sent over PATH3.
package ccode

import (
	"fmt"
	"io"
	"strings"

	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/gif"
	"github.com/iley/gifscript/internal/ir"
)

type EmitMode int

const (
	// EmitDefs uses the GS_SET_* and GS_REG_* macros from gs_gp.h.
	EmitDefs EmitMode = iota
	// EmitMagic writes raw 64-bit words.
	EmitMagic
)

func EmitModeFromName(name string) (EmitMode, error) {
	switch name {
	case "defs":
		return EmitDefs, nil
	case "magic":
		return EmitMagic, nil
	}
	return 0, fmt.Errorf("unknown emit mode: %s", name)
}

func (m EmitMode) String() string {
	if m == EmitMagic {
		return "magic"
	}
	return "defs"
}

const prologue = "#include <tamtypes.h>\n#include <gs_gp.h>\n#include <gif_tags.h>\n"

var primNames = map[ir.PrimType]string{
	ir.Point:         "GS_PRIM_POINT",
	ir.Line:          "GS_PRIM_LINE",
	ir.LineStrip:     "GS_PRIM_LINE_STRIP",
	ir.Triangle:      "GS_PRIM_TRIANGLE",
	ir.TriangleStrip: "GS_PRIM_TRIANGLE_STRIP",
	ir.TriangleFan:   "GS_PRIM_TRIANGLE_FAN",
	ir.Sprite:        "GS_PRIM_SPRITE",
}

var psmNames = map[ir.PSM]string{
	ir.CT32: "GS_PSM_32",
	ir.CT24: "GS_PSM_24",
	ir.CT16: "GS_PSM_16",
}

var tfxNames = map[ir.TFX]string{
	ir.Modulate:   "GS_TFX_MODULATE",
	ir.Decal:      "GS_TFX_DECAL",
	ir.Highlight:  "GS_TFX_HIGHLIGHT",
	ir.Highlight2: "GS_TFX_HIGHLIGHT2",
}

var regNames = map[ir.RegID]string{
	ir.RegPRIM:    "GS_REG_PRIM",
	ir.RegRGBAQ:   "GS_REG_RGBAQ",
	ir.RegUV:      "GS_REG_UV",
	ir.RegXYZ2:    "GS_REG_XYZ2",
	ir.RegTEX0:    "GS_REG_TEX0_1",
	ir.RegFOG:     "GS_REG_FOG",
	ir.RegFOGCOL:  "GS_REG_FOGCOL",
	ir.RegSCISSOR: "GS_REG_SCISSOR_1",
	ir.RegSIGNAL:  "GS_REG_SIGNAL",
	ir.RegFINISH:  "GS_REG_FINISH",
	ir.RegLABEL:   "GS_REG_LABEL",
}

type CodeGenerator struct {
	out     *common.Writer
	mode    EmitMode
	started bool
}

func New(out io.Writer, mode EmitMode) *CodeGenerator {
	return &CodeGenerator{out: common.NewWriter(out), mode: mode}
}

func (g *CodeGenerator) Emit(block *ir.Block) error {
	tag, err := gif.EncodeBlockTag(block)
	if err != nil {
		return err
	}

	var sb strings.Builder
	if !g.started {
		sb.WriteString(prologue)
		g.started = true
	}

	n := len(block.Writes)
	fmt.Fprintf(&sb, "u64 %s_data_size = %d;\n", block.Name, (n+1)*16)
	fmt.Fprintf(&sb, "u64 %s_data[] __attribute__((aligned(16))) = {\n", block.Name)
	fmt.Fprintf(&sb, "\t%s,\n", g.tag(block, tag))
	for _, w := range block.Writes {
		fmt.Fprintf(&sb, "\t%s,\n", g.entry(w))
	}
	sb.WriteString("};\n")

	g.out.Printf("%s", sb.String())
	return g.out.Err()
}

func (g *CodeGenerator) Close() error {
	return g.out.Err()
}

func (g *CodeGenerator) tag(block *ir.Block, tag gif.Tag) string {
	if g.mode == EmitMagic {
		lo, hi := tag.Pack()
		return fmt.Sprintf("0x%016x,0x%016x", lo, hi)
	}
	pre, prim := 0, "0"
	if block.Prim != nil {
		pre, prim = 1, setPrim(*block.Prim)
	}
	return fmt.Sprintf("GIF_SET_TAG(%d,1,%d,%s,0,1),GIF_REG_AD", len(block.Writes), pre, prim)
}

func (g *CodeGenerator) entry(w ir.Write) string {
	if g.mode == EmitMagic {
		return fmt.Sprintf("0x%016x,0x%02x", gif.Encode(w), uint8(w.ID()))
	}
	return set(w) + "," + regNames[w.ID()]
}

func enable(b bool) string {
	if b {
		return "GS_ENABLE"
	}
	return "GS_DISABLE"
}

func setPrim(p ir.Prim) string {
	return fmt.Sprintf("GS_SET_PRIM(%s,%s,%s,%s,0,%s,0,0,0)",
		primNames[p.Type], enable(p.Gouraud), enable(p.Texture), enable(p.Fogging), enable(p.AA1))
}

func set(w ir.Write) string {
	switch w := w.(type) {
	case ir.Prim:
		return setPrim(w)
	case ir.RGBAQ:
		c := w.Color
		return fmt.Sprintf("GS_SET_RGBAQ(0x%02x,0x%02x,0x%02x,0x%02x,0x00)", c.X, c.Y, c.Z, c.W)
	case ir.UV:
		return fmt.Sprintf("GS_SET_UV(%d<<4,%d<<4)", w.Coord.X, w.Coord.Y)
	case ir.XYZ2:
		p := w.Pos
		return fmt.Sprintf("GS_SET_XYZ(%d<<4,%d<<4,%d)", p.X, p.Y, p.Z)
	case ir.TEX0:
		tcc := 0
		if w.TCC {
			tcc = 1
		}
		return fmt.Sprintf("GS_SET_TEX0(0x%x,%d,%s,%d,%d,%d,%s,0,0,0,0,0)",
			w.TBP, w.TBW, psmNames[w.PSM], w.TW, w.TH, tcc, tfxNames[w.TFX])
	case ir.FOG:
		return fmt.Sprintf("GS_SET_FOG(0x%02x)", w.Value)
	case ir.FOGCOL:
		c := w.Color
		return fmt.Sprintf("GS_SET_FOGCOL(0x%02x,0x%02x,0x%02x)", c.X, c.Y, c.Z)
	case ir.SCISSOR:
		r := w.Rect
		return fmt.Sprintf("GS_SET_SCISSOR(%d,%d,%d,%d)", r.X, r.Y, r.Z, r.W)
	case ir.SIGNAL:
		return fmt.Sprintf("GS_SET_SIGNAL(0x%x,0x%x)", w.Value, w.Mask)
	case ir.FINISH:
		return fmt.Sprintf("GS_SET_FINISH(0x%x)", w.Value)
	case ir.LABEL:
		return fmt.Sprintf("GS_SET_LABEL(0x%x,0x%x)", w.Value, w.Mask)
	}
	panic(fmt.Sprintf("ccode: unexpected write %T", w))
}
