// Package disasm turns packed GIF streams back into builder events, so a
// binary can be recompiled into any backend.
package disasm

import (
	"fmt"
	"io"

	"github.com/iley/gifscript/internal/gif"
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/logger"
	"github.com/iley/gifscript/internal/parser"
	"github.com/iley/gifscript/internal/registers"
	"github.com/iley/gifscript/internal/types"
)

// BlockName names the block for the tag at byte offset off.
func BlockName(off int) string {
	return fmt.Sprintf("block_%x", off)
}

// Disassemble reads a little-endian GIF stream from r and replays every
// packet into sink as one block. It stops at the first error.
func Disassemble(r io.Reader, sink parser.Sink, log *logger.Logger) error {
	words, err := gif.ReadWords(r)
	if err != nil {
		return err
	}
	packets, err := gif.DecodePacket(words)
	if err != nil {
		return err
	}
	for _, p := range packets {
		log.Debugf("tag at 0x%x: nloop=%d pre=%t", p.Offset, p.Tag.NLOOP, p.Tag.PRE)
		if err := Replay(sink, BlockName(p.Offset), p.Prim, p.Writes); err != nil {
			return err
		}
	}
	return nil
}

// Replay emits a block named name holding prim, when set, followed by
// writes.
func Replay(sink parser.Sink, name string, prim *ir.Prim, writes []ir.Write) error {
	if err := sink.StartBlock(name); err != nil {
		return err
	}
	if prim != nil {
		if err := replayWrite(sink, *prim); err != nil {
			return fmt.Errorf("%s: tag PRIM: %w", name, err)
		}
	}
	for i, w := range writes {
		if err := replayWrite(sink, w); err != nil {
			return fmt.Errorf("%s: write %d: %w", name, i, err)
		}
	}
	return sink.EndBlockMacro()
}

func replayWrite(sink parser.Sink, w ir.Write) error {
	if err := sink.SetRegister(w.ID()); err != nil {
		return err
	}
	switch w := w.(type) {
	case ir.Prim:
		return applyAll(sink, registers.Modifiers(w)...)
	case ir.RGBAQ:
		return sink.PushVec4(w.Color)
	case ir.UV:
		return sink.PushVec2(w.Coord)
	case ir.XYZ2:
		return sink.PushVec3(w.Pos)
	case ir.TEX0:
		if err := sink.PushInt(w.TBP); err != nil {
			return err
		}
		if err := sink.PushInt(w.TBW); err != nil {
			return err
		}
		if err := sink.PushVec2(types.Vec2{X: w.TW, Y: w.TH}); err != nil {
			return err
		}
		return applyAll(sink, registers.PSMModifier(w.PSM), registers.TFXModifier(w.TFX))
	case ir.FOG:
		return sink.PushInt(uint32(w.Value))
	case ir.FOGCOL:
		return sink.PushVec3(w.Color)
	case ir.SCISSOR:
		return sink.PushVec4(w.Rect)
	case ir.SIGNAL:
		return sink.PushVec2(types.Vec2{X: w.Value, Y: w.Mask})
	case ir.FINISH:
		return sink.PushInt(w.Value)
	case ir.LABEL:
		return sink.PushVec2(types.Vec2{X: w.Value, Y: w.Mask})
	}
	return fmt.Errorf("unexpected write %T", w)
}

func applyAll(sink parser.Sink, mods ...registers.Modifier) error {
	for _, m := range mods {
		if err := sink.ApplyModifier(m); err != nil {
			return err
		}
	}
	return nil
}
