package ccode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iley/gifscript/internal/gif"
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/types"
)

func triangle() *ir.Block {
	return &ir.Block{
		Name: "tri",
		Prim: &ir.Prim{Type: ir.Triangle, Gouraud: true},
		Writes: []ir.Write{
			ir.RGBAQ{Color: types.Vec4{X: 0xff, Y: 0, Z: 0, W: 0x80}},
			ir.XYZ2{Pos: types.Vec3{X: 100, Y: 200, Z: 0}},
		},
	}
}

func TestEmitDefs(t *testing.T) {
	var buf bytes.Buffer
	g := New(&buf, EmitDefs)
	require.NoError(t, g.Emit(triangle()))
	require.NoError(t, g.Close())

	expected := "#include <tamtypes.h>\n" +
		"#include <gs_gp.h>\n" +
		"#include <gif_tags.h>\n" +
		"u64 tri_data_size = 48;\n" +
		"u64 tri_data[] __attribute__((aligned(16))) = {\n" +
		"\tGIF_SET_TAG(2,1,1,GS_SET_PRIM(GS_PRIM_TRIANGLE,GS_ENABLE,GS_DISABLE,GS_DISABLE,0,GS_DISABLE,0,0,0),0,1),GIF_REG_AD,\n" +
		"\tGS_SET_RGBAQ(0xff,0x00,0x00,0x80,0x00),GS_REG_RGBAQ,\n" +
		"\tGS_SET_XYZ(100<<4,200<<4,0),GS_REG_XYZ2,\n" +
		"};\n"
	require.Equal(t, expected, buf.String())
}

func TestEmitMagic(t *testing.T) {
	var buf bytes.Buffer
	g := New(&buf, EmitMagic)
	require.NoError(t, g.Emit(triangle()))

	expected := "#include <tamtypes.h>\n" +
		"#include <gs_gp.h>\n" +
		"#include <gif_tags.h>\n" +
		"u64 tri_data_size = 48;\n" +
		"u64 tri_data[] __attribute__((aligned(16))) = {\n" +
		"\t0x1005c00000008002,0x000000000000000e,\n" +
		"\t0x00000000800000ff,0x01,\n" +
		"\t0x000000000c800640,0x05,\n" +
		"};\n"
	require.Equal(t, expected, buf.String())
}

func TestPrologueOnce(t *testing.T) {
	var buf bytes.Buffer
	g := New(&buf, EmitDefs)
	require.NoError(t, g.Emit(&ir.Block{Name: "a", Writes: []ir.Write{ir.FINISH{}}}))
	require.NoError(t, g.Emit(&ir.Block{Name: "b", Writes: []ir.Write{ir.FINISH{}}}))

	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("#include <gs_gp.h>")))
	require.Contains(t, buf.String(), "\tGIF_SET_TAG(1,1,0,0,0,1),GIF_REG_AD,\n")
	require.Contains(t, buf.String(), "u64 b_data_size = 32;\n")
}

func TestSetMacros(t *testing.T) {
	tests := []struct {
		name     string
		write    ir.Write
		expected string
	}{
		{name: "prim", write: ir.Prim{Type: ir.Sprite, Texture: true, Fogging: true, AA1: true}, expected: "GS_SET_PRIM(GS_PRIM_SPRITE,GS_DISABLE,GS_ENABLE,GS_ENABLE,0,GS_ENABLE,0,0,0),GS_REG_PRIM"},
		{name: "uv", write: ir.UV{Coord: types.Vec2{X: 8, Y: 16}}, expected: "GS_SET_UV(8<<4,16<<4),GS_REG_UV"},
		{name: "tex0", write: ir.TEX0{TBP: 0x100, TBW: 4, PSM: ir.CT24, TW: 8, TH: 7, TFX: ir.Decal}, expected: "GS_SET_TEX0(0x100,4,GS_PSM_24,8,7,0,GS_TFX_DECAL,0,0,0,0,0),GS_REG_TEX0_1"},
		{name: "fog", write: ir.FOG{Value: 0x7}, expected: "GS_SET_FOG(0x07),GS_REG_FOG"},
		{name: "fogcol", write: ir.FOGCOL{Color: types.Vec3{X: 1, Y: 2, Z: 3}}, expected: "GS_SET_FOGCOL(0x01,0x02,0x03),GS_REG_FOGCOL"},
		{name: "scissor", write: ir.SCISSOR{Rect: types.Vec4{X: 0, Y: 639, Z: 0, W: 447}}, expected: "GS_SET_SCISSOR(0,639,0,447),GS_REG_SCISSOR_1"},
		{name: "signal", write: ir.SIGNAL{Value: 1, Mask: 0xff}, expected: "GS_SET_SIGNAL(0x1,0xff),GS_REG_SIGNAL"},
		{name: "finish", write: ir.FINISH{Value: 2}, expected: "GS_SET_FINISH(0x2),GS_REG_FINISH"},
		{name: "label", write: ir.LABEL{Value: 3, Mask: 0xf}, expected: "GS_SET_LABEL(0x3,0xf),GS_REG_LABEL"},
	}

	g := New(nil, EmitDefs)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, g.entry(tt.write))
		})
	}
}

func TestEmitModeFromName(t *testing.T) {
	m, err := EmitModeFromName("magic")
	require.NoError(t, err)
	require.Equal(t, EmitMagic, m)
	require.Equal(t, "magic", m.String())

	m, err = EmitModeFromName("defs")
	require.NoError(t, err)
	require.Equal(t, EmitDefs, m)

	_, err = EmitModeFromName("bogus")
	require.EqualError(t, err, "unknown emit mode: bogus")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEmitWriteError(t *testing.T) {
	g := New(failingWriter{}, EmitDefs)
	require.EqualError(t, g.Emit(triangle()), "disk full")
	require.EqualError(t, g.Close(), "disk full")
}

func TestEmitTooManyWrites(t *testing.T) {
	block := &ir.Block{Name: "big", Writes: make([]ir.Write, gif.MaxNLOOP+1)}
	for i := range block.Writes {
		block.Writes[i] = ir.XYZ2{Pos: types.Vec3{X: 1, Y: 2, Z: 3}}
	}

	for _, mode := range []EmitMode{EmitDefs, EmitMagic} {
		t.Run(mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			err := New(&buf, mode).Emit(block)
			require.ErrorIs(t, err, gif.ErrTooManyWrites)
			require.Zero(t, buf.Len())
		})
	}

	var buf bytes.Buffer
	block.Writes = block.Writes[:gif.MaxNLOOP]
	require.NoError(t, New(&buf, EmitDefs).Emit(block))
	require.Contains(t, buf.String(), "\tGIF_SET_TAG(32767,1,0,0,0,1),GIF_REG_AD,\n")
}
