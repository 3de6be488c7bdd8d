package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iley/gifscript/internal/types"
)

func TestRegIDFromName(t *testing.T) {
	for _, id := range AllRegIDs {
		got, ok := RegIDFromName(strings.ToLower(id.String()))
		require.True(t, ok, id.String())
		require.Equal(t, id, got)
		require.True(t, id.Valid())
	}

	_, ok := RegIDFromName("XYZ3")
	require.False(t, ok)
	require.False(t, RegID(0x02).Valid())
	require.Equal(t, "REG(0x02)", RegID(0x02).String())
}

func TestRegisterTraits(t *testing.T) {
	tests := []struct {
		id          RegID
		adOnly      bool
		sideEffects bool
	}{
		{id: RegPRIM},
		{id: RegRGBAQ},
		{id: RegUV},
		{id: RegXYZ2, sideEffects: true},
		{id: RegTEX0},
		{id: RegFOG},
		{id: RegFOGCOL},
		{id: RegSCISSOR, adOnly: true},
		{id: RegSIGNAL, adOnly: true, sideEffects: true},
		{id: RegFINISH, adOnly: true, sideEffects: true},
		{id: RegLABEL, adOnly: true, sideEffects: true},
	}

	require.Len(t, tests, len(AllRegIDs))
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			require.Equal(t, tt.adOnly, tt.id.RequiresAD())
			require.Equal(t, tt.sideEffects, tt.id.HasSideEffects())
		})
	}
}

func TestBlockPrint(t *testing.T) {
	b := &Block{
		Name:      "tri",
		Prim:      &Prim{Type: Triangle, Gouraud: true},
		PrimIndex: 1,
		Writes: []Write{
			RGBAQ{Color: types.Vec4{X: 0xff, Y: 0, Z: 0, W: 0x80}},
			TEX0{TBP: 0x100, TBW: 4, PSM: CT16, TW: 8, TH: 8, TFX: Decal},
			XYZ2{Pos: types.Vec3{X: 1, Y: 2, Z: 3}},
		},
	}

	var sb strings.Builder
	b.Print(&sb)
	expected := "Block tri:\n" +
		"   tag  PRIM(triangle gouraud) @1\n" +
		"   0  RGBAQ(0xff,0x0,0x0,0x80)\n" +
		"   1  TEX0(tbp=0x100 tbw=0x4 tw=0x8 th=0x8 CT16 decal)\n" +
		"   2  XYZ2(0x1,0x2,0x3)\n"
	require.Equal(t, expected, sb.String())
}
