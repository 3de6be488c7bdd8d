package machine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/logger"
	"github.com/iley/gifscript/internal/opt"
	"github.com/iley/gifscript/internal/registers"
	"github.com/iley/gifscript/internal/types"
)

type recorder struct {
	blocks []*ir.Block
}

func (r *recorder) Emit(block *ir.Block) error {
	r.blocks = append(r.blocks, block)
	return nil
}

func newRecording(flags opt.Flags) (*Machine, *recorder) {
	rec := &recorder{}
	return New(WithEmitter(rec), WithOptimizations(flags)), rec
}

func TestSharedNamespace(t *testing.T) {
	m := New()
	require.NoError(t, m.StartBlock("a"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	require.NoError(t, m.EndBlockMacro())

	require.ErrorIs(t, m.StartBlock("a"), ErrDuplicateName)
	require.ErrorIs(t, m.StartMacro("a"), ErrDuplicateName)

	require.NoError(t, m.StartMacro("b"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	require.NoError(t, m.EndBlockMacro())

	require.ErrorIs(t, m.StartBlock("b"), ErrDuplicateName)
	require.ErrorIs(t, m.StartMacro("b"), ErrDuplicateName)
	require.Equal(t, Idle, m.State())
}

func TestStartWhileActive(t *testing.T) {
	m := New()
	require.NoError(t, m.StartBlock("a"))
	require.ErrorIs(t, m.StartBlock("b"), ErrContainerActive)
	require.ErrorIs(t, m.StartMacro("b"), ErrContainerActive)
	require.Equal(t, InBlock, m.State())

	// The failed starts did not claim their names.
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	require.NoError(t, m.EndBlockMacro())
	require.NoError(t, m.StartMacro("b"))
	require.Equal(t, InMacro, m.State())
}

func TestEndBlockMacro(t *testing.T) {
	m := New()
	require.ErrorIs(t, m.EndBlockMacro(), ErrNoContainer)

	require.NoError(t, m.StartBlock("empty"))
	require.ErrorIs(t, m.EndBlockMacro(), ErrEmptyContainer)
	require.Equal(t, InBlock, m.State())

	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.ErrorIs(t, m.EndBlockMacro(), ErrRegisterNotReady)
	require.NoError(t, m.PushVec3(types.Vec3{X: 1, Y: 2, Z: 3}))
	require.NoError(t, m.EndBlockMacro())
	require.Equal(t, Idle, m.State())

	require.NoError(t, m.StartMacro("emptymacro"))
	require.ErrorIs(t, m.EndBlockMacro(), ErrEmptyContainer)
	require.Equal(t, InMacro, m.State())
}

func TestEmit(t *testing.T) {
	m, rec := newRecording(opt.None)

	require.NoError(t, m.StartBlock("one"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartMacro("mac"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartBlock("two"))
	require.NoError(t, m.SetRegister(ir.RegRGBAQ))
	require.NoError(t, m.PushVec4(types.Vec4{X: 1, Y: 2, Z: 3, W: 4}))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.NoError(t, m.PushVec3(types.Vec3{X: 5, Y: 6, Z: 7}))
	require.NoError(t, m.EndBlockMacro())

	require.Len(t, rec.blocks, 2)
	require.Equal(t, &ir.Block{Name: "one", Writes: []ir.Write{ir.FINISH{}}}, rec.blocks[0])
	require.Equal(t, &ir.Block{Name: "two", Writes: []ir.Write{
		ir.RGBAQ{Color: types.Vec4{X: 1, Y: 2, Z: 3, W: 4}},
		ir.XYZ2{Pos: types.Vec3{X: 5, Y: 6, Z: 7}},
	}}, rec.blocks[1])
	require.Equal(t, []string{"one", "two"}, m.Blocks())
}

func TestEmitOptimized(t *testing.T) {
	m, rec := newRecording(opt.All)

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.SetRegister(ir.RegFOGCOL))
	require.NoError(t, m.PushVec3(types.Vec3{X: 1, Y: 1, Z: 1}))
	require.NoError(t, m.SetRegister(ir.RegFOGCOL))
	require.NoError(t, m.PushVec3(types.Vec3{X: 2, Y: 2, Z: 2}))
	require.NoError(t, m.SetRegister(ir.RegPRIM))
	require.NoError(t, m.ApplyModifier(registers.Sprite))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.NoError(t, m.PushVec3(types.Vec3{X: 0, Y: 0, Z: 0}))
	require.NoError(t, m.EndBlockMacro())

	require.Len(t, rec.blocks, 1)
	b := rec.blocks[0]
	require.Equal(t, &ir.Prim{Type: ir.Sprite}, b.Prim)
	require.Equal(t, 1, b.PrimIndex)
	require.Equal(t, []ir.Write{
		ir.FOGCOL{Color: types.Vec3{X: 2, Y: 2, Z: 2}},
		ir.XYZ2{Pos: types.Vec3{X: 0, Y: 0, Z: 0}},
	}, b.Writes)
}

func TestEmitterError(t *testing.T) {
	boom := errors.New("boom")
	m := New(WithEmitter(EmitterFunc(func(*ir.Block) error { return boom })))

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	err := m.EndBlockMacro()
	require.ErrorIs(t, err, boom)
	require.Equal(t, Idle, m.State())
	require.Equal(t, []string{"b"}, m.Blocks())
}

func TestSetRegister(t *testing.T) {
	m := New()
	require.ErrorIs(t, m.SetRegister(ir.RegXYZ2), ErrNoContainer)

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.ErrorIs(t, m.SetRegister(ir.RegFINISH), ErrRegisterNotReady)
	require.NoError(t, m.PushVec3(types.Vec3{X: 1, Y: 2, Z: 3}))
	require.NoError(t, m.SetRegister(ir.RegFINISH))

	require.Error(t, m.SetRegister(ir.RegID(0x7f)))
}

func TestPush(t *testing.T) {
	m := New()
	require.ErrorIs(t, m.PushInt(1), ErrNoContainer)

	require.NoError(t, m.StartBlock("b"))
	require.ErrorIs(t, m.PushInt(1), ErrNoRegister)
	require.ErrorIs(t, m.ApplyModifier(registers.Point), ErrNoRegister)

	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.ErrorIs(t, m.PushInt(1), registers.ErrRejected)
	require.ErrorIs(t, m.PushVec2(types.Vec2{X: 1, Y: 2}), registers.ErrRejected)
	require.ErrorIs(t, m.PushVec4(types.Vec4{X: 1, Y: 2, Z: 3, W: 4}), registers.ErrRejected)
	require.ErrorIs(t, m.ApplyModifier(registers.Point), registers.ErrRejected)

	// The register is still open and unready after the rejections.
	require.ErrorIs(t, m.EndBlockMacro(), ErrRegisterNotReady)
	require.NoError(t, m.PushVec3(types.Vec3{X: 1, Y: 2, Z: 3}))
	require.NoError(t, m.EndBlockMacro())
}

func TestInsertMacro(t *testing.T) {
	m, rec := newRecording(opt.None)

	require.ErrorIs(t, m.InsertMacro("quad"), ErrNoContainer)

	require.NoError(t, m.StartMacro("quad"))
	require.NoError(t, m.SetRegister(ir.RegRGBAQ))
	require.NoError(t, m.PushVec3(types.Vec3{X: 0xff, Y: 0, Z: 0}))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.NoError(t, m.PushVec3(types.Vec3{X: 10, Y: 20, Z: 0}))
	require.ErrorIs(t, m.InsertMacro("quad"), ErrRecursiveMacro)
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartBlock("b"))
	require.ErrorIs(t, m.InsertMacro("missing"), ErrUnknownMacro)
	require.ErrorIs(t, m.InsertMacro("b"), ErrUnknownMacro)
	require.NoError(t, m.InsertMacro("quad"))
	require.NoError(t, m.InsertMacroOffset("quad", types.Vec2{X: 100, Y: 200}))

	// Pushing into the spliced clone must not leak back into the macro.
	require.NoError(t, m.PushVec3(types.Vec3{X: 1, Y: 1, Z: 1}))
	require.NoError(t, m.EndBlockMacro())

	require.Len(t, rec.blocks, 1)
	require.Equal(t, []ir.Write{
		ir.RGBAQ{Color: types.Vec4{X: 0xff, Y: 0, Z: 0, W: 0xff}},
		ir.XYZ2{Pos: types.Vec3{X: 10, Y: 20, Z: 0}},
		ir.RGBAQ{Color: types.Vec4{X: 0xff, Y: 0, Z: 0, W: 0xff}},
		ir.XYZ2{Pos: types.Vec3{X: 1, Y: 1, Z: 1}},
	}, rec.blocks[0].Writes)

	writes, ok := m.Macro("quad")
	require.True(t, ok)
	require.Equal(t, []ir.Write{
		ir.RGBAQ{Color: types.Vec4{X: 0xff, Y: 0, Z: 0, W: 0xff}},
		ir.XYZ2{Pos: types.Vec3{X: 10, Y: 20, Z: 0}},
	}, writes)
}

func TestInsertMacroOffset(t *testing.T) {
	m, rec := newRecording(opt.None)

	require.NoError(t, m.StartMacro("v"))
	require.NoError(t, m.SetRegister(ir.RegUV))
	require.NoError(t, m.PushVec2(types.Vec2{X: 1, Y: 2}))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.NoError(t, m.PushVec3(types.Vec3{X: 10, Y: 20, Z: 30}))
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.InsertMacroOffset("v", types.Vec2{X: 5, Y: 6}))
	require.NoError(t, m.EndBlockMacro())

	require.Equal(t, []ir.Write{
		ir.UV{Coord: types.Vec2{X: 1, Y: 2}},
		ir.XYZ2{Pos: types.Vec3{X: 15, Y: 26, Z: 30}},
	}, rec.blocks[0].Writes)
}

func TestInsertMacroAfterUnready(t *testing.T) {
	m := New()
	require.NoError(t, m.StartMacro("m"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.SetRegister(ir.RegUV))
	require.ErrorIs(t, m.InsertMacro("m"), ErrRegisterNotReady)
}

func TestMacroIntoMacro(t *testing.T) {
	m, rec := newRecording(opt.None)

	require.NoError(t, m.StartMacro("inner"))
	require.NoError(t, m.SetRegister(ir.RegSIGNAL))
	require.NoError(t, m.PushInt(1))
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartMacro("outer"))
	require.NoError(t, m.InsertMacro("inner"))
	require.NoError(t, m.InsertMacro("inner"))
	require.NoError(t, m.EndBlockMacro())

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.InsertMacro("outer"))
	require.NoError(t, m.EndBlockMacro())

	sig := ir.SIGNAL{Value: 1, Mask: 0xffffffff}
	require.Equal(t, []ir.Write{sig, sig}, rec.blocks[0].Writes)
}

func TestMacroLookup(t *testing.T) {
	m := New()
	_, ok := m.Macro("nope")
	require.False(t, ok)

	require.NoError(t, m.StartMacro("open"))
	require.NoError(t, m.SetRegister(ir.RegFINISH))
	_, ok = m.Macro("open")
	require.False(t, ok)
	require.NoError(t, m.EndBlockMacro())
	_, ok = m.Macro("open")
	require.True(t, ok)
}

func TestManyContainers(t *testing.T) {
	m, rec := newRecording(opt.None)

	// Enough containers to force the arenas to grow while one is active.
	for i := 0; i < 64; i++ {
		name := string(rune('a'+i%26)) + string(rune('0'+i/26))
		require.NoError(t, m.StartMacro("m"+name))
		require.NoError(t, m.SetRegister(ir.RegFINISH))
		require.NoError(t, m.EndBlockMacro())
		require.NoError(t, m.StartBlock(name))
		require.NoError(t, m.InsertMacro("m"+name))
		require.NoError(t, m.EndBlockMacro())
	}
	require.Len(t, rec.blocks, 64)
	require.Len(t, m.Blocks(), 64)
}

func TestOutOfRangeWarning(t *testing.T) {
	var logs bytes.Buffer
	rec := &recorder{}
	m := New(WithEmitter(rec), WithLogger(logger.New(&logs, logger.LevelWarn)))

	require.NoError(t, m.StartBlock("b"))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.NoError(t, m.PushVec3(types.Vec3{X: 5000, Y: 0, Z: 0}))
	require.NoError(t, m.SetRegister(ir.RegXYZ2))
	require.NoError(t, m.PushVec3(types.Vec3{X: 4095, Y: 0, Z: 0}))
	require.NoError(t, m.EndBlockMacro())

	require.Len(t, rec.blocks, 1)
	require.Equal(t, "[WARN ] block b: XYZ2(0x1388,0x0,0x0) encodes as XYZ2(0x388,0x0,0x0): value does not fit its register field\n", logs.String())
}
