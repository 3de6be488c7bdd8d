// Package registers implements the GS register variants the builder fills
// from pushed operands and modifiers.
//
// A register is built in two phases. While building, only Push and
// ApplyModifier mutate it. Complete returns the typed ir.Write once the
// register is Ready; before that it reports false, so an unfilled field can
// never be read.
package registers

import (
	"errors"
	"fmt"

	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/types"
)

// ErrRejected is wrapped by every push or modifier a register does not accept.
var ErrRejected = errors.New("operand rejected")

type Register interface {
	ID() ir.RegID
	Name() string
	RequiresAD() bool
	HasSideEffects() bool

	Ready() bool
	Push(v types.Value) error
	ApplyModifier(mod Modifier) error
	Complete() (ir.Write, bool)
	// Clone returns an independent deep copy.
	Clone() Register

	isRegister()
}

// New returns an empty register for id.
func New(id ir.RegID) (Register, error) {
	m := meta(id)
	switch id {
	case ir.RegPRIM:
		return &Prim{meta: m}, nil
	case ir.RegRGBAQ:
		return &RGBAQ{meta: m}, nil
	case ir.RegUV:
		return &UV{meta: m}, nil
	case ir.RegXYZ2:
		return &XYZ2{meta: m}, nil
	case ir.RegTEX0:
		return &TEX0{meta: m, tfx: ir.Decal}, nil
	case ir.RegFOG:
		return &FOG{meta: m}, nil
	case ir.RegFOGCOL:
		return &FOGCOL{meta: m}, nil
	case ir.RegSCISSOR:
		return &SCISSOR{meta: m}, nil
	case ir.RegSIGNAL:
		return &SIGNAL{meta: m}, nil
	case ir.RegFINISH:
		return &FINISH{meta: m}, nil
	case ir.RegLABEL:
		return &LABEL{meta: m}, nil
	}
	return nil, fmt.Errorf("unsupported register %s", id)
}

// meta is the register address every variant embeds.
type meta ir.RegID

func (m meta) ID() ir.RegID         { return ir.RegID(m) }
func (m meta) Name() string         { return ir.RegID(m).String() }
func (m meta) RequiresAD() bool     { return ir.RegID(m).RequiresAD() }
func (m meta) HasSideEffects() bool { return ir.RegID(m).HasSideEffects() }
func (meta) isRegister()            {}

func rejectValue(id ir.RegID, v types.Value) error {
	return fmt.Errorf("%s does not accept %s: %w", id, shapeName(v), ErrRejected)
}

func rejectModifier(id ir.RegID, mod Modifier) error {
	return fmt.Errorf("%s does not accept modifier %s: %w", id, mod, ErrRejected)
}

func shapeName(v types.Value) string {
	switch v.(type) {
	case types.Scalar:
		return "an integer"
	case types.Vec2:
		return "a Vec2"
	case types.Vec3:
		return "a Vec3"
	case types.Vec4:
		return "a Vec4"
	}
	return fmt.Sprintf("%T", v)
}
