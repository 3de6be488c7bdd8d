package registers

import (
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/types"
)

// Prim is filled by modifiers only. It is ready once a topology is chosen.
type Prim struct {
	meta
	typ     ir.PrimType
	hasType bool
	gouraud bool
	fogging bool
	aa1     bool
	texture bool
}

func (r *Prim) Ready() bool { return r.hasType }

func (r *Prim) Push(v types.Value) error {
	return rejectValue(r.ID(), v)
}

func (r *Prim) ApplyModifier(mod Modifier) error {
	switch mod {
	case Point:
		r.setType(ir.Point)
	case Line:
		r.setType(ir.Line)
	case LineStrip:
		r.setType(ir.LineStrip)
	case Triangle:
		r.setType(ir.Triangle)
	case TriangleStrip:
		r.setType(ir.TriangleStrip)
	case TriangleFan:
		r.setType(ir.TriangleFan)
	case Sprite:
		r.setType(ir.Sprite)
	case Gouraud:
		r.gouraud = true
	case Fogging:
		r.fogging = true
	case AA1:
		r.aa1 = true
	case Texture:
		r.texture = true
	default:
		return rejectModifier(r.ID(), mod)
	}
	return nil
}

func (r *Prim) setType(t ir.PrimType) {
	r.typ = t
	r.hasType = true
}

func (r *Prim) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.Prim{
		Type:    r.typ,
		Gouraud: r.gouraud,
		Texture: r.texture,
		Fogging: r.fogging,
		AA1:     r.aa1,
	}, true
}

func (r *Prim) Clone() Register {
	c := *r
	return &c
}

// RGBAQ takes a color with alpha, or a color alone with alpha 0xFF.
type RGBAQ struct {
	meta
	value    types.Vec4
	hasValue bool
}

func (r *RGBAQ) Ready() bool { return r.hasValue }

func (r *RGBAQ) Push(v types.Value) error {
	switch v := v.(type) {
	case types.Vec3:
		r.value = types.Vec4{X: v.X, Y: v.Y, Z: v.Z, W: 0xff}
	case types.Vec4:
		r.value = v
	default:
		return rejectValue(r.ID(), v)
	}
	r.hasValue = true
	return nil
}

func (r *RGBAQ) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *RGBAQ) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.RGBAQ{Color: r.value}, true
}

func (r *RGBAQ) Clone() Register {
	c := *r
	return &c
}

type UV struct {
	meta
	value    types.Vec2
	hasValue bool
}

func (r *UV) Ready() bool { return r.hasValue }

func (r *UV) Push(v types.Value) error {
	vec, ok := v.(types.Vec2)
	if !ok {
		return rejectValue(r.ID(), v)
	}
	r.value = vec
	r.hasValue = true
	return nil
}

func (r *UV) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *UV) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.UV{Coord: r.value}, true
}

func (r *UV) Clone() Register {
	c := *r
	return &c
}

// XYZ2 takes exactly one Vec3. Every write kicks a vertex.
type XYZ2 struct {
	meta
	value    types.Vec3
	hasValue bool
}

func (r *XYZ2) Ready() bool { return r.hasValue }

func (r *XYZ2) Push(v types.Value) error {
	vec, ok := v.(types.Vec3)
	if !ok {
		return rejectValue(r.ID(), v)
	}
	r.value = vec
	r.hasValue = true
	return nil
}

func (r *XYZ2) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

// Offset shifts X and Y. It is a no-op on an unfilled register.
func (r *XYZ2) Offset(off types.Vec2) {
	if !r.hasValue {
		return
	}
	r.value.X += off.X
	r.value.Y += off.Y
}

func (r *XYZ2) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.XYZ2{Pos: r.value}, true
}

func (r *XYZ2) Clone() Register {
	c := *r
	return &c
}

// TEX0 fills TBP, TBW, TW and TH from successive integers, in that order.
// A Vec2 sets TW and TH at once while both are still unset. PSM and TFX come
// from modifiers.
type TEX0 struct {
	meta
	tbp, tbw, tw, th             uint32
	hasTBP, hasTBW, hasTW, hasTH bool
	psm                          ir.PSM
	hasPSM                       bool
	tfx                          ir.TFX
}

func (r *TEX0) Ready() bool {
	return r.hasTBP && r.hasTBW && r.hasPSM && r.hasTW && r.hasTH
}

func (r *TEX0) Push(v types.Value) error {
	switch v := v.(type) {
	case types.Scalar:
		i := uint32(v)
		switch {
		case !r.hasTBP:
			r.tbp, r.hasTBP = i, true
		case !r.hasTBW:
			r.tbw, r.hasTBW = i, true
		case !r.hasTW:
			r.tw, r.hasTW = i, true
		case !r.hasTH:
			r.th, r.hasTH = i, true
		default:
			return rejectValue(r.ID(), v)
		}
	case types.Vec2:
		if r.hasTW || r.hasTH {
			return rejectValue(r.ID(), v)
		}
		r.tw, r.hasTW = v.X, true
		r.th, r.hasTH = v.Y, true
	default:
		return rejectValue(r.ID(), v)
	}
	return nil
}

func (r *TEX0) ApplyModifier(mod Modifier) error {
	switch mod {
	case CT32:
		r.psm, r.hasPSM = ir.CT32, true
	case CT24:
		r.psm, r.hasPSM = ir.CT24, true
	case CT16:
		r.psm, r.hasPSM = ir.CT16, true
	case Modulate:
		r.tfx = ir.Modulate
	case Decal:
		r.tfx = ir.Decal
	case Highlight:
		r.tfx = ir.Highlight
	case Highlight2:
		r.tfx = ir.Highlight2
	default:
		return rejectModifier(r.ID(), mod)
	}
	return nil
}

func (r *TEX0) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.TEX0{
		TBP: r.tbp,
		TBW: r.tbw,
		PSM: r.psm,
		TW:  r.tw,
		TH:  r.th,
		TFX: r.tfx,
	}, true
}

func (r *TEX0) Clone() Register {
	c := *r
	return &c
}

// FOG keeps the low 8 bits of the pushed integer.
type FOG struct {
	meta
	value    uint8
	hasValue bool
}

func (r *FOG) Ready() bool { return r.hasValue }

func (r *FOG) Push(v types.Value) error {
	i, ok := v.(types.Scalar)
	if !ok {
		return rejectValue(r.ID(), v)
	}
	r.value = uint8(i)
	r.hasValue = true
	return nil
}

func (r *FOG) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *FOG) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.FOG{Value: r.value}, true
}

func (r *FOG) Clone() Register {
	c := *r
	return &c
}

type FOGCOL struct {
	meta
	value    types.Vec3
	hasValue bool
}

func (r *FOGCOL) Ready() bool { return r.hasValue }

func (r *FOGCOL) Push(v types.Value) error {
	vec, ok := v.(types.Vec3)
	if !ok {
		return rejectValue(r.ID(), v)
	}
	r.value = vec
	r.hasValue = true
	return nil
}

func (r *FOGCOL) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *FOGCOL) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.FOGCOL{Color: r.value}, true
}

func (r *FOGCOL) Clone() Register {
	c := *r
	return &c
}

// SCISSOR takes the rectangle as X0, X1, Y0, Y1.
type SCISSOR struct {
	meta
	value    types.Vec4
	hasValue bool
}

func (r *SCISSOR) Ready() bool { return r.hasValue }

func (r *SCISSOR) Push(v types.Value) error {
	vec, ok := v.(types.Vec4)
	if !ok {
		return rejectValue(r.ID(), v)
	}
	r.value = vec
	r.hasValue = true
	return nil
}

func (r *SCISSOR) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *SCISSOR) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.SCISSOR{Rect: r.value}, true
}

func (r *SCISSOR) Clone() Register {
	c := *r
	return &c
}

// signalValue is shared by SIGNAL and LABEL: an ID with a mask. A bare
// integer leaves every bit unmasked.
type signalValue struct {
	id, mask uint32
	hasValue bool
}

func (s *signalValue) push(owner ir.RegID, v types.Value) error {
	switch v := v.(type) {
	case types.Scalar:
		s.id, s.mask = uint32(v), ^uint32(0)
	case types.Vec2:
		s.id, s.mask = v.X, v.Y
	default:
		return rejectValue(owner, v)
	}
	s.hasValue = true
	return nil
}

type SIGNAL struct {
	meta
	signalValue
}

func (r *SIGNAL) Ready() bool { return r.hasValue }

func (r *SIGNAL) Push(v types.Value) error {
	return r.push(r.ID(), v)
}

func (r *SIGNAL) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *SIGNAL) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.SIGNAL{Value: r.id, Mask: r.mask}, true
}

func (r *SIGNAL) Clone() Register {
	c := *r
	return &c
}

// FINISH is always ready. The GS ignores its value but one may be pushed.
type FINISH struct {
	meta
	value uint32
}

func (r *FINISH) Ready() bool { return true }

func (r *FINISH) Push(v types.Value) error {
	i, ok := v.(types.Scalar)
	if !ok {
		return rejectValue(r.ID(), v)
	}
	r.value = uint32(i)
	return nil
}

func (r *FINISH) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *FINISH) Complete() (ir.Write, bool) {
	return ir.FINISH{Value: r.value}, true
}

func (r *FINISH) Clone() Register {
	c := *r
	return &c
}

type LABEL struct {
	meta
	signalValue
}

func (r *LABEL) Ready() bool { return r.hasValue }

func (r *LABEL) Push(v types.Value) error {
	return r.push(r.ID(), v)
}

func (r *LABEL) ApplyModifier(mod Modifier) error {
	return rejectModifier(r.ID(), mod)
}

func (r *LABEL) Complete() (ir.Write, bool) {
	if !r.Ready() {
		return nil, false
	}
	return ir.LABEL{Value: r.id, Mask: r.mask}, true
}

func (r *LABEL) Clone() Register {
	c := *r
	return &c
}
