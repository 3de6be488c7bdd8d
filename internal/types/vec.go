package types

import (
	"fmt"
	"math"
)

// Value is an operand pushed into a register: a Scalar or one of the vectors.
//
// Scalar, Vec2, Vec3 and Vec4 carry raw 32-bit cells. A cell is either an
// unsigned integer or the bit pattern of a float32, depending on which
// register consumes it; the value itself does not record which.
type Value interface {
	fmt.Stringer
	// Arity is the number of cells, 1 for a Scalar.
	Arity() int
	isValue()
}

type Scalar uint32

type Vec2 struct {
	X, Y uint32
}

type Vec3 struct {
	X, Y, Z uint32
}

type Vec4 struct {
	X, Y, Z, W uint32
}

func (Scalar) Arity() int { return 1 }
func (Vec2) Arity() int   { return 2 }
func (Vec3) Arity() int   { return 3 }
func (Vec4) Arity() int   { return 4 }

func (Scalar) isValue() {}
func (Vec2) isValue()   {}
func (Vec3) isValue()   {}
func (Vec4) isValue()   {}

func (s Scalar) String() string {
	return fmt.Sprintf("0x%x", uint32(s))
}

func (v Vec2) String() string {
	return fmt.Sprintf("0x%x,0x%x", v.X, v.Y)
}

func (v Vec3) String() string {
	return fmt.Sprintf("0x%x,0x%x,0x%x", v.X, v.Y, v.Z)
}

func (v Vec4) String() string {
	return fmt.Sprintf("0x%x,0x%x,0x%x,0x%x", v.X, v.Y, v.Z, v.W)
}

// Add adds o lane by lane. Lanes wrap on overflow.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// FloatBits returns the cell holding f.
func FloatBits(f float32) uint32 {
	return math.Float32bits(f)
}
