package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/iley/gifscript/internal/types"
)

/*
Intermediate representation for GIFScript. This sits between the builder
machine and the backends.

A Block is a straight-line list of completed GS register writes plus an
optional PRIM that the optimizer packed into the GIF tag. Every Write carries
all of its fields; partially filled registers never reach this package.
*/

type RegID uint8

const (
	RegPRIM    RegID = 0x00
	RegRGBAQ   RegID = 0x01
	RegUV      RegID = 0x03
	RegXYZ2    RegID = 0x05
	RegTEX0    RegID = 0x06
	RegFOG     RegID = 0x0A
	RegFOGCOL  RegID = 0x3D
	RegSCISSOR RegID = 0x40
	RegSIGNAL  RegID = 0x60
	RegFINISH  RegID = 0x61
	RegLABEL   RegID = 0x62
)

// AllRegIDs lists the supported registers in declaration order.
var AllRegIDs = []RegID{RegPRIM, RegRGBAQ, RegUV, RegXYZ2, RegTEX0, RegFOG, RegFOGCOL, RegSCISSOR, RegSIGNAL, RegFINISH, RegLABEL}

var regNames = map[RegID]string{
	RegPRIM:    "PRIM",
	RegRGBAQ:   "RGBAQ",
	RegUV:      "UV",
	RegXYZ2:    "XYZ2",
	RegTEX0:    "TEX0",
	RegFOG:     "FOG",
	RegFOGCOL:  "FOGCOL",
	RegSCISSOR: "SCISSOR",
	RegSIGNAL:  "SIGNAL",
	RegFINISH:  "FINISH",
	RegLABEL:   "LABEL",
}

func (id RegID) String() string {
	if name, ok := regNames[id]; ok {
		return name
	}
	return fmt.Sprintf("REG(0x%02x)", uint8(id))
}

// Valid reports whether id is one of the supported registers.
func (id RegID) Valid() bool {
	_, ok := regNames[id]
	return ok
}

// RequiresAD reports whether the register can only be written in A+D mode.
// The rest can also be written with PACKED register lists.
func (id RegID) RequiresAD() bool {
	switch id {
	case RegSCISSOR, RegSIGNAL, RegFINISH, RegLABEL:
		return true
	}
	return false
}

// HasSideEffects reports whether every write to the register is observable
// on its own. Such writes are never dead stores.
func (id RegID) HasSideEffects() bool {
	switch id {
	case RegXYZ2, RegSIGNAL, RegFINISH, RegLABEL:
		return true
	}
	return false
}

func RegIDFromName(name string) (RegID, bool) {
	for id, n := range regNames {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return 0, false
}

type PrimType uint8

const (
	Point PrimType = iota
	Line
	LineStrip
	Triangle
	TriangleStrip
	TriangleFan
	Sprite
)

var primTypeNames = []string{"point", "line", "linestrip", "triangle", "trianglestrip", "trianglefan", "sprite"}

func (t PrimType) String() string {
	if int(t) < len(primTypeNames) {
		return primTypeNames[t]
	}
	return fmt.Sprintf("primtype(%d)", uint8(t))
}

// PSM is the texture pixel storage format.
type PSM uint8

const (
	CT32 PSM = iota
	CT24
	CT16
)

func (p PSM) String() string {
	switch p {
	case CT32:
		return "CT32"
	case CT24:
		return "CT24"
	case CT16:
		return "CT16"
	}
	return fmt.Sprintf("psm(%d)", uint8(p))
}

// TFX is the texture function.
type TFX uint8

const (
	Modulate TFX = iota
	Decal
	Highlight
	Highlight2
)

func (t TFX) String() string {
	switch t {
	case Modulate:
		return "modulate"
	case Decal:
		return "decal"
	case Highlight:
		return "highlight"
	case Highlight2:
		return "highlight2"
	}
	return fmt.Sprintf("tfx(%d)", uint8(t))
}

// Write is one completed register write.
type Write interface {
	fmt.Stringer
	ID() RegID
	isWrite()
}

type Prim struct {
	Type    PrimType
	Gouraud bool
	Texture bool
	Fogging bool
	AA1     bool
}

func (Prim) ID() RegID { return RegPRIM }
func (Prim) isWrite()  {}

func (p Prim) String() string {
	var sb strings.Builder
	sb.WriteString("PRIM(")
	sb.WriteString(p.Type.String())
	if p.Gouraud {
		sb.WriteString(" gouraud")
	}
	if p.Texture {
		sb.WriteString(" texture")
	}
	if p.Fogging {
		sb.WriteString(" fogging")
	}
	if p.AA1 {
		sb.WriteString(" aa1")
	}
	sb.WriteString(")")
	return sb.String()
}

type RGBAQ struct {
	Color types.Vec4
}

func (RGBAQ) ID() RegID { return RegRGBAQ }
func (RGBAQ) isWrite()  {}

func (r RGBAQ) String() string {
	return fmt.Sprintf("RGBAQ(%s)", r.Color)
}

type UV struct {
	Coord types.Vec2
}

func (UV) ID() RegID { return RegUV }
func (UV) isWrite()  {}

func (u UV) String() string {
	return fmt.Sprintf("UV(%s)", u.Coord)
}

type XYZ2 struct {
	Pos types.Vec3
}

func (XYZ2) ID() RegID { return RegXYZ2 }
func (XYZ2) isWrite()  {}

func (x XYZ2) String() string {
	return fmt.Sprintf("XYZ2(%s)", x.Pos)
}

type TEX0 struct {
	TBP uint32
	TBW uint32
	PSM PSM
	// TW and TH are log2 of the texture width and height.
	TW  uint32
	TH  uint32
	TCC bool
	TFX TFX
}

func (TEX0) ID() RegID { return RegTEX0 }
func (TEX0) isWrite()  {}

func (t TEX0) String() string {
	return fmt.Sprintf("TEX0(tbp=0x%x tbw=0x%x tw=0x%x th=0x%x %s %s)", t.TBP, t.TBW, t.TW, t.TH, t.PSM, t.TFX)
}

type FOG struct {
	Value uint8
}

func (FOG) ID() RegID { return RegFOG }
func (FOG) isWrite()  {}

func (f FOG) String() string {
	return fmt.Sprintf("FOG(0x%x)", f.Value)
}

type FOGCOL struct {
	Color types.Vec3
}

func (FOGCOL) ID() RegID { return RegFOGCOL }
func (FOGCOL) isWrite()  {}

func (f FOGCOL) String() string {
	return fmt.Sprintf("FOGCOL(%s)", f.Color)
}

// SCISSOR holds the rectangle as (X0, X1, Y0, Y1).
type SCISSOR struct {
	Rect types.Vec4
}

func (SCISSOR) ID() RegID { return RegSCISSOR }
func (SCISSOR) isWrite()  {}

func (s SCISSOR) String() string {
	return fmt.Sprintf("SCISSOR(%s)", s.Rect)
}

type SIGNAL struct {
	Value uint32
	Mask  uint32
}

func (SIGNAL) ID() RegID { return RegSIGNAL }
func (SIGNAL) isWrite()  {}

func (s SIGNAL) String() string {
	return fmt.Sprintf("SIGNAL(0x%x,0x%x)", s.Value, s.Mask)
}

// FINISH carries a value the GS ignores.
type FINISH struct {
	Value uint32
}

func (FINISH) ID() RegID { return RegFINISH }
func (FINISH) isWrite()  {}

func (f FINISH) String() string {
	return fmt.Sprintf("FINISH(0x%x)", f.Value)
}

type LABEL struct {
	Value uint32
	Mask  uint32
}

func (LABEL) ID() RegID { return RegLABEL }
func (LABEL) isWrite()  {}

func (l LABEL) String() string {
	return fmt.Sprintf("LABEL(0x%x,0x%x)", l.Value, l.Mask)
}

type Block struct {
	Name string
	// Prim is the PRIM packed into the GIF tag, if any.
	Prim *Prim
	// PrimIndex is the position in Writes that Prim was taken from.
	PrimIndex int
	Writes    []Write
}

func (b *Block) Print(writer io.Writer) {
	fmt.Fprintf(writer, "Block %s:\n", b.Name)
	if b.Prim != nil {
		fmt.Fprintf(writer, "   tag  %s @%d\n", b.Prim, b.PrimIndex)
	}
	for i, w := range b.Writes {
		fmt.Fprintf(writer, "%4d  %s\n", i, w)
	}
}
