package registers

import (
	"fmt"
	"strings"

	"github.com/iley/gifscript/internal/ir"
)

// Modifier is a symbolic flag applied to the open register. Only PRIM and
// TEX0 accept modifiers.
type Modifier int

const (
	// PRIM topology
	Point Modifier = iota + 1
	Line
	LineStrip
	Triangle
	TriangleStrip
	TriangleFan
	Sprite
	// PRIM flags
	Gouraud
	Fogging
	AA1
	Texture

	// TEX0 pixel storage
	CT32
	CT24
	CT16
	// TEX0 texture function
	Modulate
	Decal
	Highlight
	Highlight2
)

var modifierNames = map[Modifier]string{
	Point:         "point",
	Line:          "line",
	LineStrip:     "linestrip",
	Triangle:      "triangle",
	TriangleStrip: "trianglestrip",
	TriangleFan:   "trianglefan",
	Sprite:        "sprite",
	Gouraud:       "gouraud",
	Fogging:       "fogging",
	AA1:           "aa1",
	Texture:       "texture",
	CT32:          "CT32",
	CT24:          "CT24",
	CT16:          "CT16",
	Modulate:      "modulate",
	Decal:         "decal",
	Highlight:     "highlight",
	Highlight2:    "highlight2",
}

func (m Modifier) String() string {
	if name, ok := modifierNames[m]; ok {
		return name
	}
	return fmt.Sprintf("modifier(%d)", int(m))
}

// ModifierFromName looks a modifier up case-insensitively.
// "textured" is accepted for Texture.
func ModifierFromName(name string) (Modifier, bool) {
	if strings.EqualFold(name, "textured") {
		return Texture, true
	}
	for m, n := range modifierNames {
		if strings.EqualFold(n, name) {
			return m, true
		}
	}
	return 0, false
}

// PrimModifier returns the modifier selecting topology t.
func PrimModifier(t ir.PrimType) Modifier {
	return Point + Modifier(t)
}

func PSMModifier(p ir.PSM) Modifier {
	return CT32 + Modifier(p)
}

func TFXModifier(t ir.TFX) Modifier {
	return Modulate + Modifier(t)
}

// Modifiers returns the modifiers that rebuild p, topology first.
func Modifiers(p ir.Prim) []Modifier {
	mods := []Modifier{PrimModifier(p.Type)}
	if p.Gouraud {
		mods = append(mods, Gouraud)
	}
	if p.Texture {
		mods = append(mods, Texture)
	}
	if p.Fogging {
		mods = append(mods, Fogging)
	}
	if p.AA1 {
		mods = append(mods, AA1)
	}
	return mods
}
