// Package gif packs completed register writes into GIF packets and back.
//
// A packet is a 128-bit tag followed by NLOOP*NREG 128-bit A+D entries, each
// a 64-bit data word and a 64-bit register address. All words are little
// endian.
package gif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/types"
)

// Flag is the tag's data format.
type Flag uint8

const (
	FlagPacked  Flag = 0
	FlagReglist Flag = 1
	FlagImage   Flag = 2
)

// RegAD is the register descriptor for address+data entries.
const RegAD = 0x0E

// MaxNLOOP is the largest loop count a tag can hold.
const MaxNLOOP = 0x7FFF

var (
	ErrInvalidPrim     = errors.New("invalid PRIM type 7")
	ErrUnknownRegister = errors.New("unknown register address")
	ErrUnsupported     = errors.New("unsupported GIF tag")
	ErrTruncated       = errors.New("truncated GIF packet")
	ErrTooManyWrites   = errors.New("too many writes for one GIF tag")
	ErrOutOfRange      = errors.New("value does not fit its register field")
)

type Tag struct {
	NLOOP uint16
	EOP   bool
	PRE   bool
	PRIM  uint16
	FLG   Flag
	NREG  uint8
	REGS  uint64
}

func bit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Pack returns the two words of the tag.
func (t Tag) Pack() (lo, hi uint64) {
	lo = uint64(t.NLOOP)&0x7FFF |
		bit(t.EOP)<<15 |
		bit(t.PRE)<<46 |
		(uint64(t.PRIM)&0x7FF)<<47 |
		(uint64(t.FLG)&0x3)<<58 |
		(uint64(t.NREG)&0xF)<<60
	return lo, t.REGS
}

func UnpackTag(lo, hi uint64) Tag {
	return Tag{
		NLOOP: uint16(lo & 0x7FFF),
		EOP:   lo>>15&1 == 1,
		PRE:   lo>>46&1 == 1,
		PRIM:  uint16(lo >> 47 & 0x7FF),
		FLG:   Flag(lo >> 58 & 0x3),
		NREG:  uint8(lo >> 60 & 0xF),
		REGS:  hi,
	}
}

// Descriptor returns the register descriptor of loop entry i.
func (t Tag) Descriptor(i int) uint8 {
	return uint8(t.REGS >> (4 * i) & 0xF)
}

// Regs returns NREG, where zero means sixteen.
func (t Tag) Regs() int {
	if t.NREG == 0 {
		return 16
	}
	return int(t.NREG)
}

func EncodePrim(p ir.Prim) uint64 {
	return uint64(p.Type)&0x7 |
		bit(p.Gouraud)<<3 |
		bit(p.Texture)<<4 |
		bit(p.Fogging)<<5 |
		bit(p.AA1)<<7
}

func DecodePrim(v uint64) (ir.Prim, error) {
	t := v & 0x7
	if t == 7 {
		return ir.Prim{}, ErrInvalidPrim
	}
	return ir.Prim{
		Type:    ir.PrimType(t),
		Gouraud: v>>3&1 == 1,
		Texture: v>>4&1 == 1,
		Fogging: v>>5&1 == 1,
		AA1:     v>>7&1 == 1,
	}, nil
}

// Encode returns the 64-bit data word of w. Fields wider than their
// hardware slot are truncated; CheckRange detects that. XYZ2 and UV coordinates are whole pixels and
// texels, written with a zero fraction.
func Encode(w ir.Write) uint64 {
	switch w := w.(type) {
	case ir.Prim:
		return EncodePrim(w)
	case ir.RGBAQ:
		c := w.Color
		return uint64(c.X&0xFF) | uint64(c.Y&0xFF)<<8 | uint64(c.Z&0xFF)<<16 | uint64(c.W&0xFF)<<24
	case ir.UV:
		return uint64(w.Coord.X<<4&0x3FFF) | uint64(w.Coord.Y<<4&0x3FFF)<<16
	case ir.XYZ2:
		p := w.Pos
		return uint64(p.X<<4&0xFFFF) | uint64(p.Y<<4&0xFFFF)<<16 | uint64(p.Z)<<32
	case ir.TEX0:
		return uint64(w.TBP&0x3FFF) |
			uint64(w.TBW&0x3F)<<14 |
			uint64(w.PSM&0x3F)<<20 |
			uint64(w.TW&0xF)<<26 |
			uint64(w.TH&0xF)<<30 |
			bit(w.TCC)<<34 |
			uint64(w.TFX&0x3)<<35
	case ir.FOG:
		return uint64(w.Value) << 56
	case ir.FOGCOL:
		c := w.Color
		return uint64(c.X&0xFF) | uint64(c.Y&0xFF)<<8 | uint64(c.Z&0xFF)<<16
	case ir.SCISSOR:
		r := w.Rect
		return uint64(r.X&0x7FF) | uint64(r.Y&0x7FF)<<16 | uint64(r.Z&0x7FF)<<32 | uint64(r.W&0x7FF)<<48
	case ir.SIGNAL:
		return uint64(w.Value) | uint64(w.Mask)<<32
	case ir.FINISH:
		return uint64(w.Value)
	case ir.LABEL:
		return uint64(w.Value) | uint64(w.Mask)<<32
	}
	panic(fmt.Sprintf("gif: unexpected write %T", w))
}

// CheckRange reports whether w survives Encode unchanged.
func CheckRange(w ir.Write) error {
	back, err := Decode(w.ID(), Encode(w))
	if err != nil {
		return err
	}
	if back != w {
		return fmt.Errorf("%s encodes as %s: %w", w, back, ErrOutOfRange)
	}
	return nil
}

// Decode is the inverse of Encode for the register at address id.
func Decode(id ir.RegID, v uint64) (ir.Write, error) {
	switch id {
	case ir.RegPRIM:
		return DecodePrim(v)
	case ir.RegRGBAQ:
		return ir.RGBAQ{Color: types.Vec4{
			X: uint32(v & 0xFF),
			Y: uint32(v >> 8 & 0xFF),
			Z: uint32(v >> 16 & 0xFF),
			W: uint32(v >> 24 & 0xFF),
		}}, nil
	case ir.RegUV:
		return ir.UV{Coord: types.Vec2{
			X: uint32(v >> 4 & 0x3FF),
			Y: uint32(v >> 20 & 0x3FF),
		}}, nil
	case ir.RegXYZ2:
		return ir.XYZ2{Pos: types.Vec3{
			X: uint32(v >> 4 & 0xFFF),
			Y: uint32(v >> 20 & 0xFFF),
			Z: uint32(v >> 32),
		}}, nil
	case ir.RegTEX0:
		psm := ir.PSM(v >> 20 & 0x3F)
		if psm > ir.CT16 {
			return nil, fmt.Errorf("TEX0: unsupported pixel storage mode %d", psm)
		}
		return ir.TEX0{
			TBP: uint32(v & 0x3FFF),
			TBW: uint32(v >> 14 & 0x3F),
			PSM: psm,
			TW:  uint32(v >> 26 & 0xF),
			TH:  uint32(v >> 30 & 0xF),
			TCC: v>>34&1 == 1,
			TFX: ir.TFX(v >> 35 & 0x3),
		}, nil
	case ir.RegFOG:
		return ir.FOG{Value: uint8(v >> 56)}, nil
	case ir.RegFOGCOL:
		return ir.FOGCOL{Color: types.Vec3{
			X: uint32(v & 0xFF),
			Y: uint32(v >> 8 & 0xFF),
			Z: uint32(v >> 16 & 0xFF),
		}}, nil
	case ir.RegSCISSOR:
		return ir.SCISSOR{Rect: types.Vec4{
			X: uint32(v & 0x7FF),
			Y: uint32(v >> 16 & 0x7FF),
			Z: uint32(v >> 32 & 0x7FF),
			W: uint32(v >> 48 & 0x7FF),
		}}, nil
	case ir.RegSIGNAL:
		return ir.SIGNAL{Value: uint32(v), Mask: uint32(v >> 32)}, nil
	case ir.RegFINISH:
		return ir.FINISH{Value: uint32(v)}, nil
	case ir.RegLABEL:
		return ir.LABEL{Value: uint32(v), Mask: uint32(v >> 32)}, nil
	}
	return nil, fmt.Errorf("%w 0x%02x", ErrUnknownRegister, uint8(id))
}

// EncodeBlockTag returns the packed A+D tag for block, with the tag PRIM
// taken from block.Prim. A block with more than MaxNLOOP writes does not fit
// one tag.
func EncodeBlockTag(block *ir.Block) (Tag, error) {
	if n := len(block.Writes); n > MaxNLOOP {
		return Tag{}, fmt.Errorf("block %s has %d writes, at most %d fit: %w", block.Name, n, MaxNLOOP, ErrTooManyWrites)
	}
	tag := Tag{
		NLOOP: uint16(len(block.Writes)),
		EOP:   true,
		FLG:   FlagPacked,
		NREG:  1,
		REGS:  RegAD,
	}
	if block.Prim != nil {
		tag.PRE = true
		tag.PRIM = uint16(EncodePrim(*block.Prim))
	}
	return tag, nil
}

// EncodeBlock returns the packet for block: its tag followed by a data and
// address word per write.
func EncodeBlock(block *ir.Block) ([]uint64, error) {
	tag, err := EncodeBlockTag(block)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, 0, 2+2*len(block.Writes))
	lo, hi := tag.Pack()
	words = append(words, lo, hi)
	for _, w := range block.Writes {
		words = append(words, Encode(w), uint64(w.ID()))
	}
	return words, nil
}

// Packet is one decoded tag with its writes.
type Packet struct {
	// Offset is the byte offset of the tag in the stream.
	Offset int
	Tag    Tag
	// Prim is the tag PRIM, set only when PRE is.
	Prim   *ir.Prim
	Writes []ir.Write
}

// DecodePacket walks every tag in words. Only packed A+D tags are
// supported.
func DecodePacket(words []uint64) ([]Packet, error) {
	var packets []Packet
	pos := 0
	for pos < len(words) {
		if pos+2 > len(words) {
			return nil, fmt.Errorf("tag at byte 0x%x: %w", pos*8, ErrTruncated)
		}
		p := Packet{Offset: pos * 8, Tag: UnpackTag(words[pos], words[pos+1])}
		pos += 2

		if p.Tag.FLG != FlagPacked {
			return nil, fmt.Errorf("tag at byte 0x%x: FLG %d: %w", p.Offset, p.Tag.FLG, ErrUnsupported)
		}
		if p.Tag.PRE {
			prim, err := DecodePrim(uint64(p.Tag.PRIM))
			if err != nil {
				return nil, fmt.Errorf("tag at byte 0x%x: %w", p.Offset, err)
			}
			p.Prim = &prim
		}

		for i := 0; i < int(p.Tag.NLOOP); i++ {
			for j := 0; j < p.Tag.Regs(); j++ {
				if d := p.Tag.Descriptor(j); d != RegAD {
					return nil, fmt.Errorf("tag at byte 0x%x: register descriptor 0x%x: %w", p.Offset, d, ErrUnsupported)
				}
				if pos+2 > len(words) {
					return nil, fmt.Errorf("tag at byte 0x%x: %w", p.Offset, ErrTruncated)
				}
				data, addr := words[pos], words[pos+1]
				if addr > 0xFF || !ir.RegID(addr).Valid() {
					return nil, fmt.Errorf("byte 0x%x: %w 0x%x", pos*8+8, ErrUnknownRegister, addr)
				}
				w, err := Decode(ir.RegID(addr), data)
				if err != nil {
					return nil, fmt.Errorf("byte 0x%x: %w", pos*8, err)
				}
				p.Writes = append(p.Writes, w)
				pos += 2
			}
		}
		packets = append(packets, p)
	}
	return packets, nil
}

// WriteWords writes words in little-endian order.
func WriteWords(w io.Writer, words []uint64) error {
	buf := make([]byte, 8*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint64(buf[8*i:], word)
	}
	_, err := w.Write(buf)
	return err
}

// ReadWords reads a whole little-endian stream. Its length must be a
// multiple of eight bytes.
func ReadWords(r io.Reader) ([]uint64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("stream length %d is not a multiple of 8: %w", len(data), ErrTruncated)
	}
	words := make([]uint64, len(data)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return words, nil
}
