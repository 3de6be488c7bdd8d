package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScalar parses one vector component.
//
// A component starting with "0x" is hexadecimal, one containing '.' is a
// float32 (an "f" suffix is allowed) stored as its bit pattern, anything else
// is a decimal integer. Negative decimals wrap to 32 bits.
func ParseScalar(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")):
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex component %q: %w", s, err)
		}
		return uint32(v), nil
	case strings.Contains(s, "."):
		f, err := strconv.ParseFloat(strings.TrimRight(s, "fF"), 32)
		if err != nil {
			return 0, fmt.Errorf("invalid float component %q: %w", s, err)
		}
		return FloatBits(float32(f)), nil
	case strings.HasPrefix(s, "-"):
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid integer component %q: %w", s, err)
		}
		return uint32(int32(v)), nil
	default:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid integer component %q: %w", s, err)
		}
		return uint32(v), nil
	}
}

func parseComponents(s string, n int) ([]uint32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d components, got %d in %q", n, len(parts), s)
	}
	cells := make([]uint32, n)
	for i, part := range parts {
		cell, err := ParseScalar(part)
		if err != nil {
			return nil, err
		}
		cells[i] = cell
	}
	return cells, nil
}

func ParseVec2(s string) (Vec2, error) {
	c, err := parseComponents(s, 2)
	if err != nil {
		return Vec2{}, err
	}
	return Vec2{X: c[0], Y: c[1]}, nil
}

func ParseVec3(s string) (Vec3, error) {
	c, err := parseComponents(s, 3)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

func ParseVec4(s string) (Vec4, error) {
	c, err := parseComponents(s, 4)
	if err != nil {
		return Vec4{}, err
	}
	return Vec4{X: c[0], Y: c[1], Z: c[2], W: c[3]}, nil
}

// ParseValue parses one to four comma separated components into a Scalar
// or the vector of matching arity.
func ParseValue(s string) (Value, error) {
	switch n := strings.Count(s, ",") + 1; n {
	case 1:
		c, err := ParseScalar(s)
		if err != nil {
			return nil, err
		}
		return Scalar(c), nil
	case 2:
		return ParseVec2(s)
	case 3:
		return ParseVec3(s)
	case 4:
		return ParseVec4(s)
	default:
		return nil, fmt.Errorf("too many components (%d) in %q", n, s)
	}
}
