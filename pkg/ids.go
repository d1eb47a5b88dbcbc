package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

const MaxAddressDepth = 5

// Geometric categories.
const (
	GeomGeigerCell uint32 = 1204
	GeomXCaloBlock uint32 = 1232
	GeomGVetoBlock uint32 = 1252
	GeomCaloBlock  uint32 = 1302
)

// Electronic categories.
const (
	ElecCrate         uint32 = 1
	ElecCaloFEB       uint32 = 10
	ElecCaloChannel   uint32 = 11
	ElecGeigerChannel uint32 = 21
	ElecGeigerTP      uint32 = 22
)

// Address is a typed, ordered list of numeric fields. It is comparable and can
// be used as a map key.
type Address struct {
	Type   uint32
	Depth  uint8
	Fields [MaxAddressDepth]uint32
}

func NewAddress(t uint32, fields ...uint32) Address {
	if len(fields) > MaxAddressDepth {
		panic(fmt.Sprintf("address depth %d exceeds %d", len(fields), MaxAddressDepth))
	}
	a := Address{Type: t, Depth: uint8(len(fields))}
	copy(a.Fields[:], fields)
	return a
}

func (a Address) Get(i int) uint32 {
	if i < 0 || i >= int(a.Depth) {
		panic(fmt.Sprintf("address field %d out of depth %d", i, a.Depth))
	}
	return a.Fields[i]
}

// Prefix returns the first depth fields of a retyped as t.
func (a Address) Prefix(t uint32, depth int) Address {
	if depth > int(a.Depth) {
		depth = int(a.Depth)
	}
	p := Address{Type: t, Depth: uint8(depth)}
	copy(p.Fields[:depth], a.Fields[:depth])
	return p
}

// HasPrefix reports whether the leading fields of a equal the fields of p.
// Types are not compared.
func (a Address) HasPrefix(p Address) bool {
	if p.Depth > a.Depth {
		return false
	}
	for i := 0; i < int(p.Depth); i++ {
		if a.Fields[i] != p.Fields[i] {
			return false
		}
	}
	return true
}

// DottedFields renders the fields as "a.b.c".
func (a Address) DottedFields() string {
	parts := make([]string, a.Depth)
	for i := range parts {
		parts[i] = strconv.FormatUint(uint64(a.Fields[i]), 10)
	}
	return strings.Join(parts, ".")
}

func (a Address) String() string {
	return fmt.Sprintf("[%d:%s]", a.Type, a.DottedFields())
}

// ParseDottedAddress builds an address of type t from "a.b.c".
func ParseDottedAddress(t uint32, s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, fmt.Errorf("empty address for type %d", t)
	}
	parts := strings.Split(s, ".")
	if len(parts) > MaxAddressDepth {
		return Address{}, fmt.Errorf("address %q deeper than %d", s, MaxAddressDepth)
	}
	fields := make([]uint32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Address{}, fmt.Errorf("invalid address field %q in %q: %w", p, s, err)
		}
		fields[i] = uint32(v)
	}
	return NewAddress(t, fields...), nil
}

// ParseAddress parses the "[type:a.b.c]" form produced by String.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}
	typeStr, fields, found := strings.Cut(s[1:len(s)-1], ":")
	if !found {
		return Address{}, fmt.Errorf("invalid address %q: missing type separator", s)
	}
	t, err := strconv.ParseUint(typeStr, 10, 32)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address type in %q: %w", s, err)
	}
	return ParseDottedAddress(uint32(t), fields)
}

// GeomID identifies a physical detector element.
type GeomID struct {
	Address
}

func NewGeomID(t uint32, fields ...uint32) GeomID {
	return GeomID{NewAddress(t, fields...)}
}

func (g GeomID) Module() int {
	return int(g.Get(0))
}

func (g GeomID) Side() int {
	return int(g.Get(1))
}

// ElecID identifies a front-end electronics crate, board, channel or TP slot.
type ElecID struct {
	Address
}

func NewElecID(t uint32, fields ...uint32) ElecID {
	return ElecID{NewAddress(t, fields...)}
}

func (e ElecID) Crate() int {
	return int(e.Get(0))
}

func (e ElecID) Board() int {
	return int(e.Get(1))
}

func (e ElecID) Channel() int {
	return int(e.Get(2))
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
