package trigger

import (
	"fmt"
	"math/bits"
	"strings"

	"golang.org/x/exp/constraints"
)

// Bitset is a fixed-width bit vector. Bit 0 is the least significant bit and
// String prints the most significant bit first.
type Bitset struct {
	width int
	words []uint64
}

func NewBitset(width int) Bitset {
	return Bitset{width: width, words: make([]uint64, (width+63)/64)}
}

func (b Bitset) Width() int {
	return b.width
}

func (b Bitset) check(i int) {
	if i < 0 || i >= b.width {
		panic(fmt.Sprintf("bit %d out of range [0, %d)", i, b.width))
	}
}

func (b Bitset) Test(i int) bool {
	b.check(i)
	return b.words[i/64]&(1<<uint(i%64)) != 0
}

func (b *Bitset) Set(i int, v bool) {
	b.check(i)
	if v {
		b.words[i/64] |= 1 << uint(i%64)
	} else {
		b.words[i/64] &^= 1 << uint(i%64)
	}
}

// Field returns n bits (n <= 64) starting at offset.
func (b Bitset) Field(offset int, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		if b.Test(offset + i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// SetField writes the n low bits of v at offset.
func (b *Bitset) SetField(offset int, n int, v uint64) {
	for i := 0; i < n; i++ {
		b.Set(offset+i, v&(1<<uint(i)) != 0)
	}
}

// Slice returns a copy of n bits starting at offset.
func (b Bitset) Slice(offset int, n int) Bitset {
	s := NewBitset(n)
	for i := 0; i < n; i++ {
		if b.Test(offset + i) {
			s.Set(i, true)
		}
	}
	return s
}

// OrAt ORs src into b starting at offset.
func (b *Bitset) OrAt(offset int, src Bitset) {
	for i := 0; i < src.width; i++ {
		if src.Test(i) {
			b.Set(offset+i, true)
		}
	}
}

func (b Bitset) Clone() Bitset {
	c := Bitset{width: b.width, words: make([]uint64, len(b.words))}
	copy(c.words, b.words)
	return c
}

// Words copies the backing words into dst, least significant word first, and
// returns the number of words copied.
func (b Bitset) Words(dst []uint64) int {
	return copy(dst, b.words)
}

func (b Bitset) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

func (b Bitset) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (b Bitset) String() string {
	var sb strings.Builder
	sb.Grow(b.width)
	for i := b.width - 1; i >= 0; i-- {
		if b.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ParseBitset reads a string of '0' and '1', most significant bit first.
func ParseBitset(s string) (Bitset, error) {
	b := NewBitset(len(s))
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			b.Set(len(s)-1-i, true)
		default:
			return Bitset{}, fmt.Errorf("invalid bit %q in %q", c, s)
		}
	}
	return b, nil
}

// EncodeMultiplicity maps a multiplicity to its 2-bit code:
// 0 -> 00, 1 -> 01, 2 -> 10, >= 3 -> 11.
func EncodeMultiplicity[T constraints.Integer](m T) uint64 {
	switch {
	case m <= 0:
		return 0
	case m >= 3:
		return 3
	}
	return uint64(m)
}

func saturatingAdd[T constraints.Integer](a T, b T, max T) T {
	if a+b > max {
		return max
	}
	return a + b
}
