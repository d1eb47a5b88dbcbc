package trigger

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Lookup memory names, also used as file names in a memory directory.
const (
	MemSlzVertical    = "slz_vertical"
	MemSlzHorizontal  = "slz_horizontal"
	MemZoneVertical   = "zone_vertical"
	MemZoneHorizontal = "zone_horizontal"
	MemNearSource     = "near_source"

	memoryFileSuffix = ".mem"
)

// Memory is a truth table from a key of KeyWidth bits to a value of
// ValueWidth bits. Keys absent from a memory file read as 0.
type Memory struct {
	Name       string
	KeyWidth   int
	ValueWidth int
	table      []uint16
}

func NewMemory(name string, keyWidth int, valueWidth int) *Memory {
	return &Memory{
		Name:       name,
		KeyWidth:   keyWidth,
		ValueWidth: valueWidth,
		table:      make([]uint16, 1<<uint(keyWidth)),
	}
}

func (m *Memory) Size() int {
	return len(m.table)
}

func (m *Memory) Fetch(key uint64) uint64 {
	if key >= uint64(len(m.table)) {
		panic(&ErrRange{What: m.Name + " key", Value: int(key), Bound: len(m.table)})
	}
	return uint64(m.table[key])
}

func (m *Memory) Store(key uint64, value uint64) error {
	if key >= uint64(len(m.table)) {
		return &ErrRange{What: m.Name + " key", Value: int(key), Bound: len(m.table)}
	}
	if value >= 1<<uint(m.ValueWidth) {
		return &ErrRange{What: m.Name + " value", Value: int(value), Bound: 1 << uint(m.ValueWidth)}
	}
	m.table[key] = uint16(value)
	return nil
}

func (m *Memory) Equal(o *Memory) bool {
	if m.KeyWidth != o.KeyWidth || m.ValueWidth != o.ValueWidth {
		return false
	}
	for i, v := range m.table {
		if o.table[i] != v {
			return false
		}
	}
	return true
}

func splitMemoryLine(line string) (string, string, bool) {
	for _, sep := range []string{"->", "→"} {
		if key, value, found := strings.Cut(line, sep); found {
			return strings.TrimSpace(key), strings.TrimSpace(value), true
		}
	}
	return "", "", false
}

// Read parses lines of binary "key -> value" pairs. Text after '#' is a
// comment.
func (m *Memory) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		keyText, valueText, ok := splitMemoryLine(line)
		if !ok {
			return errors.Errorf("%s line %d: missing '->' in %q", m.Name, lineNumber, line)
		}
		if len(keyText) != m.KeyWidth {
			return errors.Errorf("%s line %d: key %q has %d bits, expected %d", m.Name, lineNumber, keyText, len(keyText), m.KeyWidth)
		}
		key, err := ParseBitset(keyText)
		if err != nil {
			return errors.Wrapf(err, "%s line %d: key", m.Name, lineNumber)
		}
		if valueText == "" || len(valueText) > 64 {
			return errors.Errorf("%s line %d: invalid value %q", m.Name, lineNumber, valueText)
		}
		value, err := ParseBitset(valueText)
		if err != nil {
			return errors.Wrapf(err, "%s line %d: value", m.Name, lineNumber)
		}
		if err := m.Store(key.Field(0, key.Width()), value.Field(0, value.Width())); err != nil {
			return errors.Wrapf(err, "%s line %d", m.Name, lineNumber)
		}
	}
	return errors.Wrap(scanner.Err(), m.Name)
}

// Write dumps the full table, one "key -> value" line per key.
func (m *Memory) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s: %d-bit key -> %d-bit value\n", m.Name, m.KeyWidth, m.ValueWidth)
	for key, value := range m.table {
		fmt.Fprintf(bw, "%0*b -> %0*b\n", m.KeyWidth, key, m.ValueWidth, value)
	}
	return errors.Wrap(bw.Flush(), m.Name)
}

func (m *Memory) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create memory file %s", filename)
	}
	if err := m.Write(file); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "close memory file %s", filename)
}

func LoadMemory(filename string, name string, keyWidth int, valueWidth int) (*Memory, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open memory file %s", filename)
	}
	defer file.Close()

	m := NewMemory(name, keyWidth, valueWidth)
	if err := m.Read(file); err != nil {
		return nil, errors.Wrapf(err, "read memory file %s", filename)
	}
	return m, nil
}

// MemorySet holds the five lookup memories of the tracker algorithm.
type MemorySet struct {
	SlzVertical    *Memory
	SlzHorizontal  *Memory
	ZoneVertical   *Memory
	ZoneHorizontal *Memory
	NearSource     *Memory
}

// Key and value widths of the tracker memories.
const (
	slzVerticalKeyWidth      = TrackerLayers + 1
	slzVerticalValueWidth    = 2
	slzHorizontalKeyWidth    = SlidingZoneRows
	slzHorizontalValueWidth  = 3
	zoneVerticalKeyWidth     = MaxSlidingZonesPerZone * slzVerticalValueWidth
	zoneVerticalValueWidth   = 2
	zoneHorizontalKeyWidth   = MaxSlidingZonesPerZone
	zoneHorizontalValueWidth = 3
	nearSourceKeyWidth       = MaxSlidingZonesPerZone
	nearSourceValueWidth     = 1

	slzCathodeBit   = TrackerLayers
	innerLayerLast  = 4
	outerLayerFirst = 4
)

func newMemorySet() MemorySet {
	return MemorySet{
		SlzVertical:    NewMemory(MemSlzVertical, slzVerticalKeyWidth, slzVerticalValueWidth),
		SlzHorizontal:  NewMemory(MemSlzHorizontal, slzHorizontalKeyWidth, slzHorizontalValueWidth),
		ZoneVertical:   NewMemory(MemZoneVertical, zoneVerticalKeyWidth, zoneVerticalValueWidth),
		ZoneHorizontal: NewMemory(MemZoneHorizontal, zoneHorizontalKeyWidth, zoneHorizontalValueWidth),
		NearSource:     NewMemory(MemNearSource, nearSourceKeyWidth, nearSourceValueWidth),
	}
}

func (s MemorySet) All() []*Memory {
	return []*Memory{s.SlzVertical, s.SlzHorizontal, s.ZoneVertical, s.ZoneHorizontal, s.NearSource}
}

func layerMask(first int, last int) uint64 {
	return (uint64(1)<<uint(last+1) - 1) &^ (uint64(1)<<uint(first) - 1)
}

// DefaultMemories builds the standard tables:
//   - slz_vertical: inner when 2 or more of layers 0..4 fire, outer when 2 or
//     more of layers 4..8 fire. The cathode bit is ignored.
//   - slz_horizontal: left rows 0..2, middle rows 3..4, right rows 5..7.
//   - zone_vertical: OR of the inner bits, OR of the outer bits.
//   - zone_horizontal: left slz 0..1, middle slz 2, right slz 3..4.
//   - near_source: any inner sliding zone.
func DefaultMemories() MemorySet {
	s := newMemorySet()

	inner := layerMask(0, innerLayerLast)
	outer := layerMask(outerLayerFirst, TrackerLayers-1)
	for key := 0; key < s.SlzVertical.Size(); key++ {
		k := uint64(key)
		var v uint64
		if bits.OnesCount64(k&inner) >= 2 {
			v |= 1
		}
		if bits.OnesCount64(k&outer) >= 2 {
			v |= 2
		}
		s.SlzVertical.table[key] = uint16(v)
	}

	for key := 0; key < s.SlzHorizontal.Size(); key++ {
		k := uint64(key)
		var v uint64
		if k&layerMask(0, 2) != 0 {
			v |= 1
		}
		if k&layerMask(3, 4) != 0 {
			v |= 2
		}
		if k&layerMask(5, 7) != 0 {
			v |= 4
		}
		s.SlzHorizontal.table[key] = uint16(v)
	}

	for key := 0; key < s.ZoneVertical.Size(); key++ {
		var v uint16
		for slz := 0; slz < MaxSlidingZonesPerZone; slz++ {
			v |= uint16(key>>uint(slz*slzVerticalValueWidth)) & 3
		}
		s.ZoneVertical.table[key] = v
	}

	for key := 0; key < s.ZoneHorizontal.Size(); key++ {
		k := uint64(key)
		var v uint64
		if k&layerMask(0, 1) != 0 {
			v |= 1
		}
		if k&layerMask(2, 2) != 0 {
			v |= 2
		}
		if k&layerMask(3, 4) != 0 {
			v |= 4
		}
		s.ZoneHorizontal.table[key] = uint16(v)
	}

	for key := 1; key < s.NearSource.Size(); key++ {
		s.NearSource.table[key] = 1
	}
	return s
}

// LoadMemorySet reads the memory files named in the configuration. A memory
// without a file keeps its default table.
func LoadMemorySet(config Configuration) (MemorySet, error) {
	s := DefaultMemories()
	files := []struct {
		filename string
		target   **Memory
	}{
		{config.MemSlzVertical, &s.SlzVertical},
		{config.MemSlzHorizontal, &s.SlzHorizontal},
		{config.MemZoneVertical, &s.ZoneVertical},
		{config.MemZoneHorizont, &s.ZoneHorizontal},
		{config.MemNearSource, &s.NearSource},
	}
	for _, f := range files {
		if f.filename == "" {
			continue
		}
		m := *f.target
		loaded, err := LoadMemory(f.filename, m.Name, m.KeyWidth, m.ValueWidth)
		if err != nil {
			return s, err
		}
		*f.target = loaded
		if config.Verbosity > 0 {
			logger.Info(fmt.Sprintf("Loaded memory %s from %s", m.Name, f.filename), "memory")
		}
	}
	return s, nil
}

// Save writes every memory as <dir>/<name>.mem.
func (s MemorySet) Save(dir string) error {
	for _, m := range s.All() {
		if err := m.Save(filepath.Join(dir, m.Name+memoryFileSuffix)); err != nil {
			return err
		}
	}
	return nil
}
