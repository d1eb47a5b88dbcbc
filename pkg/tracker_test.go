package trigger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestZonePartition(t *testing.T) {
	total := 0
	for zone := 0; zone < NumberOfZones; zone++ {
		slzs := SlidingZonesOfZone(zone)
		if len(slzs) < 1 || len(slzs) > MaxSlidingZonesPerZone {
			t.Fatalf("zone %d has %d sliding zones", zone, len(slzs))
		}
		first, last := ZoneRowRange(zone)
		for _, slz := range slzs {
			anchor := slz*4 + 3
			if anchor < first || anchor > last {
				t.Fatalf("sliding zone %d anchored at row %d outside zone %d", slz, anchor, zone)
			}
		}
		total += len(slzs)
	}
	if total != NumberOfSlidingZones {
		t.Fatalf("%d sliding zones assigned", total)
	}
	if first, last := SlidingZoneRowRange(27); first != 108 || last != 112 {
		t.Fatalf("last sliding zone rows %d..%d", first, last)
	}
}

func trackerEvent(t *testing.T, ctx *RunContext, config Configuration, memories MemorySet, hits []RawHit) *TrackerTriggerAlgorithm {
	t.Helper()
	tpBuilder := NewGeigerTPBuilder(config)
	if err := tpBuilder.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	tps := NewCollection[GeigerTP]("geiger TPs")
	if err := tpBuilder.ProcessHits(hits, 0, tps); err != nil {
		t.Fatal(err)
	}
	mustLock(t, tps)
	ctws := NewCollection[GeigerCTW]("geiger CTWs")
	if err := NewGeigerCTWBuilder(config).Process(tps, ctws); err != nil {
		t.Fatal(err)
	}
	algo, err := NewTrackerTriggerAlgorithm(config, memories)
	if err != nil {
		t.Fatal(err)
	}
	if err := algo.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := algo.Process(ctws); err != nil {
		t.Fatal(err)
	}
	return algo
}

// cathodeMemory marks a sliding zone as inner only when layer 0 fired with
// a cathode signal.
const cathodeMemory = `# layer 0 anode + cathode
1000000001 -> 01
`

func TestTrackerRequiresCathode(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "slz_vertical.mem")
	if err := os.WriteFile(filename, []byte(cathodeMemory), 0o644); err != nil {
		t.Fatal(err)
	}
	config := DefaultConfiguration()
	config.MemSlzVertical = filename
	memories, err := LoadMemorySet(config)
	if err != nil {
		t.Fatal(err)
	}

	ctx := newTestContext(t)
	anodeOnly := trackerEvent(t, ctx, config, memories, []RawHit{geigerHit(1, 0, 0, 10, 0, false)})
	if anodeOnly.Decision() {
		t.Fatal("anode-only cell matched a memory requiring a cathode")
	}
	record := anodeOnly.Records()[0]
	if record.Zones[0][0].Matched() || record.Zones[0][1].Matched() {
		t.Fatalf("zone pattern set: %v", record)
	}

	withCathode := trackerEvent(t, ctx, config, memories, []RawHit{geigerHit(1, 0, 0, 10, 0, true)})
	if !withCathode.Decision() {
		t.Fatal("anode and cathode cell did not match")
	}
	// Row 10 sits in sliding zones 1 and 2, anchored in zones 0 and 1.
	record = withCathode.Records()[0]
	if !record.Zones[0][0].Matched() || !record.Zones[0][1].Matched() {
		t.Fatalf("zones 0 and 1 not matched: %v", record)
	}
	if record.ZonePattern(0) != 0b11 || record.ZonePattern(1) != 0 {
		t.Fatalf("zone patterns %b %b", record.ZonePattern(0), record.ZonePattern(1))
	}
}

func TestTrackerDefaultMemories(t *testing.T) {
	ctx := newTestContext(t)
	config := DefaultConfiguration()
	// A short track across layers 0..3 at rows 50..51 of side 1.
	hits := []RawHit{
		geigerHit(1, 1, 0, 50, 0, false),
		geigerHit(2, 1, 1, 50, 0, false),
		geigerHit(3, 1, 2, 51, 0, false),
		geigerHit(4, 1, 3, 51, 0, false),
	}
	algo := trackerEvent(t, ctx, config, DefaultMemories(), hits)
	if !algo.Decision() {
		t.Fatal("track not found")
	}
	record := algo.Records()[0]
	finale := record.Zones[1][4]
	if !finale.Matched() || finale.Vertical() != 1 || !finale.NearSource() {
		t.Fatalf("zone 4 finale %s", finale.Bitset())
	}

	config.ExcludedZones = []ZoneAddress{{Side: 1, Zone: 4}}
	excluded := trackerEvent(t, ctx, config, DefaultMemories(), hits)
	if excluded.Decision() {
		t.Fatal("excluded zone decided")
	}

	config = DefaultConfiguration()
	config.DeadCells = []CellAddress{{Side: 1, Layer: 0, Row: 50}, {Side: 1, Layer: 1, Row: 50}, {Side: 1, Layer: 2, Row: 51}}
	dead := trackerEvent(t, ctx, config, DefaultMemories(), hits)
	if dead.Decision() {
		t.Fatal("single live cell decided")
	}
}

func TestTrackerSingleCellBelowDefaultThreshold(t *testing.T) {
	ctx := newTestContext(t)
	algo := trackerEvent(t, ctx, DefaultConfiguration(), DefaultMemories(), []RawHit{geigerHit(1, 0, 4, 60, 0, true)})
	if algo.Decision() {
		t.Fatal("a single cell is not a track")
	}
}

func TestTrackerConfiguration(t *testing.T) {
	config := DefaultConfiguration()
	config.DeadCells = []CellAddress{{Side: 0, Layer: 9, Row: 0}}
	if _, err := NewTrackerTriggerAlgorithm(config, DefaultMemories()); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	algo, err := NewTrackerTriggerAlgorithm(DefaultConfiguration(), DefaultMemories())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := algo.ProcessClocktick(0, nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestMemoryFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	defaults := DefaultMemories()
	if err := defaults.Save(dir); err != nil {
		t.Fatal(err)
	}
	config := DefaultConfiguration()
	config.MemSlzVertical = filepath.Join(dir, MemSlzVertical+".mem")
	config.MemSlzHorizontal = filepath.Join(dir, MemSlzHorizontal+".mem")
	config.MemZoneVertical = filepath.Join(dir, MemZoneVertical+".mem")
	config.MemZoneHorizont = filepath.Join(dir, MemZoneHorizontal+".mem")
	config.MemNearSource = filepath.Join(dir, MemNearSource+".mem")
	loaded, err := LoadMemorySet(config)
	if err != nil {
		t.Fatal(err)
	}
	for i, m := range loaded.All() {
		if !m.Equal(defaults.All()[i]) {
			t.Fatalf("memory %s differs after a round trip", m.Name)
		}
	}
}

func TestMemoryParseErrors(t *testing.T) {
	table := []string{
		"101 -> 1",
		"0000000001 01",
		"00000000x1 -> 01",
		"0000000001 -> 111",
		"0000000001 -> ",
		"0000000001 -> 0x",
	}
	for _, text := range table {
		m := NewMemory(MemSlzVertical, 10, 2)
		if err := m.Read(strings.NewReader(text)); err == nil {
			t.Errorf("%q accepted", text)
		}
	}

	m := NewMemory(MemNearSource, 5, 1)
	if err := m.Read(strings.NewReader("00011 → 1 # arrow\n\n# comment\n")); err != nil {
		t.Fatal(err)
	}
	if m.Fetch(3) != 1 || m.Fetch(4) != 0 {
		t.Fatal("unexpected memory content")
	}
}

func TestGeigerMatrixSetAccumulates(t *testing.T) {
	var m GeigerMatrix
	cell := CellAddress{Side: 1, Layer: 8, Row: 112}
	m.Set(cell, true, false)
	m.Set(cell, false, true)
	m.Set(CellAddress{Side: 0, Layer: 0, Row: 0}, false, true)
	if !m.Anode[1][8][112] || !m.Cathode[1][8][112] {
		t.Fatal("second Set cleared the first")
	}
	if m.Count() != 1 {
		t.Fatalf("%d active anodes, expected 1", m.Count())
	}
	m.Reset()
	if m.Count() != 0 || m.Cathode[0][0][0] {
		t.Fatal("matrix not cleared")
	}
}
