package trigger

import (
	"errors"
	"testing"
)

func buildCaloCTWs(t *testing.T, ctx *RunContext, hits []RawHit) *Collection[CaloCTW] {
	t.Helper()
	tps := NewCollection[CaloTP]("calo TPs")
	event := &EventType{Hits: map[string][]RawHit{SectionCalo: hits}}
	if err := newCaloBuilder(t, ctx).Process(event, tps); err != nil {
		t.Fatal(err)
	}
	mustLock(t, tps)
	ctws := NewCollection[CaloCTW]("calo CTWs")
	if err := NewCaloCTWBuilder(DefaultConfiguration()).Process(tps, ctws); err != nil {
		t.Fatal(err)
	}
	return ctws
}

func TestCaloDecisionTwoZonesOneSide(t *testing.T) {
	ctx := newTestContext(t)
	// Columns 2 and 6 are zones 1 and 3 of side 0.
	ctws := buildCaloCTWs(t, ctx, []RawHit{
		caloHit(1, 0, 2, 6, 1.0, 0),
		caloHit(2, 0, 6, 6, 1.0, 10),
	})

	config := DefaultConfiguration()
	config.CaloThresholdMultiplicity = 2
	algo, err := NewCaloTriggerAlgorithm(config)
	if err != nil {
		t.Fatal(err)
	}

	before, err := algo.ProcessClocktick(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if before.CaloFinaleDecision {
		t.Fatal("decision before the hits")
	}

	summaries, err := algo.Process(ctws)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("%d summaries, expected 1", len(summaries))
	}
	s := summaries[0]
	if s.Clocktick != 2 || !s.CaloFinaleDecision || s.SideMultiplicity[0] != 2 || !s.SingleSide || s.BothSides {
		t.Fatalf("unexpected summary %v", s)
	}
	if s.Record.Zoning[0] != 1<<1|1<<3 {
		t.Fatalf("zoning %010b", s.Record.Zoning[0])
	}

	after, err := algo.ProcessClocktick(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if after.CaloFinaleDecision {
		t.Fatal("decision after the hits")
	}
	if !algo.Decision() || len(algo.Records()) != 3 {
		t.Fatalf("decision %t with %d records", algo.Decision(), len(algo.Records()))
	}

	algo.Reset()
	if algo.Decision() || len(algo.Records()) != 0 {
		t.Fatal("reset kept records")
	}
}

func TestCaloSidePolicy(t *testing.T) {
	ctx := newTestContext(t)
	oneSide := buildCaloCTWs(t, ctx, []RawHit{caloHit(1, 1, 10, 0, 1.0, 0)})
	bothSides := buildCaloCTWs(t, ctx, []RawHit{caloHit(1, 1, 10, 0, 1.0, 0), caloHit(2, 0, 10, 0, 1.0, 0)})

	table := []struct {
		inhibitSingle bool
		inhibitBoth   bool
		ctws          *Collection[CaloCTW]
		decision      bool
	}{
		{false, false, oneSide, true},
		{true, false, oneSide, false},
		{false, true, oneSide, false},
		{true, true, bothSides, true},
		{false, false, bothSides, true},
	}
	for i, row := range table {
		config := DefaultConfiguration()
		config.InhibitSingleSide = row.inhibitSingle
		config.InhibitBothSides = row.inhibitBoth
		algo, err := NewCaloTriggerAlgorithm(config)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := algo.Process(row.ctws); err != nil {
			t.Fatal(err)
		}
		if algo.Decision() != row.decision {
			t.Errorf("row %d: decision %t, expected %t", i, algo.Decision(), row.decision)
		}
	}
}

func TestCaloBufferIntegration(t *testing.T) {
	ctx := newTestContext(t)
	// Two single-zone hits 100 ns apart.
	ctws := buildCaloCTWs(t, ctx, []RawHit{
		caloHit(1, 0, 0, 0, 1.0, 0),
		caloHit(2, 0, 10, 0, 1.0, 100),
	})

	config := DefaultConfiguration()
	config.CaloThresholdMultiplicity = 2
	shallow, err := NewCaloTriggerAlgorithm(config)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := shallow.Process(ctws); err != nil {
		t.Fatal(err)
	}
	if shallow.Decision() {
		t.Fatal("hits 4 ticks apart integrated with a depth 1 buffer")
	}

	config.CaloCircularBufferDepth = 5
	deep, err := NewCaloTriggerAlgorithm(config)
	if err != nil {
		t.Fatal(err)
	}
	summaries, err := deep.Process(ctws)
	if err != nil {
		t.Fatal(err)
	}
	// Ticks 2..6 plus 4 drain ticks.
	if len(summaries) != 9 || !deep.Decision() {
		t.Fatalf("%d summaries, decision %t", len(summaries), deep.Decision())
	}
	if summaries[len(summaries)-1].SideMultiplicity[0] != 1 {
		t.Fatal("drain tick should still see the second hit")
	}
}

func TestCaloAlgorithmConfiguration(t *testing.T) {
	config := DefaultConfiguration()
	config.CaloCircularBufferDepth = 0
	if _, err := NewCaloTriggerAlgorithm(config); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	config = DefaultConfiguration()
	config.CaloThresholdMultiplicity = 4
	if _, err := NewCaloTriggerAlgorithm(config); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	algo, err := NewCaloTriggerAlgorithm(DefaultConfiguration())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := algo.Process(NewCollection[CaloCTW]("calo CTWs")); !errors.Is(err, ErrNotLocked) {
		t.Fatalf("expected ErrNotLocked, got %v", err)
	}
}

func TestCaloMultiplicitySaturates(t *testing.T) {
	var r CaloRecord
	for zone := 0; zone < CaloZones; zone++ {
		r.ZoneCodes[0][zone] = 3
	}
	if m := r.SideMultiplicity(0, 3); m != 3 {
		t.Fatalf("side multiplicity %d, expected 3", m)
	}
	r.XWallCodes[1][1] = 2
	if m := r.SideMultiplicity(1, 3); m != 2 {
		t.Fatalf("side multiplicity %d, expected 2", m)
	}
}
