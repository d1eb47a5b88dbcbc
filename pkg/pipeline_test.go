package trigger

import (
	"reflect"
	"testing"
)

func newTestPipeline(t *testing.T, config Configuration) *Pipeline {
	t.Helper()
	ctx, err := NewRunContext(NewDemonstratorGeometry(0), 0, config.TrackerMode)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPipeline(config, ctx, DefaultMemories())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func testEvent(id int) *EventType {
	return &EventType{
		EventID: id,
		Hits: map[string][]RawHit{
			SectionCalo: {
				caloHit(1, 0, 2, 6, 1.2, 1000),
				caloHit(2, 1, 15, 6, 0.9, 1003),
			},
			SectionGeiger: {
				geigerHit(3, 0, 0, 30, 1000, true),
				geigerHit(4, 0, 1, 30, 1000, true),
				geigerHit(5, 0, 2, 31, 1001, false),
			},
		},
	}
}

func TestPipelineEvent(t *testing.T) {
	// Without latency the calorimeter and tracker hits share a 1600 ns tick.
	config := DefaultConfiguration()
	config.CaloLatency = 0
	p := newTestPipeline(t, config)
	result, err := p.ProcessEvent(testEvent(7))
	if err != nil {
		t.Fatal(err)
	}
	if result.EventID != 7 || !result.CaloDecision || !result.TrackerDecision || !result.L1Decision {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Calo) == 0 || len(result.Tracker) == 0 || len(result.Coincidences) == 0 {
		t.Fatal("missing records")
	}
	coincidence := false
	for _, c := range result.Coincidences {
		coincidence = coincidence || c.Coincidence
	}
	if !coincidence {
		t.Fatalf("no coincidence in %+v", result.Coincidences)
	}

	// Collections are released between events.
	if p.caloTPs.IsLocked() || p.caloTPs.Len() != 0 || p.geigerCTWs.Len() != 0 {
		t.Fatal("collections not reset after the event")
	}
}

func TestPipelineReproducible(t *testing.T) {
	first, err := newTestPipeline(t, DefaultConfiguration()).ProcessEvent(testEvent(3))
	if err != nil {
		t.Fatal(err)
	}
	p := newTestPipeline(t, DefaultConfiguration())
	if _, err := p.ProcessEvent(testEvent(1)); err != nil {
		t.Fatal(err)
	}
	second, err := p.ProcessEvent(testEvent(3))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("event result depends on the events processed before it")
	}
}

func TestPipelineEmptyEvent(t *testing.T) {
	p := newTestPipeline(t, DefaultConfiguration())
	result, err := p.ProcessEvent(&EventType{EventID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if result.L1Decision || len(result.Calo) != 0 || len(result.Tracker) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPipelineUnsupportedMode(t *testing.T) {
	if _, err := NewRunContext(NewDemonstratorGeometry(0), 0, TrackerModeTwoWires); err == nil {
		t.Fatal("two wires mode accepted")
	}
}

func TestFoldCoincidences(t *testing.T) {
	clock := NewClockReference(0)
	calo := []CaloSummaryRecord{
		{Clocktick: 10, CaloFinaleDecision: true},
		{Clocktick: 70},
	}
	tracker := []TrackerRecord{
		{Clocktick: 1, FinaleDecision: true},
		{Clocktick: 2, FinaleDecision: true},
	}
	records := FoldCoincidences(clock, calo, tracker)
	expected := []CoincidenceRecord{
		{Clocktick: 0, CaloDecision: true, TrackerDecision: true, Coincidence: true},
		{Clocktick: 1, TrackerDecision: true},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Fatalf("records %+v", records)
	}
}
