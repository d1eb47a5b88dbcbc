package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	trigger "github.com/supernemo/trigger_go/pkg"
)

const twoEvents = `{"event_id": 7, "hits": {"calo": [{"hit_id": 0, "gid": "[1302:0.1.0.3]", "amplitude": 0.4, "start_time": 10}]}}
{"event_id": 8, "hits": {}}
`

func TestFileReader(t *testing.T) {
	reader := NewFileReader(strings.NewReader(twoEvents))
	event, err := reader.getNextEvent()
	if err != nil {
		t.Fatal(err)
	}
	if event.EventID != 7 || len(event.Hits[trigger.SectionCalo]) != 1 {
		t.Fatalf("unexpected first event %+v", event)
	}
	event, err = reader.getNextEvent()
	if err != nil || event.EventID != 8 {
		t.Fatalf("unexpected second event %+v, %v", event, err)
	}
	if _, err := reader.getNextEvent(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestFileReaderMalformed(t *testing.T) {
	reader := NewFileReader(strings.NewReader(`{"event_id": 1}{"event_id": `))
	if _, err := reader.getNextEvent(); err != nil {
		t.Fatal(err)
	}
	_, err := reader.getNextEvent()
	if err == nil || err == io.EOF {
		t.Fatalf("expected a decoding error, got %v", err)
	}
}

func TestSkipAndMaxEvents(t *testing.T) {
	configuration = trigger.DefaultConfiguration()
	configuration.Skip = 1
	configuration.MaxEvents = 2

	input := `{"event_id": 0}{"event_id": 1}{"event_id": 2}{"event_id": 3}`
	jobs := make(chan job, 10)
	sendEventsToWorkers(NewFileReader(strings.NewReader(input)), jobs)

	var ids []int
	for j := range jobs {
		if j.Index != len(ids) {
			t.Fatalf("job index %d, want %d", j.Index, len(ids))
		}
		ids = append(ids, j.Event.EventID)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected events %v", ids)
	}
}

func TestResultsAreCountedInOrder(t *testing.T) {
	configuration = trigger.DefaultConfiguration()

	results := make(chan workerResult, 3)
	results <- workerResult{Index: 2, Result: trigger.EventResult{EventID: 12, CaloDecision: true, L1Decision: true}}
	results <- workerResult{Index: 0, Result: trigger.EventResult{EventID: 10}, Failed: true}
	results <- workerResult{Index: 1, Result: trigger.EventResult{EventID: 11, TrackerDecision: true}}
	close(results)

	stats := processWorkerResults(results, nil)
	if stats.Processed != 3 || stats.Failed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Calo != 1 || stats.Tracker != 1 || stats.L1 != 1 {
		t.Fatalf("unexpected decision counts %+v", stats)
	}
}

func TestLoadConfiguration(t *testing.T) {
	config, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	if config.NumWorkers != 1 {
		t.Fatalf("unexpected default workers %d", config.NumWorkers)
	}

	filename := filepath.Join(t.TempDir(), "config.json")
	data := `{"num_workers": 0, "calo_threshold_multiplicity": 2, "tracker_mode": "two_wires"}`
	if err := os.WriteFile(filename, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	config, err = LoadConfiguration(filename)
	if err != nil {
		t.Fatal(err)
	}
	if config.NumWorkers != 1 || config.CaloThresholdMultiplicity != 2 || config.TrackerMode != trigger.TrackerModeTwoWires {
		t.Fatalf("unexpected configuration %+v", config)
	}
	if config.CaloCircularBufferDepth != 1 {
		t.Fatalf("default buffer depth lost: %d", config.CaloCircularBufferDepth)
	}
}
