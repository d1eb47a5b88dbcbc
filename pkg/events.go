package trigger

import "math"

// Detector section names of the simulated hit collections.
const (
	SectionCalo   = "calo"
	SectionXCalo  = "xcalo"
	SectionGVeto  = "gveto"
	SectionGeiger = "gg"
)

// RawHit is a simulated per-channel hit. Amplitudes are in MeV and times in
// ns. For Geiger cells StartTime is the anode time and StopTime the cathode
// time; a StopTime not after StartTime means no cathode signal.
type RawHit struct {
	HitID     int     `json:"hit_id"`
	GID       GeomID  `json:"gid"`
	Amplitude float64 `json:"amplitude"`
	StartTime float64 `json:"start_time"`
	StopTime  float64 `json:"stop_time"`
}

func (h RawHit) HasStop() bool {
	return h.StopTime > h.StartTime
}

type EventType struct {
	EventID int                 `json:"event_id"`
	Hits    map[string][]RawHit `json:"hits"`
}

// EarliestTime returns the earliest hit start time over all sections.
func (e *EventType) EarliestTime() (float64, bool) {
	earliest := math.Inf(1)
	found := false
	for _, hits := range e.Hits {
		for _, h := range hits {
			if h.StartTime < earliest {
				earliest = h.StartTime
				found = true
			}
		}
	}
	return earliest, found
}

func (e *EventType) NumberOfHits() int {
	n := 0
	for _, hits := range e.Hits {
		n += len(hits)
	}
	return n
}
