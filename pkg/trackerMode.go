package trigger

import (
	"encoding/json"
	"fmt"
)

// TrackerMode selects how the Geiger cell wires are read out.
type TrackerMode int

const (
	TrackerModeUndefined TrackerMode = iota
	TrackerModeThreeWires
	TrackerModeTwoWires
)

var trackerModeStrings = []string{
	"undefined",
	"three_wires",
	"two_wires",
}

func (m TrackerMode) String() string {
	if m < TrackerModeUndefined || m > TrackerModeTwoWires {
		return "UNKNOWN"
	}
	return trackerModeStrings[m]
}

func (m TrackerMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *TrackerMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range trackerModeStrings {
		if v == s {
			*m = TrackerMode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid TrackerMode: %s", s)
}

func checkTrackerMode(mode TrackerMode) error {
	if mode != TrackerModeThreeWires {
		return fmt.Errorf("%w: %v", ErrUnsupportedMode, mode)
	}
	return nil
}
