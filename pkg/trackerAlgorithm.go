package trigger

import (
	"fmt"
	"strings"
)

// Finale data bits of a tracker zone.
const (
	ZoneVerticalInner    = 0
	ZoneVerticalOuter    = 1
	ZoneHorizontalLeft   = 2
	ZoneHorizontalMiddle = 3
	ZoneHorizontalRight  = 4
	ZoneNearSource       = 5
	ZoneFinaleWidth      = 6

	zoneHorizontalBit = ZoneHorizontalLeft
)

// SlidingZoneData is the memory output of one sliding zone.
type SlidingZoneData struct {
	Vertical   uint8
	Horizontal uint8
}

func (d SlidingZoneData) Track() bool {
	return d.Vertical != 0 && d.Horizontal != 0
}

// ZoneFinale is the 6-bit finale data of a zone.
type ZoneFinale uint8

func (z ZoneFinale) Vertical() uint8 {
	return uint8(z) & 3
}

func (z ZoneFinale) Horizontal() uint8 {
	return uint8(z>>zoneHorizontalBit) & 7
}

func (z ZoneFinale) NearSource() bool {
	return z&(1<<ZoneNearSource) != 0
}

// Matched is true when both a vertical and a horizontal pattern were found.
func (z ZoneFinale) Matched() bool {
	return z.Vertical() != 0 && z.Horizontal() != 0
}

func (z ZoneFinale) Bitset() Bitset {
	b := NewBitset(ZoneFinaleWidth)
	b.SetField(0, ZoneFinaleWidth, uint64(z))
	return b
}

// TrackerRecord is the tracker decision for one 800 ns clocktick.
type TrackerRecord struct {
	Clocktick      int
	SlidingZones   [TrackerSides][NumberOfSlidingZones]SlidingZoneData
	Zones          [TrackerSides][NumberOfZones]ZoneFinale
	FinaleDecision bool
}

// ZonePattern flags the matched zones of a side, bit z for zone z.
func (r TrackerRecord) ZonePattern(side int) uint16 {
	var pattern uint16
	for zone, finale := range r.Zones[side] {
		if finale.Matched() {
			pattern |= 1 << uint(zone)
		}
	}
	return pattern
}

func (r TrackerRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tracker record @%d decision %t", r.Clocktick, r.FinaleDecision)
	for side := 0; side < TrackerSides; side++ {
		fmt.Fprintf(&sb, " side%d [", side)
		for zone, finale := range r.Zones[side] {
			if zone > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(finale.Bitset().String())
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// TrackerTriggerAlgorithm evaluates the tracker memories on every 800 ns
// clocktick with tracker activity.
type TrackerTriggerAlgorithm struct {
	memories  MemorySet
	dead      map[CellAddress]bool
	excluded  map[ZoneAddress]bool
	verbosity int
	ctx       *RunContext

	matrix  GeigerMatrix
	records []TrackerRecord
}

func NewTrackerTriggerAlgorithm(config Configuration, memories MemorySet) (*TrackerTriggerAlgorithm, error) {
	a := &TrackerTriggerAlgorithm{
		memories:  memories,
		dead:      make(map[CellAddress]bool, len(config.DeadCells)),
		excluded:  make(map[ZoneAddress]bool, len(config.ExcludedZones)),
		verbosity: config.Verbosity,
	}
	for _, m := range memories.All() {
		if m == nil {
			return nil, componentError("tracker algorithm", "configure", fmt.Errorf("missing memory: %w", ErrNotInitialized))
		}
	}
	for _, cell := range config.DeadCells {
		if err := checkCell(cell); err != nil {
			return nil, componentError("tracker algorithm", "configure", fmt.Errorf("dead cell: %w", err))
		}
		a.dead[cell] = true
	}
	for _, zone := range config.ExcludedZones {
		if zone.Side < 0 || zone.Side >= TrackerSides {
			return nil, componentError("tracker algorithm", "configure", &ErrRange{What: "side", Value: zone.Side, Bound: TrackerSides})
		}
		if zone.Zone < 0 || zone.Zone >= NumberOfZones {
			return nil, componentError("tracker algorithm", "configure", &ErrRange{What: "zone", Value: zone.Zone, Bound: NumberOfZones})
		}
		a.excluded[zone] = true
	}
	return a, nil
}

func (a *TrackerTriggerAlgorithm) Initialize(ctx *RunContext) error {
	if a.ctx != nil {
		return componentError("tracker algorithm", "initialize", ErrAlreadyInitialized)
	}
	if ctx == nil || ctx.Mapping == nil || !ctx.Mapping.IsInitialized() {
		return componentError("tracker algorithm", "initialize", ErrNotInitialized)
	}
	a.ctx = ctx
	return nil
}

func (a *TrackerTriggerAlgorithm) IsInitialized() bool {
	return a.ctx != nil
}

// slidingZone computes the memory keys of a sliding zone from the matrix and
// looks them up.
func (a *TrackerTriggerAlgorithm) slidingZone(m *GeigerMatrix, side int, slz int) SlidingZoneData {
	first, last := SlidingZoneRowRange(slz)
	var vertical, horizontal uint64
	for row := first; row <= last; row++ {
		for layer := 0; layer < TrackerLayers; layer++ {
			if m.Anode[side][layer][row] {
				vertical |= 1 << uint(layer)
				horizontal |= 1 << uint(row-first)
				if m.Cathode[side][layer][row] {
					vertical |= 1 << slzCathodeBit
				}
			}
		}
	}
	return SlidingZoneData{
		Vertical:   uint8(a.memories.SlzVertical.Fetch(vertical)),
		Horizontal: uint8(a.memories.SlzHorizontal.Fetch(horizontal)),
	}
}

func (a *TrackerTriggerAlgorithm) zone(slzs *[NumberOfSlidingZones]SlidingZoneData, zone int) ZoneFinale {
	var verticalKey, trackKey, innerKey uint64
	for i, slz := range SlidingZonesOfZone(zone) {
		data := slzs[slz]
		verticalKey |= uint64(data.Vertical&3) << uint(i*slzVerticalValueWidth)
		if data.Track() {
			trackKey |= 1 << uint(i)
		}
		if data.Vertical&1 != 0 {
			innerKey |= 1 << uint(i)
		}
	}
	vertical := a.memories.ZoneVertical.Fetch(verticalKey)
	horizontal := a.memories.ZoneHorizontal.Fetch(trackKey)
	near := a.memories.NearSource.Fetch(innerKey)
	return ZoneFinale(vertical | horizontal<<zoneHorizontalBit | near<<ZoneNearSource)
}

// Evaluate runs the memories over a filled matrix.
func (a *TrackerTriggerAlgorithm) Evaluate(tick int, m *GeigerMatrix) TrackerRecord {
	record := TrackerRecord{Clocktick: tick}
	for side := 0; side < TrackerSides; side++ {
		for slz := 0; slz < NumberOfSlidingZones; slz++ {
			record.SlidingZones[side][slz] = a.slidingZone(m, side, slz)
		}
		for zone := 0; zone < NumberOfZones; zone++ {
			finale := a.zone(&record.SlidingZones[side], zone)
			record.Zones[side][zone] = finale
			if finale.Matched() && !a.excluded[ZoneAddress{Side: side, Zone: zone}] {
				record.FinaleDecision = true
			}
		}
	}
	return record
}

func (a *TrackerTriggerAlgorithm) ProcessClocktick(tick int, ctws []*GeigerCTW) (TrackerRecord, error) {
	if a.ctx == nil {
		return TrackerRecord{}, componentError("tracker algorithm", "process", ErrNotInitialized)
	}
	if err := a.matrix.Fill(a.ctx.Mapping, a.ctx.Mode, ctws, a.dead); err != nil {
		return TrackerRecord{}, componentError("tracker algorithm", "process", err)
	}
	if a.verbosity > 1 {
		logger.Info(fmt.Sprintf("tick %d: %d active anodes", tick, a.matrix.Count()), "trackerAlgo")
	}
	record := a.Evaluate(tick, &a.matrix)
	a.records = append(a.records, record)
	if a.verbosity > 2 {
		logger.Info(record.String(), "trackerAlgo")
	}
	return record, nil
}

// Process evaluates every clocktick of a locked CTW collection in increasing
// order.
func (a *TrackerTriggerAlgorithm) Process(ctws *Collection[GeigerCTW]) ([]TrackerRecord, error) {
	if !ctws.IsLocked() {
		return nil, componentError("tracker algorithm", "process", ErrNotLocked)
	}
	var records []TrackerRecord
	for _, tick := range ctws.Clockticks() {
		record, err := a.ProcessClocktick(tick, ctws.ByClocktick(tick))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *TrackerTriggerAlgorithm) Records() []TrackerRecord {
	return a.records
}

func (a *TrackerTriggerAlgorithm) Decision() bool {
	for _, record := range a.records {
		if record.FinaleDecision {
			return true
		}
	}
	return false
}

func (a *TrackerTriggerAlgorithm) Reset() {
	a.matrix.Reset()
	a.records = nil
}
