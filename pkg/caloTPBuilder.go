package trigger

import (
	"fmt"
	"math"
)

var caloSections = []string{SectionCalo, SectionXCalo, SectionGVeto}

func quantize(t float64, grid float64) float64 {
	if grid <= 0 {
		return t
	}
	return math.Floor(t/grid) * grid
}

// CaloTPBuilder converts calorimeter hits into board TPs on the 25 ns clock.
type CaloTPBuilder struct {
	highThreshold float64
	lowThreshold  float64
	latency       float64
	timeGrid      float64
	verbosity     int
	ctx           *RunContext
}

func NewCaloTPBuilder(config Configuration) *CaloTPBuilder {
	return &CaloTPBuilder{
		highThreshold: config.CaloHighThreshold,
		lowThreshold:  config.CaloLowThreshold,
		latency:       config.CaloLatency,
		timeGrid:      config.CaloTimeGrid,
		verbosity:     config.Verbosity,
	}
}

func (b *CaloTPBuilder) Initialize(ctx *RunContext) error {
	if b.ctx != nil {
		return componentError("calo TP builder", "initialize", ErrAlreadyInitialized)
	}
	if ctx == nil || ctx.Mapping == nil || !ctx.Mapping.IsInitialized() {
		return componentError("calo TP builder", "initialize", ErrNotInitialized)
	}
	b.ctx = ctx
	return nil
}

func (b *CaloTPBuilder) IsInitialized() bool {
	return b.ctx != nil
}

// Process builds the calorimeter TPs of an event. Clockticks are relative to
// the earliest hit of the event.
func (b *CaloTPBuilder) Process(event *EventType, tps *Collection[CaloTP]) error {
	if !b.ctx.ready() {
		return componentError("calo TP builder", "process", ErrNotInitialized)
	}
	t0, found := event.EarliestTime()
	if !found {
		return nil
	}
	for _, section := range caloSections {
		if err := b.ProcessHits(event.Hits[section], t0, tps); err != nil {
			return err
		}
	}
	return nil
}

func (b *CaloTPBuilder) ProcessHits(hits []RawHit, t0 float64, tps *Collection[CaloTP]) error {
	if !b.ctx.ready() {
		return componentError("calo TP builder", "process", ErrNotInitialized)
	}
	if len(hits) == 0 {
		return nil
	}

	existing := make(map[CollectionKey]*CaloTP, tps.Len())
	for _, tp := range tps.Items() {
		existing[tp.Key()] = tp
	}

	for _, hit := range hits {
		if hit.Amplitude < b.lowThreshold {
			continue
		}
		board, channel, err := b.ctx.Mapping.CaloFEB(b.ctx.Mode, hit.GID)
		if err != nil {
			return fmt.Errorf("error mapping calo hit %d: %w", hit.HitID, err)
		}
		tick := b.ctx.Clock.Clocktick25(quantize(hit.StartTime-t0, b.timeGrid) + b.latency)
		key := CollectionKey{Clocktick: tick, ID: board.Address}

		tp, ok := existing[key]
		if !ok {
			tp, err = tps.Add()
			if err != nil {
				return err
			}
			tp.HitID = hit.HitID
			tp.ElecID = board
			tp.Clocktick = tick
			existing[key] = tp
		}
		tp.RegisterHit(channel, hit.Amplitude >= b.highThreshold)

		if b.verbosity > 3 {
			message := fmt.Sprintf("hit %d %v -> %v channel %d tick %d", hit.HitID, hit.GID, board, channel, tick)
			logger.Info(message, "caloTP")
		}
	}
	return nil
}
