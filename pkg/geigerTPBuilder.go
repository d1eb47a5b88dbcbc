package trigger

import "fmt"

// GeigerTPBuilder converts Geiger cell hits into TPs on the 800 ns clock.
type GeigerTPBuilder struct {
	latency        float64
	timeGrid       float64
	sideMode       int
	triggerMode    int
	hardwareStatus int
	verbosity      int
	ctx            *RunContext
}

func NewGeigerTPBuilder(config Configuration) *GeigerTPBuilder {
	return &GeigerTPBuilder{
		latency:        config.GeigerLatency,
		timeGrid:       config.GeigerTimeGrid,
		sideMode:       config.GeigerSideMode,
		triggerMode:    config.GeigerTriggerMode,
		hardwareStatus: config.GeigerHardwareStatus,
		verbosity:      config.Verbosity,
	}
}

func (b *GeigerTPBuilder) Initialize(ctx *RunContext) error {
	if b.ctx != nil {
		return componentError("geiger TP builder", "initialize", ErrAlreadyInitialized)
	}
	if ctx == nil || ctx.Mapping == nil || !ctx.Mapping.IsInitialized() {
		return componentError("geiger TP builder", "initialize", ErrNotInitialized)
	}
	b.ctx = ctx
	return nil
}

func (b *GeigerTPBuilder) IsInitialized() bool {
	return b.ctx != nil
}

func (b *GeigerTPBuilder) Process(event *EventType, tps *Collection[GeigerTP]) error {
	if !b.ctx.ready() {
		return componentError("geiger TP builder", "process", ErrNotInitialized)
	}
	t0, found := event.EarliestTime()
	if !found {
		return nil
	}
	return b.ProcessHits(event.Hits[SectionGeiger], t0, tps)
}

// ProcessHits sets, for every hit, the anode bit of its cell in the TP of
// the hit clocktick, and the cathode bit when a cathode signal was seen.
func (b *GeigerTPBuilder) ProcessHits(hits []RawHit, t0 float64, tps *Collection[GeigerTP]) error {
	if !b.ctx.ready() {
		return componentError("geiger TP builder", "process", ErrNotInitialized)
	}
	if len(hits) == 0 {
		return nil
	}

	existing := make(map[CollectionKey]*GeigerTP, tps.Len())
	for _, tp := range tps.Items() {
		existing[tp.Key()] = tp
	}

	for _, hit := range hits {
		slot, bit, err := b.ctx.Mapping.GeigerTPSlot(b.ctx.Mode, hit.GID)
		if err != nil {
			return fmt.Errorf("error mapping geiger hit %d: %w", hit.HitID, err)
		}
		tick := b.ctx.Clock.Clocktick800(quantize(hit.StartTime-t0, b.timeGrid) + b.latency)
		key := CollectionKey{Clocktick: tick, ID: slot.Address}

		tp, ok := existing[key]
		if !ok {
			tp, err = tps.Add()
			if err != nil {
				return err
			}
			tp.HitID = hit.HitID
			tp.ElecID = slot
			tp.Clocktick = tick
			tp.SideMode = b.sideMode
			tp.TriggerMode = b.triggerMode
			tp.HardwareStatus = b.hardwareStatus
			existing[key] = tp
		}
		tp.SetActive(bit)
		if hit.HasStop() {
			tp.SetActive(bit + 1)
		}

		if b.verbosity > 3 {
			message := fmt.Sprintf("hit %d %v -> %v bit %d tick %d cathode %t",
				hit.HitID, hit.GID, slot, bit, tick, hit.HasStop())
			logger.Info(message, "geigerTP")
		}
	}
	return nil
}
