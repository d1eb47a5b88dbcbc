package trigger

// RunContext carries the shared, read-mostly state of one run: the
// electronic mapping cache and the clock reference. A context is owned by a
// single pipeline; the clock is redrawn between events, never during one.
type RunContext struct {
	Mapping *ElectronicMapping
	Clock   *ClockReference
	Mode    TrackerMode
}

func NewRunContext(geometry Geometry, module int, mode TrackerMode) (*RunContext, error) {
	mapping := NewElectronicMapping()
	if err := mapping.Initialize(geometry, module); err != nil {
		return nil, err
	}
	if err := checkTrackerMode(mode); err != nil {
		return nil, err
	}
	return &RunContext{Mapping: mapping, Mode: mode}, nil
}

func (ctx *RunContext) ready() bool {
	return ctx != nil && ctx.Mapping != nil && ctx.Mapping.IsInitialized() && ctx.Clock.IsComputed()
}
