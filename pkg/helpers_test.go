package trigger

import "testing"

func newTestContext(t *testing.T) *RunContext {
	t.Helper()
	ctx, err := NewRunContext(NewDemonstratorGeometry(0), 0, TrackerModeThreeWires)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Clock = NewClockReference(0)
	return ctx
}

func caloHit(id int, side, column, row uint32, amplitude, time float64) RawHit {
	return RawHit{
		HitID:     id,
		GID:       NewGeomID(GeomCaloBlock, 0, side, column, row),
		Amplitude: amplitude,
		StartTime: time,
	}
}

func geigerHit(id int, side, layer, row uint32, time float64, cathode bool) RawHit {
	h := RawHit{
		HitID:     id,
		GID:       NewGeomID(GeomGeigerCell, 0, side, layer, row),
		StartTime: time,
		StopTime:  time,
	}
	if cathode {
		h.StopTime = time + 5000
	}
	return h
}

func mustLock[T Element](t *testing.T, c *Collection[T]) {
	t.Helper()
	if err := c.Lock(); err != nil {
		t.Fatal(err)
	}
}
