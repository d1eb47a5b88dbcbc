package trigger

import (
	"math"
	"math/rand/v2"
)

// Clock periods in ns.
const (
	Clock25Period   = 25.0
	Clock800Period  = 800.0
	Clock1600Period = 1600.0
)

// ClockReference holds the per-event phase of the three trigger clocks. All
// phases derive from a single origin so every 800 ns (1600 ns) edge is also a
// 25 ns (800 ns) edge.
type ClockReference struct {
	origin    float64
	phase25   float64
	phase800  float64
	phase1600 float64
	computed  bool
}

// NewClockReference builds a reference from a fixed origin in ns.
func NewClockReference(origin float64) *ClockReference {
	c := &ClockReference{}
	c.setOrigin(origin)
	return c
}

// ComputeClockReference draws a random origin in [0, 1600) ns.
func ComputeClockReference(rng *rand.Rand) *ClockReference {
	c := &ClockReference{}
	c.Reset(rng)
	return c
}

// Reset draws a new origin. Called once per simulated event.
func (c *ClockReference) Reset(rng *rand.Rand) {
	c.setOrigin(rng.Float64() * Clock1600Period)
}

func (c *ClockReference) setOrigin(origin float64) {
	c.origin = origin
	c.phase1600 = positiveMod(origin, Clock1600Period)
	c.phase800 = positiveMod(origin, Clock800Period)
	c.phase25 = positiveMod(origin, Clock25Period)
	c.computed = true
}

func positiveMod(x float64, period float64) float64 {
	m := math.Mod(x, period)
	if m < 0 {
		m += period
	}
	return m
}

func (c *ClockReference) IsComputed() bool {
	return c != nil && c.computed
}

func (c *ClockReference) Origin() float64 {
	return c.origin
}

func (c *ClockReference) Phase25() float64 {
	return c.phase25
}

func (c *ClockReference) Phase800() float64 {
	return c.phase800
}

func (c *ClockReference) Phase1600() float64 {
	return c.phase1600
}

func clocktick(t float64, phase float64, period float64) int {
	return int(math.Floor((t - phase) / period))
}

func (c *ClockReference) Clocktick25(t float64) int {
	return clocktick(t, c.phase25, Clock25Period)
}

func (c *ClockReference) Clocktick800(t float64) int {
	return clocktick(t, c.phase800, Clock800Period)
}

func (c *ClockReference) Clocktick1600(t float64) int {
	return clocktick(t, c.phase1600, Clock1600Period)
}

// Tick25To1600 returns the 1600 ns tick containing a 25 ns tick. The tick
// centre is used so rounding never moves it across an edge.
func (c *ClockReference) Tick25To1600(tick int) int {
	return c.Clocktick1600(float64(tick)*Clock25Period + c.phase25 + Clock25Period/2)
}

func (c *ClockReference) Tick800To1600(tick int) int {
	return c.Clocktick1600(float64(tick)*Clock800Period + c.phase800 + Clock800Period/2)
}
