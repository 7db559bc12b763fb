package sim

import (
	"math"
	"time"
)

// SpeedPresets are the selectable speed multipliers: real time, a minute
// per second, an hour per second and a day per second.
var SpeedPresets = []float64{1, 60, 3600, 86400}

const DefaultMaxSubsteps = 2000

// Clock tracks simulated time. Every step advances it by exactly Timestep;
// Speed only controls how many steps a real-time driver runs per wall
// second.
type Clock struct {
	Current     float64
	Timestep    float64
	Speed       float64
	Paused      bool
	MaxSubsteps int

	carry float64
}

func NewClock(timestep float64) *Clock {
	return &Clock{Timestep: timestep, Speed: 1, MaxSubsteps: DefaultMaxSubsteps}
}

func (c *Clock) Pause()  { c.Paused = true }
func (c *Clock) Resume() { c.Paused = false }
func (c *Clock) Toggle() { c.Paused = !c.Paused }

// SetSpeed ignores non-positive multipliers.
func (c *Clock) SetSpeed(speed float64) {
	if speed > 0 {
		c.Speed = speed
	}
}

// Advance moves time forward one step. It returns false while paused.
func (c *Clock) Advance() (float64, bool) {
	if c.Paused {
		return 0, false
	}
	c.Current += c.Timestep
	return c.Timestep, true
}

// StepsFor converts an elapsed wall-clock interval into a step count at the
// current speed. Fractional steps carry over to the next call.
func (c *Clock) StepsFor(wall time.Duration) int {
	if c.Paused || c.Timestep <= 0 {
		return 0
	}
	exact := wall.Seconds()*c.Speed/c.Timestep + c.carry
	n := math.Floor(exact)
	c.carry = exact - n
	if c.MaxSubsteps > 0 && n > float64(c.MaxSubsteps) {
		c.carry = 0
		return c.MaxSubsteps
	}
	return int(n)
}

func (c *Clock) Reset() {
	c.Current = 0
	c.carry = 0
}
