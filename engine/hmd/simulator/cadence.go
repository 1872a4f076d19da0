package simulator

import "math"

// cadenceHistory is how many recent submit times feed the frame stride estimate.
const cadenceHistory = 8

// cadence models a display that scans out at a fixed refresh rate starting at a known time, and tracks when the
// application has been submitting so predictions for later frames follow its actual pace.
type cadence struct {
	start  float64
	period float64

	submits     [cadenceHistory]float64
	submitCount int
	lastFrame   int64
	lastDisplay float64
}

func newCadence(start float64, refreshHz float32) cadence {
	return cadence{start: start, period: 1 / float64(refreshHz)}
}

// nextVsync returns the first vertical blank strictly after now.
func (c *cadence) nextVsync(now float64) float64 {
	n := math.Floor((now-c.start)/c.period) + 1
	return c.start + n*c.period
}

// earliest returns when a frame started at now can reach the panel. The compositor needs one refresh to pick the
// frame up after submission, so the frame lands one period after the next vertical blank.
func (c *cadence) earliest(now float64) float64 {
	return c.nextVsync(now) + c.period
}

// record notes that frameIndex was submitted at now. The compositor latches it at the next vertical blank.
func (c *cadence) record(frameIndex int64, now float64) {
	c.submits[c.submitCount%cadenceHistory] = now
	c.submitCount++
	c.lastFrame = frameIndex
	c.lastDisplay = c.nextVsync(now)
}

// stride returns how many refresh periods the application spends per frame, estimated from the submit history.
func (c *cadence) stride() int64 {
	n := min(c.submitCount, cadenceHistory)
	if n < 2 {
		return 1
	}
	newest := c.submits[(c.submitCount-1)%cadenceHistory]
	oldest := c.submits[(c.submitCount-n)%cadenceHistory]
	interval := (newest - oldest) / float64(n-1)
	return max(int64(math.Round(interval/c.period)), 1)
}

// predict returns when frameIndex reaches the panel. Without history every frame gets the earliest slot. Once frames
// have been submitted, frameIndex is placed stride periods per frame after the last submitted one, but never before
// a frame started now could land.
func (c *cadence) predict(frameIndex int64, now float64) float64 {
	earliest := c.earliest(now)
	if c.submitCount == 0 {
		return earliest
	}
	ahead := frameIndex - c.lastFrame
	predicted := c.lastDisplay + float64(ahead*c.stride())*c.period
	return max(predicted, earliest)
}

// disconnectDrill makes submissions [after, after+span) report a lost device. A zero after disables it.
type disconnectDrill struct {
	after int64
	span  int64
}

func (d disconnectDrill) lost(submission int64) bool {
	if d.after <= 0 || d.span <= 0 {
		return false
	}
	return submission >= d.after && submission < d.after+d.span
}
