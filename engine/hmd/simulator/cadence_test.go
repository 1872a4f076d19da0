package simulator

import (
	"math"
	"testing"
)

func TestCadenceNextVsync(t *testing.T) {
	c := newCadence(0, 4)
	tests := []struct {
		now  float64
		want float64
	}{
		{0, 0.25},
		{0.1, 0.25},
		{0.25, 0.5},
		{0.3, 0.5},
		{1.0, 1.25},
	}
	for _, tt := range tests {
		if got := c.nextVsync(tt.now); got != tt.want {
			t.Errorf("nextVsync(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestCadenceEarliestLeadsOneRefresh(t *testing.T) {
	c := newCadence(0.5, 4)
	if got := c.earliest(0.6); got != 1.0 {
		t.Errorf("earliest(0.6) = %v, want 1.0", got)
	}
	for _, now := range []float64{0.5, 0.7, 2.1} {
		if got := c.earliest(now) - c.nextVsync(now); got != c.period {
			t.Errorf("earliest(%v) leads the next vsync by %v, want %v", now, got, c.period)
		}
	}
}

func secondsEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCadencePredictWithoutHistory(t *testing.T) {
	c := newCadence(0, 4)
	for _, frame := range []int64{0, 1, 10} {
		if got := c.predict(frame, 0.1); !secondsEqual(got, 0.5) {
			t.Errorf("predict(%d, 0.1) = %v, want 0.5", frame, got)
		}
	}
}

func TestCadencePredictFollowsFrameIndex(t *testing.T) {
	c := newCadence(0, 4)
	before := c.predict(4, 0.1)

	// Frame 1 is latched at the 0.25 vsync.
	c.record(1, 0.1)

	tests := []struct {
		frame int64
		want  float64
	}{
		{2, 0.5},
		{3, 0.75},
		{4, 1.0},
		{8, 2.0},
	}
	for _, tt := range tests {
		if got := c.predict(tt.frame, 0.1); !secondsEqual(got, tt.want) {
			t.Errorf("predict(%d) = %v, want %v", tt.frame, got, tt.want)
		}
	}
	if after := c.predict(4, 0.1); !(after > before) {
		t.Errorf("submitting frame 1 should push frame 4 later: before %v, after %v", before, after)
	}
}

func TestCadencePredictNeverBeforeEarliest(t *testing.T) {
	c := newCadence(0, 4)
	c.record(1, 0.1)

	// The application stalled: frame 2 starts long after frame 1 was shown.
	if got := c.predict(2, 3.1); !secondsEqual(got, c.earliest(3.1)) {
		t.Errorf("predict after a stall = %v, want earliest %v", got, c.earliest(3.1))
	}
}

func TestCadenceStrideFromSubmitHistory(t *testing.T) {
	tests := []struct {
		name    string
		submits []float64
		stride  int64
		// predicted display time of the frame after the last submitted one, sampled at the last submit time
		next float64
	}{
		{"single submit", []float64{0.1}, 1, 0.5},
		{"every refresh", []float64{0.1, 0.35, 0.6, 0.85}, 1, 1.25},
		{"every other refresh", []float64{0.1, 0.6, 1.1}, 2, 1.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCadence(0, 4)
			for i, at := range tt.submits {
				c.record(int64(i+1), at)
			}
			if got := c.stride(); got != tt.stride {
				t.Errorf("stride = %d, want %d", got, tt.stride)
			}
			last := tt.submits[len(tt.submits)-1]
			if got := c.predict(int64(len(tt.submits)+1), last); !secondsEqual(got, tt.next) {
				t.Errorf("next frame predicted at %v, want %v", got, tt.next)
			}
		})
	}
}

func TestDisconnectDrill(t *testing.T) {
	tests := []struct {
		name  string
		drill disconnectDrill
		lost  []int64
		alive []int64
	}{
		{"disabled", disconnectDrill{}, nil, []int64{1, 2, 100}},
		{"zero span", disconnectDrill{after: 3}, nil, []int64{3, 4}},
		{"window", disconnectDrill{after: 3, span: 2}, []int64{3, 4}, []int64{1, 2, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, n := range tt.lost {
				if !tt.drill.lost(n) {
					t.Errorf("submission %d should be lost", n)
				}
			}
			for _, n := range tt.alive {
				if tt.drill.lost(n) {
					t.Errorf("submission %d should not be lost", n)
				}
			}
		})
	}
}
