package profiler

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestRecordInterval(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New("info", "logfmt", &buf)
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithLogger(logger), WithClock(clock.now), WithInterval(time.Second), WithMemStats(false))

	results := []FrameResult{FrameComplete, FrameComplete, FrameSkipped, FrameDropped, FrameMirrorFailed}
	for i, r := range results {
		clock.t = clock.t.Add(100 * time.Millisecond)
		if p.Record(r) {
			t.Fatalf("frame %d logged before the interval elapsed", i)
		}
	}

	clock.t = clock.t.Add(500 * time.Millisecond)
	if !p.Record(FrameComplete) {
		t.Fatal("interval elapsed but nothing was logged")
	}

	got := p.Last()
	want := Stats{Frames: 6, Submitted: 4, Skipped: 1, Dropped: 1, MirrorFailures: 1, FPS: 6, Elapsed: time.Second}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
	if out := buf.String(); !strings.Contains(out, "frame stats") || !strings.Contains(out, "dropped=1") {
		t.Errorf("log output = %q", out)
	}
	if strings.Contains(buf.String(), "heap_mb") {
		t.Error("memory fields logged with mem stats disabled")
	}

	clock.t = clock.t.Add(10 * time.Millisecond)
	p.Record(FrameComplete)
	if p.Last() != want {
		t.Error("Last changed before the next interval")
	}
}

func TestFrameResultString(t *testing.T) {
	tests := []struct {
		result FrameResult
		want   string
	}{
		{FrameSkipped, "skipped"},
		{FrameDropped, "dropped"},
		{FrameMirrorFailed, "mirror_failed"},
		{FrameComplete, "complete"},
		{FrameResult(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.result.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.result), got, tt.want)
		}
	}
}
