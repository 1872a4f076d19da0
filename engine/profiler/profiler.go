package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/charmbracelet/log"
)

// FrameResult is how far a frame got through the loop.
type FrameResult int

const (
	// FrameSkipped means no swap chain buffer was rendered, so nothing reached the compositor.
	FrameSkipped FrameResult = iota

	// FrameDropped means the eyes were rendered but the commit or submission failed.
	FrameDropped

	// FrameMirrorFailed means the frame reached the compositor but the desktop mirror was not updated.
	FrameMirrorFailed

	// FrameComplete means the frame was submitted and mirrored.
	FrameComplete
)

func (r FrameResult) String() string {
	switch r {
	case FrameSkipped:
		return "skipped"
	case FrameDropped:
		return "dropped"
	case FrameMirrorFailed:
		return "mirror_failed"
	case FrameComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Stats is one reporting interval worth of frame statistics.
type Stats struct {
	Frames         int
	Submitted      int
	Skipped        int
	Dropped        int
	MirrorFailures int
	FPS            float64
	Elapsed        time.Duration
}

// Profiler tracks frame results and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	logger         *log.Logger
	now            func() time.Time
	readMem        bool
	current        Stats
	last           Stats
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options for the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		readMem:        true,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = logging.Component(p.logger, "profiler")
	p.lastTime = p.now()
	return p
}

// Record should be called once per frame with that frame's outcome.
// Logs frame and memory statistics when the update interval has elapsed.
//
// Parameters:
//   - result: how far the frame got
//
// Returns:
//   - bool: true if stats were logged this frame, false otherwise
func (p *Profiler) Record(result FrameResult) bool {
	p.current.Frames++
	switch result {
	case FrameSkipped:
		p.current.Skipped++
	case FrameDropped:
		p.current.Dropped++
	case FrameMirrorFailed:
		p.current.Submitted++
		p.current.MirrorFailures++
	case FrameComplete:
		p.current.Submitted++
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	p.current.Elapsed = elapsed
	p.current.FPS = float64(p.current.Frames) / elapsed.Seconds()

	fields := []any{
		"fps", p.current.FPS,
		"submitted", p.current.Submitted,
		"skipped", p.current.Skipped,
		"dropped", p.current.Dropped,
		"mirror_failures", p.current.MirrorFailures,
	}
	if p.readMem {
		fields = append(fields, p.memFields(elapsed)...)
	}
	p.logger.Info("frame stats", fields...)

	p.last = p.current
	p.current = Stats{}
	p.lastTime = currentTime
	return true
}

// Last returns the statistics of the most recently logged interval.
//
// Returns:
//   - Stats: the last interval, or the zero value if none has elapsed yet
func (p *Profiler) Last() Stats {
	return p.last
}

// memFields reads heap, allocation rate and GC pause statistics since the previous interval.
func (p *Profiler) memFields(elapsed time.Duration) []any {
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return []any{
		"heap_mb", allocMB,
		"alloc_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	}
}
