// Command oxyvr runs the stereo frame loop against the desktop headset simulator and mirrors the headset view into a
// window. The configuration file is named by the OXYVR_CONFIG environment variable.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine"
	"github.com/Carmen-Shannon/oxy-vr/engine/config"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd/simulator"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/session"
	"github.com/Carmen-Shannon/oxy-vr/engine/window"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

const eyeFormat = hmd.TextureFormatR8G8B8A8UnormSrgb

func main() {
	os.Exit(run())
}

// run returns the process exit code. Errors before the logger exists go to stderr; later ones are logged.
func run() int {
	// ── Configuration + Logging ─────────────────────────────────────────
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "oxyvr:", err)
		return 1
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "oxyvr: invalid log configuration:", err)
		return 1
	}

	return exitCode(logger, serve(cfg, logger))
}

func exitCode(logger *log.Logger, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("startup failed", "err", err)
	return 1
}

// serve builds every component in dependency order and runs the frame loop until the window closes. Deferred
// teardown releases them in reverse order.
func serve(cfg *config.Config, logger *log.Logger) error {
	// ── Headset Runtime ─────────────────────────────────────────────────
	sim := simulator.New(
		simulator.WithResolution(cfg.HMD.ResolutionWidth, cfg.HMD.ResolutionHeight),
		simulator.WithRefreshRate(cfg.HMD.RefreshRate),
		simulator.WithIPD(cfg.HMD.IPD),
		simulator.WithPixelsPerTan(cfg.HMD.PixelsPerTan),
		simulator.WithLookSpeed(cfg.HMD.LookSpeed),
		simulator.WithMoveSpeed(cfg.HMD.MoveSpeed),
		simulator.WithDisconnectDrill(cfg.HMD.DisconnectAfter, cfg.HMD.DisconnectFor),
		simulator.WithLogger(logger),
	)

	clip := common.ClipRangeZeroToOne
	if cfg.Render.OpenGLClipRange {
		clip = common.ClipRangeOpenGL
	}
	sess, err := session.Open(sim,
		session.WithClipPlanes(cfg.Render.Near, cfg.Render.Far),
		session.WithClipRange(clip),
		session.WithPixelDensity(cfg.Render.PixelDensity),
		session.WithMirrorDivisor(cfg.Render.MirrorDivisor),
		session.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	desc := sess.Describe()

	// ── Window + Renderer ───────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(desc.MirrorSize.W, desc.MirrorSize.H),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	var clearColor [4]float64
	copy(clearColor[:], cfg.Render.ClearColor)
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Render.PresentMode)),
		renderer.WithForceSoftwareRenderer(cfg.Render.ForceSoftware),
		renderer.WithClearColor(clearColor),
		renderer.WithEyeFormat(eyeFormat),
		renderer.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	// The runtime allocates eye buffers on the renderer's device and reads the keyboard through the window.
	sim.BindGPU(r.Device(), r.Queue(), r.Blitter())
	sim.BindKeys(win)
	win.SetSwapCallback(r.Present)
	win.SetResizeCallback(r.Resize)

	// ── Scene ───────────────────────────────────────────────────────────
	sc := scene.NewScene(
		scene.WithBounds(scene.Bounds{
			Min: mgl32.Vec3{-cfg.Scene.HalfExtentX, -cfg.Scene.HalfExtentY, cfg.Scene.FarZ},
			Max: mgl32.Vec3{cfg.Scene.HalfExtentX, cfg.Scene.HalfExtentY, cfg.Scene.NearZ},
		}),
		scene.WithEmitter(mgl32.Vec3{cfg.Scene.Emitter[0], cfg.Scene.Emitter[1], cfg.Scene.Emitter[2]}),
		scene.WithInitialParticles(cfg.Scene.InitialParticles),
		scene.WithMaxParticles(cfg.Scene.MaxParticles),
		scene.WithSpawnInterval(cfg.Scene.SpawnIntervalS),
		scene.WithSpeed(cfg.Scene.Speed),
		scene.WithSpin(cfg.Scene.SpinPerStep),
		scene.WithWorkers(cfg.Scene.Workers),
		scene.WithSeed(cfg.Scene.Seed),
		scene.WithLogger(logger),
	)
	defer sc.Release()
	if err := sc.Init(r); err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────────
	options := []engine.EngineBuilderOption{
		engine.WithSwapChainLength(cfg.HMD.SwapChainLength),
		engine.WithTextureFormat(eyeFormat),
	}
	if cfg.Profiler.Enabled {
		interval := time.Duration(cfg.Profiler.IntervalS * float64(time.Second))
		options = append(options, engine.WithProfiler(profiler.NewProfiler(
			profiler.WithInterval(interval),
			profiler.WithLogger(logger),
		)))
	}

	eng := engine.NewEngine(sess, win, r, sc, options...)
	if err := eng.Init(); err != nil {
		return err
	}
	defer eng.Shutdown()

	logger.Info("running", "render_target", fmt.Sprintf("%dx%d", desc.RenderTargetSize.W, desc.RenderTargetSize.H),
		"mirror", fmt.Sprintf("%dx%d", desc.MirrorSize.W, desc.MirrorSize.H))
	eng.Run()
	return nil
}
