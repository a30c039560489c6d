// Package viewer ties asset loading, scene composition, framing and the orbit controller into
// one session driven by the frame loop.
package viewer

import (
	"context"
	"log/slog"

	"imprint-viewer/internal/asset"
	"imprint-viewer/internal/framing"
	"imprint-viewer/internal/orbit"
	"imprint-viewer/internal/render"
	"imprint-viewer/internal/scene"
)

// Loader starts asynchronous loads; *asset.Pipeline implements it.
type Loader interface {
	Load(ctx context.Context) uint64
	Latest() uint64
	Results() <-chan asset.Result
}

// Notices receives user-facing messages.
type Notices interface {
	Info(text string)
	Error(text string)
}

// Options configures a Session.
type Options struct {
	Viewport  framing.Viewport
	Near, Far float64
	MinRadius float64
	Orbit     orbit.Params
	Scene     scene.Options
}

// Session is the viewer state. Every method except Reload must be called from the frame
// loop goroutine; load results are handed over through the loader's channel and applied
// in Tick.
type Session struct {
	opts     Options
	renderer render.Renderer
	loader   Loader
	notices  Notices
	log      *slog.Logger

	composer *scene.Composer
	orbit    *orbit.Controller
	camera   render.Camera
	viewport framing.Viewport
	current  *scene.Composed
	applied  uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a session with an empty scene.
func New(opts Options, renderer render.Renderer, loader Loader, notices Notices, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		opts:     opts,
		renderer: renderer,
		loader:   loader,
		notices:  notices,
		log:      log,
		composer: scene.NewComposer(opts.Scene),
		orbit:    orbit.New(opts.Orbit),
		viewport: opts.Viewport,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.camera = render.NewPerspectiveCamera(opts.Viewport.FieldOfViewDegrees, opts.Viewport.Aspect(), opts.Near, opts.Far)
	s.renderer.SetViewportSize(int(opts.Viewport.Width), int(opts.Viewport.Height))
	s.updateCamera()
	return s
}

// Start issues the initial load.
func (s *Session) Start() {
	s.Reload()
}

// Reload requests a fresh asset. It may be called from any goroutine; the result replaces the
// current asset only if no newer reload was requested meanwhile.
func (s *Session) Reload() uint64 {
	gen := s.loader.Load(s.ctx)
	s.log.Info("mesh reload requested", "generation", gen)
	return gen
}

// Tick is one frame: apply finished loads, advance the orbit, aim the camera and render.
func (s *Session) Tick() {
	s.drainResults()
	s.orbit.Tick()
	s.updateCamera()
	s.renderer.Render(s.current, s.camera)
}

func (s *Session) drainResults() {
	for {
		select {
		case r := <-s.loader.Results():
			s.apply(r)
		default:
			return
		}
	}
}

func (s *Session) apply(r asset.Result) {
	latest := s.loader.Latest()
	if r.Generation != latest || r.Generation <= s.applied {
		s.log.Debug("stale mesh result dropped", "generation", r.Generation, "latest", latest)
		return
	}
	if r.Err != nil {
		s.log.Error("mesh load failed", "generation", r.Generation, "err", r.Err)
		if s.notices != nil {
			s.notices.Error("Failed to load mesh: " + r.Err.Error())
		}
		return
	}
	composed := s.composer.Compose(r.Asset)
	s.current = composed
	s.applied = r.Generation
	s.orbit.SetPivot(composed.Pivot)
	s.reframe()
	s.log.Info("mesh applied", "generation", r.Generation, "name", composed.Name,
		"triangles", composed.Mesh.Geometry.TriangleCount(), "radius", s.orbit.State().Radius)
}

func (s *Session) reframe() {
	if s.current == nil {
		return
	}
	s.orbit.SetFraming(framing.Compute(s.current.Bounds, s.viewport, s.opts.MinRadius))
}

func (s *Session) updateCamera() {
	s.camera.SetViewport(s.viewport)
	s.camera.LookAt(s.orbit.Position(), s.orbit.Pivot())
}

// Resize records a new viewport and reframes the current asset. Angle and mode are kept.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if float64(width) == s.viewport.Width && float64(height) == s.viewport.Height {
		return
	}
	s.viewport.Width, s.viewport.Height = float64(width), float64(height)
	s.renderer.SetViewportSize(width, height)
	s.reframe()
	s.updateCamera()
	s.log.Debug("viewport resized", "width", width, "height", height)
}

// PointerDown, PointerMove and PointerUp forward pointer input to the orbit controller.
func (s *Session) PointerDown(x, y float64) { s.orbit.PointerDown(x, y) }
func (s *Session) PointerMove(x, y float64) { s.orbit.PointerMove(x, y) }
func (s *Session) PointerUp()               { s.orbit.PointerUp() }

// Zoom changes the zoom by delta.
func (s *Session) Zoom(delta float64) { s.orbit.ZoomBy(delta) }

// Orbit returns the orbit state.
func (s *Session) Orbit() orbit.State { return s.orbit.State() }

// Camera returns the camera used for the last frame.
func (s *Session) Camera() render.Camera { return s.camera }

// Current returns the displayed scene, or nil before the first successful load.
func (s *Session) Current() *scene.Composed { return s.current }

// Dispose drops pending load results and releases renderer resources. The session must not
// be used afterwards.
func (s *Session) Dispose() {
	s.cancel()
	s.current = nil
	s.renderer.Close()
}
