package viewer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint-viewer/internal/asset"
	"imprint-viewer/internal/framing"
	"imprint-viewer/internal/geom"
	"imprint-viewer/internal/orbit"
	"imprint-viewer/internal/overlay"
	"imprint-viewer/internal/render"
	"imprint-viewer/internal/scene"
)

type fakeRenderer struct {
	mu       sync.Mutex
	frames   []*scene.Composed
	cameras  []render.Camera
	viewport [2]int
	closed   bool
}

func (r *fakeRenderer) SetViewportSize(w, h int) { r.viewport = [2]int{w, h} }

func (r *fakeRenderer) Render(sc *scene.Composed, cam render.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, sc)
	r.cameras = append(r.cameras, cam)
}

func (r *fakeRenderer) Close() { r.closed = true }

// manualLoader hands out generations and lets the test decide when each result arrives.
type manualLoader struct {
	gen     uint64
	results chan asset.Result
}

func newManualLoader() *manualLoader {
	return &manualLoader{results: make(chan asset.Result, 8)}
}

func (l *manualLoader) Load(context.Context) uint64   { l.gen++; return l.gen }
func (l *manualLoader) Latest() uint64                { return l.gen }
func (l *manualLoader) Results() <-chan asset.Result { return l.results }

func boxAsset(name string, min, max geom.Vec3) *asset.ParsedAsset {
	g := &asset.Geometry{
		Positions: []float32{
			float32(min[0]), float32(min[1]), float32(min[2]),
			float32(max[0]), float32(min[1]), float32(min[2]),
			float32(max[0]), float32(max[1]), float32(max[2]),
		},
		Normals: make([]float32, 9),
	}
	return &asset.ParsedAsset{Name: name, Geometry: g, Box: g.Bounds()}
}

func testOptions() Options {
	sc := scene.DefaultOptions()
	sc.UpAxis = scene.UpY
	sc.Scale = 1
	p := orbit.DefaultParams()
	p.OrbitSpeed = 0.01
	return Options{
		Viewport:  framing.Viewport{Width: 800, Height: 600, FieldOfViewDegrees: 75},
		Near:      0.1,
		Far:       1000,
		MinRadius: 1,
		Orbit:     p,
		Scene:     sc,
	}
}

func TestEmptySceneRenders(t *testing.T) {
	r := &fakeRenderer{}
	s := New(testOptions(), r, newManualLoader(), nil, nil)
	s.Tick()
	require.Len(t, r.frames, 1)
	assert.Nil(t, r.frames[0])
	assert.Equal(t, [2]int{800, 600}, r.viewport)
}

func TestGenerationGuard(t *testing.T) {
	r := &fakeRenderer{}
	l := newManualLoader()
	s := New(testOptions(), r, l, nil, nil)

	g1 := s.Reload()
	g2 := s.Reload()
	require.Equal(t, uint64(1), g1)
	require.Equal(t, uint64(2), g2)

	// generation 2 resolves first, then the stale generation 1
	l.results <- asset.Result{Generation: g2, Asset: boxAsset("second", geom.Vec3{0, 0, 0}, geom.Vec3{2, 2, 2})}
	s.Tick()
	l.results <- asset.Result{Generation: g1, Asset: boxAsset("first", geom.Vec3{0, 0, 0}, geom.Vec3{100, 100, 100})}
	s.Tick()

	require.NotNil(t, s.Current())
	assert.Equal(t, "second", s.Current().Name)
	assert.Equal(t, geom.Vec3{1, 1, 1}, s.Current().Pivot)
	assert.Equal(t, geom.Vec3{1, 1, 1}, s.Camera().Target)
}

func TestStaleResultBeforeNewerIsDropped(t *testing.T) {
	l := newManualLoader()
	s := New(testOptions(), &fakeRenderer{}, l, nil, nil)
	g1 := s.Reload()
	s.Reload()

	l.results <- asset.Result{Generation: g1, Asset: boxAsset("first", geom.Vec3{}, geom.Vec3{1, 1, 1})}
	s.Tick()
	assert.Nil(t, s.Current())
}

func TestFailedReloadKeepsState(t *testing.T) {
	l := newManualLoader()
	board := overlay.NewBoard(4, time.Minute)
	s := New(testOptions(), &fakeRenderer{}, l, board, nil)

	g := s.Reload()
	l.results <- asset.Result{Generation: g, Asset: boxAsset("ok", geom.Vec3{-1, -1, -1}, geom.Vec3{1, 1, 1})}
	s.Tick()
	before := s.Orbit()
	shown := s.Current()

	g = s.Reload()
	l.results <- asset.Result{Generation: g, Err: &asset.FetchError{URL: "x", StatusCode: 500, Err: errors.New("500")}}
	s.Tick()

	assert.Same(t, shown, s.Current())
	after := s.Orbit()
	assert.Equal(t, before.Radius, after.Radius)
	assert.Equal(t, before.Height, after.Height)
	notices := board.Active()
	require.Len(t, notices, 1)
	assert.True(t, notices[0].Error)
	assert.Contains(t, notices[0].Text, "HTTP 500")
}

func TestFramingAndOrbit(t *testing.T) {
	l := newManualLoader()
	s := New(testOptions(), &fakeRenderer{}, l, nil, nil)
	g := s.Reload()
	l.results <- asset.Result{Generation: g, Asset: boxAsset("scan", geom.Vec3{-10, -10, -5}, geom.Vec3{10, 10, 5})}
	s.Tick()

	st := s.Orbit()
	assert.InDelta(t, 29.3, st.Radius, 0.05)
	assert.InDelta(t, 30, st.Height, 1e-9)
	assert.InDelta(t, 0.01, st.Angle, 1e-12)

	for i := 0; i < 9; i++ {
		s.Tick()
	}
	assert.InDelta(t, 0.1, s.Orbit().Angle, 1e-9)

	cam := s.Camera()
	assert.InDelta(t, st.Radius*math.Cos(0.1), cam.Position[0], 1e-6)
	assert.InDelta(t, 30, cam.Position[1], 1e-6)
	assert.Equal(t, geom.Vec3{0, 0, 0}, cam.Target)
}

func TestResizePreservesAngleAndMode(t *testing.T) {
	l := newManualLoader()
	s := New(testOptions(), &fakeRenderer{}, l, nil, nil)
	g := s.Reload()
	l.results <- asset.Result{Generation: g, Asset: boxAsset("scan", geom.Vec3{-10, -10, -5}, geom.Vec3{10, 10, 5})}
	s.Tick()

	s.PointerDown(0, 0)
	s.PointerMove(25, 0)
	before := s.Orbit()

	s.Resize(400, 600)
	after := s.Orbit()
	assert.Equal(t, before.Angle, after.Angle)
	assert.Equal(t, orbit.UserDriven, after.Mode)
	assert.Greater(t, after.Radius, before.Radius, "narrower viewport moves the camera back")
	assert.InDelta(t, 400.0/600.0, s.Camera().Aspect, 1e-12)
}

func TestDispose(t *testing.T) {
	r := &fakeRenderer{}
	s := New(testOptions(), r, newManualLoader(), nil, nil)
	s.Dispose()
	assert.True(t, r.closed)
}

func stlPayload(min, max [3]float32) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(1))
	tri := []float32{0, 0, 1, min[0], min[1], min[2], max[0], min[1], min[2], max[0], max[1], max[2]}
	_ = binary.Write(&buf, binary.LittleEndian, tri)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	return buf.Bytes()
}

func TestEndToEndWithPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(stlPayload([3]float32{-1, -1, -1}, [3]float32{1, 1, 1}))
	}))
	defer srv.Close()

	p := asset.NewPipeline(asset.NewFetcher(srv.URL, time.Second), asset.STLParser{}, nil)
	r := &fakeRenderer{}
	s := New(testOptions(), r, p, nil, nil)
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for s.Current() == nil && time.Now().Before(deadline) {
		s.Tick()
		time.Sleep(time.Millisecond)
	}
	require.NotNil(t, s.Current())
	assert.Equal(t, uint64(1), s.Current().Generation)
	assert.Same(t, s.Current(), r.frames[len(r.frames)-1])
}
