package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"imprint-viewer/internal/env"
	"imprint-viewer/internal/framing"
	"imprint-viewer/internal/notify"
	"imprint-viewer/internal/orbit"
	"imprint-viewer/internal/scene"
)

// DefaultPath is the config file read when no -config flag is given, relative to the working directory.
const DefaultPath = "config/viewer.json"

// Duration is a time.Duration written as text ("60s") in every config format.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Viewport is the window and projection.
type Viewport struct {
	Title      string  `json:"title" toml:"title" yaml:"title"`
	Width      int     `json:"width" toml:"width" yaml:"width"`
	Height     int     `json:"height" toml:"height" yaml:"height"`
	FOVDegrees float64 `json:"fov_degrees" toml:"fov_degrees" yaml:"fov_degrees"`
	Near       float64 `json:"near" toml:"near" yaml:"near"`
	Far        float64 `json:"far" toml:"far" yaml:"far"`
}

// Scene holds composition and lighting.
type Scene struct {
	Scale                float64    `json:"scale" toml:"scale" yaml:"scale"`
	UpAxis               string     `json:"up_axis" toml:"up_axis" yaml:"up_axis"`
	AmbientIntensity     float64    `json:"ambient_intensity" toml:"ambient_intensity" yaml:"ambient_intensity"`
	PointIntensity       float64    `json:"point_intensity" toml:"point_intensity" yaml:"point_intensity"`
	PointOffset          [3]float64 `json:"point_offset" toml:"point_offset" yaml:"point_offset"`
	DirectionalIntensity float64    `json:"directional_intensity" toml:"directional_intensity" yaml:"directional_intensity"`
	DirectionalOffset    [3]float64 `json:"directional_offset" toml:"directional_offset" yaml:"directional_offset"`
}

// Orbit holds camera motion tuning.
type Orbit struct {
	OrbitSpeed      float64 `json:"orbit_speed" toml:"orbit_speed" yaml:"orbit_speed"`
	Sensitivity     float64 `json:"sensitivity" toml:"sensitivity" yaml:"sensitivity"`
	Decay           float64 `json:"decay" toml:"decay" yaml:"decay"`
	VelocityEpsilon float64 `json:"velocity_epsilon" toml:"velocity_epsilon" yaml:"velocity_epsilon"`
	MinRadius       float64 `json:"min_radius" toml:"min_radius" yaml:"min_radius"`
	Zoom            float64 `json:"zoom" toml:"zoom" yaml:"zoom"`
	ZoomMin         float64 `json:"zoom_min" toml:"zoom_min" yaml:"zoom_min"`
	ZoomMax         float64 `json:"zoom_max" toml:"zoom_max" yaml:"zoom_max"`
	ZoomStep        float64 `json:"zoom_step" toml:"zoom_step" yaml:"zoom_step"`
	MaxTilt         float64 `json:"max_tilt" toml:"max_tilt" yaml:"max_tilt"`
}

// Reconnect is the notification channel backoff.
type Reconnect struct {
	Initial Duration `json:"initial" toml:"initial" yaml:"initial"`
	Max     Duration `json:"max" toml:"max" yaml:"max"`
	GiveUp  Duration `json:"give_up" toml:"give_up" yaml:"give_up"`
}

// Config is the viewer configuration.
type Config struct {
	AssetURL     string    `json:"asset_url" toml:"asset_url" yaml:"asset_url"`
	NotifyURL    string    `json:"notify_url" toml:"notify_url" yaml:"notify_url"`
	FetchTimeout Duration  `json:"fetch_timeout" toml:"fetch_timeout" yaml:"fetch_timeout"`
	UserAgent    string    `json:"user_agent,omitempty" toml:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Viewport     Viewport  `json:"viewport" toml:"viewport" yaml:"viewport"`
	Scene        Scene     `json:"scene" toml:"scene" yaml:"scene"`
	Orbit        Orbit     `json:"orbit" toml:"orbit" yaml:"orbit"`
	Reconnect    Reconnect `json:"reconnect" toml:"reconnect" yaml:"reconnect"`
	LogLevel     string    `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFile      string    `json:"log_file" toml:"log_file" yaml:"log_file"`
	ShowFPS      bool      `json:"show_fps" toml:"show_fps" yaml:"show_fps"`
}

// Default returns the stock configuration pointing at a local asset server.
func Default() Config {
	sc := scene.DefaultOptions()
	op := orbit.DefaultParams()
	rc := notify.DefaultReconnect()
	return Config{
		AssetURL:     "http://localhost:8000/stl/latest",
		NotifyURL:    "http://localhost:8000/notifications/",
		FetchTimeout: Duration{60 * time.Second},
		Viewport: Viewport{
			Title:      "Imprint Viewer",
			Width:      1280,
			Height:     720,
			FOVDegrees: 75,
			Near:       0.1,
			Far:        1000,
		},
		Scene: Scene{
			Scale:                sc.Scale,
			UpAxis:               string(sc.UpAxis),
			AmbientIntensity:     sc.AmbientIntensity,
			PointIntensity:       sc.PointIntensity,
			PointOffset:          sc.PointOffset,
			DirectionalIntensity: sc.DirectionalIntensity,
			DirectionalOffset:    sc.DirectionalOffset,
		},
		Orbit: Orbit{
			OrbitSpeed:      op.OrbitSpeed,
			Sensitivity:     op.Sensitivity,
			Decay:           op.Decay,
			VelocityEpsilon: op.Epsilon,
			MinRadius:       framing.DefaultMinRadius,
			Zoom:            op.Zoom,
			ZoomMin:         op.ZoomMin,
			ZoomMax:         op.ZoomMax,
			ZoomStep:        0.1,
			MaxTilt:         op.MaxTilt,
		},
		Reconnect: Reconnect{
			Initial: Duration{rc.Initial},
			Max:     Duration{rc.Max},
		},
		LogLevel: "info",
		LogFile:  "logs/viewer.txt",
	}
}

type format int

const (
	formatJSON format = iota
	formatTOML
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return formatJSON, nil
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
}

// Load reads path over Default(). A missing file yields the defaults without error;
// fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("config: %w", err)
	}
	f, err := formatOf(path)
	if err != nil {
		return c, err
	}
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, &c)
	case formatYAML:
		err = yaml.Unmarshal(data, &c)
	default:
		err = json.Unmarshal(data, &c)
	}
	if err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path in the format named by its extension, creating the directory if needed.
func Save(path string, c Config) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch f {
	case formatTOML:
		data, err = toml.Marshal(c)
	case formatYAML:
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "\t")
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides c from IMPRINT_* environment variables.
func ApplyEnv(c *Config) {
	env.String("IMPRINT_ASSET_URL", &c.AssetURL)
	env.String("IMPRINT_NOTIFY_URL", &c.NotifyURL)
	env.String("IMPRINT_LOG_LEVEL", &c.LogLevel)
	env.String("IMPRINT_LOG_FILE", &c.LogFile)
	env.Duration("IMPRINT_FETCH_TIMEOUT", &c.FetchTimeout.Duration)
	env.Float("IMPRINT_SCALE", &c.Scene.Scale)
	env.Bool("IMPRINT_SHOW_FPS", &c.ShowFPS)
}

// Validate rejects values the viewer cannot run with.
func (c *Config) Validate() error {
	if c.AssetURL == "" {
		return fmt.Errorf("config: asset_url is required")
	}
	v := c.Viewport
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("config: viewport %dx%d must be positive", v.Width, v.Height)
	}
	if v.FOVDegrees <= 0 || v.FOVDegrees >= 180 {
		return fmt.Errorf("config: fov_degrees %v must be in (0, 180)", v.FOVDegrees)
	}
	if c.Scene.Scale <= 0 {
		return fmt.Errorf("config: scale %v must be positive", c.Scene.Scale)
	}
	switch scene.UpAxis(strings.ToLower(c.Scene.UpAxis)) {
	case scene.UpY, scene.UpZ:
	default:
		return fmt.Errorf("config: up_axis %q must be y or z", c.Scene.UpAxis)
	}
	o := c.Orbit
	if o.Decay < 0 || o.Decay >= 1 {
		return fmt.Errorf("config: decay %v must be in [0, 1)", o.Decay)
	}
	if o.MinRadius <= 0 {
		return fmt.Errorf("config: min_radius %v must be positive", o.MinRadius)
	}
	if o.ZoomMin <= 0 || o.ZoomMax < o.ZoomMin {
		return fmt.Errorf("config: zoom range [%v, %v] is invalid", o.ZoomMin, o.ZoomMax)
	}
	if o.MaxTilt < 0 || o.MaxTilt >= math.Pi/2 {
		return fmt.Errorf("config: max_tilt %v must be in [0, π/2)", o.MaxTilt)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SceneOptions converts the scene section.
func (c *Config) SceneOptions() scene.Options {
	o := scene.DefaultOptions()
	o.Scale = c.Scene.Scale
	o.UpAxis = scene.UpAxis(strings.ToLower(c.Scene.UpAxis))
	o.AmbientIntensity = c.Scene.AmbientIntensity
	o.PointIntensity = c.Scene.PointIntensity
	o.PointOffset = c.Scene.PointOffset
	o.DirectionalIntensity = c.Scene.DirectionalIntensity
	o.DirectionalOffset = c.Scene.DirectionalOffset
	return o
}

// OrbitParams converts the orbit section.
func (c *Config) OrbitParams() orbit.Params {
	return orbit.Params{
		OrbitSpeed:  c.Orbit.OrbitSpeed,
		Sensitivity: c.Orbit.Sensitivity,
		Decay:       c.Orbit.Decay,
		Epsilon:     c.Orbit.VelocityEpsilon,
		Zoom:        c.Orbit.Zoom,
		ZoomMin:     c.Orbit.ZoomMin,
		ZoomMax:     c.Orbit.ZoomMax,
		MaxTilt:     c.Orbit.MaxTilt,
	}
}

// FramingViewport converts the viewport section.
func (c *Config) FramingViewport() framing.Viewport {
	return framing.Viewport{
		Width:              float64(c.Viewport.Width),
		Height:             float64(c.Viewport.Height),
		FieldOfViewDegrees: c.Viewport.FOVDegrees,
	}
}

// ReconnectPolicy converts the reconnect section.
func (c *Config) ReconnectPolicy() notify.Reconnect {
	return notify.Reconnect{
		Initial: c.Reconnect.Initial.Duration,
		Max:     c.Reconnect.Max.Duration,
		GiveUp:  c.Reconnect.GiveUp.Duration,
	}
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}
