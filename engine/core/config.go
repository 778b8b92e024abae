package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	BackendVulkan   = "vulkan"
	BackendHeadless = "headless"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
}

type RendererConfig struct {
	Backend string `toml:"backend"`
	// Debug enables validation layers and diagnostic checks around every
	// context call.
	Debug bool `toml:"debug"`
	// MaxFrames stops the loop after that many presented frames. Zero runs
	// until quit.
	MaxFrames   uint64     `toml:"max_frames"`
	ClearColour [3]float32 `toml:"clear_colour"`
	// TargetFPS limits the frame rate. Zero disables limiting.
	TargetFPS float64 `toml:"target_fps"`
	// MessageQueueSize bounds the number of retained device messages.
	MessageQueueSize int `toml:"message_queue_size"`
}

type SceneConfig struct {
	ObjectCount int    `toml:"object_count"`
	Seed        uint64 `toml:"seed"`
	// Classes restricts the factory to these geometry classes. Empty means all.
	Classes []string `toml:"classes"`
	// Image files below the assets directory.
	SheetTexture string `toml:"sheet_texture"`
	CubeTexture  string `toml:"cube_texture"`
}

type LogConfig struct {
	Level        LogLevel `toml:"level"`
	Prefix       string   `toml:"prefix"`
	ReportCaller bool     `toml:"report_caller"`
}

type AssetsConfig struct {
	Directory string `toml:"directory"`
	Watch     bool   `toml:"watch"`
}

// Config is built once at startup and passed by pointer to whatever needs it.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Scene       SceneConfig       `toml:"scene"`
	Log         LogConfig         `toml:"log"`
	Assets      AssetsConfig      `toml:"assets"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:        "Orrery",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  800,
			StartHeight: 600,
		},
		Renderer: RendererConfig{
			Backend:          BackendVulkan,
			Debug:            true,
			ClearColour:      [3]float32{0.07, 0.0, 0.12},
			TargetFPS:        60,
			MessageQueueSize: 1024,
		},
		Scene: SceneConfig{
			ObjectCount:  80,
			Seed:         1337,
			SheetTexture: "images/kappa50.png",
			CubeTexture:  "images/cube.png",
		},
		Log: LogConfig{
			Level:        DebugLevel,
			ReportCaller: true,
		},
		Assets: AssetsConfig{
			Directory: "assets",
			Watch:     true,
		},
	}
}

// LoadConfig reads the TOML file at path on top of DefaultConfig. A missing
// file is not an error. Values from a .env file and ORRERY_* environment
// variables override the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			LogDebug("config file %s not found, using defaults", path)
		case err != nil:
			return nil, err
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		LogWarn("failed to load .env file: %s", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("ORRERY_BACKEND"); ok {
		c.Renderer.Backend = v
	}
	if v, ok := os.LookupEnv("ORRERY_LOG_LEVEL"); ok {
		c.Log.Level = LogLevel(v)
	}
	if v, ok := os.LookupEnv("ORRERY_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ORRERY_SEED: %s", ErrInvalidConfig, err)
		}
		c.Scene.Seed = seed
	}
	if v, ok := os.LookupEnv("ORRERY_OBJECTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: ORRERY_OBJECTS: %s", ErrInvalidConfig, err)
		}
		c.Scene.ObjectCount = n
	}
	if v, ok := os.LookupEnv("ORRERY_FRAMES"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ORRERY_FRAMES: %s", ErrInvalidConfig, err)
		}
		c.Renderer.MaxFrames = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		return fmt.Errorf("%w: window size must be non-zero", ErrInvalidConfig)
	}
	switch c.Renderer.Backend {
	case BackendVulkan, BackendHeadless:
	default:
		return fmt.Errorf("%w: unknown renderer backend %q", ErrInvalidConfig, c.Renderer.Backend)
	}
	if c.Scene.ObjectCount < 0 {
		return fmt.Errorf("%w: scene.object_count must not be negative", ErrInvalidConfig)
	}
	if c.Renderer.MessageQueueSize <= 0 {
		return fmt.Errorf("%w: renderer.message_queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyLogging pushes the log section into the engine logger.
func (c *Config) ApplyLogging() {
	SetLogLevel(c.Log.Level)
	if c.Log.Prefix != "" {
		SetLogPrefix(c.Log.Prefix)
	}
	SetLogReportCaller(c.Log.ReportCaller)
}
