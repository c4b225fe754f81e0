// Package config loads pdflayer's application configuration for the CLI
// and the server.
//
// Priority: defaults, then config files in order (TOML, or YAML for .yaml
// and .yml), then PDFLAYER_* environment variables. A .env file in the
// working directory is read into the environment first without overriding
// variables that are already set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/pdflayer/model"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Engine    EngineConfig    `toml:"engine" yaml:"engine"`
	Fetch     FetchConfig     `toml:"fetch" yaml:"fetch"`
	Layout    LayoutConfig    `toml:"layout" yaml:"layout"`
	TextLayer TextLayerConfig `toml:"text_layer" yaml:"text_layer"`
	OCR       OCRConfig       `toml:"ocr" yaml:"ocr"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Host        string `toml:"host" yaml:"host" validate:"required"`
	Port        int    `toml:"port" yaml:"port" validate:"min=1,max=65535"`
	MaxUploadMB int    `toml:"max_upload_mb" yaml:"max_upload_mb" validate:"min=1"`
	// ResizeDelay is the debounce period for websocket resize messages.
	ResizeDelay string `toml:"resize_delay" yaml:"resize_delay"`
	// AllowedOrigins lists the cross-origin sites, as scheme://host[:port],
	// that may open a WebSocket. Same-origin requests are always accepted.
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// EngineConfig sizes the PDFium instance pool.
type EngineConfig struct {
	MinIdle         int    `toml:"min_idle" yaml:"min_idle" validate:"min=0"`
	MaxIdle         int    `toml:"max_idle" yaml:"max_idle" validate:"min=0"`
	MaxTotal        int    `toml:"max_total" yaml:"max_total" validate:"min=1"`
	InstanceTimeout string `toml:"instance_timeout" yaml:"instance_timeout"`
}

type FetchConfig struct {
	Timeout  string `toml:"timeout" yaml:"timeout"`
	FileRoot string `toml:"file_root" yaml:"file_root"` // restricts local paths; empty allows any
	Inspect  bool   `toml:"inspect" yaml:"inspect"`     // sniff bytes with pdfcpu before opening
}

// LayoutConfig mirrors model.ViewerLayout.
type LayoutConfig struct {
	Padding        float64 `toml:"padding" yaml:"padding" validate:"min=0"`
	Gap            float64 `toml:"gap" yaml:"gap" validate:"min=0"`
	Background     string  `toml:"background" yaml:"background" validate:"omitempty,hexcolor"`
	Scale          float64 `toml:"scale" yaml:"scale" validate:"gt=0"`
	FitWidth       bool    `toml:"fit_width" yaml:"fit_width"`
	ContainerWidth float64 `toml:"container_width" yaml:"container_width" validate:"min=0"`
}

// TextLayerConfig mirrors model.TextLayerConfig.
type TextLayerConfig struct {
	Enabled              bool    `toml:"enabled" yaml:"enabled"`
	UsePreciseCharBounds bool    `toml:"use_precise_char_bounds" yaml:"use_precise_char_bounds"`
	UsePreciseFontSize   bool    `toml:"use_precise_font_size" yaml:"use_precise_font_size"`
	RequireSameFont      bool    `toml:"require_same_font" yaml:"require_same_font"`
	FontSizeMatch        string  `toml:"font_size_match" yaml:"font_size_match" validate:"oneof=strict tolerant any"`
	MaxDelta             float64 `toml:"max_delta" yaml:"max_delta" validate:"min=0"`
	CaptureText          bool    `toml:"capture_text" yaml:"capture_text"`
}

type OCRConfig struct {
	Enabled       bool    `toml:"enabled" yaml:"enabled"`
	Language      string  `toml:"language" yaml:"language"`
	MinDPI        float64 `toml:"min_dpi" yaml:"min_dpi" validate:"min=0"`
	MinConfidence float64 `toml:"min_confidence" yaml:"min_confidence" validate:"min=0,max=100"`
}

type LoggingConfig struct {
	Level string `toml:"level" yaml:"level" validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	layout := model.DefaultViewerLayout()
	text := model.DefaultTextLayerConfig()
	return &Config{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        8085,
			MaxUploadMB: 64,
			ResizeDelay: "150ms",
		},
		Engine: EngineConfig{
			MinIdle:         1,
			MaxIdle:         1,
			MaxTotal:        4,
			InstanceTimeout: "30s",
		},
		Fetch: FetchConfig{
			Timeout: "30s",
			Inspect: true,
		},
		Layout: LayoutConfig{
			Padding:    layout.Padding,
			Gap:        layout.Gap,
			Background: layout.Background,
			Scale:      layout.Scale,
			FitWidth:   layout.FitWidth,
		},
		TextLayer: TextLayerConfig{
			Enabled:              true,
			UsePreciseCharBounds: text.UsePreciseCharBounds,
			UsePreciseFontSize:   text.UsePreciseFontSize,
			RequireSameFont:      text.RequireSameFont,
			FontSizeMatch:        text.FontSizeMatch.Mode.String(),
			MaxDelta:             text.FontSizeMatch.MaxDelta,
			CaptureText:          true,
		},
		OCR: OCRConfig{
			Language:      "eng",
			MinDPI:        300,
			MinConfidence: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the given files over the defaults, applies environment
// overrides and validates the result. Empty paths are skipped.
func Load(paths ...string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	config := NewDefaultConfig()
	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := unmarshal(path, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func unmarshal(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return toml.Unmarshal(data, config)
	}
}

// Validate checks field ranges and that every duration parses.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, d := range map[string]string{
		"server.resize_delay":     c.Server.ResizeDelay,
		"engine.instance_timeout": c.Engine.InstanceTimeout,
		"fetch.timeout":           c.Fetch.Timeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", name, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) error {
	if host := os.Getenv("PDFLAYER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("PDFLAYER_SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("PDFLAYER_SERVER_PORT: %w", err)
		}
		config.Server.Port = p
	}
	if timeout := os.Getenv("PDFLAYER_FETCH_TIMEOUT"); timeout != "" {
		config.Fetch.Timeout = timeout
	}
	if origins := os.Getenv("PDFLAYER_SERVER_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	if root := os.Getenv("PDFLAYER_FETCH_FILE_ROOT"); root != "" {
		config.Fetch.FileRoot = root
	}
	if scale := os.Getenv("PDFLAYER_LAYOUT_SCALE"); scale != "" {
		s, err := strconv.ParseFloat(scale, 64)
		if err != nil {
			return fmt.Errorf("PDFLAYER_LAYOUT_SCALE: %w", err)
		}
		config.Layout.Scale = s
	}
	if fit := os.Getenv("PDFLAYER_LAYOUT_FIT_WIDTH"); fit != "" {
		b, err := strconv.ParseBool(fit)
		if err != nil {
			return fmt.Errorf("PDFLAYER_LAYOUT_FIT_WIDTH: %w", err)
		}
		config.Layout.FitWidth = b
	}
	if enabled := os.Getenv("PDFLAYER_TEXT_LAYER_ENABLED"); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("PDFLAYER_TEXT_LAYER_ENABLED: %w", err)
		}
		config.TextLayer.Enabled = b
	}
	if enabled := os.Getenv("PDFLAYER_OCR_ENABLED"); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("PDFLAYER_OCR_ENABLED: %w", err)
		}
		config.OCR.Enabled = b
	}
	if lang := os.Getenv("PDFLAYER_OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	if level := os.Getenv("PDFLAYER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	return nil
}

// ViewerLayout converts the layout section.
func (c *Config) ViewerLayout() model.ViewerLayout {
	return model.ViewerLayout{
		Padding:    c.Layout.Padding,
		Gap:        c.Layout.Gap,
		Background: c.Layout.Background,
		Scale:      c.Layout.Scale,
		FitWidth:   c.Layout.FitWidth,
	}
}

// TextLayerConfig converts the text layer section. It returns nil when the
// text layer is disabled.
func (c *Config) TextLayerConfig() (*model.TextLayerConfig, error) {
	if !c.TextLayer.Enabled {
		return nil, nil
	}
	mode, err := model.ParseFontSizeMatchMode(c.TextLayer.FontSizeMatch)
	if err != nil {
		return nil, err
	}
	return &model.TextLayerConfig{
		UsePreciseCharBounds: c.TextLayer.UsePreciseCharBounds,
		UsePreciseFontSize:   c.TextLayer.UsePreciseFontSize,
		RequireSameFont:      c.TextLayer.RequireSameFont,
		FontSizeMatch:        model.FontSizeMatch{Mode: mode, MaxDelta: c.TextLayer.MaxDelta},
	}, nil
}

// Duration parses d, returning def when d is empty or invalid.
func Duration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	v, err := time.ParseDuration(d)
	if err != nil {
		return def
	}
	return v
}
