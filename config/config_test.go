package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.DefaultViewerLayout(), cfg.ViewerLayout())
	tl, err := cfg.TextLayerConfig()
	require.NoError(t, err)
	require.NotNil(t, tl)
	assert.Equal(t, model.DefaultTextLayerConfig(), *tl)
}

func TestLoad_TOMLThenYAML(t *testing.T) {
	base := writeFile(t, "base.toml", `
[server]
port = 9000

[layout]
scale = 1.5
fit_width = true

[text_layer]
font_size_match = "strict"
`)
	override := writeFile(t, "override.yaml", `
layout:
  scale: 2
text_layer:
  require_same_font: false
`)

	cfg, err := Load(base, "", override)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2.0, cfg.Layout.Scale)
	assert.True(t, cfg.Layout.FitWidth)
	tl, err := cfg.TextLayerConfig()
	require.NoError(t, err)
	assert.Equal(t, model.MatchStrict, tl.FontSizeMatch.Mode)
	assert.False(t, tl.RequireSameFont)
	assert.True(t, tl.UsePreciseFontSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PDFLAYER_SERVER_PORT", "7070")
	t.Setenv("PDFLAYER_LAYOUT_SCALE", "0.75")
	t.Setenv("PDFLAYER_TEXT_LAYER_ENABLED", "false")
	t.Setenv("PDFLAYER_LOG_LEVEL", "debug")
	t.Setenv("PDFLAYER_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 0.75, cfg.Layout.Scale)
	assert.Equal(t, "debug", cfg.Logging.Level)
	tl, err := cfg.TextLayerConfig()
	require.NoError(t, err)
	assert.Nil(t, tl)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero scale", "[layout]\nscale = 0\n"},
		{"bad port", "[server]\nport = 70000\n"},
		{"bad policy", "[text_layer]\nfont_size_match = \"fuzzy\"\n"},
		{"bad color", "[layout]\nbackground = \"white\"\n"},
		{"bad duration", "[fetch]\ntimeout = \"soon\"\n"},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"not toml", "this is = = not toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.toml", tt.content))
			assert.Error(t, err)
		})
	}

	t.Setenv("PDFLAYER_SERVER_PORT", "eighty")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, Duration("2s", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("bogus", time.Minute))
}
