package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pranshuparmar/expost/internal/display"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
	assert.Equal(t, "/proc", cfg.ProcRoot)
	assert.Equal(t, display.ModeAuto, cfg.Display)
	assert.Equal(t, 64, cfg.BarWidth)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
	assert.True(t, cfg.Color)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
interval: 250ms
proc_root: /host/proc
display: lines
bar_width: 80
log_level: debug
color: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, "/host/proc", cfg.ProcRoot)
	assert.Equal(t, display.ModeLines, cfg.Display)
	assert.Equal(t, 80, cfg.BarWidth)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.Color)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "display: tui\n"))
	require.NoError(t, err)

	assert.Equal(t, display.ModeTUI, cfg.Display)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
	assert.True(t, cfg.Color)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad interval":      "interval: soon\n",
		"negative interval": "interval: -1s\n",
		"bad level":         "log_level: loud\n",
		"bad display":       "display: hologram\n",
		"bad width":         "bar_width: -3\n",
		"not yaml":          "interval: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
