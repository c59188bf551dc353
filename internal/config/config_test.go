package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Parse([]string{dir})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Directory)
	assert.Equal(t, "dfjk", cfg.Keys)
	assert.Equal(t, 4*time.Millisecond, cfg.FramePeriod)
	assert.Equal(t, 20.0, cfg.ScrollSpeed)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.Autoplay)
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Parse([]string{dir, "-o", "-30", "--judge-offset", "3", "-k", "asdf", "-a", "--log-level", "debug", "-d", "1"})
	require.NoError(t, err)

	assert.Equal(t, -30, cfg.Offset)
	assert.Equal(t, 3, cfg.JudgeOffset)
	assert.Equal(t, "asdf", cfg.Keys)
	assert.Equal(t, 1, cfg.Difficulty)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.Autoplay)
}

func TestParseMissingDirectory(t *testing.T) {
	_, err := Parse([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)

	_, err = Parse(nil)
	assert.Error(t, err)
}

func TestParseRejectsBadKeys(t *testing.T) {
	dir := t.TempDir()

	_, err := Parse([]string{dir, "-k", "dfj"})
	assert.Error(t, err)

	_, err = Parse([]string{dir, "-k", "ddjk"})
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`
offset: 42
judge_offset: -2
keys: zxcv
frame_period: 8ms
log_level: WARN
`), 0o644))

	cfg, err := Parse([]string{dir, "-P", profile})
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Offset)
	assert.Equal(t, -2, cfg.JudgeOffset)
	assert.Equal(t, "zxcv", cfg.Keys)
	assert.Equal(t, 8*time.Millisecond, cfg.FramePeriod)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	// Not in the profile, so the default stays.
	assert.Equal(t, 20.0, cfg.ScrollSpeed)

	// Explicit flags win over the profile.
	cfg, err = Parse([]string{dir, "-P", profile, "-o", "10", "-k", "hjkl"})
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Offset)
	assert.Equal(t, "hjkl", cfg.Keys)
	assert.Equal(t, -2, cfg.JudgeOffset)
}

func TestProfileMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := Parse([]string{dir, "-P", filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "saved.yaml")

	cfg := NewDefaultConfig()
	cfg.Directory = dir
	cfg.Offset = -15
	cfg.Keys = "qwer"
	require.NoError(t, cfg.Save(profile))

	loaded := NewDefaultConfig()
	require.NoError(t, Load(profile, loaded))
	assert.Equal(t, -15, loaded.Offset)
	assert.Equal(t, "qwer", loaded.Keys)
	// Per-run fields are not persisted.
	assert.Empty(t, loaded.Directory)
}

func TestKeyLane(t *testing.T) {
	cfg := NewDefaultConfig()
	for i, r := range "dfjk" {
		assert.Equal(t, i, cfg.KeyLane(r))
	}
	assert.Equal(t, -1, cfg.KeyLane('x'))
}
