package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domaincfg "canvascore/domain/config"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25.0, cfg.Domain.RecoveryTolerance)
	assert.Equal(t, 200, cfg.Domain.MaxHistorySize)
	assert.Equal(t, 10*time.Minute, cfg.Domain.WorkflowTTL)
	assert.Equal(t, []string{"signature", "nearest", "newest"}, cfg.Domain.TieBreakOrder)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
environment: production
server:
  port: 9090
domain:
  recovery_tolerance: 40
  max_history_size: 50
  workflow_ttl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 40.0, cfg.Domain.RecoveryTolerance)
	assert.Equal(t, 50, cfg.Domain.MaxHistorySize)
	assert.Equal(t, 5*time.Minute, cfg.Domain.WorkflowTTL)

	// Unset fields keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10.0, cfg.Domain.SignatureGrid)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("RECOVERY_TOLERANCE", "12.5")
	t.Setenv("MAX_HISTORY_SIZE", "25")
	t.Setenv("WORKFLOW_TTL", "30s")
	t.Setenv("TIE_BREAK_ORDER", "nearest,newest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 12.5, cfg.Domain.RecoveryTolerance)
	assert.Equal(t, 25, cfg.Domain.MaxHistorySize)
	assert.Equal(t, 30*time.Second, cfg.Domain.WorkflowTTL)
	assert.Equal(t, []string{"nearest", "newest"}, cfg.Domain.TieBreakOrder)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad environment",
			mutate:  func(c *Config) { c.Environment = "qa" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "negative tolerance",
			mutate:  func(c *Config) { c.Domain.RecoveryTolerance = -1 },
			wantErr: true,
		},
		{
			name:    "zero signature grid",
			mutate:  func(c *Config) { c.Domain.SignatureGrid = 0 },
			wantErr: true,
		},
		{
			name:    "zero workflow ttl",
			mutate:  func(c *Config) { c.Domain.WorkflowTTL = 0 },
			wantErr: true,
		},
		{
			name:    "unknown tie-break rule",
			mutate:  func(c *Config) { c.Domain.TieBreakOrder = []string{"signature", "oldest"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToDomain(t *testing.T) {
	cfg := Default()
	cfg.Domain.RecoveryTolerance = 33
	cfg.Domain.TieBreakOrder = []string{"newest", "nearest"}

	d := cfg.ToDomain()
	assert.Equal(t, 33.0, d.RecoveryTolerance)
	assert.Equal(t, []domaincfg.TieBreakRule{domaincfg.TieBreakNewest, domaincfg.TieBreakNearest}, d.TieBreakOrder)
	assert.Equal(t, cfg.Domain.MaxHistorySize, d.MaxHistorySize)
	assert.Equal(t, cfg.Domain.WorkflowTTL, d.WorkflowTTL)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain:\n  recovery_tolerance: 10\n"), 0o644))

	initial, err := LoadFile(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var notified []float64
	reloaded := make(chan float64, 4)
	w.OnChange(func(c Config) {
		reloaded <- c.Domain.RecoveryTolerance
	})

	require.NoError(t, os.WriteFile(path, []byte("domain:\n  recovery_tolerance: 55\n"), 0o644))

	select {
	case v := <-reloaded:
		notified = append(notified, v)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload in time")
	}

	assert.Equal(t, []float64{55}, notified)
	assert.Equal(t, 55.0, w.Current().Domain.RecoveryTolerance)
}

func TestWatcher_KeepsPreviousConfigOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain:\n  recovery_tolerance: 10\n"), 0o644))

	initial, err := LoadFile(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("domain:\n  recovery_tolerance: -5\n"), 0o644))

	// Give the debounced reload time to run and be rejected
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, 10.0, w.Current().Domain.RecoveryTolerance)
}
