package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-normalizer/internal/models"
)

// chdir moves into an empty directory so a developer's .env is not picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "statement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.Years)
}

func TestLoadEnvironment(t *testing.T) {
	chdir(t)
	t.Setenv("STATEMENT_LOG_LEVEL", "debug")
	t.Setenv("STATEMENT_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("STATEMENT_WORKERS", "8")
	t.Setenv("STATEMENT_YEAR_AMEX", "2024")
	t.Setenv("STATEMENT_YEAR_WESTPAC_CREDIT_CARD", "2023")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, map[models.Format]int{
		models.FormatAmex:              2024,
		models.FormatWestpacCreditCard: 2023,
	}, cfg.Years)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STATEMENT_YEAR_CBA=2022\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("STATEMENT_YEAR_CBA") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2022, cfg.Years[models.FormatCBA])
}

func TestLoadFile(t *testing.T) {
	dir := chdir(t)
	path := writeConfig(t, dir, `
log_level: warn
workers: 2
years:
  anz: 2022
  commbank: 2021
`)
	t.Setenv("STATEMENT_YEAR_ANZ", "2020")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 2020, cfg.Years[models.FormatANZ], "environment wins over the file")
	assert.Equal(t, 2021, cfg.Years[models.FormatCBA])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unknown format year", env: map[string]string{"STATEMENT_YEAR_HSBC": "2024"}},
		{name: "bad year", env: map[string]string{"STATEMENT_YEAR_AMEX": "next"}},
		{name: "zero workers", env: map[string]string{"STATEMENT_WORKERS": "0"}},
		{name: "bad yaml", file: "workers: [1, 2"},
		{name: "unknown format in file", file: "years:\n  hsbc: 2024\n"},
		{name: "unknown key in file", file: "worker: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, dir, tt.file)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
