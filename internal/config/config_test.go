package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvProvider, EnvAPIKey, EnvModel, EnvBaseURL} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_NoFiles(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
	assert.Equal(t, BackendMemory, cfg.Graph.BackendName())
}

func TestLoad_YAML(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "transcreate.yml", `
graph:
  path: kg/graph.json
  backend: Kuzu
  dbPath: /tmp/kg.db
llm:
  model: gpt-4o-mini
  timeout: 10s
  backoff: 250ms
  maxAttempts: 4
  temperature: 0
server:
  addr: ":9090"
  allowedOrigins: ["http://localhost:3000"]
concurrency: 4
archive: runs.db
verbose: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "kg/graph.json", cfg.Graph.Path)
	assert.Equal(t, BackendKuzu, cfg.Graph.BackendName())
	assert.Equal(t, "/tmp/kg.db", cfg.Graph.DBPath)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.LLM.Backoff)
	assert.Equal(t, 4, cfg.LLM.MaxAttempts)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "runs.db", cfg.ArchivePath)
	assert.True(t, cfg.Verbose)

	rc := cfg.LLM.Reasoning()
	require.NotNil(t, rc.Temperature)
	assert.Equal(t, 0.0, *rc.Temperature, "explicit zero temperature is kept")
	assert.Equal(t, 4, rc.MaxAttempts)
}

func TestLoad_YAMLExtension(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "transcreate.yaml", "concurrency: 2\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "transcreate.yml", "graph: [unclosed")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcreate.yml")
}

func TestLoad_UnreadableFile(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	// A directory in place of the file exists but cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "transcreate.yml"), 0o755))
	writeFile(t, dir, "transcreate.yaml", "concurrency: 3\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
	assert.Contains(t, err.Error(), "transcreate.yml")
}

func TestLoad_InvalidBackend(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "transcreate.yml", "graph:\n  backend: neo4j\n")

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalidBackend)
}

func TestLoad_EnvPrecedence(t *testing.T) {
	clearLLMEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "transcreate.yml", "llm:\n  provider: openai\n  model: from-yaml\n  apiKey: yaml-key\n")
	writeFile(t, dir, ".env", "LLM_MODEL=from-dotenv\nLLM_API_KEY=dotenv-key\nLLM_BASE_URL=http://localhost:1234/v1\n")
	t.Setenv(EnvAPIKey, "env-key")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider, "yaml value kept when nothing overrides it")
	assert.Equal(t, "from-dotenv", cfg.LLM.Model, ".env overrides yaml")
	assert.Equal(t, "env-key", cfg.LLM.APIKey, "process env overrides .env")
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.BaseURL)

	_, set := os.LookupEnv(EnvModel)
	assert.False(t, set, ".env must not leak into the process environment")
}

func TestReasoning_UnsetTemperature(t *testing.T) {
	rc := LLMConfig{APIKey: "k"}.Reasoning()
	assert.Nil(t, rc.Temperature, "the provider default applies")
	assert.Equal(t, "k", rc.APIKey)
}
