package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 768, cfg.Gemini.EmbedDimension)
	assert.Equal(t, "gemini-embedding-001", cfg.Gemini.EmbedModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.ChatModel)
	assert.Equal(t, "gemini", cfg.LLM.ComposerProvider)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFiles_TOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scrutor.toml")
	content := `
environment = "production"

[server]
port = 9090

[chunking]
chunk_size = 500
overlap = 50

[retrieval]
top_k = 3
min_similarity = 0.25

[llm]
composer_provider = "claude"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.25, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, "claude", cfg.LLM.ComposerProvider)

	// Untouched sections keep defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 768, cfg.Gemini.EmbedDimension)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.toml")
	second := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(first, []byte("[server]\nport = 9090\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 7070\n"), 0644))

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/scrutor.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("SCRUTOR_SERVER_PORT", "6060")
	t.Setenv("SCRUTOR_CHUNK_SIZE", "400")
	t.Setenv("SCRUTOR_CHUNK_OVERLAP", "40")
	t.Setenv("SCRUTOR_RETRIEVAL_TOP_K", "7")
	t.Setenv("SCRUTOR_GEMINI_API_KEY", "test-key")
	t.Setenv("SCRUTOR_COMPOSER_PROVIDER", "claude")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port)
	assert.Equal(t, 400, cfg.Chunking.ChunkSize)
	assert.Equal(t, 40, cfg.Chunking.Overlap)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
	assert.Equal(t, "claude", cfg.LLM.ComposerProvider)
}

func TestLoadFromFiles_GenericEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "fallback-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "fallback-key", cfg.Gemini.APIKey)
	assert.Equal(t, "anthropic-key", cfg.Claude.APIKey)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Chunking.ChunkSize = 0 }},
		{"overlap equals chunk size", func(c *Config) { c.Chunking.Overlap = c.Chunking.ChunkSize }},
		{"overlap exceeds chunk size", func(c *Config) { c.Chunking.Overlap = c.Chunking.ChunkSize + 1 }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"min similarity above one", func(c *Config) { c.Retrieval.MinSimilarity = 1.5 }},
		{"invalid composer provider", func(c *Config) { c.LLM.ComposerProvider = "openai" }},
		{"zero max retries", func(c *Config) { c.LLM.MaxRetries = 0 }},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }},
		{"empty badger path", func(c *Config) { c.Storage.Badger.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)

	ApplyFlagOverrides(cfg, 5050, "0.0.0.0")
	assert.Equal(t, 5050, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}
