package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Chunking    ChunkingConfig   `toml:"chunking"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// ChunkingConfig controls how extracted document text is split into
// passages. Overlap must stay below chunk size; Validate enforces this.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size" validate:"gt=0"` // Target passage size in characters
	Overlap   int `toml:"overlap" validate:"gte=0"`   // Characters carried over between adjacent passages
}

// RetrievalConfig controls ranking policy applied by the retriever.
type RetrievalConfig struct {
	TopK          int     `toml:"top_k" validate:"gt=0"`                  // Default candidate count per query
	MinSimilarity float64 `toml:"min_similarity" validate:"gte=0,lte=1"` // Drop candidates scoring below this (0 = permissive)
	MergeAdjacent bool    `toml:"merge_adjacent"`                         // Merge overlapping spans of the same document into one citation
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key
	EmbedModel     string  `toml:"embed_model"`     // Embedding model (default: "gemini-embedding-001")
	ChatModel      string  `toml:"chat_model"`      // Chat model (default: "gemini-2.0-flash")
	EmbedDimension int     `toml:"embed_dimension"` // Output dimensionality (default: 768)
	Timeout        string  `toml:"timeout"`         // Per-call timeout as duration string (default: "30s")
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between API calls (default: "4s" for free-tier 15 RPM)
	Temperature    float32 `toml:"temperature"`     // Chat completion temperature (default: 0.2)
}

// ClaudeConfig contains Anthropic Claude API configuration (composition only)
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Chat model (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2048)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "60s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// LLMConfig selects the provider used for answer composition. Embeddings
// always come from Gemini; Claude has no embedding API.
type LLMConfig struct {
	ComposerProvider string `toml:"composer_provider" validate:"oneof=gemini claude"` // "gemini" or "claude"
	MaxRetries       int    `toml:"max_retries" validate:"gte=1"`                     // Attempts per provider call before surfacing unavailable
	InitialBackoff   string `toml:"initial_backoff"`                                  // First retry delay as duration string (default: "500ms")
}

// MaintenanceConfig controls the cron-driven maintenance scheduler.
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron format (default: every 10 minutes)
}

// NewDefaultConfig creates a configuration with default values.
// Chunking defaults follow the 1000/100 split the corpus was originally
// tuned with; retrieval defaults to 5 passages with no similarity floor.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   100,
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			MinSimilarity: 0, // Permissive by default
			MergeAdjacent: false,
		},
		Gemini: GeminiConfig{
			APIKey:         "", // User must provide API key (config or SCRUTOR_GEMINI_API_KEY)
			EmbedModel:     "gemini-embedding-001",
			ChatModel:      "gemini-2.0-flash",
			EmbedDimension: 768,
			Timeout:        "30s",
			RateLimit:      "4s", // Free-tier 15 RPM
			Temperature:    0.2,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   2048,
			Timeout:     "60s",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			ComposerProvider: "gemini",
			MaxRetries:       3,
			InitialBackoff:   "500ms",
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "@every 10m",
		},
	}
}

// LoadFromFiles loads configuration with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// ones; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks struct tags plus the cross-field chunking constraint.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("invalid configuration: chunking overlap (%d) must be less than chunk size (%d)", c.Chunking.Overlap, c.Chunking.ChunkSize)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRUTOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SCRUTOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCRUTOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("SCRUTOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("SCRUTOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SCRUTOR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Chunking configuration
	if size := os.Getenv("SCRUTOR_CHUNK_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			config.Chunking.ChunkSize = s
		}
	}
	if overlap := os.Getenv("SCRUTOR_CHUNK_OVERLAP"); overlap != "" {
		if o, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = o
		}
	}

	// Retrieval configuration
	if topK := os.Getenv("SCRUTOR_RETRIEVAL_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.Retrieval.TopK = k
		}
	}
	if minSim := os.Getenv("SCRUTOR_RETRIEVAL_MIN_SIMILARITY"); minSim != "" {
		if ms, err := strconv.ParseFloat(minSim, 64); err == nil {
			config.Retrieval.MinSimilarity = ms
		}
	}

	// Provider configuration
	if apiKey := os.Getenv("SCRUTOR_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("SCRUTOR_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if provider := os.Getenv("SCRUTOR_COMPOSER_PROVIDER"); provider != "" {
		config.LLM.ComposerProvider = provider
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
