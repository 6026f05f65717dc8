// Package config manages Ollama4Truth configuration with YAML files and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	o4terrors "github.com/lucasfrag/ollama4truth/internal/errors"
)

// Config is the root configuration.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Cache      CacheConfig      `yaml:"cache"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Evidence   EvidenceConfig   `yaml:"evidence"`
	Web        WebConfig        `yaml:"web"`
	LLM        LLMConfig        `yaml:"llm"`
	Server     ServerConfig     `yaml:"server"`
}

// CorpusConfig configures the fact-checking corpus location.
type CorpusConfig struct {
	// DataDir is the directory holding the per-source JSONL files.
	DataDir string `yaml:"data_dir"`

	// Sources optionally restricts which source files are loaded. Empty
	// means all default sources.
	Sources []string `yaml:"sources"`
}

// CacheConfig configures the on-disk embedding cache.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// EmbeddingsConfig configures the embedding backend.
type EmbeddingsConfig struct {
	Model      string `yaml:"model"`
	OllamaHost string `yaml:"ollama_host"`
	BatchSize  int    `yaml:"batch_size"`
}

// RetrievalConfig configures search behavior.
type RetrievalConfig struct {
	// Method is lexical, semantic, or hybrid.
	Method string `yaml:"method"`

	// Strategy is the embedding strategy: chunk_pool, title_label, or
	// truncate.
	Strategy string `yaml:"strategy"`

	// BM25Weight is the lexical weight in hybrid fusion, in [0,1].
	BM25Weight float64 `yaml:"bm25_weight"`

	// PerQuestionK is the number of results retrieved per question.
	PerQuestionK int `yaml:"per_question_k"`

	// TotalK caps the aggregated evidence list across all questions.
	TotalK int `yaml:"total_k"`
}

// EvidenceConfig configures the evidence gathering modes.
type EvidenceConfig struct {
	// Mode is corpus, web, or hybrid.
	Mode string `yaml:"mode"`

	// MinCorpusResults is the hybrid-mode threshold below which a single
	// web fallback is triggered.
	MinCorpusResults int `yaml:"min_corpus_results"`

	// WebTimeout bounds each external search call.
	WebTimeout time.Duration `yaml:"web_timeout"`

	// WebPacing is the minimum interval between consecutive web calls.
	WebPacing time.Duration `yaml:"web_pacing"`
}

// WebConfig holds Google Custom Search credentials.
type WebConfig struct {
	APIKey     string `yaml:"api_key"`
	CX         string `yaml:"cx"`
	NumResults int    `yaml:"num_results"`
}

// LLMConfig configures the generation backend used for question
// decomposition and verdicts.
type LLMConfig struct {
	// Provider is ollama or openai.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".ollama4truth")

	return &Config{
		Corpus: CorpusConfig{
			DataDir: "data",
		},
		Cache: CacheConfig{
			Dir: filepath.Join(base, "cache"),
		},
		Embeddings: EmbeddingsConfig{
			Model:      "nomic-embed-text",
			OllamaHost: "http://localhost:11434",
			BatchSize:  32,
		},
		Retrieval: RetrievalConfig{
			Method:       "lexical",
			Strategy:     "chunk_pool",
			BM25Weight:   0.5,
			PerQuestionK: 5,
			TotalK:       10,
		},
		Evidence: EvidenceConfig{
			Mode:             "hybrid",
			MinCorpusResults: 2,
			WebTimeout:       10 * time.Second,
			WebPacing:        1500 * time.Millisecond,
		},
		Web: WebConfig{
			NumResults: 5,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3",
			BaseURL:  "http://localhost:11434",
		},
		Server: ServerConfig{
			Port:     8000,
			LogLevel: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. A missing path is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, o4terrors.Wrap(o4terrors.ErrCodeConfigInvalid,
					fmt.Sprintf("reading config file %s", path), err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, o4terrors.Wrap(o4terrors.ErrCodeConfigInvalid,
				fmt.Sprintf("parsing config file %s", path), err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies O4T_-prefixed environment variable overrides.
func (c *Config) applyEnv() {
	envString("O4T_DATA_DIR", &c.Corpus.DataDir)
	envString("O4T_CACHE_DIR", &c.Cache.Dir)
	envString("O4T_EMBED_MODEL", &c.Embeddings.Model)
	envString("O4T_OLLAMA_HOST", &c.Embeddings.OllamaHost)
	envInt("O4T_EMBED_BATCH_SIZE", &c.Embeddings.BatchSize)
	envString("O4T_RETRIEVAL_METHOD", &c.Retrieval.Method)
	envString("O4T_EMBED_STRATEGY", &c.Retrieval.Strategy)
	envFloat("O4T_BM25_WEIGHT", &c.Retrieval.BM25Weight)
	envInt("O4T_PER_QUESTION_K", &c.Retrieval.PerQuestionK)
	envInt("O4T_TOTAL_K", &c.Retrieval.TotalK)
	envString("O4T_EVIDENCE_MODE", &c.Evidence.Mode)
	envInt("O4T_MIN_CORPUS_RESULTS", &c.Evidence.MinCorpusResults)
	envString("GOOGLE_API_KEY", &c.Web.APIKey)
	envString("GOOGLE_CX", &c.Web.CX)
	envInt("O4T_WEB_NUM_RESULTS", &c.Web.NumResults)
	envString("O4T_LLM_PROVIDER", &c.LLM.Provider)
	envString("O4T_LLM_MODEL", &c.LLM.Model)
	envString("O4T_LLM_BASE_URL", &c.LLM.BaseURL)
	envString("OPENAI_API_KEY", &c.LLM.APIKey)
	envInt("O4T_PORT", &c.Server.Port)
	envString("O4T_LOG_LEVEL", &c.Server.LogLevel)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Retrieval.Method {
	case "lexical", "semantic", "hybrid":
	default:
		return o4terrors.Newf(o4terrors.ErrCodeUnknownMethod,
			"unknown retrieval method %q (want lexical, semantic, or hybrid)", c.Retrieval.Method)
	}

	switch c.Retrieval.Strategy {
	case "chunk_pool", "title_label", "truncate":
	default:
		return o4terrors.Newf(o4terrors.ErrCodeConfigInvalid,
			"unknown embedding strategy %q (want chunk_pool, title_label, or truncate)", c.Retrieval.Strategy)
	}

	switch c.Evidence.Mode {
	case "corpus", "web", "hybrid":
	default:
		return o4terrors.Newf(o4terrors.ErrCodeUnknownMode,
			"unknown evidence mode %q (want corpus, web, or hybrid)", c.Evidence.Mode)
	}

	if c.Retrieval.BM25Weight < 0 || c.Retrieval.BM25Weight > 1 {
		return o4terrors.Newf(o4terrors.ErrCodeConfigInvalid,
			"bm25_weight %.2f out of range [0,1]", c.Retrieval.BM25Weight)
	}

	if c.Retrieval.PerQuestionK <= 0 {
		return o4terrors.New(o4terrors.ErrCodeConfigInvalid, "per_question_k must be positive")
	}
	if c.Retrieval.TotalK <= 0 {
		return o4terrors.New(o4terrors.ErrCodeConfigInvalid, "total_k must be positive")
	}
	if c.Evidence.MinCorpusResults < 0 {
		return o4terrors.New(o4terrors.ErrCodeConfigInvalid, "min_corpus_results must be non-negative")
	}

	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return o4terrors.Newf(o4terrors.ErrCodeConfigInvalid,
			"unknown llm provider %q (want ollama or openai)", c.LLM.Provider)
	}

	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = f
		}
	}
}
