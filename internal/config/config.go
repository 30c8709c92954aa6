package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Prompts override the built-in LLM prompt templates. Empty means default.
type Prompts struct {
	Design    string `toml:"design" yaml:"design"`
	Translate string `toml:"translate" yaml:"translate"`
	Elements  string `toml:"elements" yaml:"elements"`
	Review    string `toml:"review" yaml:"review"`
}

type LLMConfig struct {
	Provider       string `toml:"provider" yaml:"provider"`
	Model          string `toml:"model" yaml:"model"`
	EmbeddingModel string `toml:"embedding_model" yaml:"embedding_model"`
	APIKey         string `toml:"api_key" yaml:"api_key"`
	BaseURL        string `toml:"base_url" yaml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri" yaml:"uri"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
}

type CopyrightConfig struct {
	// ModelKey selects the embedding model and the cache subdirectory.
	ModelKey string `toml:"model_key" yaml:"model_key"`
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`
	// CorpusPath is read at startup only when no index cache is available.
	CorpusPath        string  `toml:"corpus_path" yaml:"corpus_path"`
	Translate         bool    `toml:"translate" yaml:"translate"`
	StructuredOutput  bool    `toml:"structured_output" yaml:"structured_output"`
	LLMReview         bool    `toml:"llm_review" yaml:"llm_review"`
	WatchIndex        bool    `toml:"watch_index" yaml:"watch_index"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	LinkBase          string  `toml:"link_base" yaml:"link_base"`
}

type ServerConfig struct {
	Port string `toml:"port" yaml:"port"`
}

type Config struct {
	LLM       LLMConfig       `toml:"llm" yaml:"llm"`
	Memgraph  MemgraphConfig  `toml:"memgraph" yaml:"memgraph"`
	Prompts   Prompts         `toml:"prompts" yaml:"prompts"`
	Copyright CopyrightConfig `toml:"copyright" yaml:"copyright"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "gpt-oss:latest",
			BaseURL:  "http://localhost:11434",
		},
		Copyright: CopyrightConfig{
			ModelKey:          "hash",
			CacheDir:          "cache",
			CorpusPath:        "data/bgg_data.csv",
			Translate:         true,
			StructuredOutput:  true,
			WatchIndex:        true,
			RequestsPerSecond: 2,
			LinkBase:          "https://boardgamegeek.com/boardgame/",
		},
		Server: ServerConfig{Port: "8080"},
	}
}

// Load reads a TOML or YAML file (by extension) on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	return cfg, nil
}

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "config/config.toml"

// Resolve loads path, or CONFIG_PATH, or DefaultPath, then applies env
// overrides. A missing file falls back to Default; a malformed one is an error.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: config file %s not found, using defaults", path)
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")

	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")

	setString(&c.Copyright.ModelKey, "COPYRIGHT_MODEL_KEY")
	setString(&c.Copyright.CacheDir, "COPYRIGHT_CACHE_DIR")
	setString(&c.Copyright.CorpusPath, "GAME_DATA_PATH")
	setBool(&c.Copyright.LLMReview, "COPYRIGHT_LLM_REVIEW")

	setString(&c.Server.Port, "PORT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
