// Package file loads application configuration from a TOML file with
// environment variable overrides.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is the config file location relative to the home
// directory.
const DefaultConfigPath = ".kbpull/config.toml"

// Config is the full application configuration.
type Config struct {
	Jira       JiraConfig       `toml:"jira"`
	Confluence ConfluenceConfig `toml:"confluence"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	Qdrant     QdrantConfig     `toml:"qdrant"`
	Output     OutputConfig     `toml:"output"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
}

// JiraConfig configures the ticket source.
type JiraConfig struct {
	BaseURL string `toml:"base_url"`
	Email   string `toml:"email"`
	Token   string `toml:"token"`
}

// ConfluenceConfig configures the wiki source.
type ConfluenceConfig struct {
	BaseURL  string `toml:"base_url"`
	Token    string `toml:"token"`
	SpaceKey string `toml:"space_key"`
}

// OpenAIConfig configures LLM and embedding access.
type OpenAIConfig struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	FallbackModels []string `toml:"fallback_models"`
	EmbeddingModel string   `toml:"embedding_model"`
	Dimensions     int      `toml:"dimensions"`
}

// QdrantConfig configures the vector store.
type QdrantConfig struct {
	URL        string `toml:"url"`
	Collection string `toml:"collection"`
	VectorDim  int    `toml:"vector_dim"`
}

// OutputConfig configures generated file locations.
type OutputConfig struct {
	Dir           string `toml:"dir"`
	IssueFile     string `toml:"issue_file"`
	WikiFile      string `toml:"wiki_file"`
	SurvivorsFile string `toml:"survivors_file"`
}

// PipelineConfig tunes retrieval and ingestion behaviour.
type PipelineConfig struct {
	PageLimit        int    `toml:"page_limit"`
	FilterByKeywords bool   `toml:"filter_by_keywords"`
	UseAIKeywords    bool   `toml:"use_ai_keywords"`
	StopOnAIError    bool   `toml:"stop_on_ai_error"`
	ReferencePath    string `toml:"reference_path"`
	ChunkSize        int    `toml:"chunk_size"`
	ChunkOverlap     int    `toml:"chunk_overlap"`
}

// Load reads configuration from path, applying defaults first and
// environment overrides last, so the precedence is env > file >
// defaults. A missing file is not an error; env and defaults still
// apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, DefaultConfigPath)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Dimensions:     1536,
		},
		Qdrant: QdrantConfig{
			URL:        "http://localhost:6333",
			Collection: "kbpull",
			VectorDim:  1536,
		},
		Output: OutputConfig{
			Dir:           "out",
			IssueFile:     "issue.md",
			WikiFile:      "wiki.md",
			SurvivorsFile: "survivors.txt",
		},
		Pipeline: PipelineConfig{
			PageLimit:    100,
			ChunkSize:    1000,
			ChunkOverlap: 100,
		},
	}
}

// applyEnv overrides file values from the environment. Only set
// variables win; empty values are ignored.
func applyEnv(cfg *Config) {
	setString(&cfg.Jira.BaseURL, "KBPULL_JIRA_BASE_URL")
	setString(&cfg.Jira.Email, "KBPULL_JIRA_EMAIL")
	setString(&cfg.Jira.Token, "KBPULL_JIRA_TOKEN")

	setString(&cfg.Confluence.BaseURL, "KBPULL_CONFLUENCE_BASE_URL")
	setString(&cfg.Confluence.Token, "KBPULL_CONFLUENCE_TOKEN")
	setString(&cfg.Confluence.SpaceKey, "KBPULL_CONFLUENCE_SPACE_KEY")

	setString(&cfg.OpenAI.APIKey, "KBPULL_OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "KBPULL_OPENAI_BASE_URL")
	setString(&cfg.OpenAI.Model, "KBPULL_OPENAI_MODEL")
	setString(&cfg.OpenAI.EmbeddingModel, "KBPULL_OPENAI_EMBEDDING_MODEL")
	setInt(&cfg.OpenAI.Dimensions, "KBPULL_OPENAI_DIMENSIONS")
	if v := os.Getenv("KBPULL_OPENAI_FALLBACK_MODELS"); v != "" {
		parts := strings.Split(v, ",")
		models := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				models = append(models, p)
			}
		}
		cfg.OpenAI.FallbackModels = models
	}

	setString(&cfg.Qdrant.URL, "KBPULL_QDRANT_URL")
	setString(&cfg.Qdrant.Collection, "KBPULL_QDRANT_COLLECTION")
	setInt(&cfg.Qdrant.VectorDim, "KBPULL_QDRANT_VECTOR_DIM")

	setString(&cfg.Output.Dir, "KBPULL_OUTPUT_DIR")

	setInt(&cfg.Pipeline.PageLimit, "KBPULL_PAGE_LIMIT")
	setBool(&cfg.Pipeline.FilterByKeywords, "KBPULL_FILTER_BY_KEYWORDS")
	setBool(&cfg.Pipeline.UseAIKeywords, "KBPULL_USE_AI_KEYWORDS")
	setBool(&cfg.Pipeline.StopOnAIError, "KBPULL_STOP_ON_AI_ERROR")
	setString(&cfg.Pipeline.ReferencePath, "KBPULL_REFERENCE_PATH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// IssuePath returns the path for the rendered issue digest.
func (c *Config) IssuePath() string {
	return filepath.Join(c.Output.Dir, c.Output.IssueFile)
}

// WikiPath returns the path for the rendered wiki digest.
func (c *Config) WikiPath() string {
	return filepath.Join(c.Output.Dir, c.Output.WikiFile)
}

// SurvivorsPath returns the path for the surviving page ID list.
func (c *Config) SurvivorsPath() string {
	return filepath.Join(c.Output.Dir, c.Output.SurvivorsFile)
}
