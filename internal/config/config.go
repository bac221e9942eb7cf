// Package config resolves circlemap settings from environment variables and
// an optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// LLM providers understood by llm.NewModel.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

const maxConfigFileSize = 1 << 20

// Config holds all configuration values.
type Config struct {
	// SurrealDB contact memory
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Enrichment model
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AWSRegion       string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// HTTP server and client
	ServerPort string
	ServerURL  string

	// Analysis
	VocabularyFile    string
	MaxResults        int
	EnrichConcurrency int
	CacheDir          string
	CacheTTL          time.Duration
}

// Load reads configuration from environment variables.
func Load() Config {
	return resolve(koanf.New("."))
}

// LoadWithFile reads a YAML config file and then applies environment
// variables on top. Precedence: env, file, default. A missing file is not an
// error so callers can pass a conventional path unconditionally.
func LoadWithFile(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		data, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if data != nil {
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}
	return resolve(k), nil
}

// DefaultPath returns ~/.config/circlemap/config.yaml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "circlemap", "config.yaml")
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return data, nil
}

func resolve(k *koanf.Koanf) Config {
	get := func(key, env, def string) string {
		if val := os.Getenv(env); val != "" {
			return val
		}
		if k.Exists(key) {
			return k.String(key)
		}
		return def
	}

	return Config{
		SurrealDBURL:       get("surrealdb.url", "SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: get("surrealdb.namespace", "SURREALDB_NAMESPACE", "circlemap"),
		SurrealDBDatabase:  get("surrealdb.database", "SURREALDB_DATABASE", "contacts"),
		SurrealDBUser:      get("surrealdb.user", "SURREALDB_USER", "root"),
		SurrealDBPass:      get("surrealdb.pass", "SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: get("surrealdb.auth_level", "SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     strings.ToLower(get("llm.provider", "CIRCLEMAP_LLM_PROVIDER", ProviderOllama)),
		LLMModel:        get("llm.model", "CIRCLEMAP_LLM_MODEL", "llama3.2"),
		OllamaHost:      get("llm.ollama_host", "OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    get("llm.openai_api_key", "OPENAI_API_KEY", ""),
		AnthropicAPIKey: get("llm.anthropic_api_key", "ANTHROPIC_API_KEY", ""),
		AWSRegion:       get("llm.aws_region", "AWS_REGION", "us-east-1"),

		LogFile:  get("log.file", "CIRCLEMAP_LOG_FILE", "/tmp/circlemap.log"),
		LogLevel: parseLogLevel(get("log.level", "CIRCLEMAP_LOG_LEVEL", "INFO")),

		ServerPort: get("server.port", "CIRCLEMAP_SERVER_PORT", "8484"),
		ServerURL:  get("server.url", "CIRCLEMAP_SERVER_URL", "http://localhost:8484"),

		VocabularyFile:    get("analysis.vocabulary_file", "CIRCLEMAP_VOCABULARY", ""),
		MaxResults:        parseInt(get("analysis.max_results", "CIRCLEMAP_MAX_RESULTS", ""), 10),
		EnrichConcurrency: parseInt(get("enrich.concurrency", "CIRCLEMAP_ENRICH_CONCURRENCY", ""), 4),
		CacheDir:          get("enrich.cache_dir", "CIRCLEMAP_CACHE_DIR", "circlemap"),
		CacheTTL:          parseDuration(get("enrich.cache_ttl", "CIRCLEMAP_CACHE_TTL", ""), 7*24*time.Hour),
	}
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
