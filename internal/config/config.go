package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	LLM       LLMConfig       `mapstructure:"llm"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Screening ScreeningConfig `mapstructure:"screening"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	// Driver is postgres, mysql or memory.
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
}

type QdrantConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api-key"`
	Collection string `mapstructure:"collection"`
}

type GeminiConfig struct {
	APIKey     string        `mapstructure:"api-key"`
	Model      string        `mapstructure:"model"`
	EmbedModel string        `mapstructure:"embed-model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// Backend is gemini or vertex.
	Backend  string `mapstructure:"backend"`
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

type LLMConfig struct {
	MaxRPM         int           `mapstructure:"max-rpm"`
	BaseDelay      time.Duration `mapstructure:"base-delay"`
	MaxRetries     int           `mapstructure:"max-retries"`
	Backoff        time.Duration `mapstructure:"backoff"`
	MaxResumeChars int           `mapstructure:"max-resume-chars"`
	MaxJDChars     int           `mapstructure:"max-jd-chars"`
	MaxHRChars     int           `mapstructure:"max-hr-chars"`
	// RedisURL switches the rate limiter to a window shared through redis.
	RedisURL string `mapstructure:"redis-url"`
}

type GitHubConfig struct {
	APIURL      string        `mapstructure:"api-url"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache-ttl"`
	Concurrency int           `mapstructure:"concurrency"`
}

type StorageConfig struct {
	UploadPath  string `mapstructure:"upload-path"`
	DataDir     string `mapstructure:"data-dir"`
	MaxFileSize int64  `mapstructure:"max-file-size"`
}

type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	RetryMaxAttempts  int           `mapstructure:"retry-max-attempts"`
	RetryInitialDelay time.Duration `mapstructure:"retry-initial-delay"`
}

type ScreeningConfig struct {
	GitHubRequired bool   `mapstructure:"github-required"`
	CriteriaCount  int    `mapstructure:"criteria-count"`
	Seniority      string `mapstructure:"seniority"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

type setting struct {
	key   string
	env   string
	value any
}

var settings = []setting{
	{"server.port", "PORT", "3000"},
	{"server.env", "ENV", "development"},

	{"database.driver", "DB_DRIVER", "postgres"},
	{"database.host", "DB_HOST", "localhost"},
	{"database.port", "DB_PORT", "5432"},
	{"database.user", "DB_USER", "postgres"},
	{"database.password", "DB_PASSWORD", "postgres"},
	{"database.name", "DB_NAME", "resume_screener"},

	{"qdrant.enabled", "QDRANT_ENABLED", false},
	{"qdrant.url", "QDRANT_URL", "http://localhost:6334"},
	{"qdrant.api-key", "QDRANT_API_KEY", ""},
	{"qdrant.collection", "QDRANT_COLLECTION", "resume_screener_chunks"},

	{"gemini.api-key", "GEMINI_API_KEY", ""},
	{"gemini.model", "GEMINI_MODEL", "gemini-2.5-flash"},
	{"gemini.embed-model", "GEMINI_EMBED_MODEL", "text-embedding-004"},
	{"gemini.timeout", "GEMINI_TIMEOUT", "120s"},
	{"gemini.backend", "GEMINI_BACKEND", "gemini"},
	{"gemini.project", "GOOGLE_CLOUD_PROJECT", ""},
	{"gemini.location", "GOOGLE_CLOUD_LOCATION", "us-central1"},

	{"llm.max-rpm", "LLM_MAX_RPM", 8},
	{"llm.base-delay", "LLM_BASE_DELAY", "2s"},
	{"llm.max-retries", "LLM_MAX_RETRIES", 5},
	{"llm.backoff", "LLM_BACKOFF", "10s"},
	{"llm.max-resume-chars", "LLM_MAX_RESUME_CHARS", 12000},
	{"llm.max-jd-chars", "LLM_MAX_JD_CHARS", 20000},
	{"llm.max-hr-chars", "LLM_MAX_HR_CHARS", 8000},
	{"llm.redis-url", "LLM_REDIS_URL", ""},

	{"github.api-url", "GITHUB_API_URL", "https://api.github.com"},
	{"github.token", "GITHUB_TOKEN", ""},
	{"github.timeout", "GITHUB_TIMEOUT", "15s"},
	{"github.cache-ttl", "GITHUB_CACHE_TTL", "24h"},
	{"github.concurrency", "GITHUB_CONCURRENCY", 4},

	{"storage.upload-path", "UPLOAD_PATH", "./uploads"},
	{"storage.data-dir", "DATA_DIR", "./data"},
	{"storage.max-file-size", "MAX_FILE_SIZE", 10485760},

	{"worker.concurrency", "WORKER_CONCURRENCY", 3},
	{"worker.retry-max-attempts", "RETRY_MAX_ATTEMPTS", 3},
	{"worker.retry-initial-delay", "RETRY_INITIAL_DELAY", "2s"},

	{"screening.github-required", "GITHUB_REQUIRED", false},
	{"screening.criteria-count", "CRITERIA_COUNT", 6},
	{"screening.seniority", "SENIORITY", "mid"},

	{"log.json", "LOG_JSON", false},
	{"log.debug", "LOG_DEBUG", false},
}

// New returns a viper instance with every default and environment binding
// registered. Callers may bind flags onto it before calling Decode.
func New() (*viper.Viper, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.value)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", s.env, err)
		}
	}
	return v, nil
}

// Decode unmarshals a prepared viper instance into Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads an optional .env file and the environment. It falls back to
// defaults when the environment cannot be decoded.
func Load() *Config {
	cfg, err := LoadFile("")
	if err != nil {
		v, _ := New()
		cfg, _ = Decode(v)
	}
	return cfg
}

// LoadFile is Load with an optional YAML config file. Environment variables
// take precedence over the file.
func LoadFile(path string) (*Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is LoadFile with a hook that can bind command line flags before
// the file is read.
func LoadWith(path string, bind func(*viper.Viper) error) (*Config, error) {
	_ = godotenv.Load()

	v, err := New()
	if err != nil {
		return nil, err
	}
	if bind != nil {
		if err := bind(v); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return Decode(v)
}

func (c *Config) GetDatabaseDSN() string {
	switch c.Database.Driver {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	default:
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Database.Host,
			c.Database.Port,
			c.Database.User,
			c.Database.Password,
			c.Database.DBName,
		)
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
