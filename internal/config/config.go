package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode   `mapstructure:"DS_MODE"`
	Port string `mapstructure:"DS_PORT"`

	GCPProjectID string `mapstructure:"DS_GCP_PROJECT"`
	GCPLocation  string `mapstructure:"DS_GCP_LOCATION"`
	ModelName    string `mapstructure:"DS_MODEL_NAME"`
	ImageModel   string `mapstructure:"DS_IMAGE_MODEL"`

	StorageBackend string `mapstructure:"DS_STORAGE_BACKEND"` // "memory" or "firestore"
	UseMockAI      bool   `mapstructure:"DS_USE_MOCK_AI"`

	AuthSecret string `mapstructure:"DS_AUTH_SECRET"`

	DreamCacheTTL time.Duration `mapstructure:"DS_DREAM_CACHE_TTL"`
	ListCacheTTL  time.Duration `mapstructure:"DS_LIST_CACHE_TTL"`

	LimitChat      int `mapstructure:"DS_LIMIT_CHAT"`
	LimitExtract   int `mapstructure:"DS_LIMIT_EXTRACT"`
	LimitInterpret int `mapstructure:"DS_LIMIT_INTERPRET"`
	LimitDescribe  int `mapstructure:"DS_LIMIT_DESCRIBE"`
	LimitImage     int `mapstructure:"DS_LIMIT_IMAGE"`
}

// QuotaLimits assembles the per-action limits map the limiter consumes.
func (c *Config) QuotaLimits() map[domain.ActionType]int {
	return map[domain.ActionType]int{
		domain.ActionChat:      c.LimitChat,
		domain.ActionExtract:   c.LimitExtract,
		domain.ActionInterpret: c.LimitInterpret,
		domain.ActionDescribe:  c.LimitDescribe,
		domain.ActionImage:     c.LimitImage,
	}
}

// Load reads .env (when present) and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DS_MODE", string(ModeLocal))
	v.SetDefault("DS_PORT", "8080")
	v.SetDefault("DS_GCP_LOCATION", "us-central1")
	v.SetDefault("DS_MODEL_NAME", "gemini-2.5-flash")
	v.SetDefault("DS_IMAGE_MODEL", "imagen-3.0-generate-002")
	v.SetDefault("DS_STORAGE_BACKEND", "memory")
	v.SetDefault("DS_USE_MOCK_AI", true)
	v.SetDefault("DS_AUTH_SECRET", "")
	v.SetDefault("DS_DREAM_CACHE_TTL", "5m")
	v.SetDefault("DS_LIST_CACHE_TTL", "2m")
	v.SetDefault("DS_LIMIT_CHAT", 30)
	v.SetDefault("DS_LIMIT_EXTRACT", 10)
	v.SetDefault("DS_LIMIT_INTERPRET", 20)
	v.SetDefault("DS_LIMIT_DESCRIBE", 10)
	v.SetDefault("DS_LIMIT_IMAGE", 5)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch strings.ToLower(string(cfg.Mode)) {
	case "gcp":
		cfg.Mode = ModeGCP
	default:
		cfg.Mode = ModeLocal
	}

	if cfg.Mode == ModeGCP {
		if cfg.GCPProjectID == "" {
			return nil, fmt.Errorf("DS_GCP_PROJECT must be set in gcp mode")
		}
		if cfg.AuthSecret == "" {
			return nil, fmt.Errorf("DS_AUTH_SECRET must be set in gcp mode")
		}
	}

	return &cfg, nil
}
