package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

type Logging struct {
	JSONFormat bool   `yaml:"json_format" env:"DRIVESHARE_LOG_JSON"`
	Level      string `yaml:"level" env:"DRIVESHARE_LOG_LEVEL" env-default:"debug"`
}

type API struct {
	Port           int    `yaml:"port" env:"DRIVESHARE_PORT" env-default:"3000"`
	BaseURL        string `yaml:"base_url" env:"DRIVESHARE_BASE_URL"`
	MetricsEnabled bool   `yaml:"metrics_enabled" env:"DRIVESHARE_METRICS_ENABLED"`
}

type KV struct {
	Type     string         `yaml:"type" env:"DRIVESHARE_KV_TYPE" env-default:"memory"`
	Settings map[string]any `yaml:"settings"`
}

type Drive struct {
	Type     string         `yaml:"type" env:"DRIVESHARE_DRIVE_TYPE" env-default:"google"`
	Settings map[string]any `yaml:"settings"`
}

type Auth struct {
	GoogleClientID     string   `yaml:"google_client_id" env:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleClientSecret string   `yaml:"google_client_secret" env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleRedirectURL  string   `yaml:"google_redirect_url" env:"GOOGLE_OAUTH_REDIRECT_URI"`
	SessionSecret      string   `yaml:"session_secret" env:"SESSION_SECRET"`
	AdminKey           string   `yaml:"admin_key" env:"ADMIN_KEY"`
	AdminEmails        []string `yaml:"admin_emails" env:"ADMIN_EMAILS"`
	ServiceEmail       string   `yaml:"service_email" env:"SERVICE_EMAIL"`
}

type Share struct {
	// CacheTTLSeconds bounds how long an assembled folder view is served
	// without re-reading the link record, so a warm cache can outlive a
	// link's expiry by up to this long.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" env:"DRIVESHARE_CACHE_TTL" env-default:"3600"`
}

type Dashboard struct {
	LiveReload bool   `yaml:"live_reload" env:"DRIVESHARE_LIVE_RELOAD"`
	CSRFSecret string `yaml:"csrf_secret" env:"DRIVESHARE_CSRF_SECRET"`
}

type Config struct {
	Production bool      `yaml:"production" env:"DRIVESHARE_PRODUCTION"`
	Logging    Logging   `yaml:"logging"`
	API        API       `yaml:"api"`
	KV         KV        `yaml:"kv"`
	Drive      Drive     `yaml:"drive"`
	Auth       Auth      `yaml:"auth"`
	Share      Share     `yaml:"share"`
	Dashboard  Dashboard `yaml:"dashboard"`
}

// Load reads the YAML config at path, then applies environment overrides.
// An empty path loads from the environment alone.
func Load(path string) (Config, error) {
	var c Config
	if path == "" {
		if err := cleanenv.ReadEnv(&c); err != nil {
			return Config{}, err
		}
		return c, nil
	}
	if err := cleanenv.ReadConfig(path, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
