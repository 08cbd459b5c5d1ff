package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string        `yaml:"env" env:"ENV" env-default:"local" json:"-"`
	Storage    StorageConfig `yaml:"storage" json:"-"`
	HTTPServer HTTPServer    `yaml:"http_server" json:"-"`
	App        AppConfig     `yaml:"app" json:"app"`
	Gateway    GatewayConfig `yaml:"gateway" json:"gateway"`
	Media      MediaConfig   `yaml:"media" json:"media"`
}

type StorageConfig struct {
	// Driver selects the backend: "sqlite" or "postgres".
	Driver      string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite" json:"-"`
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"whapi-bridge.db" json:"-"`
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL" json:"-"`
}

type AppConfig struct {
	// BaseURL is the public URL of this service, used to resolve relative
	// attachment paths into absolute media URLs on outbound sends.
	BaseURL string `yaml:"base_url" env:"APP_BASE_URL" json:"base_url"`
	// APIKey guards the administrative endpoints (channels, outgoing messages).
	APIKey string `yaml:"api_key" env:"APP_API_KEY" env-required:"true" json:"-"`
	// DefaultCountryCode replaces a leading "0" when normalizing phone
	// numbers into WhatsApp IDs.
	DefaultCountryCode string `yaml:"default_country_code" env-default:"27" json:"default_country_code"`
}

type GatewayConfig struct {
	BaseURL string        `yaml:"base_url" env:"GATEWAY_BASE_URL" env-default:"https://gate.whapi.cloud" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s" json:"timeout"`
}

type MediaConfig struct {
	// Backend selects where fetched media bytes are stored: "disk" or "s3".
	Backend string `yaml:"backend" env:"MEDIA_BACKEND" env-default:"disk" json:"backend"`
	Dir     string `yaml:"dir" env:"MEDIA_DIR" env-default:"files" json:"dir"`

	S3 S3Config `yaml:"s3" json:"-"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" json:"-"`
	Region    string `yaml:"region" env:"S3_REGION" json:"-"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT" json:"-"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY" json:"-"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY" json:"-"`
	BaseURL   string `yaml:"base_url" env:"S3_BASE_URL" json:"-"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8082" json:"-"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s" json:"-"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s" json:"-"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config %s", err)
	}

	return &cfg
}
