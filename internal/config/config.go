package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AuthConfig struct {
	// AllowSelfServiceAdmin permits choosing role=admin at self registration.
	// Off by default: production deployments must opt in explicitly.
	AllowSelfServiceAdmin bool `mapstructure:"allow_self_service_admin"`
	BcryptCost            int  `mapstructure:"bcrypt_cost"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// StorageConfig selects the client-side data source: "api" talks to the
// backend, "snapshot" uses local whole-collection JSON files.
type StorageConfig struct {
	Mode        string `mapstructure:"mode"`
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

// ClientConfig holds the CLI-side settings.
type ClientConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	SessionFile string `mapstructure:"session_file"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	App      AppSubConfig   `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Client   ClientConfig   `mapstructure:"client"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// defaults
		v.SetDefault("server.address", "0.0.0.0")
		v.SetDefault("server.port", 8080)
		v.SetDefault("jwt.expire_hours", 24)
		v.SetDefault("auth.allow_self_service_admin", false)
		v.SetDefault("auth.bcrypt_cost", 12)
		v.SetDefault("app.page_size", 10)
		v.SetDefault("storage.mode", "api")
		v.SetDefault("storage.snapshot_dir", "data/snapshots")
		v.SetDefault("client.base_url", "http://localhost:8080/api")
		v.SetDefault("client.session_file", "data/session.json")

		// environment overrides, e.g. PARC_SERVER_PORT=9000
		v.SetEnvPrefix("PARC")
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
