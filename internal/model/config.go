package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the identity sync gateway's HTTP settings.
type ServerConfig struct {
	// Port is the TCP port to listen on. Overridden by $PORT.
	Port int `mapstructure:"port" yaml:"port"`

	// AllowedOrigin is the single browser origin permitted by CORS.
	AllowedOrigin string `mapstructure:"allowed_origin" yaml:"allowed_origin"`

	ReadTimeoutSec  int `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`

	// MaxBodyBytes caps request bodies on POST endpoints.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// AuthConfig holds bearer credential verification settings.
type AuthConfig struct {
	// AppEnv selects secret handling: "production" rejects missing or
	// placeholder secrets, anything else falls back to a dev secret.
	AppEnv string `mapstructure:"app_env" yaml:"app_env"`

	// Secret is the HS256 signing key shared with the identity provider.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// PublicKeyPath points to a PEM RSA public key. When set, RS256
	// credentials are accepted instead of HS256.
	PublicKeyPath string `mapstructure:"public_key_path" yaml:"public_key_path"`

	Issuer   string `mapstructure:"issuer" yaml:"issuer"`
	Audience string `mapstructure:"audience" yaml:"audience"`
}

// StorageConfig selects where the board and verified users live.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// MongoURI switches the gateway's user store to MongoDB when non-empty.
	// Overridden by $MONGODB_URI.
	MongoURI      string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
}

// GatewayConfig tells the terminal client where the sync gateway runs.
type GatewayConfig struct {
	URL        string `mapstructure:"url" yaml:"url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File receives logs while the terminal UI owns stdout/stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Gateway GatewayConfig `mapstructure:"gateway" yaml:"gateway"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfigDir returns ~/.config/teamboard, or "." when the home
// directory cannot be determined.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "teamboard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/teamboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := DefaultConfigDir()
	return &AppConfig{
		Server: ServerConfig{
			Port:            3000,
			AllowedOrigin:   "http://localhost:5173",
			ReadTimeoutSec:  10,
			WriteTimeoutSec: 10,
			MaxBodyBytes:    1 << 20,
		},
		Auth: AuthConfig{
			AppEnv: "development",
		},
		Storage: StorageConfig{
			Path:          filepath.Join(dir, "teamboard.db"),
			MongoDatabase: "teamboard",
		},
		Gateway: GatewayConfig{
			URL:        "http://localhost:3000",
			TimeoutSec: 30,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "board.log"),
		},
	}
}

// configValues flattens cfg into viper keys.
func configValues(cfg *AppConfig) map[string]any {
	return map[string]any{
		"server.port":              cfg.Server.Port,
		"server.allowed_origin":    cfg.Server.AllowedOrigin,
		"server.read_timeout_sec":  cfg.Server.ReadTimeoutSec,
		"server.write_timeout_sec": cfg.Server.WriteTimeoutSec,
		"server.max_body_bytes":    cfg.Server.MaxBodyBytes,
		"auth.app_env":             cfg.Auth.AppEnv,
		"auth.secret":              cfg.Auth.Secret,
		"auth.public_key_path":     cfg.Auth.PublicKeyPath,
		"auth.issuer":              cfg.Auth.Issuer,
		"auth.audience":            cfg.Auth.Audience,
		"storage.path":             cfg.Storage.Path,
		"storage.mongo_uri":        cfg.Storage.MongoURI,
		"storage.mongo_database":   cfg.Storage.MongoDatabase,
		"gateway.url":              cfg.Gateway.URL,
		"gateway.timeout_sec":      cfg.Gateway.TimeoutSec,
		"log.level":                cfg.Log.Level,
		"log.file":                 cfg.Log.File,
	}
}

// setDefaults registers every key with viper so that Unmarshal and
// AutomaticEnv see them even when the file omits them.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	for k, val := range configValues(cfg) {
		v.SetDefault(k, val)
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults apply. Environment variables
// override both: TEAMBOARD_<SECTION>_<KEY>, plus PORT, MONGODB_URI,
// APP_ENV and AUTH_SECRET for deployment compatibility.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v, defaultAppConfig())

	v.SetEnvPrefix("TEAMBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "TEAMBOARD_SERVER_PORT", "PORT")
	_ = v.BindEnv("storage.mongo_uri", "TEAMBOARD_STORAGE_MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("auth.app_env", "TEAMBOARD_AUTH_APP_ENV", "APP_ENV")
	_ = v.BindEnv("auth.secret", "TEAMBOARD_AUTH_SECRET", "AUTH_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	if cfg.Gateway.TimeoutSec <= 0 {
		cfg.Gateway.TimeoutSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	for k, val := range configValues(cfg) {
		v.Set(k, val)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
