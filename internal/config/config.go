package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const envPrefix = "TASKMASTER_"

var ErrInvalidConfig = errors.New("config: invalid configuration")

type RuntimeConfig struct {
	APIURL         string   `toml:"api_url"`
	RequestTimeout Duration `toml:"request_timeout"`
	LogFile        string   `toml:"log_file"`
	LogLevel       string   `toml:"log_level"`
	LogFormat      string   `toml:"log_format"`
	DBPath         string   `toml:"db_path"`
	ListenAddr     string   `toml:"listen_addr"`
	AltScreen      bool     `toml:"alt_screen"`
}

// Duration decodes TOML strings such as "5s". Zero disables the timeout.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" || raw == "0" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		APIURL:     "http://localhost:5000",
		LogFile:    "taskmaster.log",
		LogLevel:   "info",
		LogFormat:  "text",
		DBPath:     "taskmaster.db",
		ListenAddr: "127.0.0.1:5000",
		AltScreen:  true,
	}
}

// LoadFile overlays the TOML file at path onto base. Keys missing from the
// file keep base's values. A missing file is not an error.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	cfg := base
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return base, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return base, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString(envPrefix + "API_URL"); ok {
		cfg.APIURL = v
	}
	if v, ok := getEnvDuration(envPrefix + "REQUEST_TIMEOUT"); ok && v >= 0 {
		cfg.RequestTimeout = Duration{v}
	}
	if v, ok := getEnvString(envPrefix + "LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString(envPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString(envPrefix + "LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := getEnvString(envPrefix + "DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString(envPrefix + "LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := getEnvBool(envPrefix + "ALT_SCREEN"); ok {
		cfg.AltScreen = v
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an http(s) url", ErrInvalidConfig, c.APIURL)
	}
	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
