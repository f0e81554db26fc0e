package cli

import (
	"time"

	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	configPath string
	apiURL     string
	logLevel   string
	logFile    string
	logFormat  string
	timeout    time.Duration
	noAlt      bool
}

func bindGlobalFlags(fs *pflag.FlagSet, g *globalFlags) {
	fs.StringVarP(&g.configPath, "config", "c", "", "path to a TOML config file (default taskmaster.toml)")
	fs.StringVar(&g.apiURL, "api-url", "", "task API base url")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&g.logFile, "log-file", "", "log file for the interactive client")
	fs.StringVar(&g.logFormat, "log-format", "", "log format: text, json, logfmt")
	fs.DurationVar(&g.timeout, "timeout", 0, "per-request timeout, 0 for none")
	fs.BoolVar(&g.noAlt, "no-alt-screen", false, "render inline instead of the alternate screen")
}

// apply overlays only the flags the user set explicitly.
func (g globalFlags) apply(fs *pflag.FlagSet, cfg config.RuntimeConfig) config.RuntimeConfig {
	if fs.Changed("api-url") {
		cfg.APIURL = g.apiURL
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if fs.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if fs.Changed("timeout") {
		cfg.RequestTimeout = config.Duration{Duration: g.timeout}
	}
	if fs.Changed("no-alt-screen") {
		cfg.AltScreen = !g.noAlt
	}
	return cfg
}
