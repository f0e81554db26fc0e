// Package cli wires the taskmaster command tree: the interactive client as
// the root command plus headless task commands and the development server.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/api"
	"github.com/sandeepkv93/taskmaster/internal/config"
	"github.com/sandeepkv93/taskmaster/internal/logging"
	"github.com/sandeepkv93/taskmaster/internal/tasks"
	"github.com/sandeepkv93/taskmaster/internal/update"
	"github.com/spf13/cobra"
)

var Version = "dev"

const defaultConfigFile = "taskmaster.toml"

// RemoteFactory builds the task store client for a resolved configuration.
type RemoteFactory func(cfg config.RuntimeConfig, logger *log.Logger) (tasks.Remote, error)

type Option func(*app)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *app) {
		if in != nil {
			a.in = in
		}
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.err = errOut
		}
	}
}

func WithRemoteFactory(f RemoteFactory) Option {
	return func(a *app) {
		if f != nil {
			a.newRemote = f
		}
	}
}

type app struct {
	in        io.Reader
	out       io.Writer
	err       io.Writer
	newRemote RemoteFactory
	flags     globalFlags
}

func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		in:        os.Stdin,
		out:       os.Stdout,
		err:       os.Stderr,
		newRemote: apiRemote,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:           "taskmaster",
		Short:         "Task Master - a small task list client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          a.runTUI,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.err)
	bindGlobalFlags(root.PersistentFlags(), &a.flags)

	root.AddCommand(a.listCmd())
	root.AddCommand(a.addCmd())
	root.AddCommand(a.editCmd())
	root.AddCommand(a.doneCmd())
	root.AddCommand(a.rmCmd())
	root.AddCommand(a.serveCmd())
	return root
}

// Execute runs the command tree with os.Args and reports errors on stderr.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "taskmaster: %v\n", err)
		return 1
	}
	return 0
}

func apiRemote(cfg config.RuntimeConfig, logger *log.Logger) (tasks.Remote, error) {
	return api.NewClient(api.ClientConfig{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout.Duration,
		Logger:  logger,
	})
}

// loadConfig layers defaults, the TOML file, TASKMASTER_* variables and
// flags, in that order.
func (a *app) loadConfig(cmd *cobra.Command) (config.RuntimeConfig, error) {
	path := a.flags.configPath
	if path == "" {
		path = strings.TrimSpace(os.Getenv("TASKMASTER_CONFIG"))
	}
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := config.LoadFile(path, config.DefaultRuntimeConfig())
	if err != nil {
		return cfg, err
	}
	cfg = config.RuntimeConfigFromEnv(cfg)
	cfg = a.flags.apply(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (a *app) stderrLogger(cfg config.RuntimeConfig) *log.Logger {
	opts := logOptions(cfg)
	opts.ReportTimestamp = false
	return logging.New(a.err, opts)
}

func logOptions(cfg config.RuntimeConfig) logging.Options {
	opts := logging.DefaultOptions()
	if cfg.LogLevel != "" {
		opts.Level = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		opts.Format = cfg.LogFormat
	}
	return opts
}

// runTUI starts the interactive client. The terminal belongs to Bubble Tea,
// so logs go to the configured file.
func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := logging.New(logFile, logOptions(cfg))
	remote, err := a.newRemote(cfg, logger)
	if err != nil {
		return err
	}

	programOpts := []tea.ProgramOption{tea.WithInput(a.in), tea.WithOutput(a.out)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	logger.Info("starting", "api", cfg.APIURL, "version", Version)
	program := tea.NewProgram(update.NewModel(remote, update.WithLogger(logger)), programOpts...)
	if _, err := program.Run(); err != nil {
		logger.Error("program exited", "err", err)
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
