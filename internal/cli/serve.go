package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sandeepkv93/taskmaster/internal/devserver"
	"github.com/sandeepkv93/taskmaster/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development task API on sqlite",
		Long: `Serve the task REST contract from a local sqlite database.

Examples:
  taskmaster serve
  taskmaster serve --addr :8080 --db /tmp/tasks.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			logger := a.stderrLogger(cfg)

			repo, err := storage.OpenSQLite(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer repo.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gin.SetMode(gin.ReleaseMode)
			srv := devserver.New(repo, devserver.WithLogger(logger))
			logger.Info("serving tasks", "addr", cfg.ListenAddr, "db", cfg.DBPath)
			return srv.Run(ctx, cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (default from config)")
	return cmd
}
