package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opjh/loruntime/internal/app"
	"github.com/opjh/loruntime/internal/config"
	"github.com/opjh/loruntime/internal/installer"
)

type App struct {
	Config     config.Config
	ConfigPath string
	Logger     *slog.Logger
}

func newApp(cmd *cobra.Command) (*App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Log = config.LoadLogConfigFromEnv(cfg.Log)

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log, verbose)
	slog.SetDefault(logger)

	return &App{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
	}, nil
}

func (a *App) runtime(source installer.SourceTree) (*app.Runtime, error) {
	return app.NewRuntime(a.Config, source, a.Logger)
}

func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if parsed, err := charmlog.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}
	if verbose {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: cfg.Timestamps,
		Prefix:          "loruntime",
	})
	handler.SetStyles(logStyles())
	return slog.New(handler)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
