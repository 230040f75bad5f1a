package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ensurax-tui/internal/api"
	"ensurax-tui/internal/app"
	"ensurax-tui/internal/chat"
	"ensurax-tui/internal/config"
	"ensurax-tui/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagAPIURL  string
	flagConfig  string
	flagMock    bool
	flagVerbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ensurax-tui",
	Short: "EnsuraX operational dashboard for the terminal",
	Long: `ensurax-tui renders the EnsuraX insurance operational dashboard in the
terminal: portfolio KPIs, claims and risk breakdowns, operations SLAs and a
conversational assistant, all backed by the EnsuraX analytics API.

Run against a local backend with no flags, or point --api-url elsewhere.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "EnsuraX API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config.yaml")
	rootCmd.PersistentFlags().BoolVar(&flagMock, "mock", false, "answer assistant questions locally without a backend")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
}

func runDashboard() error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if strings.TrimSpace(flagAPIURL) != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagMock {
		cfg.Chat.Mock = true
	}

	store, err := storage.NewStore(cfg.UI.StateDir)
	if err != nil {
		return fmt.Errorf("initialize state storage: %w", err)
	}

	logger, err = buildLogger(cfg, store.StateDir())
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)

	var asker chat.Asker = client
	if cfg.Chat.Mock {
		asker = chat.MockAsker{}
		logger.Info("assistant running in mock mode")
	}
	session := chat.NewSession(asker, store, logger)

	model := app.NewModelWithOptions(client, store, session, logger, app.ModelOptions{
		Theme:              cfg.UI.Theme,
		HealthPollInterval: cfg.API.HealthPollInterval,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

// buildLogger writes structured logs to a file because the terminal itself
// belongs to the TUI.
func buildLogger(cfg *config.Config, stateDir string) (*zap.Logger, error) {
	logPath := strings.TrimSpace(cfg.Logging.File)
	if logPath == "" {
		logPath = filepath.Join(stateDir, "ensurax-tui.log")
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{logPath}
	zapCfg.ErrorOutputPaths = []string{logPath}

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Logging.Level); err != nil {
		level = zapcore.InfoLevel
	}
	if flagVerbose {
		level = zapcore.DebugLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
