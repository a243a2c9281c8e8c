package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/config"
	"github.com/Tiliavir/standup/internal/logging"
	"github.com/Tiliavir/standup/internal/storage"
)

var (
	configPath string
	logLevel   string
	verbose    bool

	// Set by PersistentPreRunE.
	baseDir  string
	cfg      config.Config
	logger   *slog.Logger
	closeLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "standup",
	Short: "standup – a daily standup journal for the terminal",
	Long: heredoc.Doc(`
		standup records what you did yesterday, what you plan today and what
		blocks you, and keeps it in sync with your standup service.

		Configuration lives in ~/.standup/config.json and can be overridden
		with STANDUP_* environment variables or a .env file.
	`),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { closeLog() },
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.standup/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also print logs to stderr")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(highlightCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(devserverCmd)
}

// setup loads the configuration and installs the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	baseDir, err = storage.BaseDir()
	if err != nil {
		return err
	}
	path := configPath
	if path == "" {
		path = config.FilePath(baseDir)
	}
	cfg, err = config.Load(baseDir, path)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	var extra io.Writer
	if verbose {
		extra = os.Stderr
	}
	logger, closeLog, err = logging.Setup(cfg.Log.Path, level, extra)
	if err != nil {
		return err
	}
	logger.Debug("command started", "command", cmd.CommandPath())
	return nil
}
