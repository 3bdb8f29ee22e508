// blocks is a timed block-placement puzzle for the terminal, playable alone,
// over SSH, or against other players in a lobby.
//
// Usage:
//
//	blocks play              - Play a match
//	blocks menu              - Pick a difficulty interactively
//	blocks serve             - Start SSH server for remote play
//	blocks lobby             - Start a multiplayer lobby server
//	blocks scores            - Show local high scores
//
// Global flags:
//
//	--config <path>    - Load configuration from a YAML file
//	--seed <value>     - Set RNG seed for reproducible piece sequences
//	--db <path>        - Set database path (default: ~/.blocks/scores.db)
//	--log-level <lvl>  - debug, info, warn or error
//	--log-file <path>  - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Blocks - a timed block-placement puzzle for your terminal",
	Long: `Blocks is a grid puzzle against the clock. Place each piece before
the countdown runs out; fill a row or column to clear it and score.

Available commands:
  play     - Play a match
  menu     - Pick a difficulty interactively
  serve    - Start SSH server for remote play
  lobby    - Start a multiplayer lobby server
  scores   - View high scores

Examples:
  blocks play
  blocks play --preset hard
  blocks play --server localhost:9700 --name ada
  blocks lobby --listen :9700
  blocks serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lobbyCmd)
	rootCmd.AddCommand(scoresCmd)
}

// loadConfig reads the configuration for a command.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	return cfg, nil
}

// newLogger builds the process logger. Interactive commands own the
// terminal, so without --log-file their logs are discarded.
func newLogger(prefix string, interactive bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	case interactive:
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closeFn, nil
}

// openStore opens the score database, logging instead of failing so the
// game still works without it.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open scores database", "path", cfg.Storage.Path, "error", err)
		return nil
	}
	return store
}
