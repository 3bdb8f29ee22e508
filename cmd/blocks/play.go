package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
)

var (
	flagPreset   string
	flagLives    int
	flagServer   string
	flagName     string
	flagPrefetch int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match",
	Long: `Start a match in the terminal.

Controls:
  Arrows/WASD  - Move cursor
  Enter/X      - Place piece
  E / Q        - Rotate clockwise / anticlockwise
  Space/R      - Swap current and next piece
  N            - New match (after game over)
  Esc/Ctrl+C   - Quit

Difficulty presets:
  easy   - 4 lives, scores are not ranked
  normal - 3 lives, 12 second turns
  hard   - 3 lives, 4.5 second turns

With --server the match joins a lobby: pieces come from the server and
your score, lives and elimination are shared with the room.

Examples:
  blocks play
  blocks play --preset easy
  blocks play --lives 5
  blocks play --server localhost:9700 --name ada`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().IntVar(&flagLives, "lives", 0, "Override starting lives")
	playCmd.Flags().StringVar(&flagServer, "server", "", "Lobby server address (host:port)")
	playCmd.Flags().StringVar(&flagName, "name", "", "Player name")
	playCmd.Flags().IntVar(&flagPrefetch, "prefetch", -1, "Pieces to request from the lobby up front")
}

// gameConfig applies play flags over the loaded configuration.
func gameConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}

	presetName := string(cfg.Preset)
	if cmd.Flags().Changed("preset") {
		presetName = flagPreset
	}
	preset, err := config.ParsePreset(presetName)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)

	if flagLives > 0 {
		cfg.Rules.Lives = flagLives
	}
	if flagServer != "" {
		cfg.Multiplayer.Server = flagServer
	}
	if flagName != "" {
		cfg.Multiplayer.Name = flagName
	}
	if flagPrefetch >= 0 {
		cfg.Multiplayer.Prefetch = flagPrefetch
	}
	cfg.Multiplayer.Name = playerName(cfg)

	return cfg, cfg.Validate()
}

// playerName falls back to the login name.
func playerName(cfg config.Config) string {
	if cfg.Multiplayer.Name != "" {
		return cfg.Multiplayer.Name
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "player"
}

// runtimeConfig sizes the UI from the terminal.
func runtimeConfig() core.RuntimeConfig {
	rt := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rt.ScreenW = w
		rt.ScreenH = h
	}
	rt.Seed = flagSeed
	return rt
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := gameConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger("blocks", true)
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := tui.Options{
		Config:  cfg,
		Runtime: runtimeConfig(),
		Name:    cfg.Multiplayer.Name,
		Store:   store,
		Logger:  logger,
	}

	if cfg.Multiplayer.Server != "" {
		client, err := dialLobby(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Lobby = client
	}

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("error running match: %w", err)
	}
	return nil
}

// dialLobby connects to the configured lobby server.
func dialLobby(ctx context.Context, cfg config.Config, logger *log.Logger) (*multiplayer.Client, error) {
	cc := multiplayer.DefaultClientConfig()
	cc.Address = cfg.Multiplayer.Server
	cc.Name = cfg.Multiplayer.Name
	cc.Prefetch = cfg.Multiplayer.Prefetch
	cc.Seed = flagSeed
	if d := cfg.PollInterval(); d > 0 {
		cc.PollInterval = d
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := multiplayer.Dial(dialCtx, cc, logger.WithPrefix("lobby"))
	if err != nil {
		return nil, fmt.Errorf("cannot join lobby %s: %w", cc.Address, err)
	}
	return client, nil
}
