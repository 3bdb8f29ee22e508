package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
)

var (
	flagListen     string
	flagMaxPlayers int
)

var lobbyCmd = &cobra.Command{
	Use:   "lobby",
	Short: "Start a multiplayer lobby server",
	Long: `Start a TCP lobby that serves pieces and a shared leaderboard.

Everyone connected to the lobby plays the same room and receives the same
piece sequence. When every player is eliminated or gone, the room's
results are saved and the next player to connect opens a new room.

The protocol is line based: PIECE, SCORE n, LIVES n, DIE, SCORES,
NICK name, HISCORES and HISCORE name:score.

Examples:
  blocks lobby
  blocks lobby --listen :9000 --max-players 8
  blocks lobby --seed 42`,
	Args: cobra.NoArgs,
	RunE: runLobby,
}

func init() {
	lobbyCmd.Flags().StringVar(&flagListen, "listen", "", "Address to listen on (default from config)")
	lobbyCmd.Flags().IntVar(&flagMaxPlayers, "max-players", -1, "Players per room, 0 for no limit (default from config)")
}

func runLobby(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Server.LobbyAddress = flagListen
	}
	if flagMaxPlayers >= 0 {
		cfg.Server.MaxPlayers = flagMaxPlayers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger("lobby", false)
	if err != nil {
		return err
	}
	defer closeLog()

	sc := multiplayer.DefaultServerConfig()
	sc.Address = cfg.Server.LobbyAddress
	sc.IdleTimeout = time.Duration(cfg.Server.LobbyIdleSecs) * time.Second
	sc.Coordinator = multiplayer.CoordinatorConfig{
		Seed:           flagSeed,
		StartLives:     cfg.Rules.Lives,
		HighScoreLimit: cfg.Server.HighScoreLimit,
		MaxPlayers:     cfg.Server.MaxPlayers,
	}

	server := multiplayer.NewServer(sc, logger)
	if store := openStore(cfg, logger); store != nil {
		defer store.Close()
		server.Coordinator().SetResultSaver(store)
		server.Coordinator().SetHighScoreStore(store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting blocks lobby on %s\n", sc.Address)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		return err
	}

	stats := server.Coordinator().Stats()
	logger.Info("lobby stopped", "rooms_finished", stats.RoomsFinished)
	return nil
}
