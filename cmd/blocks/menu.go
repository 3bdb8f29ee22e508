package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a difficulty, play, repeat",
	Long: `Start blocks in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a difficulty.
After a match you return to the menu to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - High scores
  Q            - Quit

Examples:
  blocks menu
  blocks menu --db ./scores.db`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	base, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger("blocks", true)
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(base, logger)
	if store != nil {
		defer store.Close()
	}

	rt := runtimeConfig()
	current := base.Preset

	// Menu loop
	for {
		res, err := tui.RunMenu(rt, current)
		if err != nil {
			return err
		}
		rt = res.Config

		if res.Quit {
			return nil
		}

		if res.WantsScoreboard {
			if err := tui.RunScoreboard(store, rt.ScreenW, rt.ScreenH); err != nil {
				return err
			}
			continue
		}

		cfg := base
		config.ApplyPreset(&cfg, res.Preset)
		if err := cfg.Validate(); err != nil {
			return err
		}
		current = res.Preset

		err = tui.Run(tui.Options{
			Config:  cfg,
			Runtime: rt,
			Name:    playerName(cfg),
			Store:   store,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("error running match: %w", err)
		}
	}
}
