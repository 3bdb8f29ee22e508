package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-blocks/internal/platform/tui"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

var (
	flagLimit       int
	flagMatch       string
	flagInteractive bool
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the top local high scores, or the results of a lobby room.

Examples:
  blocks scores
  blocks scores --limit 20
  blocks scores --match 3f2a...    # results of one lobby room
  blocks scores -i                 # browse in the terminal UI
  blocks scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().StringVar(&flagMatch, "match", "", "Show results for a lobby room ID")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores in the terminal UI")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all local scores")
}

func runScores(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("error opening scores database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	switch {
	case flagInteractive:
		rt := runtimeConfig()
		return tui.RunScoreboard(store, rt.ScreenW, rt.ScreenH)

	case flagClear:
		if err := store.ClearScores(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Local scores cleared.")
		return nil

	case flagMatch != "":
		results, err := store.MatchResults(flagMatch)
		if err != nil {
			return fmt.Errorf("error retrieving results: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintf(out, "No results for room %s.\n", flagMatch)
			return nil
		}
		fmt.Fprintf(out, "Room %s\n\n", flagMatch)
		fmt.Fprintf(out, "  %-4s  %-16s  %-8s  %-5s  %s\n", "Rank", "Player", "Score", "Lives", "Time")
		fmt.Fprintf(out, "  %-4s  %-16s  %-8s  %-5s  %s\n", "----", "------", "-----", "-----", "----")
		for i, r := range results {
			lives := fmt.Sprint(r.Lives)
			if r.Eliminated {
				lives = "DEAD"
			}
			fmt.Fprintf(out, "  %-4d  %-16s  %-8d  %-5s  %ds\n", i+1, r.Player, r.Score, lives, r.Duration)
		}
		return nil
	}

	scores, err := store.TopScores(flagLimit)
	if err != nil {
		return fmt.Errorf("error retrieving scores: %w", err)
	}

	fmt.Fprintln(out, "High Scores")
	fmt.Fprintln(out)

	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Play 'blocks play' to set the first high score!")
		return nil
	}

	// Print header
	fmt.Fprintf(out, "  %-4s  %-16s  %-10s  %-7s  %s\n", "Rank", "Name", "Score", "Preset", "Date")
	fmt.Fprintf(out, "  %-4s  %-16s  %-10s  %-7s  %s\n", "----", "----", "-----", "------", "----")

	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Fprintf(out, "  %-4d  %-16s  %-10d  %-7s  %s\n", i+1, entry.Name, entry.Score, entry.Preset, dateStr)
	}

	stats, err := store.Stats()
	if err == nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Best: %d  Games: %d  Average: %.0f\n", stats.HighScore, stats.Games, stats.AvgScore)
	}
	return nil
}
