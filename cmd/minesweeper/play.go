package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravitas-games/minesweeper/internal/config"
	"github.com/gravitas-games/minesweeper/internal/console"
	"github.com/gravitas-games/minesweeper/internal/game"
	"github.com/gravitas-games/minesweeper/internal/minefield"
)

var (
	playRows   int
	playCols   int
	playMines  int
	playSeed   uint64
	playLayout string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Plays a board in the terminal. Board size and mine count default to
the game section of the configuration.

Examples:
  minesweeper play --rows 9 --cols 9 --mines 10
  minesweeper play --seed 7
  minesweeper play --rows 3 --cols 3 --layout "2,2"

A --layout board is dealt once. Boards dealt after a loss or reset are
random, or follow --seed when it is given.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playRows, "rows", 0, "board rows (default from config)")
	playCmd.Flags().IntVar(&playCols, "cols", 0, "board columns (default from config)")
	playCmd.Flags().IntVar(&playMines, "mines", 0, "mine count (default from config)")
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "seed for reproducible boards")
	playCmd.Flags().StringVar(&playLayout, "layout", "", `fixed mine positions, e.g. "0,1;2,3"`)
}

func runPlay(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	gc := cfg.Game
	if flags.Changed("rows") {
		gc.Rows = playRows
	}
	if flags.Changed("cols") {
		gc.Cols = playCols
	}
	if flags.Changed("mines") {
		gc.Mines = playMines
	}

	src := minefield.NewSource()
	if flags.Changed("seed") {
		src = minefield.NewSeededSource(playSeed)
	}

	var placer minefield.Placer
	if playLayout != "" {
		coords, err := console.ParseLayout(playLayout)
		if err != nil {
			return err
		}
		if !flags.Changed("mines") {
			gc.Mines = len(coords)
		}
		if gc.Mines != len(coords) {
			return fmt.Errorf("layout has %d mines but --mines is %d", len(coords), gc.Mines)
		}
		placer = layoutPlacer(gc, coords, src)
	} else {
		placer = gc.Placer(src)
	}

	s, err := game.NewSession(gc.Session(), game.WithPlacer(placer), game.WithLogger(logger))
	if err != nil {
		return err
	}
	return console.Run(cmd.InOrStdin(), cmd.OutOrStdout(), s, logger)
}

// layoutPlacer deals coords once, then falls back to the configured placer
func layoutPlacer(gc config.GameConfig, coords []minefield.Coord, src minefield.Source) minefield.Placer {
	return &minefield.SequencePlacer{
		First: minefield.FixedPlacer{Mines: coords},
		Rest:  gc.Placer(src),
	}
}
