package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/secretsanta/internal/config"
	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/repositories/exchange"
)

const statusTimeout = 10 * time.Second

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who has drawn",
		Long: `Reads the exchange document once and prints every participant with
their draw status. Never initializes the document and never shows who
anyone drew.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.envFiles()...)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
			defer cancel()

			repo, closeRepo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			snapshot, err := repo.GetSnapshot(ctx, &exchange.GetSnapshotInput{Path: cfg.ExchangePath})
			if err != nil {
				return err
			}

			return renderStatus(cmd.OutOrStdout(), cfg.ExchangePath, models.NewBoard(snapshot))
		},
	}
}

// renderStatus writes the board as plain text
func renderStatus(w io.Writer, path string, board *models.Board) error {
	if board.Total == 0 {
		_, err := fmt.Fprintf(w, "exchange %s has not been set up yet\n", path)
		return err
	}

	if _, err := fmt.Fprintf(w, "exchange: %s\nrevision: %d\n\n", path, board.Revision); err != nil {
		return err
	}

	for _, entry := range board.Entries {
		mark := " "
		if entry.HasDrawn {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "  [%s] %s\n", mark, entry.Name); err != nil {
			return err
		}
	}

	var err error
	if board.Drawn == board.Total {
		_, err = fmt.Fprintf(w, "\neveryone has drawn (%d of %d)\n", board.Drawn, board.Total)
	} else {
		_, err = fmt.Fprintf(w, "\n%d of %d have drawn\n", board.Drawn, board.Total)
	}
	return err
}
