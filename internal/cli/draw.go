package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/secretsanta/internal/config"
	"github.com/KirkDiggler/secretsanta/internal/services/draw"
	"github.com/KirkDiggler/secretsanta/internal/services/messaging"
)

// errNotConfirmed is returned when the user declines the identity prompt
var errNotConfirmed = errors.New("draw cancelled")

// DrawOptions holds flags for the draw command.
type DrawOptions struct {
	*RootOptions
	Yes bool
}

// NewDrawCommand creates the draw command.
func NewDrawCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DrawOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "draw <name>",
		Short: "Reveal your recipient",
		Long: `Claims the participant with the given name, reveals who they give a gift
to and records that they have drawn. Each participant can draw once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFiles()...)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), startTimeout)
			defer cancel()

			repo, closeRepo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			coordinator, err := newCoordinator(cfg, repo, func(participantID string, err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: your draw was not saved: %v\n", err)
			})
			if err != nil {
				return err
			}
			// Close waits for the reveal write before the process exits
			defer coordinator.Close()

			if err := coordinator.Start(ctx); err != nil {
				return err
			}

			messagingService, err := newMessaging(ctx, cfg)
			if err != nil {
				return err
			}

			return runDraw(ctx, &drawRun{
				in:        cmd.InOrStdin(),
				out:       cmd.OutOrStdout(),
				draw:      coordinator,
				messaging: messagingService,
				name:      args[0],
				yes:       opts.Yes,
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the identity confirmation")

	return cmd
}

type drawRun struct {
	in        io.Reader
	out       io.Writer
	draw      draw.Service
	messaging messaging.Service
	name      string
	yes       bool
}

func runDraw(ctx context.Context, run *drawRun) error {
	found, err := run.draw.FindParticipant(ctx, &draw.FindParticipantInput{Name: run.name})
	if err != nil {
		return err
	}
	if found.HasDrawn {
		return fmt.Errorf("%s: %w", found.Participant.Name, draw.ErrAlreadyDrawn)
	}

	if !run.yes {
		fmt.Fprintf(run.out, "Draw as %s? [y/N] ", found.Participant.Name)
		answer, _ := bufio.NewReader(run.in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			return errNotConfirmed
		}
	}

	revealed, err := run.draw.Reveal(ctx, &draw.RevealInput{ParticipantID: found.Participant.ID})
	if err != nil {
		return err
	}

	// never fails, falls back to the fixed wish
	msg, _ := run.messaging.GetRevealMessage(ctx, &messaging.GetRevealMessageInput{
		RecipientName: revealed.Recipient.Name,
	})

	fmt.Fprintf(run.out, "%s, you are buying a gift for %s!\n", revealed.Giver.Name, revealed.Recipient.Name)
	if msg != nil && msg.Message != "" {
		fmt.Fprintf(run.out, "\n%s\n", msg.Message)
	}
	return nil
}
