package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/secretsanta/internal/config"
	"github.com/KirkDiggler/secretsanta/internal/handlers/api"
	"github.com/KirkDiggler/secretsanta/internal/handlers/discord"
)

const (
	startTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the draw coordinator and its HTTP surface",
		Long: `Joins the shared exchange document, initializing it if nobody has yet,
and serves the board, reveals and live updates over HTTP until interrupted.
A Discord bot is started alongside when DISCORD_TOKEN is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides SANTA_LISTEN_ADDR)")

	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.envFiles()...)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.ListenAddr = opts.Addr
	}

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	coordinator, err := newCoordinator(cfg, repo, func(participantID string, err error) {
		logger.Errorf("Reveal of %s was not persisted: %v", participantID, err)
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := coordinator.Close(); err != nil {
			logger.Warningf("Error closing coordinator: %v", err)
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	err = coordinator.Start(startCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to start coordinator: %w", err)
	}

	messagingService, err := newMessaging(ctx, cfg)
	if err != nil {
		return err
	}

	handler, err := api.New(&api.Config{
		DrawService:      coordinator,
		MessagingService: messagingService,
	})
	if err != nil {
		return err
	}

	router := gin.Default()
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("Serving exchange %s on %s", cfg.ExchangePath, cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if cfg.Discord.Token != "" {
		bot, err := discord.New(&discord.Config{
			Token:            cfg.Discord.Token,
			ApplicationID:    cfg.Discord.ApplicationID,
			GuildID:          cfg.Discord.GuildID,
			DrawService:      coordinator,
			MessagingService: messagingService,
		})
		if err != nil {
			return err
		}
		if err := bot.Start(); err != nil {
			return err
		}
		defer func() {
			if err := bot.Stop(); err != nil {
				logger.Warningf("Error stopping Discord bot: %v", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Infof("Shutting down...")
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	// SSE streams stay open until the coordinator closes their watchers
	if err := coordinator.Close(); err != nil {
		logger.Warningf("Error closing coordinator: %v", err)
	}
	return srv.Shutdown(shutdownCtx)
}
