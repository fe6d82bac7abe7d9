package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maxwell142857/cs5500-group6/internal/game"
	"github.com/maxwell142857/cs5500-group6/internal/history"
	"github.com/maxwell142857/cs5500-group6/internal/questions"
	"github.com/maxwell142857/cs5500-group6/internal/quota"
	"github.com/maxwell142857/cs5500-group6/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP game server",
	Long:  `Starts the REST API for playing games, with quota status, learned question rankings, game history, /healthz and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		if err := a.tracker.StartSnapshots(a.cfg.Quota.SnapshotInterval); err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.metrics)
		registerAllRoutes(srv, a)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info().Msg("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})

		log.Info().
			Str("version", Version).
			Int("port", port).
			Str("data_dir", a.cfg.DataDir).
			Int("models", len(a.tracker.Models())).
			Msg("akinator server starting")
		return g.Wait()
	},
}

// registerAllRoutes wires up all feature routes.
func registerAllRoutes(srv *server.Server, a *app) {
	r := srv.Router()

	game.RegisterRoutes(r, a.engine)
	quota.RegisterRoutes(r, a.tracker)
	history.RegisterRoutes(r, a.history)
	questions.RegisterRoutes(r, a.questions)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
