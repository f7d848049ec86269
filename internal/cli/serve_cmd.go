package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				app.Config.Server.Addr = addr
			}
			svc, err := app.Services(cmd.Context())
			if err != nil {
				return err
			}
			if svc.Handler == nil {
				return errors.New("serve: no HTTP handler wired")
			}

			lis, err := net.Listen("tcp", app.Config.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", app.Config.Server.Addr, err)
			}
			return serve(cmd.Context(), app, lis, svc.Handler)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

// serve runs srv on lis until ctx is canceled, then drains in-flight
// requests within the configured shutdown timeout.
func serve(ctx context.Context, app *App, lis net.Listener, h http.Handler) error {
	cfg := app.Config.Server
	srv := &http.Server{
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("server_started", "addr", lis.Addr().String(), "provider", app.Config.LLM.Provider, "model", app.Config.LLM.Model)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		app.Logger.Info("server_stopping")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
