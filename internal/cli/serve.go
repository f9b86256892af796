package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/aretw0/intake/pkg/adapters/telegram"
)

// Transports accepted by Serve.
const (
	TransportTelegram = "telegram"
	TransportHTTP     = "http"
	TransportBoth     = "both"
)

// ParseTransport validates a --transport value and reports which
// transports it enables.
func ParseTransport(s string) (useTelegram, useHTTP bool, err error) {
	switch s {
	case TransportTelegram:
		return true, false, nil
	case TransportHTTP:
		return false, true, nil
	case TransportBoth:
		return true, true, nil
	}
	return false, false, fmt.Errorf("unknown transport %q, supported: telegram, http, both", s)
}

// HTTPHandler builds the HTTP API for app.
func (app *App) HTTPHandler() http.Handler {
	return httpAdapter.NewHandler(app.Dispatcher.Dispatch, app.Form,
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithStreams(app.Streams),
		httpAdapter.WithMetricsHandler(app.Metrics.Handler()),
	)
}

// Serve runs the selected transports until ctx is done or one of them fails.
func (app *App) Serve(ctx context.Context, useTelegram, useHTTP bool, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	if useTelegram {
		if app.Bot == nil {
			return errors.New("telegram transport selected but no bot is connected")
		}
		t := telegram.NewTransport(app.Bot, app.Dispatcher, telegram.WithLogger(app.Logger))
		g.Go(func() error {
			return t.Run(ctx)
		})
	}

	if useHTTP {
		srv := &http.Server{
			Addr:              addr,
			Handler:           app.HTTPHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			app.Logger.Info("HTTP server listening", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("could not stop HTTP server gracefully: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
