package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/app"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, container *app.Container) error {
	server := &http.Server{
		Addr:              container.Config.HTTPAddr,
		Handler:           container.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server listening", logger.Fields{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("http server shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
