// Package pprofserver exposes the net/http/pprof handlers on a loopback-only
// port, kept off the public mux so profiling endpoints are never routable from
// outside the host.
package pprofserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	spoterrors "github.com/myrjola/spotfake/internal/errors"
)

const shutdownTimeout = 5 * time.Second

// Handle registers the pprof handlers on mux.
func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Launch starts a pprof server at the ipv6 loopback address ::1 and the given
// port (e.g. ":6060"). The server shuts down when ctx is cancelled.
func Launch(ctx context.Context, port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	Handle(mux)
	server := &http.Server{
		Addr:    fmt.Sprintf("[::1]%s", port),
		Handler: mux,
	}

	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server failed", spoterrors.SlogError(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server shutdown failed", spoterrors.SlogError(err))
		}
	}()
}
