package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"zipfit/internal/bootstrap"
	"zipfit/internal/config"
	httptransport "zipfit/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run serves until SIGINT or SIGTERM. Workers share the signal context, so
// they stop consuming before the connections are closed.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, bootstrap.Options{Messaging: true, StartWorkers: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	server := newServer(app.Config, httptransport.NewRouter(app))
	log.Printf("%s listening on %s (%s store)", app.Config.App.Name, server.Addr, app.Config.Database.Driver)
	return serve(ctx, server)
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.LLM.TimeoutSeconds+30) * time.Second,
	}
}

// serve runs server until it fails or ctx is done, then shuts it down with a
// 10 second grace period.
func serve(ctx context.Context, server *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	return nil
}
