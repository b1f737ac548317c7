// Command web serves the browser front end: a websocket stream per player
// and the session summary API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/observability"
	"github.com/tomz197/orbitclicker/internal/server"
	"github.com/tomz197/orbitclicker/internal/session"
	"github.com/tomz197/orbitclicker/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and ORBIT_* env when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalogs, err := session.LoadCatalogs(cfg.Game)
	if err != nil {
		logger.Fatal("loading catalogs", zap.Error(err))
	}
	hub := server.NewHub(cfg.Game, catalogs, logger)

	srv := &http.Server{
		Addr:              cfg.Web.Addr(),
		Handler:           web.NewHandler(hub, cfg.Web, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	logger.Info("starting web server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down")
	if !hub.Shutdown(10 * time.Second) {
		logger.Warn("sessions still running at exit")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
