package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"quote-service/internal/config"
	"quote-service/internal/llm"
	qHnd "quote-service/internal/quote/handler"
	"quote-service/internal/supplier"
	"quote-service/internal/websearch"
	serverhttp "quote-service/server/http"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sqlx.Connect("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("database connect")
		}
		defer db.Close()
	} else {
		logger.Warn().Msg("DATABASE_URL not set, supplier sedimentation disabled")
	}

	store := supplier.NewStore(db, logger)
	if err := store.EnsureSchema(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("database schema")
	}

	oracle := llm.New(cfg, logger)
	search := websearch.New(cfg.TavilyKey, logger)
	h := qHnd.New(cfg, logger, oracle.Call, store, search)

	r := serverhttp.NewRouter(cfg, logger, h)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
