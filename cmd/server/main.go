package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"planboard/internal/auth"
	"planboard/internal/config"
	"planboard/internal/filestore"
	"planboard/internal/identity"
	"planboard/internal/repositories"
	"planboard/internal/scheduler"
	"planboard/internal/server"
	"planboard/internal/services"
	"planboard/pkg/db/postgres"
	"planboard/pkg/db/redis"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}

	var cache identity.NameCache
	if cfg.Redis.Host != "" {
		store, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		log.Info("connected to redis")
		cache = store
	} else {
		log.Warn("REDIS_HOST not set, name cache disabled")
	}

	repos := repositories.New(db)
	files := filestore.New(cfg.Files)
	names := identity.NewResolver(repos.Users, cache)
	gate := auth.NewGate(repos.Users)

	planService := services.NewPlanService(repos, files, names)
	submissionService := services.NewSubmissionService(repos, files, names)

	checker := scheduler.NewChecker(repos.Plans, cfg.CheckInterval)
	go checker.Run(ctx)

	e := server.New(planService, submissionService, gate).Echo()
	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Infof("listening on %s", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received signal %s, shutting down", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
