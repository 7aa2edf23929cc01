package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/velotir/starship_registry/internal/blocklist"
	"github.com/velotir/starship_registry/internal/config"
	"github.com/velotir/starship_registry/internal/es"
	"github.com/velotir/starship_registry/internal/handlers"
	"github.com/velotir/starship_registry/internal/logging"
	"github.com/velotir/starship_registry/internal/middleware"
	"github.com/velotir/starship_registry/internal/mykafka"
	"github.com/velotir/starship_registry/internal/service"
	"github.com/velotir/starship_registry/internal/tokens"
	httpserver "github.com/velotir/starship_registry/internal/transport/http"
)

const shipIndex = "ships"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(cfg.REFRESH_SECRET, "REFRESH_SECRET")

	logger := logging.New(cfg.LOG_LEVEL)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(cfg.KAFKA_ADDRESS)
	} else {
		log.Println("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var searchHandler *handlers.SearchHandler
	var shipHandler = &handlers.ShipHandler{DB: db, Index: shipIndex, Producer: producer}
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		shipHandler.ES = esClient
		searchHandler = handlers.NewSearchHandler(esClient, shipIndex)
	} else {
		log.Println("ES_URL not set, ship search disabled")
	}

	issuer := &tokens.Issuer{
		AccessSecret:  []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
		AccessTTL:     cfg.ACCESS_TTL,
		RefreshTTL:    cfg.REFRESH_TTL,
	}
	bl := &blocklist.Store{DB: db}
	authSvc := &service.AuthService{DB: db, Issuer: issuer, Blocklist: bl}

	sweepCtx, stopSweep := context.WithCancel(logging.IntoContext(context.Background(), logger))
	go bl.Sweep(sweepCtx, time.Hour)

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), echomw.CORS())
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:      &handlers.AuthHandler{Svc: authSvc, Producer: producer},
		Users:     &handlers.UserHandler{DB: db, Producer: producer},
		Ships:     shipHandler,
		Search:    searchHandler,
		TokenAuth: middleware.NewTokenAuth(authSvc),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
