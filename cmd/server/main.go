package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quangvu-dev/cakeshop/internal/config"
	"github.com/quangvu-dev/cakeshop/internal/handlers"
	"github.com/quangvu-dev/cakeshop/internal/logging"
	"github.com/quangvu-dev/cakeshop/internal/mykafka"
	"github.com/quangvu-dev/cakeshop/internal/service/feedback"
	"github.com/quangvu-dev/cakeshop/internal/service/notification"
	"github.com/quangvu-dev/cakeshop/internal/service/order"
	httpserver "github.com/quangvu-dev/cakeshop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	slog.SetDefault(logging.New(configuration.LOG_LEVEL))

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	notifier := &notification.Notifier{DB: db, Producer: prod}
	scheduler := &feedback.Scheduler{DB: db}
	orderSvc := order.New(db, notifier, scheduler)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		OrderHandler:   &handlers.OrderHandler{Svc: orderSvc},
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: prod},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.HTTP_PORT,
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

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
