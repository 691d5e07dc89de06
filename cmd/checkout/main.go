package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/salepoint/cashier/internal/config"
	"github.com/salepoint/cashier/internal/events"
	"github.com/salepoint/cashier/internal/httpserver"
	"github.com/salepoint/cashier/internal/models"
	"github.com/salepoint/cashier/internal/repo"
	"github.com/salepoint/cashier/internal/service"
	"github.com/salepoint/cashier/pkg/db"
	"github.com/salepoint/cashier/pkg/logging"
	"github.com/salepoint/cashier/pkg/metrics"
	loggingmw "github.com/salepoint/cashier/pkg/middleware/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	m := metrics.NewServerMetrics(cfg.ServiceName)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.GET("/metrics", metrics.Handler())

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := gdb.AutoMigrate(&models.Product{}, &models.CartItem{}, &models.Payment{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var producer *events.KafkaProducer
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers)
		publisher = producer
	}

	r := &repo.GormRepo{
		DB: gdb,
	}

	cartService := &service.CartService{
		Repo:   r,
		Events: publisher,
	}
	paymentService := &service.PaymentService{
		Repo:   r,
		Events: publisher,
	}

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:    &httpserver.CartHTTP{Svc: cartService},
		PaymentHandler: &httpserver.PaymentHTTP{Svc: paymentService, CartSvc: cartService},
		JWTSecret:      cfg.JWTSecret,
	})

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("Starting checkout service on port %s...", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}

	sqlDB, err := gdb.DB()
	if err == nil {
		sqlDB.Close()
	}

	log.Println("Server stopped")
}
