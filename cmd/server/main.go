package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/skvortsovm/shop-backend/internal/auth"
	"github.com/skvortsovm/shop-backend/internal/cart"
	"github.com/skvortsovm/shop-backend/internal/catalog"
	"github.com/skvortsovm/shop-backend/internal/config"
	"github.com/skvortsovm/shop-backend/internal/db"
	"github.com/skvortsovm/shop-backend/internal/events"
	"github.com/skvortsovm/shop-backend/internal/httpserver"
	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/order"
	"github.com/skvortsovm/shop-backend/internal/user"
)

const cartReapInterval = 10 * time.Minute

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)
	rootCtx, rootCancel := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer rootCancel()

	initCtx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := models.AutoMigrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	var index *catalog.Index
	if cfg.ESURL != "" {
		index, err = catalog.NewIndex(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			// Search degrades to SQL; the shop stays up.
			logger.Warn("elasticsearch unavailable", "error", err)
			index = nil
		}
	}

	hub := events.NewHub(logger)
	go hub.Run()

	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		defer kafkaPub.Close()
	}
	fanout := &events.Fanout{Hub: hub, Kafka: kafkaPub, Log: logger}

	authSvc := auth.NewService(auth.NewGormStore(gdb), cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	userSvc := user.NewService(user.NewGormStore(gdb))
	cartSvc := cart.NewService(cart.NewGormStore(gdb))
	orderSvc := order.NewService(order.NewGormStore(gdb), fanout, order.NewFlag(rdb))
	catalogSvc := catalog.NewService(catalog.NewGormStore(gdb), index)

	cartSvc.StartReaper(rootCtx, cartReapInterval)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, CartSvc: cartSvc},
		UserHandler:    &httpserver.UserHTTP{Svc: userSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		Hub:            hub,
		AccessSecret:   cfg.JWTAccessSecret,
	})

	go func() {
		addr := ":" + strconv.Itoa(cfg.ServerPort)
		logger.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
	logger.Info("shutting down")
	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
