package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coupon-studio/internal/repository"
	"coupon-studio/internal/server"
	"coupon-studio/internal/service"
	"coupon-studio/pkg/config"
	"coupon-studio/pkg/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	var couponRepo repository.CouponRepository
	var redemptionRepo repository.RedemptionRepository

	switch cfg.StoreDriver {
	case "memory":
		// volatile store for local development
		couponRepo = repository.NewMemoryCouponRepository()
		redemptionRepo = repository.NewMemoryRedemptionRepository()
		logger.Info("using in-memory store")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		mongoDB, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := mongoDB.Disconnect(context.Background()); err != nil {
				logger.Error("error disconnecting from MongoDB", zap.Error(err))
			}
		}()
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

		couponRepo = repository.NewCouponRepository(mongoDB.Database)
		redemptionRepo = repository.NewRedemptionRepository(mongoDB.Database)
	}

	svc := service.NewCouponService(couponRepo, redemptionRepo, logger)
	router := server.New(svc, logger).Router()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
