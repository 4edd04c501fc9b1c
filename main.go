package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/fuchsia74/assistant-gateway/common"
	"github.com/fuchsia74/assistant-gateway/common/config"
	"github.com/fuchsia74/assistant-gateway/common/graceful"
	"github.com/fuchsia74/assistant-gateway/common/logger"
	"github.com/fuchsia74/assistant-gateway/middleware"
	"github.com/fuchsia74/assistant-gateway/router"
)

func main() {
	common.Init()
	logger.SetupLogger()

	logger.Logger.Info("assistant gateway started", zap.String("version", common.Version))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	// gzip would break the chunked text stream, keep it off
	server.Use(middleware.RequestId())
	server.Use(middleware.CORS())

	router.SetRouter(server)

	port := config.ServerPort
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: server,
	}

	go func() {
		logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Logger.Info("shutdown signal received, draining",
		zap.Duration("timeout", config.ShutdownTimeout))
	graceful.SetDraining()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http server shutdown", zap.Error(err))
	}
	if err := graceful.Drain(shutdownCtx); err != nil {
		logger.Logger.Error("drain incomplete", zap.Error(err))
	}
	logger.Logger.Info("assistant gateway stopped")
}
