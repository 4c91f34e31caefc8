package main

import (
	"context"
	"docdrop/file-api/app"
	"docdrop/file-api/config"
	"docdrop/file-api/pkg/logger"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := logger.Setup(cfg.App.LogLevel, cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	d, err := app.NewDeps(context.Background(), cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	router := app.NewRouter(d)
	addr := fmt.Sprintf(":%d", cfg.Host.Port)

	zap.L().Info("Server starting",
		zap.String("addr", addr),
		zap.String("storage", cfg.Storage.Type),
		zap.String("database", cfg.Database.Driver),
	)

	if cfg.Host.SSL.Enabled {
		err = router.RunTLS(addr, cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
	} else {
		err = router.Run(addr)
	}
	if err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
