package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/harborpoint/dealflow/internal/api"
	"github.com/harborpoint/dealflow/internal/database"
	"github.com/harborpoint/dealflow/internal/logger"
	"github.com/harborpoint/dealflow/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	appLog := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if proxies := cfg.GetTrustedProxies(); proxies != nil {
		if err := r.SetTrustedProxies(proxies); err != nil {
			log.Fatal("Invalid trusted proxies: ", err)
		}
	}

	api.SetupRoutes(r, db, cfg, appLog)

	appLog.Info("server starting", map[string]interface{}{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
