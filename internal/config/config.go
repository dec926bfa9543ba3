package config

import (
	"log/slog"
	"os"

	"github.com/agronexus/marketplace/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// requiredEnv are the secrets the marketplace cannot start without. Gateway
// credentials are checked lazily because simulator mode needs none.
var requiredEnv = []string{
	"MARKETPLACE_JWT_SECRET",
	"MARKETPLACE_PG_HOST",
	"MARKETPLACE_PG_USER",
	"MARKETPLACE_PG_DB",
}

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/marketplace")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	for _, key := range requiredEnv {
		if os.Getenv(key) == "" {
			panic("required environment variable is not set: " + key)
		}
	}
	SetupLogger()
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
