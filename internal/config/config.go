package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBPath    string
	UploadDir string
	LogDir    string

	SessionSecret string

	EnableLogging bool

	ReadTimeout  int64
	WriteTimeout int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBPath:    getEnv("DB_PATH", "groupchat.db"),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		LogDir:    getEnv("LOG_DIR", "./logs"),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production"),

		EnableLogging: getBoolEnv("ENABLE_LOGGING", true),

		ReadTimeout:  getInt64Env("READ_TIMEOUT", 15),
		WriteTimeout: getInt64Env("WRITE_TIMEOUT", 15),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return boolValue
}

func getInt64Env(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return intValue
}
