package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional, real env always wins
	_ = godotenv.Load()

	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getenvInt("REDIS_DB", 0),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		GatewayURL:  getenv("GATEWAY_URL", "http://localhost:9091"),
		GatewayKey:  os.Getenv("GATEWAY_API_KEY"),
		CallbackTok: getenv("GATEWAY_CALLBACK_TOKEN", "dev_callback_token"),
		UploadDir:   getenv("UPLOAD_DIR", "./uploads"),
		Env:         getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
