package config

import (
	"os"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	AppEnv  string
	GinMode string

	MongoURI string
	MongoDB  string

	JWTSecret     string
	JWTExpire     time.Duration
	RefreshSecret string
	RefreshExpire time.Duration

	CORSOrigins []string
	LogDir      string
}

// IsProduction gates error detail in API responses.
func (e Env) IsProduction() bool {
	return e.AppEnv == "production"
}

func LoadEnv() Env {
	return Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		AppEnv:  getEnv("APP_ENV", "development"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "schoolcampus"),

		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-me"),
		JWTExpire:     getDuration("JWT_EXPIRE", 24*time.Hour),
		RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", "refresh-secret-key-change-me"),
		RefreshExpire: getDuration("REFRESH_TOKEN_EXPIRE", 7*24*time.Hour),

		CORSOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}),
		LogDir: getEnv("LOG_DIR", "logs"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
