package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// DatabaseURL empty means in-memory repos (dev mode).
	DatabaseURL string

	IdentityBaseURL string
	IdentityAPIKey  string

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	LogLevel  string
	LogFormat string
	AppName   string
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		IdentityBaseURL:      getenv("IDENTITY_BASE_URL", ""),
		IdentityAPIKey:       getenv("IDENTITY_API_KEY", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		LogLevel:             getenv("LOG_LEVEL", "info"),
		LogFormat:            getenv("LOG_FORMAT", "text"),
		AppName:              getenv("APP_NAME", "kolay-hatirla"),
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
