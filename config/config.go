package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything read from the environment at startup.
// It is built once in main and passed down; nothing else reads os.Getenv.
type Config struct {
	Port     string
	GinMode  string
	MongoURI string
	MongoDB  string

	JWTSecret string
	TokenTTL  time.Duration

	CloudinaryURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	AllowOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:            getEnv("MONGODB_DB", "gramly"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           30 * 24 * time.Hour,
		CloudinaryURL:      os.Getenv("CLOUDINARY_URL"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	origins := getEnv("ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
