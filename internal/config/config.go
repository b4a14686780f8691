package config

import (
	"fmt"
	"os"
)

// Config is loaded once in main and passed by reference; handlers and
// services never read database credentials from the environment themselves.
type Config struct {
	ServerPort string
	CertFile   string
	KeyFile    string
	AppEnv     string

	DBUser     string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	JWTSecret string
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: os.Getenv("SERVER_PORT"),
		CertFile:   os.Getenv("CERT_FILE"),
		KeyFile:    os.Getenv("KEY_FILE"),
		AppEnv:     os.Getenv("APP_ENV"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.DBUser == "" || cfg.DBName == "" || cfg.DBHost == "" {
		return nil, fmt.Errorf("database configuration is incomplete (DB_USER, DB_NAME, DB_HOST)")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}
