// Package config loads all runtime settings from the environment, with an
// optional .env file for local development. main stays lean: it calls Load
// and wires the result.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// SOAPService holds the connection settings for one upstream SOAP service.
type SOAPService struct {
	Endpoint string
	UserID   string
	Password string
	Timeout  time.Duration
}

// MessageTypes carries the registry message-type codes. They default to the
// documented 1001..5001 values but remain overridable because the registry
// assigns them per agreement, not per protocol.
type MessageTypes struct {
	RegistroPositivo     string
	RegistroNegativo     string
	CancelacionNegativo  string
	ModificacionPositivo string
	CancelacionPositivo  string
}

// Config is the full runtime configuration for both binaries.
type Config struct {
	ServerAddr  string
	WebhookAddr string
	LogLevel    string
	LogFormat   string

	Actions SOAPService
	Queries SOAPService
	Types   MessageTypes

	// DatabaseURL selects the audit backend: empty keeps the audit trail in
	// memory, a Postgres URL persists it.
	DatabaseURL string
}

// Load reads the environment, after loading .env when present. A missing
// .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServerAddr:  envOr("SRTM_API_ADDR", ":8000"),
		WebhookAddr: envOr("SRTM_WEBHOOK_ADDR", ":6750"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "text"),
		Actions: SOAPService{
			Endpoint: os.Getenv("SRTM_ENDPOINT"),
			UserID:   os.Getenv("SRTM_USER"),
			Password: os.Getenv("SRTM_PASSWORD"),
			Timeout:  30 * time.Second,
		},
		Queries: SOAPService{
			Endpoint: os.Getenv("CONSULTA_ENDPOINT"),
			UserID:   os.Getenv("CONSULTA_USER"),
			Password: os.Getenv("CONSULTA_PASSWORD"),
			Timeout:  30 * time.Second,
		},
		Types: MessageTypes{
			RegistroPositivo:     envOr("MSG_TYPE_REGISTRO_POSITIVO", "1001"),
			RegistroNegativo:     envOr("MSG_TYPE_REGISTRO_NEGATIVO", "2001"),
			CancelacionNegativo:  envOr("MSG_TYPE_CANCELACION_NEGATIVO", "3001"),
			ModificacionPositivo: envOr("MSG_TYPE_MODIFICACION_POSITIVO", "4001"),
			CancelacionPositivo:  envOr("MSG_TYPE_CANCELACION_POSITIVO", "5001"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
