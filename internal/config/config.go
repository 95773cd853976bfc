package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything read from the environment at startup.
type Config struct {
	// Managed backend service endpoint and public key. Required unless
	// AllowMock is set, in which case their absence selects the mock
	// auth provider instead of being fatal.
	ServiceURL string
	ServiceKey string
	AllowMock  bool

	// SlotBackend selects where collections persist: "file" or
	// "postgres".
	SlotBackend string
	DataDir     string

	ListenAddr string
}

// Load reads .env (if present) and the environment. Missing service
// credentials are fatal in the strict variant.
func Load() Config {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	cfg := Config{
		ServiceURL:  os.Getenv("SERVICE_URL"),
		ServiceKey:  os.Getenv("SERVICE_KEY"),
		AllowMock:   getEnv("AUTH_ALLOW_MOCK", "") == "true",
		SlotBackend: getEnv("SLOT_BACKEND", "file"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		ListenAddr:  getEnv("LISTEN_ADDR", "0.0.0.0:8080"),
	}

	if (cfg.ServiceURL == "" || cfg.ServiceKey == "") && !cfg.AllowMock {
		log.Fatalf("SERVICE_URL and SERVICE_KEY are required (set AUTH_ALLOW_MOCK=true to run against the mock backend)")
	}
	return cfg
}

// UseMock reports whether the mock auth backend should be used.
func (c Config) UseMock() bool {
	return c.AllowMock && (c.ServiceURL == "" || c.ServiceKey == "")
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}
