// Package config loads the CLI's environment-driven configuration,
// grounded on the teacher's internal/config.Load/getEnv pattern.
package config

import (
	"os"
	"strconv"
)

// Config is the recognized configuration surface from spec.md §6:
// batch size, the reset_db flag passed through to the graph executor,
// graph-store and metadata-store connection strings, and the external
// identifiers used for downstream correlation.
type Config struct {
	BatchSize int
	ResetDB   bool

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	MetadataDSN string

	ProcessID  string
	ExternalID string
	LogLevel   string
}

// Load reads configuration from the environment, falling back to the
// documented defaults (batch_size=20) for anything unset.
func Load() *Config {
	return &Config{
		BatchSize:     getEnvInt("BPMN_BATCH_SIZE", 20),
		ResetDB:       getEnvBool("BPMN_RESET_DB", false),
		Neo4jURI:      getEnv("BPMN_NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:     getEnv("BPMN_NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("BPMN_NEO4J_PASSWORD", ""),
		MetadataDSN:   getEnv("BPMN_METADATA_DSN", ""),
		ProcessID:     getEnv("BPMN_PROCESS_ID", ""),
		ExternalID:    getEnv("BPMN_EXTERNAL_MODEL_ID", ""),
		LogLevel:      getEnv("BPMN_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
