package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MongoDB holds the document store (messages, typing, users) + GridFS
	MongoDB MongoDBConfig `json:"mongodb"`

	// Database is the MySQL connection used for the media_refs ledger
	Database DatabaseConfig `json:"database"`

	// Chat holds sync-core tunables
	Chat ChatConfig `json:"chat"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port            string `json:"port"`              // gateway (websocket + send endpoints)
	MediaServerPort string `json:"media_server_port"` // blob download endpoint
	MediaBaseURL    string `json:"media_base_url"`    // prefix baked into mediaRef URLs
	Environment     string `json:"environment"`       // development, staging, production
}

// MongoDBConfig contains document store connection configuration
type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// ChatConfig contains sync-core tunables
type ChatConfig struct {
	UploadRetries      int `json:"upload_retries"`        // attachment upload attempts
	UploadRetryDelay   int `json:"upload_retry_delay"`    // seconds between attempts, fixed
	TypingWritesPerSec int `json:"typing_writes_per_sec"` // keystroke publisher pacing
	LocationTimeout    int `json:"location_timeout"`      // seconds for a one-shot fix
	LocationMaxAge     int `json:"location_max_age"`      // seconds a cached fix is tolerated
}

// LoadConfig builds the config from environment variables with sane
// defaults. Callers load .env (godotenv) before this.
func LoadConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "7003"),
			MediaServerPort: getEnvOrDefault("MEDIA_SERVER_PORT", "8080"),
			MediaBaseURL:    getEnvOrDefault("MEDIA_BASE_URL", ""),
			Environment:     getEnvOrDefault("ENVIRONMENT", "development"),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnvOrDefault("MONGO_HOST", "localhost"),
			Port:     getEnvOrDefault("MONGO_PORT", "27017"),
			Username: getEnvOrDefault("MONGO_USERNAME", ""),
			Password: getEnvOrDefault("MONGO_PASSWORD", ""),
			Database: getEnvOrDefault("MONGO_DATABASE", "chatsync"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("MYSQL_HOST", "localhost"),
			Port:         getEnvOrDefault("MYSQL_PORT", "3306"),
			Username:     getEnvOrDefault("MYSQL_USERNAME", "chatsync"),
			Password:     getEnvOrDefault("MYSQL_PASSWORD", "chatsync123"),
			DatabaseName: getEnvOrDefault("MYSQL_DATABASE", "chatsync"),
			MaxOpenConns: getEnvIntOrDefault("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Chat: ChatConfig{
			UploadRetries:      getEnvIntOrDefault("UPLOAD_RETRIES", 3),
			UploadRetryDelay:   getEnvIntOrDefault("UPLOAD_RETRY_DELAY", 2),
			TypingWritesPerSec: getEnvIntOrDefault("TYPING_WRITES_PER_SEC", 3),
			LocationTimeout:    getEnvIntOrDefault("LOCATION_TIMEOUT", 15),
			LocationMaxAge:     getEnvIntOrDefault("LOCATION_MAX_AGE", 10),
		},
	}

	// mediaRef URLs must be dereferenceable from the render layer, so the
	// base URL points at the media server
	if cfg.Server.MediaBaseURL == "" {
		cfg.Server.MediaBaseURL = fmt.Sprintf("http://localhost:%s/media", cfg.Server.MediaServerPort)
	}

	return cfg
}

// DSN builds the MySQL connection string
func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

// GetMongoURI builds the MongoDB connection string, with or without auth
func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username != "" && cfg.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s",
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
		cfg.MongoDB.Database,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
