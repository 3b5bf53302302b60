package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	StorageDriver    string // "file" or "sqlite"
	SnapshotPath     string // file substrate
	DatabaseURL      string // sqlite substrate
	SnapshotSlot     string
	SnapshotMaxBytes int // 0 = unlimited, file substrate only

	// HTTP
	HTTPPort string
	BaseURL  string
	LogLevel string

	// Auth
	JWTSecret       string
	WeChatAppID     string
	WeChatAppSecret string

	// Optional title generation
	GeminiAPIKey string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		StorageDriver:    getEnv("STORAGE_DRIVER", "sqlite"),
		SnapshotPath:     getEnv("SNAPSHOT_PATH", "chat_snapshot.json"),
		DatabaseURL:      getEnv("DATABASE_URL", "gwi_chat.db"),
		SnapshotSlot:     getEnv("SNAPSHOT_SLOT", ""),
		SnapshotMaxBytes: getEnvAsInt("SNAPSHOT_MAX_BYTES", 0),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		WeChatAppID:      getEnv("WECHAT_APP_ID", ""),
		WeChatAppSecret:  getEnv("WECHAT_APP_SECRET", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY not set, chat title generation disabled")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
