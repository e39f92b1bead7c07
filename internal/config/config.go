package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Root              string
	Encoder           string
	AutoOrient        bool
	JPEGFallback      bool
	JPEGQuality       int
	RewriteHTML       []string
	LogLevel          string
	MirrorDir         string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string
	R2PublicBaseURL   string
	R2S3Endpoint      string
	R2Prefix          string
	Rules             Rules
}

func Load() *Config {
	// Try the parent directory first, then the working directory
	godotenv.Load(filepath.Join("..", ".env"))
	godotenv.Load(".env")

	return &Config{
		Root:              getEnv("IMGOPT_ROOT", "."),
		Encoder:           getEnv("IMGOPT_ENCODER", "native"),
		AutoOrient:        getEnvBool("IMGOPT_AUTO_ORIENT", false),
		JPEGFallback:      getEnvBool("IMGOPT_JPEG_FALLBACK", false),
		JPEGQuality:       getEnvInt("JPEG_QUALITY", 84),
		RewriteHTML:       getEnvList("REWRITE_HTML"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MirrorDir:         getEnv("MIRROR_DIR", ""),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:          getEnv("R2_BUCKET", ""),
		R2PublicBaseURL:   getEnv("R2_PUBLIC_BASE_URL", ""),
		R2S3Endpoint:      getEnv("R2_S3_ENDPOINT", ""),
		R2Prefix:          getEnv("R2_PREFIX", ""),
		Rules:             DefaultRules(),
	}
}

// PublishToR2 reports whether enough R2 settings are present to upload outputs.
func (c *Config) PublishToR2() bool {
	return c.R2Bucket != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
