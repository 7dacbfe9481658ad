package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultAPIBaseURL is the catalog backend this console administers.
	DefaultAPIBaseURL = "https://boltfit-backend-r4no.onrender.com/api/v1"

	// DefaultImgBBEndpoint is the third-party image host upload endpoint.
	DefaultImgBBEndpoint = "https://api.imgbb.com/1/upload"
)

// Config holds the environment-driven settings shared by the console and the
// CLI. Load never fails on missing optional values; features that need them
// (image upload, AI assist) report the gap when they are actually used.
type Config struct {
	Env        string
	Port       string
	APIBaseURL string

	// StateDir is where the session store persists the auth token and the
	// admin profile across runs.
	StateDir string

	// ImageStorage selects the image host: "imgbb" (default) or "s3".
	ImageStorage   string
	ImgBBKey       string
	ImgBBEndpoint  string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string

	OpenAIKey string
}

// Load reads configuration from the environment. Callers are expected to have
// run godotenv.Load first, the way the entrypoints do.
func Load() (*Config, error) {
	stateDir := os.Getenv("BOLTADMIN_STATE_DIR")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		stateDir = filepath.Join(home, ".boltadmin")
	}

	return &Config{
		Env:           getEnvOrDefault("ENV", "production"),
		Port:          getEnvOrDefault("PORT", "8080"),
		APIBaseURL:    getEnvOrDefault("API_BASE_URL", DefaultAPIBaseURL),
		StateDir:      stateDir,
		ImageStorage:  getEnvOrDefault("IMAGE_STORAGE", "imgbb"),
		ImgBBKey:      os.Getenv("IMGBB_API_KEY"),
		ImgBBEndpoint: getEnvOrDefault("IMGBB_ENDPOINT", DefaultImgBBEndpoint),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
	}, nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
