package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port           int           `envconfig:"PORT" default:"3000"`
	Environment    string        `envconfig:"ENV" default:"development"`
	PublicBaseURL  string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxImageSize   int           `envconfig:"MAX_IMAGE_SIZE" default:"10485760"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	// Face providers
	DetectorProvider string `envconfig:"DETECTOR_PROVIDER" default:"deepface"`
	EmbedderProvider string `envconfig:"EMBEDDER_PROVIDER" default:"deepface"`
	DeepFaceURL      string `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`
	DeepFaceModel    string `envconfig:"DEEPFACE_MODEL" default:"Facenet512"`
	DeepFaceDetector string `envconfig:"DEEPFACE_DETECTOR" default:"mtcnn"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Verification policy
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.7"`
	FaceSelection  string  `envconfig:"FACE_SELECTION" default:"largest"`

	// Storage
	StorageDriver   string `envconfig:"STORAGE_DRIVER" default:"local"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
	LocalStorageDir string `envconfig:"LOCAL_STORAGE_DIR" default:"./uploads"`

	// Security
	APIKeys         []string      `envconfig:"API_KEYS"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"60"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be in (0, 1], got %v", c.MatchThreshold)
	}

	switch strings.ToLower(c.FaceSelection) {
	case "largest", "first":
	default:
		return fmt.Errorf("FACE_SELECTION must be largest or first, got %q", c.FaceSelection)
	}

	switch strings.ToLower(c.StorageDriver) {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
