package config

import (
	"fmt"
	"os"
	"strconv"
)

// Match modes and scan directions accepted in configuration.
const (
	ModeFuzzy = "fuzzy"
	ModeExact = "exact"

	DirectionForward  = "forward"
	DirectionBackward = "backward"

	// PolicySkip emits nothing for documents without an outline;
	// PolicyEmit produces one whole-document fallback record.
	PolicySkip = "skip"
	PolicyEmit = "emit"
)

type Config struct {
	// Output
	OutputPath string

	// Segmentation
	Language        string
	MatchMode       string
	ScanDirection   string
	ToleranceRatio  float64
	NoOutlinePolicy string

	// TOCAnchor drops outline entries up to and including this title
	// before segmentation (for documents whose outline starts with
	// front-matter entries). Empty disables anchoring.
	TOCAnchor string

	// Batch
	WorkerCount int

	// HTTP server
	Port           string
	MaxUploadBytes int64
	APIKey         string
}

func Load() Config {
	cfg := Config{
		OutputPath: envOr("OUTPUT_PATH", "output.json"),

		Language:        envOr("LANGUAGE", "de"),
		MatchMode:       envOr("MATCH_MODE", ModeFuzzy),
		ScanDirection:   envOr("SCAN_DIRECTION", DirectionForward),
		ToleranceRatio:  envFloat("TOLERANCE_RATIO", 0.1),
		NoOutlinePolicy: envOr("NO_OUTLINE_POLICY", PolicySkip),

		TOCAnchor: os.Getenv("TOC_ANCHOR"),

		WorkerCount: envInt("WORKER_COUNT", 1),

		Port:           envOr("PORT", "8090"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		APIKey:         os.Getenv("SECTIONIZE_API_KEY"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.ToleranceRatio <= 0 {
		cfg.ToleranceRatio = 0.1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.MatchMode {
	case ModeFuzzy, ModeExact:
	default:
		return fmt.Errorf("MATCH_MODE must be %q or %q, got %q", ModeFuzzy, ModeExact, c.MatchMode)
	}
	switch c.ScanDirection {
	case DirectionForward, DirectionBackward:
	default:
		return fmt.Errorf("SCAN_DIRECTION must be %q or %q, got %q", DirectionForward, DirectionBackward, c.ScanDirection)
	}
	switch c.NoOutlinePolicy {
	case PolicySkip, PolicyEmit:
	default:
		return fmt.Errorf("NO_OUTLINE_POLICY must be %q or %q, got %q", PolicySkip, PolicyEmit, c.NoOutlinePolicy)
	}
	if c.ToleranceRatio > 1 {
		return fmt.Errorf("TOLERANCE_RATIO must be in (0, 1], got %g", c.ToleranceRatio)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
