// Package config holds the scanner's tunable settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ironsheep/docscan/internal/capture"
	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/quality"
)

// Environment variables read by ApplyEnv.
const (
	EnvCaptureThreshold = "DOCSCAN_CAPTURE_THRESHOLD"
	EnvCaptureDelay     = "DOCSCAN_CAPTURE_DELAY_MS"
	EnvAutoCapture      = "DOCSCAN_AUTO_CAPTURE"
	EnvFrameRate        = "DOCSCAN_FRAME_RATE"
)

// Config is the scanner configuration. Fields may be loaded from a JSON file
// and overridden from the environment.
type Config struct {
	AutoCapture      bool    `json:"auto_capture"`
	CaptureThreshold int     `json:"capture_threshold"`
	CaptureDelayMs   int     `json:"capture_delay_ms"`
	MinDocumentArea  float64 `json:"min_document_area"`
	MaxDocumentArea  float64 `json:"max_document_area"`

	// FrameProcessingRate analyses every Nth frame.
	FrameProcessingRate int `json:"frame_processing_rate"`
	StabilityFrames     int `json:"stability_frames"`
	CooldownMs          int `json:"cooldown_ms"`

	// MaxProcessingWidth bounds the resolution detection runs at. Zero
	// disables downscaling.
	MaxProcessingWidth int `json:"max_processing_width"`

	// ShowSubScores is passed through to the UI.
	ShowSubScores bool `json:"show_sub_scores"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		AutoCapture:         true,
		CaptureThreshold:    85,
		CaptureDelayMs:      3000,
		MinDocumentArea:     0.2,
		MaxDocumentArea:     0.95,
		FrameProcessingRate: 1,
		StabilityFrames:     quality.DefaultHistorySize,
		CooldownMs:          800,
		MaxProcessingWidth:  640,
		ShowSubScores:       true,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.CaptureThreshold < 0 {
		c.CaptureThreshold = 0
	}
	if c.CaptureThreshold > 100 {
		c.CaptureThreshold = 100
	}
	if c.CaptureDelayMs < 0 {
		c.CaptureDelayMs = 0
	}
	if c.MinDocumentArea <= 0 || c.MinDocumentArea >= 1 {
		c.MinDocumentArea = 0.2
	}
	if c.MaxDocumentArea <= c.MinDocumentArea || c.MaxDocumentArea > 1 {
		c.MaxDocumentArea = 0.95
	}
	if c.MaxDocumentArea <= c.MinDocumentArea {
		c.MinDocumentArea = 0.2
	}
	if c.FrameProcessingRate < 1 {
		c.FrameProcessingRate = 1
	}
	if c.StabilityFrames < 2 {
		c.StabilityFrames = quality.DefaultHistorySize
	}
	if c.CooldownMs < 0 {
		c.CooldownMs = 0
	}
	if c.MaxProcessingWidth < 0 {
		c.MaxProcessingWidth = 0
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// ApplyEnv overrides fields from DOCSCAN_* environment variables. Unset
// variables leave the field alone; malformed values are reported and
// ignored.
func (c *Config) ApplyEnv() error {
	var firstErr error
	note := func(key string, err error) {
		if firstErr == nil {
			firstErr = fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	if v := os.Getenv(EnvCaptureThreshold); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			note(EnvCaptureThreshold, err)
		} else {
			c.CaptureThreshold = n
		}
	}
	if v := os.Getenv(EnvCaptureDelay); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			note(EnvCaptureDelay, err)
		} else {
			c.CaptureDelayMs = n
		}
	}
	if v := os.Getenv(EnvAutoCapture); v != "" {
		if b, err := strconv.ParseBool(v); err != nil {
			note(EnvAutoCapture, err)
		} else {
			c.AutoCapture = b
		}
	}
	if v := os.Getenv(EnvFrameRate); v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			note(EnvFrameRate, err)
		} else {
			c.FrameProcessingRate = n
		}
	}

	_ = c.Validate()
	return firstErr
}

// CaptureDelay returns CaptureDelayMs as a duration.
func (c *Config) CaptureDelay() time.Duration {
	return time.Duration(c.CaptureDelayMs) * time.Millisecond
}

// Cooldown returns CooldownMs as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMs) * time.Millisecond
}

// DetectionOptions returns detector settings with this config's area bounds.
func (c *Config) DetectionOptions() detection.Options {
	opts := detection.DefaultOptions()
	opts.MinAreaRatio = c.MinDocumentArea
	opts.MaxAreaRatio = c.MaxDocumentArea
	return opts
}

// QualityOptions returns scorer settings with this config's history size.
func (c *Config) QualityOptions() quality.Options {
	opts := quality.DefaultOptions()
	opts.HistorySize = c.StabilityFrames
	return opts
}

// CaptureOptions returns the state machine settings.
func (c *Config) CaptureOptions() capture.Options {
	return capture.Options{
		AutoCapture: c.AutoCapture,
		Threshold:   c.CaptureThreshold,
		Delay:       c.CaptureDelay(),
		Cooldown:    c.Cooldown(),
	}
}
