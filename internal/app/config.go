package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/phasegrid/internal/pages"
)

// Snapshot size used when the config leaves it unset.
const (
	DefaultSnapshotWidth  = 1280
	DefaultSnapshotHeight = 720
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Exactly one of Page and ScenePath selects what to run.
	Page      string
	ScenePath string

	// FourierRows are added with random parameters drawn from Seed when the
	// page is fourier.
	FourierRows int
	Seed        uint64

	Hz       int
	Ticks    uint64 // 0 runs until canceled
	TimeStep float64
	Workers  int

	LogFormat       string
	LogLevel        string
	HealthcheckPort int // 0 disables
	StreamPort      int // 0 disables

	SnapshotPath   string
	SnapshotWidth  int
	SnapshotHeight int
}

// NewConfig validates cfg and fills defaults. Every problem found is
// reported, each wrapping ErrInvalidConfig.
func NewConfig(cfg Config) (*Config, error) {
	var result *multierror.Error
	fail := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	switch {
	case cfg.Page == "" && cfg.ScenePath == "":
		fail("one of page or scene path is required")
	case cfg.Page != "" && cfg.ScenePath != "":
		fail("page %q and scene path %q are mutually exclusive", cfg.Page, cfg.ScenePath)
	case cfg.Page != "" && !slices.Contains(pages.Names(), cfg.Page):
		fail("unknown page %q (available: %s)", cfg.Page, strings.Join(pages.Names(), ", "))
	}
	if cfg.FourierRows < 0 {
		fail("fourier rows must not be negative, got %d", cfg.FourierRows)
	}
	if cfg.FourierRows > 0 && cfg.Page != pages.FourierName {
		fail("fourier rows need the %s page", pages.FourierName)
	}
	if cfg.Hz <= 0 {
		fail("hz must be positive, got %d", cfg.Hz)
	}
	if cfg.Workers < 0 {
		fail("workers must not be negative, got %d", cfg.Workers)
	}
	if !validPort(cfg.HealthcheckPort) {
		fail("healthcheck port %d out of range", cfg.HealthcheckPort)
	}
	if !validPort(cfg.StreamPort) {
		fail("stream port %d out of range", cfg.StreamPort)
	}
	if cfg.HealthcheckPort != 0 && cfg.HealthcheckPort == cfg.StreamPort {
		fail("healthcheck and stream ports must differ, both are %d", cfg.StreamPort)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		fail("%v", err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(LogFormats, cfg.LogFormat) {
		fail("invalid log format %q: must be one of %s", cfg.LogFormat, strings.Join(LogFormats, ", "))
	}

	if cfg.SnapshotWidth == 0 {
		cfg.SnapshotWidth = DefaultSnapshotWidth
	}
	if cfg.SnapshotHeight == 0 {
		cfg.SnapshotHeight = DefaultSnapshotHeight
	}
	if cfg.SnapshotWidth < 0 || cfg.SnapshotHeight < 0 {
		fail("snapshot size %dx%d must be positive", cfg.SnapshotWidth, cfg.SnapshotHeight)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validPort(p int) bool {
	return p >= 0 && p <= 65535
}
