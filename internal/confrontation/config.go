package confrontation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvIterations = "CONFRONTATION_ITERATIONS"
	EnvWarmup     = "CONFRONTATION_WARMUP"
	EnvFormat     = "CONFRONTATION_FORMAT"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	ErrInvalidIterations = errors.New("invalid iteration counts")
	ErrInvalidFormat     = errors.New("invalid report format")
)

// Config controls a confrontation run.
type Config struct {
	Iterations []int
	Warmup     bool
	Format     string
}

// DefaultConfig returns one, ten and ten thousand iterations with warm up
// and a text report.
func DefaultConfig() *Config {
	return &Config{
		Iterations: []int{1, 10, 10000},
		Warmup:     true,
		Format:     FormatText,
	}
}

// Load reads the given .env files (".env" when none are given) and builds a
// Config from the environment. Missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env is optional
	_ = godotenv.Load(files...)

	cfg := DefaultConfig()
	if v := os.Getenv(EnvIterations); v != "" {
		iterations, err := ParseIterations(v)
		if err != nil {
			return nil, err
		}
		cfg.Iterations = iterations
	}
	cfg.Warmup = envBool(EnvWarmup, cfg.Warmup)
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the iteration counts and the report format.
func (c *Config) Validate() error {
	if len(c.Iterations) == 0 {
		return fmt.Errorf("%w: none given", ErrInvalidIterations)
	}
	for _, n := range c.Iterations {
		if n <= 0 {
			return fmt.Errorf("%w: %d is not positive", ErrInvalidIterations, n)
		}
	}

	switch c.Format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
}

// ParseIterations parses a comma separated list such as "1,10,10000".
func ParseIterations(s string) ([]int, error) {
	var result []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIterations, part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d is not positive", ErrInvalidIterations, n)
		}
		result = append(result, n)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: none given", ErrInvalidIterations)
	}
	return result, nil
}

func envBool(key string, fallback bool) bool {
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
