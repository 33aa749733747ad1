package pools

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-pool/pkg/validation"
)

// MaxBatch caps InitCount and GrowthCount in configuration files. Programmatic
// construction through New is not capped.
const MaxBatch = 1 << 24

// Config describes a pool in YAML:
//
//	name: frames
//	init_count: 100
//	growth_count: 50
type Config struct {
	Name        string `yaml:"name" validate:"required,max=64,printascii"`
	InitCount   int    `yaml:"init_count"`
	GrowthCount int    `yaml:"growth_count"`
}

// DefaultConfig returns the sizing of NewDefault.
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		InitCount:   DefaultInitCount,
		GrowthCount: DefaultGrowthCount,
	}
}

// Validate checks the name tags and the batch sizes.
func (c Config) Validate() error {
	return validation.NewConfigValidator("PoolConfig").
		Struct(&c).
		NonNegative("InitCount", c.InitCount).
		Positive("GrowthCount", c.GrowthCount).
		MaxInt("InitCount", c.InitCount, MaxBatch).
		MaxInt("GrowthCount", c.GrowthCount, MaxBatch).
		Validate()
}

// LoadConfig reads a YAML pool config. Fields absent from the file keep
// their DefaultConfig values; init_count: 0 must be written explicitly.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read pool config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes into a validated Config.
func ParseConfig(data []byte) (Config, error) {
	var raw struct {
		Name        string `yaml:"name"`
		InitCount   *int   `yaml:"init_count"`
		GrowthCount *int   `yaml:"growth_count"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse pool config: %w", err)
	}

	cfg := DefaultConfig()
	if raw.Name != "" {
		cfg.Name = raw.Name
	}
	if raw.InitCount != nil {
		cfg.InitCount = *raw.InitCount
	}
	if raw.GrowthCount != nil {
		cfg.GrowthCount = *raw.GrowthCount
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFromConfig validates cfg and builds a pool named cfg.Name.
// Options given after cfg override the name.
func NewFromConfig[T any](cfg Config, create func() T, destroy func(T), opts ...Option) (*Pool[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{WithName(cfg.Name)}, opts...)
	return New(create, destroy, cfg.InitCount, cfg.GrowthCount, opts...)
}
