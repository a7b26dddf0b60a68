package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// CurveFile represents the curve tool configuration structure
type CurveFile struct {
	Curve    CurveSettings    `yaml:"curve"`
	Output   OutputSettings   `yaml:"output"`
	Baseline BaselineSettings `yaml:"baseline"`
}

// CurveSettings holds the default elasticity curve parameters
type CurveSettings struct {
	MinPeriods int `yaml:"min_periods"`
	Steps      int `yaml:"steps"`
}

// OutputSettings holds artifact output configuration
type OutputSettings struct {
	Dir string `yaml:"dir"`
}

// BaselineSettings holds random baseline benchmark parameters
type BaselineSettings struct {
	Trials    int     `yaml:"trials"`
	Tolerance float64 `yaml:"tolerance"`
}

// CurveLoader handles loading and validation of curve configuration
type CurveLoader struct {
	config *CurveFile
}

// NewCurveLoader creates a new curve configuration loader
func NewCurveLoader() *CurveLoader {
	return &CurveLoader{}
}

// LoadFromFile loads curve configuration from a YAML file
func (cl *CurveLoader) LoadFromFile(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config CurveFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := cl.validateConfig(&config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cl.config = &config
	return nil
}

// LoadDefault loads the built-in default configuration
func (cl *CurveLoader) LoadDefault() error {
	config := &CurveFile{
		Curve: CurveSettings{
			MinPeriods: 30,
			Steps:      100,
		},
		Output: OutputSettings{
			Dir: "out/curves",
		},
		Baseline: BaselineSettings{
			Trials:    20,
			Tolerance: 0.15,
		},
	}

	if err := cl.validateConfig(config); err != nil {
		return fmt.Errorf("default config validation failed: %w", err)
	}

	cl.config = config
	return nil
}

// Config returns the loaded configuration
func (cl *CurveLoader) Config() (*CurveFile, error) {
	if cl.config == nil {
		return nil, fmt.Errorf("config not loaded - call LoadFromFile or LoadDefault first")
	}
	return cl.config, nil
}

// validateConfig validates the entire curve configuration
func (cl *CurveLoader) validateConfig(config *CurveFile) error {
	if config.Curve.MinPeriods < 1 {
		return fmt.Errorf("curve min_periods must be at least 1, got %d", config.Curve.MinPeriods)
	}
	if config.Curve.Steps < 1 {
		return fmt.Errorf("curve steps must be at least 1, got %d", config.Curve.Steps)
	}
	if config.Output.Dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	if config.Baseline.Trials < 1 {
		return fmt.Errorf("baseline trials must be at least 1, got %d", config.Baseline.Trials)
	}
	if config.Baseline.Tolerance <= 0 || config.Baseline.Tolerance > 1 {
		return fmt.Errorf("baseline tolerance %.3f outside range (0, 1]", config.Baseline.Tolerance)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join("config", "curve.yaml")
}
