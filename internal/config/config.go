package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/extratos/verifier/internal/amount"
	"github.com/extratos/verifier/internal/report"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "extratos.yaml"

// Config represents the top-level extratos.yaml configuration.
type Config struct {
	Statements StatementsConfig `yaml:"statements"`
	Amounts    AmountsConfig    `yaml:"amounts"`
	Matching   MatchingConfig   `yaml:"matching"`
	Report     ReportConfig     `yaml:"report"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StatementsConfig controls how statement exports are decoded and parsed.
type StatementsConfig struct {
	Layout       string   `yaml:"layout"`   // "auto", "pt", "en"
	Encoding     string   `yaml:"encoding"` // "auto", "utf-8", "iso-8859-1", "windows-1252"
	HeaderLabels []string `yaml:"header_labels,omitempty"`
}

// AmountsConfig controls amount normalization.
type AmountsConfig struct {
	Convention      string   `yaml:"convention"` // "comma" or "point"
	CurrencyMarkers []string `yaml:"currency_markers"`
}

// MatchingConfig controls the reconciliation engine.
type MatchingConfig struct {
	Tolerance string `yaml:"tolerance"`
	OneToOne  bool   `yaml:"one_to_one"`
}

// ReportConfig controls report rendering and output.
type ReportConfig struct {
	Language string `yaml:"language"`
	Currency string `yaml:"currency"`
	OutDir   string `yaml:"out_dir"`
	CSV      bool   `yaml:"csv"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text", "json", "logfmt"
}

// Load reads an extratos.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for Portuguese bank exports.
func Default() *Config {
	return &Config{
		Statements: StatementsConfig{
			Layout:   "auto",
			Encoding: "auto",
		},
		Amounts: AmountsConfig{
			Convention:      "comma",
			CurrencyMarkers: append([]string(nil), amount.DefaultCurrencyMarkers...),
		},
		Matching: MatchingConfig{
			Tolerance: "0.01",
		},
		Report: ReportConfig{
			Language: "en",
			Currency: "€",
			OutDir:   ".",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ToleranceDecimal parses the matching tolerance.
func (m MatchingConfig) ToleranceDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(m.Tolerance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing tolerance %q: %w", m.Tolerance, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("tolerance must be positive, got %s", m.Tolerance)
	}
	return d, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := amount.ParseConvention(c.Amounts.Convention); err != nil {
		return err
	}
	if _, err := c.Matching.ToleranceDecimal(); err != nil {
		return err
	}
	if _, err := report.LabelsFor(c.Report.Language); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
