// Package config loads the HCL file that configures the decision service and
// the policy profiles it serves.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/deck"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Default values applied after decoding.
const (
	DefaultAddress    = "localhost"
	DefaultPort       = 8080
	DefaultLogLevel   = "info"
	DefaultSendBuffer = 64
	DefaultHands      = 10000
	DefaultWorkers    = 4
)

// Config represents the complete configuration file
type Config struct {
	Server   *ServerSettings `hcl:"server,block"`
	Survey   *SurveySettings `hcl:"survey,block"`
	Profiles []ProfileConfig `hcl:"profile,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	DefaultProfile string `hcl:"default_profile,optional"`
	// SendBuffer bounds the outbound queue of each websocket connection.
	SendBuffer int `hcl:"send_buffer,optional"`
}

// SurveySettings are the defaults for the survey command.
type SurveySettings struct {
	Hands   int      `hcl:"hands,optional"`
	Workers int      `hcl:"workers,optional"`
	Seed    int64    `hcl:"seed,optional"`
	Output  string   `hcl:"output,optional"`
	Vira    string   `hcl:"vira,optional"`
	Include []string `hcl:"profiles,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes and validates HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.Server.DefaultProfile == "" {
		c.Server.DefaultProfile = bot.TieredProfile
	}
	if c.Server.SendBuffer == 0 {
		c.Server.SendBuffer = DefaultSendBuffer
	}

	if c.Survey == nil {
		c.Survey = &SurveySettings{}
	}
	if c.Survey.Hands == 0 {
		c.Survey.Hands = DefaultHands
	}
	if c.Survey.Workers == 0 {
		c.Survey.Workers = DefaultWorkers
	}
}

// Validate validates the configuration, including every profile.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q: %w", ErrInvalidConfig, c.Server.LogLevel, err)
	}
	if c.Server.SendBuffer < 1 {
		return fmt.Errorf("%w: send buffer must be positive", ErrInvalidConfig)
	}
	if c.Survey.Hands < 1 {
		return fmt.Errorf("%w: survey hands must be positive", ErrInvalidConfig)
	}
	if c.Survey.Workers < 1 {
		return fmt.Errorf("%w: survey workers must be positive", ErrInvalidConfig)
	}
	if c.Survey.Vira != "" {
		if _, err := deck.ParseCard(c.Survey.Vira); err != nil {
			return fmt.Errorf("%w: survey vira: %w", ErrInvalidConfig, err)
		}
	}

	seen := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if seen[p.Name] {
			return fmt.Errorf("%w: profile %q defined twice", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true
	}

	registry, err := c.Registry()
	if err != nil {
		return err
	}
	if _, err := registry.Get(c.Server.DefaultProfile); err != nil {
		return fmt.Errorf("%w: default profile: %w", ErrInvalidConfig, err)
	}
	for _, name := range c.Survey.Include {
		if _, err := registry.Get(name); err != nil {
			return fmt.Errorf("%w: survey: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Registry builds the built-in profiles plus every profile in the file. File
// profiles replace built-ins of the same name.
func (c *Config) Registry() (*bot.Registry, error) {
	registry := bot.DefaultRegistry()
	for _, p := range c.Profiles {
		policy, err := p.Policy()
		if err != nil {
			return nil, err
		}
		registry.Register(policy)
	}
	return registry, nil
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
