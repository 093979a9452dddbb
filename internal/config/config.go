package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pleimann/marionette/internal/action"
)

// Backend kinds.
const (
	BackendRecorder = "recorder"
	BackendPTY      = "pty"
	BackendRobotgo  = "robotgo"
)

const DefaultListen = "127.0.0.1:8080"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Macros  []Macro       `yaml:"macros,omitempty"`
}

type ServerConfig struct {
	Listen   string `yaml:"listen"`
	APIToken string `yaml:"api_token,omitempty"`
}

type BackendConfig struct {
	Kind   string       `yaml:"kind"`
	Screen ScreenConfig `yaml:"screen"`
	PTY    PTYConfig    `yaml:"pty"`
}

type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type PTYConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
	Rows       uint16   `yaml:"rows"`
	Cols       uint16   `yaml:"cols"`
}

// Macro is a named action tree. Exactly one of Action, Keys or Text is set.
type Macro struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Action      *action.Envelope `yaml:"action,omitempty"`
	Keys        []string         `yaml:"keys,omitempty"`
	Text        string           `yaml:"text,omitempty"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and fills defaults for a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) validate() error {
	switch c.Backend.Kind {
	case "", BackendRecorder, BackendRobotgo:
	case BackendPTY:
		if c.Backend.PTY.Command == "" {
			return fmt.Errorf("backend.pty.command is required")
		}
	default:
		return fmt.Errorf("unknown backend kind: %s", c.Backend.Kind)
	}

	if c.Backend.Screen.Width < 0 || c.Backend.Screen.Height < 0 {
		return fmt.Errorf("backend.screen size must not be negative")
	}

	seen := make(map[string]bool)
	for i, m := range c.Macros {
		if m.Name == "" {
			return fmt.Errorf("macro %d has no name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate macro name: %s", m.Name)
		}
		seen[m.Name] = true

		set := 0
		if m.Action != nil {
			set++
		}
		if len(m.Keys) > 0 {
			set++
		}
		if m.Text != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("macro %s must set exactly one of action, keys or text", m.Name)
		}

		if m.Action != nil {
			if err := action.Validate(m.Action.Action); err != nil {
				return fmt.Errorf("macro %s: %w", m.Name, err)
			}
		}
		for _, k := range m.Keys {
			if _, err := action.ParseHotkey(k); err != nil {
				return fmt.Errorf("macro %s: %w", m.Name, err)
			}
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Backend.Kind == "" {
		c.Backend.Kind = BackendRecorder
	}
	if c.Backend.Screen.Width == 0 {
		c.Backend.Screen.Width = 1920
	}
	if c.Backend.Screen.Height == 0 {
		c.Backend.Screen.Height = 1080
	}
	if c.Backend.PTY.Rows == 0 {
		c.Backend.PTY.Rows = 24
	}
	if c.Backend.PTY.Cols == 0 {
		c.Backend.PTY.Cols = 80
	}
}

// CreateDefaultConfig writes a starter config file
func CreateDefaultConfig(path string) error {
	content := `# Marionette configuration

server:
  listen: "127.0.0.1:8080"
  # api_token: "change-me"

backend:
  # recorder, pty or robotgo
  kind: recorder
  screen:
    width: 1920
    height: 1080
  pty:
    command: ""
    args: []
    rows: 24
    cols: 80

macros:
  - name: save
    description: Save the current document
    keys: ["ctrl+s"]

  - name: greet
    text: "Hello, world!"

  - name: select-all-copy
    action:
      type: Sequence
      params:
        actions:
          - type: Hotkey
            params: {modifiers: [Ctrl], key: A}
          - type: Delay
            params: {milliseconds: 50}
          - type: Hotkey
            params: {modifiers: [Ctrl], key: C}
`

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
