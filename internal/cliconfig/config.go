// Package cliconfig stores workflowctl's runtime contexts and resolves
// which runtime sidecar URL a command should talk to.
package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigDirName is the directory under the user's home that holds the
// workflowctl config file.
const ConfigDirName = ".workflowctl"

// ConfigFileName is the name of the config file inside ConfigDirName.
const ConfigFileName = "config.yaml"

// ConfigVersion is the current config schema version.
const ConfigVersion = 1

// DefaultContextName is the name of the context created on first use.
const DefaultContextName = "local"

// DefaultRuntimeURL is the sidecar URL used when nothing else is configured.
const DefaultRuntimeURL = "http://localhost:8080"

// Config holds the user's runtime contexts. Contexts work like kubectl
// contexts: named sidecar deployments (local, staging, CI) the user can
// switch between without retyping URLs.
type Config struct {
	// Version is the config schema version for future migrations.
	Version int `yaml:"version"`

	// CurrentContext is the name of the currently active context.
	CurrentContext string `yaml:"current_context"`

	// Contexts maps context names to their configuration.
	Contexts map[string]*Context `yaml:"contexts"`
}

// Context is a named runtime sidecar deployment.
type Context struct {
	// RuntimeURL is the base URL of the sidecar API.
	RuntimeURL string `yaml:"runtime_url"`

	// Description is an optional human-readable description.
	Description string `yaml:"description,omitempty"`
}

// NewDefault creates a Config with the default local context.
func NewDefault() *Config {
	return &Config{
		Version:        ConfigVersion,
		CurrentContext: DefaultContextName,
		Contexts: map[string]*Context{
			DefaultContextName: {
				RuntimeURL:  DefaultRuntimeURL,
				Description: "Local runtime sidecar",
			},
		},
	}
}

// Path returns the config file location. The WORKFLOWCTL_CONFIG environment
// variable overrides the default ~/.workflowctl/config.yaml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// Load reads the config file. A missing file is not an error; it yields the
// default configuration.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid YAML: %w", path, err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	if len(cfg.Contexts) == 0 {
		cfg.Contexts[DefaultContextName] = &Context{
			RuntimeURL:  DefaultRuntimeURL,
			Description: "Local runtime sidecar",
		}
		if cfg.CurrentContext == "" {
			cfg.CurrentContext = DefaultContextName
		}
	}

	return &cfg, nil
}

// Save writes the config file atomically (temp file + rename).
func Save(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// GetCurrentContext returns the active context, or nil if none is set.
func (c *Config) GetCurrentContext() *Context {
	if c.CurrentContext == "" {
		return nil
	}
	return c.Contexts[c.CurrentContext]
}

// SetCurrentContext switches to the named context.
func (c *Config) SetCurrentContext(name string) error {
	if _, exists := c.Contexts[name]; !exists {
		return fmt.Errorf("context not found: %s", name)
	}
	c.CurrentContext = name
	return nil
}

// AddContext adds a new named context.
func (c *Config) AddContext(name string, ctx *Context) error {
	if _, exists := c.Contexts[name]; exists {
		return fmt.Errorf("context already exists: %s", name)
	}
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	c.Contexts[name] = ctx
	return nil
}

// RemoveContext removes a context by name. The current context cannot be
// removed.
func (c *Config) RemoveContext(name string) error {
	if _, exists := c.Contexts[name]; !exists {
		return fmt.Errorf("context not found: %s", name)
	}
	if c.CurrentContext == name {
		return errors.New("cannot remove current context; switch to another context first")
	}
	delete(c.Contexts, name)
	return nil
}
