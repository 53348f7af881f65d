package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foomo/ribbon/ribbon"
)

// Config is the yaml configuration of the server.
type Config struct {
	// HTTPAddr is the editor HTTP listen address.
	HTTPAddr string `yaml:"httpAddr"`
	// MCPAddr serves the MCP tools over streamable HTTP when set.
	MCPAddr string `yaml:"mcpAddr"`

	// Database and Language of the in-memory content tree.
	Database string `yaml:"database"`
	Language string `yaml:"language"`

	// ContentServer loads the tree from a foomo contentserver when set.
	ContentServer ContentServerConfig `yaml:"contentServer"`

	// Stream tunes the per-session directive streams.
	Stream StreamConfig `yaml:"stream"`

	// Policies enables or disables named editor capabilities. An empty map
	// allows everything.
	Policies map[string]bool `yaml:"policies"`

	Ribbon ribbon.Settings `yaml:"ribbon"`
}

// ContentServerConfig points at a foomo contentserver export.
type ContentServerConfig struct {
	URL       string   `yaml:"url"`
	RootPath  string   `yaml:"rootPath"`
	MimeTypes []string `yaml:"mimeTypes"`
}

// StreamConfig tunes the directive streams.
type StreamConfig struct {
	KeepaliveSeconds int `yaml:"keepaliveSeconds"`
	BufferSize       int `yaml:"bufferSize"`
}

func defaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
		Database: "master",
		Language: "en",
		Ribbon:   ribbon.DefaultSettings(),
	}
}

// loadConfig reads the yaml config file, falling back to defaults when no
// path is given.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return config, nil
}
