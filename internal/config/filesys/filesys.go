// File: internal/config/filesys/filesys.go
package filesys

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vrcarchive/assetbrowser/internal/config"
)

// FilesysConfigProvider loads YAML configuration from the local filesystem.
type FilesysConfigProvider struct{}

// NewFilesysConfigProvider verifies the file exists and returns a provider
// for it.
func NewFilesysConfigProvider(path string) (*FilesysConfigProvider, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not accessible: %w", err)
	}
	return &FilesysConfigProvider{}, nil
}

// LoadConfig reads and parses the YAML configuration at path, starting from
// defaults so omitted keys keep their documented values.
func (p *FilesysConfigProvider) LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
