package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	return load(afero.NewBasePathFs(afero.NewOsFs(), path))
}

func load(configFs afero.Fs) (*Configuration, error) {
	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	if err != nil {
		return nil, err
	}

	// Start from the defaults so older files pick up new fields.
	out := defaultConfig()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}
	out.configFs = configFs
	return out, nil
}

// LoadOrDefault loads the configuration from the directory, falling back to
// the defaults if it was never initialized.
func LoadOrDefault(path string) (*Configuration, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Initialize writes the default configuration to dir.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	if err := afero.NewOsFs().MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return initialize(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initialize(configFs afero.Fs, logger *log.Logger) (*Configuration, error) {
	exists, err := afero.Exists(configFs, ConfigurationName)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("- %s already exists, keeping it", ConfigurationName)
	default:
		logger.Printf("- Writing %s", ConfigurationName)
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	logger.Printf("- Creating %s/", LogsDirName)
	if err := configFs.MkdirAll(LogsDirName, 0700); err != nil {
		return nil, err
	}

	return load(configFs)
}
