package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/peptiscan/internal/model"
	"gopkg.in/yaml.v3"
)

// Configuration file names. A project keeps its profiles in a .peptiscan
// file next to its sequences; a user-wide fallback lives in the XDG config
// directory under a conventional name.
const (
	// DefaultConfigFile is the per-directory configuration file name.
	DefaultConfigFile = ".peptiscan"

	// XDGConfigFile is the file name inside the XDG config directory.
	XDGConfigFile = "config.yaml"
)

// Loader errors.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidProfile is returned when a profile carries values that could
	// never drive an analysis, such as an unknown detection mode.
	ErrInvalidProfile = errors.New("invalid analysis profile")
)

// LoadConfigFile loads analysis profiles from a YAML file and validates
// every profile it finds. A profile with an unknown mode or a negative
// parameter fails the whole load: a typo in a profile the user asks for by
// name should surface here, not as silently unchanged parameters.
//
// If the file does not exist, ErrConfigNotFound is returned so callers can
// distinguish "no file" from "broken file".
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Profiles == nil {
		cf.Profiles = make(map[string]Profile)
	}

	if err := validateProfile("defaults", cf.Defaults); err != nil {
		return nil, err
	}
	for name, profile := range cf.Profiles {
		if err := validateProfile(name, profile); err != nil {
			return nil, err
		}
	}

	return &cf, nil
}

// validateProfile rejects profile values that could never be applied.
// Zero values are "inherit" and always pass.
func validateProfile(name string, p Profile) error {
	if p.Mode != "" {
		if _, err := model.ParseDetectionMode(p.Mode); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidProfile, name, err)
		}
	}
	if p.SignalPeptideLength < 0 {
		return fmt.Errorf("%w %q: signal peptide length must be non-negative, got %d",
			ErrInvalidProfile, name, p.SignalPeptideLength)
	}
	if p.MinCleavageSites < 0 {
		return fmt.Errorf("%w %q: minimum cleavage sites must be non-negative, got %d",
			ErrInvalidProfile, name, p.MinCleavageSites)
	}
	if p.MinCleavageSpacing < 0 {
		return fmt.Errorf("%w %q: minimum cleavage spacing must be non-negative, got %d",
			ErrInvalidProfile, name, p.MinCleavageSpacing)
	}
	return nil
}

// ConfigSearchPaths returns the candidate configuration file paths in
// precedence order: the current directory, the home directory, then the
// XDG config directory. Unreadable locations are skipped rather than
// reported.
func ConfigSearchPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFile))

	return paths
}

// FindConfigFile resolves the configuration file to load. An explicit
// configPath short-circuits the search and is returned only if it exists;
// otherwise the search paths are probed in order. An empty return means no
// configuration file was found anywhere.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	for _, candidate := range ConfigSearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
