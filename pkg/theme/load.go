package theme

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrThemeFileNotFound is returned when the theme file does not exist.
	ErrThemeFileNotFound = errors.New("theme: file not found")

	// ErrInvalidThemeFile is returned when the theme file is not valid YAML.
	ErrInvalidThemeFile = errors.New("theme: invalid file")
)

// LoadFile reads YAML overrides from path and merges them over the
// documented defaults, so a file only needs to list the fields it changes.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Theme{}, errors.Join(ErrThemeFileNotFound, err)
		}
		return Theme{}, err
	}
	return Parse(data)
}

// Parse unmarshals YAML overrides and merges them over the defaults.
func Parse(data []byte) (Theme, error) {
	var override Theme
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Theme{}, errors.Join(ErrInvalidThemeFile, err)
	}
	return Default().Merge(override), nil
}
