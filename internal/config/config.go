package config

import (
	"os"
	"path/filepath"
	"strings"

	"kbmod/internal/errors"
	"kbmod/pkg/types"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
type Config struct {
	Hotkey struct {
		Modifiers []string `yaml:"modifiers"` // Modifier names, e.g. [control, shift]
	} `yaml:"hotkey"`
	UI struct {
		Abbreviated bool `yaml:"abbreviated"` // Use Ctrl instead of Control in summaries
	} `yaml:"ui"`
	Log struct {
		Debug bool   `yaml:"debug"` // Enable debug output
		JSON  bool   `yaml:"json"`  // One JSON object per line
		File  string `yaml:"file"`  // Also write to this file
	} `yaml:"log"`
}

// New returns the default configuration.
func New() *Config {
	return defaultConfig()
}

// DefaultPath returns ~/.config/kbmod/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot resolve home directory")
	}
	return filepath.Join(home, ".config", "kbmod", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewFileError("error reading config file", path, errors.FileAccessDenied, err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if tempCfg.Hotkey.Modifiers != nil {
		cfg.Hotkey.Modifiers = tempCfg.Hotkey.Modifiers
	}
	cfg.UI.Abbreviated = tempCfg.UI.Abbreviated
	cfg.Log = tempCfg.Log

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Hotkey.Modifiers = []string{"control", "shift"}
	return cfg
}

// SaveConfig saves the configuration to the specified file, creating
// parent directories as needed. The file is written to a temporary sibling
// and renamed into place, so readers never see it half written.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewFileError("failed to create config directory", filepath.Dir(path), errors.FileOperationFailed, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.NewFileError("failed to create temporary config file", path, errors.FileOperationFailed, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewFileError("failed to write config file", path, errors.FileOperationFailed, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return errors.NewFileError("failed to set config file mode", path, errors.FileOperationFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewFileError("failed to write config file", path, errors.FileOperationFailed, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.NewFileError("failed to replace config file", path, errors.FileOperationFailed, err)
	}
	return nil
}

// Validate checks that every modifier name resolves.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}
	if _, err := c.Bitmask(); err != nil {
		return errors.NewConfigError("invalid modifier", "hotkey.modifiers", errors.InvalidConfig, err)
	}
	return nil
}

// Bitmask returns the configured modifiers as a bitmask.
func (c *Config) Bitmask() (types.Bitmask, error) {
	var mask types.Bitmask
	for _, name := range c.Hotkey.Modifiers {
		m := types.ParseModifier(name)
		if m == types.ModNull {
			return 0, errors.NewModifierError("unknown modifier", name, errors.InvalidModifier, nil)
		}
		mask = mask.With(m)
	}
	return mask, nil
}

// SetBitmask stores mask as lower-case canonical modifier names.
func (c *Config) SetBitmask(mask types.Bitmask) {
	names := make([]string, 0, mask.Count())
	for _, m := range mask.Modifiers() {
		names = append(names, strings.ToLower(m.Name(false)))
	}
	c.Hotkey.Modifiers = names
}
