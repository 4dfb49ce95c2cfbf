package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes for the HTTP service.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

const (
	DefaultAddr         = "127.0.0.1:7420"
	DefaultMaxBodyBytes = 1 << 20
	DefaultPearScheme   = "pear"
)

var schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

// Config holds the application configuration.
type Config struct {
	PearScheme     string       `json:"pear_scheme,omitempty"`
	DisableLinkify bool         `json:"disable_linkify,omitempty"`
	RawInput       bool         `json:"raw_input,omitempty"`
	EmojiFile      string       `json:"emoji_file,omitempty"`
	MembersFile    string       `json:"members_file,omitempty"`
	Server         ServerConfig `json:"server"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.PearScheme, validation.Required, validation.Match(schemePattern)),
	); err != nil {
		return err
	}
	return c.Server.Validate()
}

// ServerConfig holds the HTTP service configuration.
type ServerConfig struct {
	Addr         string     `json:"addr"`
	MaxBodyBytes int64      `json:"max_body_bytes"`
	Auth         AuthConfig `json:"auth"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1)), validation.Max(int64(64<<20))),
	); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the service authenticates callers:
//   - "disabled" (default): no authentication.
//   - "token": Bearer token authentication. Token may be left empty, in
//     which case the token stored in the system keychain is used.
type AuthConfig struct {
	Mode  string `json:"mode"`
	Token string `json:"token,omitempty"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	)
}

// Enabled returns true when authentication is active.
func (c *AuthConfig) Enabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefault returns a Config with default values.
func NewDefault() Config {
	return Config{
		PearScheme: DefaultPearScheme,
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
			Auth:         AuthConfig{Mode: AuthModeDisabled},
		},
	}
}

// configDir returns the config directory path.
// Exported as a var for testing.
var configDir = defaultConfigDir

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "chatmark")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "chatmark")
}

// Path returns the location of the default config file.
func Path() string {
	return filepath.Join(configDir(), "config.json")
}

// Exists returns true if a config file has been saved.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads the default config file. Returns the default config if the
// file doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config file. Fields missing from the file keep their
// default values. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default location.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile validates cfg and writes it to path, creating the parent
// directory if needed.
func SaveFile(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// ValidatePearScheme checks a single pear link scheme.
func ValidatePearScheme(s string) error {
	return validation.Validate(s, validation.Required, validation.Match(schemePattern))
}
