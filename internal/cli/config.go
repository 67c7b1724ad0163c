package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	ProfilePath string
	Output      string
	Timeout     time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("TTT_SERVER", "http://localhost:3000"),
		ProfilePath: getEnvOrDefault("TTT_PROFILE", defaultProfilePath()),
		Output:      "text",
		Timeout:     10 * time.Second,
	}
}

// Validate checks flag values
func (c *Config) Validate() error {
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("unknown output format %q: use text or json", c.Output)
	}
	if c.Timeout <= 0 {
		return errors.New("--timeout must be positive")
	}
	return nil
}

// Profile is the player this machine plays as
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoadProfile reads the saved profile; a missing file yields nil
func (c *Config) LoadProfile() (*Profile, error) {
	data, err := os.ReadFile(c.ProfilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("corrupt profile %s: %w", c.ProfilePath, err)
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

// SaveProfile writes the profile, creating its directory
func (c *Config) SaveProfile(p Profile) error {
	dir := filepath.Dir(c.ProfilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.ProfilePath, data, 0600)
}

func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ttt", "player.json")
	}
	return filepath.Join(home, ".ttt", "player.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
