package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DBPath   string `json:"db_path"`
	HTTPAddr string `json:"http_addr"`
}

func Default() Config {
	return Config{HTTPAddr: ":5000"}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "eventdesk", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

// ApplyEnv overlays EVENTDESK_DB and EVENTDESK_ADDR onto cfg. Callers
// load .env into the environment first.
func ApplyEnv(cfg Config) Config {
	if value := os.Getenv("EVENTDESK_DB"); value != "" {
		cfg.DBPath = value
	}
	if value := os.Getenv("EVENTDESK_ADDR"); value != "" {
		cfg.HTTPAddr = value
	}
	return cfg
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
