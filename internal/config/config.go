// Package config resolves runtime settings from an optional YAML file
// and the environment. Environment variables win over file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface of the application.
type Config struct {
	ModelPath     string `yaml:"model_path"`
	MetadataPath  string `yaml:"metadata_path"`
	Provider      string `yaml:"provider"`
	ProviderModel string `yaml:"provider_model"`
	Port          string `yaml:"port"`
	UploadsDir    string `yaml:"uploads_dir"`
	StaticDir     string `yaml:"static_dir"`
}

// Load reads the YAML file at path (when non-empty and present), then
// applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	overrideFromEnv(&cfg.ModelPath, "RADGEN_MODEL_PATH")
	overrideFromEnv(&cfg.MetadataPath, "RADGEN_METADATA_PATH")
	overrideFromEnv(&cfg.Provider, "RADGEN_PROVIDER")
	overrideFromEnv(&cfg.ProviderModel, "RADGEN_PROVIDER_MODEL")
	overrideFromEnv(&cfg.Port, "PORT")

	applyDefault(&cfg.ModelPath, "models/chest_xray.onnx")
	applyDefault(&cfg.MetadataPath, "models/chest_xray.json")
	applyDefault(&cfg.Provider, "gemini")
	applyDefault(&cfg.Port, "8888")
	applyDefault(&cfg.UploadsDir, "uploads")
	applyDefault(&cfg.StaticDir, "static")

	return cfg, nil
}

func overrideFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func applyDefault(target *string, value string) {
	if *target == "" {
		*target = value
	}
}
