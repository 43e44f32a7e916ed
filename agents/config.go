package agents

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configDirName = "agenttest_cfg"

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// GlobalConfig matches agenttest_cfg/config.yaml inside the workspace.
type GlobalConfig struct {
	Version      string        `yaml:"version"`
	Model        ModelConfig   `yaml:"model"`
	Limits       LimitsConfig  `yaml:"limits"`
	PersonaPaths []string      `yaml:"persona_paths"`
	Logging      LoggingConfig `yaml:"logging"`
	Transcript   string        `yaml:"transcript_db"`
}

// ModelConfig describes the language model endpoint used by every agent.
type ModelConfig struct {
	Endpoint           string `yaml:"endpoint"`
	Name               string `yaml:"name"`
	APIKey             string `yaml:"api_key"`
	CallTimeoutSeconds int    `yaml:"call_timeout_seconds"`
	Debug              bool   `yaml:"debug"`
}

// CallTimeout returns the per-call deadline as a duration.
func (m ModelConfig) CallTimeout() time.Duration {
	return time.Duration(m.CallTimeoutSeconds) * time.Second
}

// LimitsConfig bounds per-request work.
type LimitsConfig struct {
	MaxContentLength int `yaml:"max_content_length"`
	MaxQuestions     int `yaml:"max_questions"`
	ExtractWorkers   int `yaml:"extract_workers"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	EventFile string `yaml:"event_file"`
}

// DefaultConfigPath returns agenttest_cfg/config.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// DefaultPersonaPaths returns the canonical search paths rooted in agenttest_cfg.
func DefaultPersonaPaths(workspace string) []string {
	return []string{filepath.Join(ConfigDir(workspace), "personas")}
}

func defaultConfig(workspace string) *GlobalConfig {
	return &GlobalConfig{
		Version: "1.0.0",
		Model: ModelConfig{
			Endpoint:           "http://localhost:11434",
			Name:               "llama3.2",
			CallTimeoutSeconds: 120,
		},
		Limits: LimitsConfig{
			MaxContentLength: 80000,
			MaxQuestions:     DefaultMaxQuestions,
			ExtractWorkers:   DefaultExtractWorkers,
		},
		PersonaPaths: DefaultPersonaPaths(workspace),
	}
}

// LoadGlobalConfig loads the config or returns defaults when missing.
func LoadGlobalConfig(path, workspace string) (*GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(workspace), nil
		}
		return nil, err
	}
	cfg := defaultConfig(workspace)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.PersonaPaths) == 0 {
		cfg.PersonaPaths = DefaultPersonaPaths(workspace)
	}
	return cfg, nil
}

// SaveGlobalConfig writes the config to disk.
func SaveGlobalConfig(path string, cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// PersonaSearchPaths resolves persona manifest paths for the registry.
func (c *GlobalConfig) PersonaSearchPaths(workspace string) []string {
	if c == nil || len(c.PersonaPaths) == 0 {
		return DefaultPersonaPaths(workspace)
	}
	return c.PersonaPaths
}
