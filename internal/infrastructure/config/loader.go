package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"qacraft/internal/domain"
)

// FileLoader loads YAML configuration from ~/.qacraft/config.yaml
// (overridable via QACRAFT_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing config file is not an
// error; the default config is written out and returned.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("QACRAFT_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".qacraft", "config.yaml")
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func defaultConfig() domain.Config {
	base := filepath.Join(userHomeDir(), ".qacraft")
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences: domain.Preferences{
			DefaultModel:   "gpt-4o",
			TimeoutSeconds: 60,
		},
		Storage: domain.StorageSettings{
			TestCaseDir:  filepath.Join(base, "test_cases"),
			CodeDir:      filepath.Join(base, "generated_code"),
			RecordingDir: filepath.Join(base, "recordings"),
			SessionDir:   filepath.Join(base, "sessions"),
			HistoryDB:    filepath.Join(base, "history.db"),
		},
		Models: []domain.ModelDefinition{
			{
				Name:       "gpt-4o",
				Provider:   "openai",
				Endpoint:   "https://api.openai.com/v1/chat/completions",
				AuthEnvVar: "OPENAI_API_KEY",
				ModelID:    "gpt-4o",
				MaxTokens:  4096,
			},
			{
				Name:       "claude-sonnet",
				Provider:   "anthropic",
				Endpoint:   "https://api.anthropic.com/v1/messages",
				AuthEnvVar: "ANTHROPIC_API_KEY",
				ModelID:    "claude-sonnet-4-20250514",
				MaxTokens:  4096,
				APIFormat: domain.APIFormat{
					AuthHeaderName:    "x-api-key",
					SystemMessageMode: domain.SystemMessageModeSeparate,
					ResponseJSONPath:  domain.AnthropicResponsePath,
					ExtraHeaders:      map[string]string{"anthropic-version": "2023-06-01"},
				},
			},
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = 60
	}
	base := filepath.Join(userHomeDir(), ".qacraft")
	if cfg.Storage.TestCaseDir == "" {
		cfg.Storage.TestCaseDir = filepath.Join(base, "test_cases")
	}
	if cfg.Storage.CodeDir == "" {
		cfg.Storage.CodeDir = filepath.Join(base, "generated_code")
	}
	if cfg.Storage.RecordingDir == "" {
		cfg.Storage.RecordingDir = filepath.Join(base, "recordings")
	}
	if cfg.Storage.SessionDir == "" {
		cfg.Storage.SessionDir = filepath.Join(base, "sessions")
	}
	if cfg.Storage.HistoryDB == "" {
		cfg.Storage.HistoryDB = filepath.Join(base, "history.db")
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

// CredentialsDir is where the encrypted credential files and their key
// live. It sits next to the config file, not under the cache directories.
func CredentialsDir() string {
	return filepath.Join(userHomeDir(), ".qacraft", "credentials")
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
