package layerrenamer

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ButtonName          string         `yaml:"button_name"`
	ServiceTilesName    string         `yaml:"service_tiles_name"`
	ListItemName        string         `yaml:"list_item_name"`
	CustomRenames       []CustomRename `yaml:"custom_renames"`
	NotificationTimeout time.Duration  `yaml:"notification_timeout"`
	LogLevel            string         `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		ButtonName:          ButtonComponent,
		ServiceTilesName:    ServiceTilesComponent,
		ListItemName:        ListItemComponent,
		NotificationTimeout: 3 * time.Second,
		LogLevel:            "info",
	}
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// RenameRequest returns a request carrying the configured names and rules.
func (c *Config) RenameRequest() RenameRequest {
	return RenameRequest{
		ButtonName:       c.ButtonName,
		ServiceTilesName: c.ServiceTilesName,
		ListItemName:     c.ListItemName,
		CustomRenames:    append([]CustomRename(nil), c.CustomRenames...),
	}
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
