package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// Settings is the runtime configuration of the service.
type Settings struct {
	Server  ServerSettings  `koanf:"server"`
	Data    DataSettings    `koanf:"data"`
	Locale  LocaleSettings  `koanf:"locale"`
	Feed    FeedSettings    `koanf:"feed"`
	Log     LogSettings     `koanf:"log"`
	Metrics MetricsSettings `koanf:"metrics"`
}

// ServerSettings controls the HTTP listener.
type ServerSettings struct {
	Bind string `koanf:"bind"`
	Port string `koanf:"port"`
}

// Addr joins bind address and port.
func (s ServerSettings) Addr() string {
	return s.Bind + AddrSeparator + s.Port
}

// DataSettings locates the runtime-editable tables.
type DataSettings struct {
	// Dir is the directory holding the editable CSV files.
	Dir          string `koanf:"dir"`
	SpecialFile  string `koanf:"special_file"`
	OverrideFile string `koanf:"override_file"`
	FlagFile     string `koanf:"flag_file"`
}

// SpecialPath returns the location of the special event table.
func (d DataSettings) SpecialPath() string { return filepath.Join(d.Dir, d.SpecialFile) }

// OverridePath returns the location of the override table.
func (d DataSettings) OverridePath() string { return filepath.Join(d.Dir, d.OverrideFile) }

// FlagPath returns the location of the flag table.
func (d DataSettings) FlagPath() string { return filepath.Join(d.Dir, d.FlagFile) }

// LocaleSettings selects the language of labels and greetings.
type LocaleSettings struct {
	Language string `koanf:"language"`
}

// FeedSettings sizes the default iCalendar window, in days.
type FeedSettings struct {
	Days int `koanf:"days"`
}

// LogSettings defines the rotating log file. An empty File disables file output.
type LogSettings struct {
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Debug      bool   `koanf:"debug"`
}

// MetricsSettings toggles the Prometheus recorder and the metrics route.
type MetricsSettings struct {
	Enabled bool `koanf:"enabled"`
}

// Load reads the optional YAML file at path, applies SCHED_ environment
// overrides (SCHED_SERVER__PORT -> server.port), then fills defaults and validates.
func Load(path string) (*Settings, error) {
	k := koanf.New(ConfigDelim)

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("%s: %s", ErrUnsupportedCfg, ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrLoadConfig, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ConfigDelim, envKey), nil); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	var s Settings
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}
	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps SCHED_DATA__SPECIAL_FILE to data.special_file.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, strings.ToLower(EnvDelimiter), ConfigDelim)
}

// SetDefaults applies sane defaults.
func (s *Settings) SetDefaults() {
	if s.Server.Bind == "" {
		s.Server.Bind = DefaultBindAddr
	}
	if s.Server.Port == "" {
		s.Server.Port = DefaultPort
	}
	if s.Data.Dir == "" {
		s.Data.Dir = DefaultDataDir
	}
	if s.Data.SpecialFile == "" {
		s.Data.SpecialFile = DefaultSpecialFile
	}
	if s.Data.OverrideFile == "" {
		s.Data.OverrideFile = DefaultOverrideFile
	}
	if s.Data.FlagFile == "" {
		s.Data.FlagFile = DefaultFlagFile
	}
	if s.Locale.Language == "" {
		s.Locale.Language = DefaultLanguage
	}
	if s.Feed.Days == 0 {
		s.Feed.Days = DefaultFeedDays
	}
	if s.Log.MaxSizeMB == 0 {
		s.Log.MaxSizeMB = 10
	}
	if s.Log.MaxBackups == 0 {
		s.Log.MaxBackups = 3
	}
	if s.Log.MaxAgeDays == 0 {
		s.Log.MaxAgeDays = 28
	}
}

// Validate checks mandatory fields.
func (s Settings) Validate() error {
	if s.Server.Port == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Server.Port)
	if err != nil || port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}
	if _, err := language.Parse(s.Locale.Language); err != nil {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Locale.Language)
	}
	if s.Feed.Days < 1 || s.Feed.Days > MaxFeedDays {
		return errors.New(ErrFeedDays)
	}
	return nil
}
