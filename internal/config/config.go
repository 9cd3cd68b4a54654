package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Zuo-Peng/waview/internal/transcript"
)

type Config struct {
	ExportRoot string       `toml:"export_root" envconfig:"EXPORT_ROOT"`
	DBPath     string       `toml:"db_path" envconfig:"DB_PATH"`
	Self       string       `toml:"self" envconfig:"SELF"`
	Locale     LocaleConfig `toml:"locale" ignored:"true"`
}

// LocaleConfig extends the built-in export-format tables.
type LocaleConfig struct {
	AM      []string     `toml:"am"`
	PM      []string     `toml:"pm"`
	Phrases []PhraseRule `toml:"phrases"`
}

type PhraseRule struct {
	Name    string   `toml:"name"`
	Kind    string   `toml:"kind"` // text, image, audio, video or system
	Phrases []string `toml:"phrases"`
}

// envPrefix namespaces overrides, e.g. WAVIEW_DB_PATH.
const envPrefix = "waview"

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	// a missing .env is fine
	_ = godotenv.Load()

	return LoadFrom(filepath.Join(home, ".config", "waview", "config.toml"), home)
}

// LoadFrom applies defaults, then the TOML file at cfgPath if it exists,
// then WAVIEW_* environment overrides.
func LoadFrom(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		ExportRoot: filepath.Join(home, "Documents", "WhatsApp"),
		DBPath:     filepath.Join(home, ".config", "waview", "waview.db"),
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if _, err := cfg.TranscriptLocale(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}
	return cfg, nil
}

// TranscriptLocale merges the configured tables onto the built-in locale.
func (c *Config) TranscriptLocale() (transcript.Locale, error) {
	l := transcript.DefaultLocale()
	l.AM = append(l.AM, c.Locale.AM...)
	l.PM = append(l.PM, c.Locale.PM...)
	for _, r := range c.Locale.Phrases {
		typ, err := parseKind(r.Kind)
		if err != nil {
			return l, fmt.Errorf("phrase rule %q: %w", r.Name, err)
		}
		l.AddRule(transcript.PhraseRule{Name: r.Name, Type: typ, Phrases: r.Phrases})
	}
	return l, nil
}

// Parser builds a transcript parser from the configured locale.
func (c *Config) Parser() (*transcript.Parser, error) {
	l, err := c.TranscriptLocale()
	if err != nil {
		return nil, err
	}
	return transcript.NewParser(l), nil
}

func parseKind(s string) (transcript.MessageType, error) {
	switch t := transcript.MessageType(s); t {
	case transcript.TypeText, transcript.TypeImage, transcript.TypeAudio, transcript.TypeVideo, transcript.TypeSystem:
		return t, nil
	case "":
		return transcript.TypeSystem, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
