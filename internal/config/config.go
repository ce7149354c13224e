package config

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. PROFILE_DATA_DELIMITER.
const EnvPrefix = "PROFILE_DATA"

// Global configuration structure.
type Global struct {
	// Delimiter is "," | ";" | "tab" | "|"; empty picks one from the file name.
	Delimiter  string   `mapstructure:"delimiter" yaml:"delimiter"`
	NullValues []string `mapstructure:"null_values" yaml:"null_values"`
	LogLevel   string   `mapstructure:"log_level" yaml:"log_level"`
	// LogFormat is "text" | "logfmt" | "json"; empty picks one for the terminal.
	LogFormat  string   `mapstructure:"log_format" yaml:"log_format"`
}

// Load loads configuration from env, an optional file, and defaults.
// Precedence: env > config file > defaults. No file is read unless cfgFile
// is set. Flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("delimiter", "")
	v.SetDefault("null_values", []string{})
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// YAML renders the configuration as YAML.
func (c *Global) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// ParseDelimiter converts a delimiter name into the field separator rune.
// The empty string yields 0, meaning "choose from the file name".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ','|';'|'tab'|'|')", s)
}
