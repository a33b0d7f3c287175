package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/spf13/viper"
)

const (
	EnvConfigDir    = "GW_CONFIG_DIR"
	FileName        = "config.toml"
	defaultLogLevel = "warn"
)

type Hook struct {
	Command string `mapstructure:"command" toml:"command" json:"command" jsonschema:"description=Shell command run with sh -lc inside the new worktree"`
}

// Config is the global config.toml under the config root.
type Config struct {
	Hooks         []Hook `mapstructure:"hooks" toml:"hooks,omitempty" json:"hooks,omitempty" jsonschema:"description=Hooks run after every worktree creation"`
	WorktreesRoot string `mapstructure:"worktrees_root" toml:"worktrees_root,omitempty" json:"worktrees_root,omitempty" jsonschema:"description=Shared base directory; repositories nest under <root>/<repo-name>"`
	LogLevel      string `mapstructure:"log_level" toml:"log_level,omitempty" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogFile       string `mapstructure:"log_file" toml:"log_file,omitempty" json:"log_file,omitempty"`
}

func defaultConfig() *Config {
	return &Config{LogLevel: defaultLogLevel}
}

// Root returns $GW_CONFIG_DIR, or ~/.config/gw.
func Root() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot determine home directory; set " + EnvConfigDir)
	}
	return filepath.Join(home, ".config", "gw"), nil
}

// Load reads <root>/config.toml. A missing file yields defaults; GW_* env
// variables override file values.
func Load(root string) (*Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigFile(filepath.Join(root, FileName))
	v.SetConfigType("toml")
	v.SetEnvPrefix("GW")
	v.AutomaticEnv()

	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("worktrees_root", "")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.WorktreesRoot = ExpandHome(cfg.WorktreesRoot)
	return cfg, nil
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	if len(p) > 1 && p[1] != '/' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// Schema renders a JSON schema for a config struct keyed by its toml names.
func Schema(v any, title string) ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "toml",
	}
	schema := r.Reflect(v)
	schema.Title = title
	schema.Required = nil
	return json.MarshalIndent(schema, "", "  ")
}
