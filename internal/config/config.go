// Package config provides configuration management for the gitgov CLI.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (GITGOV_*)
// 3. Project config (.gitgov/cli.yaml in cwd)
// 4. Home config (~/.gitgov/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all gitgov CLI configuration. It is distinct from
// sync.ProjectConfig (.gitgov/config.json), which is a signed-adjacent
// record committed to the gitgov-state branch; this Config governs only
// how the CLI itself behaves on this machine.
type Config struct {
	// Output controls the default output format: "json" prints JSON, any
	// other value prints the human-readable table form.
	Output string `yaml:"output" json:"output"`

	// Remote is the git remote sync push/pull/resolve operate against.
	Remote string `yaml:"remote" json:"remote"`

	// Editor names an editor command. Falls back to $EDITOR, then "vi". It
	// is loaded and reported, but no command opens it: `gitgov sync
	// resolve` works on conflict markers already edited in the worktree.
	Editor string `yaml:"editor" json:"editor"`

	// DefaultRole is the signer role assumed when a command doesn't
	// specify one explicitly (e.g. "author" for task creation).
	DefaultRole string `yaml:"default_role" json:"default_role"`

	// LogLevel controls applog's zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" json:"log_level"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput      = "table"
	defaultRemote      = "origin"
	defaultDefaultRole = "author"
	defaultLogLevel    = "info"
)

// Default returns the default configuration.
func Default() *Config {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	return &Config{
		Output:      defaultOutput,
		Remote:      defaultRemote,
		Editor:      editor,
		DefaultRole: defaultDefaultRole,
		LogLevel:    defaultLogLevel,
		Verbose:     false,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if homeConfig, _ := loadFromPath(homeConfigPath()); homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	if projectConfig, _ := loadFromPath(projectConfigPath()); projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gitgov", "config.yaml")
}

// projectConfigPath returns the project config path. This is CLI
// preference, not project state — it lives alongside, not inside, the
// gitgov-state worktree, so GITGOV_CONFIG can point it anywhere.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("GITGOV_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".gitgov", "cli.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("GITGOV_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("GITGOV_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("GITGOV_EDITOR"); v != "" {
		cfg.Editor = v
	}
	if v := os.Getenv("GITGOV_DEFAULT_ROLE"); v != "" {
		cfg.DefaultRole = v
	}
	if v := os.Getenv("GITGOV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GITGOV_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	return cfg
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.Remote != "" {
		dst.Remote = src.Remote
	}
	if src.Editor != "" {
		dst.Editor = src.Editor
	}
	if src.DefaultRole != "" {
		dst.DefaultRole = src.DefaultRole
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Verbose {
		dst.Verbose = true
	}
	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.gitgov/config.yaml"
	SourceProject Source = ".gitgov/cli.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

type resolved struct {
	Value  string `json:"value"`
	Source Source `json:"source"`
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// ResolvedConfig shows config values with their sources, for `gitgov
// status --verbose`-style introspection of where a setting came from.
type ResolvedConfig struct {
	Output      resolved `json:"output"`
	Remote      resolved `json:"remote"`
	Editor      resolved `json:"editor"`
	DefaultRole resolved `json:"default_role"`
	LogLevel    resolved `json:"log_level"`
}

// Resolve returns configuration with source tracking, using the same
// precedence chain as Load: flags > env > project > home > defaults.
func Resolve(flagOutput string) *ResolvedConfig {
	def := Default()
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeOutput, homeRemote, homeEditor, homeRole, homeLevel string
	if homeConfig != nil {
		homeOutput, homeRemote, homeEditor, homeRole, homeLevel =
			homeConfig.Output, homeConfig.Remote, homeConfig.Editor, homeConfig.DefaultRole, homeConfig.LogLevel
	}
	var projOutput, projRemote, projEditor, projRole, projLevel string
	if projectConfig != nil {
		projOutput, projRemote, projEditor, projRole, projLevel =
			projectConfig.Output, projectConfig.Remote, projectConfig.Editor, projectConfig.DefaultRole, projectConfig.LogLevel
	}

	return &ResolvedConfig{
		Output:      resolveStringField(homeOutput, projOutput, os.Getenv("GITGOV_OUTPUT"), flagOutput, def.Output),
		Remote:      resolveStringField(homeRemote, projRemote, os.Getenv("GITGOV_REMOTE"), "", def.Remote),
		Editor:      resolveStringField(homeEditor, projEditor, os.Getenv("GITGOV_EDITOR"), "", def.Editor),
		DefaultRole: resolveStringField(homeRole, projRole, os.Getenv("GITGOV_DEFAULT_ROLE"), "", def.DefaultRole),
		LogLevel:    resolveStringField(homeLevel, projLevel, os.Getenv("GITGOV_LOG_LEVEL"), "", def.LogLevel),
	}
}
