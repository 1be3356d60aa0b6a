// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/thinkly/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete thinkly configuration.
type Config struct {
	Gemini   GeminiConfig   `toml:"gemini" json:"gemini"`
	Mistral  MistralConfig  `toml:"mistral" json:"mistral"`
	Exchange ExchangeConfig `toml:"exchange" json:"exchange"`
	Storage  StorageConfig  `toml:"storage" json:"storage"`
	Auth     AuthConfig     `toml:"auth" json:"auth"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Usage    UsageConfig    `toml:"usage" json:"usage"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// GeminiConfig contains Google Gemini configuration.
type GeminiConfig struct {
	// APIKey is sent as the ?key= query parameter.
	APIKey string `toml:"api_key" json:"api_key"`
	// Endpoint is the full generateContent URL without the key.
	Endpoint string `toml:"endpoint" json:"endpoint"`
}

// MistralConfig contains Mistral configuration.
type MistralConfig struct {
	// APIKey is sent as a Bearer token.
	APIKey   string `toml:"api_key" json:"api_key"`
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// Model is one of mistral-large-latest, mistral-medium-latest, mistral-small-latest.
	Model string `toml:"model" json:"model"`
}

// ExchangeConfig controls how requests are dispatched to providers.
type ExchangeConfig struct {
	// TimeoutSecs bounds a single provider call.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MinIntervalMS is the minimum gap between two dispatches, across providers.
	MinIntervalMS int `toml:"min_interval_ms" json:"min_interval_ms"`
}

// StorageConfig selects the durable state backend.
type StorageConfig struct {
	// Backend is "file" (one file per key) or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// DataDir holds the state files or the sqlite database.
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// AuthConfig holds the login gate credentials.
type AuthConfig struct {
	Username string `toml:"username" json:"username"`
	// Password is a plain credential; PasswordHash (bcrypt) takes precedence.
	Password     string `toml:"password" json:"password"`
	PasswordHash string `toml:"password_hash" json:"password_hash"`
	// TOTPSecret enables a second factor when set (base32).
	TOTPSecret string `toml:"totp_secret" json:"totp_secret"`
	// MaxAttemptsPerMinute throttles login attempts.
	MaxAttemptsPerMinute int `toml:"max_attempts_per_minute" json:"max_attempts_per_minute"`
}

// UIConfig contains TUI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light". A stored darkMode preference wins.
	Theme    string `toml:"theme" json:"theme"`
	WordWrap int    `toml:"word_wrap" json:"word_wrap"`
}

// UsageConfig controls token estimation when providers report no usage.
type UsageConfig struct {
	// Tokenizer is "chars" (content length) or "tiktoken" (cl100k_base).
	Tokenizer string `toml:"tokenizer" json:"tokenizer"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultGeminiEndpoint  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	DefaultMistralEndpoint = "https://api.mistral.ai/v1/chat/completions"
	DefaultMistralModel    = "mistral-large-latest"

	DefaultTimeoutSecs   = 30
	DefaultMinIntervalMS = 1000
	DefaultMaxAttempts   = 5
	DefaultWordWrap      = 80
)

// MistralModels lists the accepted mistral.model values.
var MistralModels = []string{
	"mistral-large-latest",
	"mistral-medium-latest",
	"mistral-small-latest",
}

// Default returns a Config with default values.
// Path-valued defaults (data_dir, log file) are filled by SetDefaults.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Endpoint: DefaultGeminiEndpoint,
		},
		Mistral: MistralConfig{
			Endpoint: DefaultMistralEndpoint,
			Model:    DefaultMistralModel,
		},
		Exchange: ExchangeConfig{
			TimeoutSecs:   DefaultTimeoutSecs,
			MinIntervalMS: DefaultMinIntervalMS,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Auth: AuthConfig{
			MaxAttemptsPerMinute: DefaultMaxAttempts,
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: DefaultWordWrap,
		},
		Usage: UsageConfig{
			Tokenizer: "chars",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Timeout returns the per-call provider timeout.
func (e ExchangeConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSecs) * time.Second
}

// MinInterval returns the dispatch pacing floor.
func (e ExchangeConfig) MinInterval() time.Duration {
	return time.Duration(e.MinIntervalMS) * time.Millisecond
}

// HasCredentials reports whether a login credential is configured.
func (a AuthConfig) HasCredentials() bool {
	return a.Username != "" && (a.Password != "" || a.PasswordHash != "")
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the thinkly configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("THINKLY_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".thinkly"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files hold API keys and must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		return LoadFromPath(path)
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish runs the post-decode pipeline shared by every load path.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	if err := c.SetDefaults(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills zero values that have a default, including the
// directory-relative paths.
func (c *Config) SetDefaults() error {
	defaults := Default()

	if c.Gemini.Endpoint == "" {
		c.Gemini.Endpoint = defaults.Gemini.Endpoint
	}
	if c.Mistral.Endpoint == "" {
		c.Mistral.Endpoint = defaults.Mistral.Endpoint
	}
	if c.Mistral.Model == "" {
		c.Mistral.Model = defaults.Mistral.Model
	}
	if c.Exchange.TimeoutSecs == 0 {
		c.Exchange.TimeoutSecs = defaults.Exchange.TimeoutSecs
	}
	if c.Exchange.MinIntervalMS == 0 {
		c.Exchange.MinIntervalMS = defaults.Exchange.MinIntervalMS
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Auth.MaxAttemptsPerMinute == 0 {
		c.Auth.MaxAttemptsPerMinute = defaults.Auth.MaxAttemptsPerMinute
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
	if c.Usage.Tokenizer == "" {
		c.Usage.Tokenizer = defaults.Usage.Tokenizer
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	if c.Storage.DataDir == "" || c.Log.File == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		if c.Storage.DataDir == "" {
			c.Storage.DataDir = filepath.Join(dir, "state")
		}
		if c.Log.File == "" {
			c.Log.File = filepath.Join(dir, "thinkly.log")
		}
	}
	c.Storage.DataDir = ExpandHome(c.Storage.DataDir)
	c.Log.File = ExpandHome(c.Log.File)
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# thinkly configuration file\n")
	buf.WriteString("# Generated by thinkly - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	oneOf := func(field, value string, allowed ...string) {
		for _, a := range allowed {
			if strings.EqualFold(value, a) {
				return
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid value '%s', must be one of: %s", value, strings.Join(allowed, ", ")),
		})
	}
	httpURL := func(field, value string) {
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host/...", value),
			})
		}
	}
	between := func(field string, value, lo, hi int) {
		if value < lo || value > hi {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%d out of range [%d, %d]", value, lo, hi),
			})
		}
	}

	httpURL("gemini.endpoint", c.Gemini.Endpoint)
	httpURL("mistral.endpoint", c.Mistral.Endpoint)
	oneOf("mistral.model", c.Mistral.Model, MistralModels...)

	between("exchange.timeout_secs", c.Exchange.TimeoutSecs, 1, 600)
	between("exchange.min_interval_ms", c.Exchange.MinIntervalMS, DefaultMinIntervalMS, 60000)

	oneOf("storage.backend", c.Storage.Backend, "file", "sqlite")

	between("auth.max_attempts_per_minute", c.Auth.MaxAttemptsPerMinute, 1, 600)
	if c.Auth.Password != "" && c.Auth.PasswordHash != "" {
		errs = append(errs, ValidationError{
			Field:   "auth.password",
			Message: "set either password or password_hash, not both",
		})
	}

	oneOf("ui.theme", c.UI.Theme, "auto", "dark", "light")
	between("ui.word_wrap", c.UI.WordWrap, 20, 400)
	oneOf("usage.tokenizer", c.Usage.Tokenizer, "chars", "tiktoken")
	oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error")

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - THINKLY_GEMINI_KEY / GEMINI_API_KEY: gemini.api_key
//   - THINKLY_MISTRAL_KEY / MISTRAL_API_KEY: mistral.api_key
//   - THINKLY_STORAGE: storage.backend
//   - THINKLY_DATA_DIR: storage.data_dir
//   - THINKLY_LOG_LEVEL: log.level
//
// The THINKLY_ variant wins when both are set.
func (c *Config) ApplyEnvOverrides() {
	if key := firstEnv("THINKLY_GEMINI_KEY", "GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := firstEnv("THINKLY_MISTRAL_KEY", "MISTRAL_API_KEY"); key != "" {
		c.Mistral.APIKey = key
	}
	if backend := os.Getenv("THINKLY_STORAGE"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if dir := os.Getenv("THINKLY_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if level := os.Getenv("THINKLY_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "exchange.timeout_secs").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Keys returns all configuration keys in dot notation, in declaration order.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := section.Tag.Get("toml")
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// secretKeys are redacted by String and by the config command.
var secretKeys = map[string]bool{
	"gemini.api_key":     true,
	"mistral.api_key":    true,
	"auth.password":      true,
	"auth.password_hash": true,
	"auth.totp_secret":   true,
}

// IsSecret reports whether a dot-notation key holds a credential.
func IsSecret(key string) bool {
	return secretKeys[strings.ToLower(key)]
}

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy with every secret replaced by "[REDACTED]".
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	for key := range secretKeys {
		if v, err := safe.Get(key); err == nil && v != "" {
			_ = safe.Set(key, "[REDACTED]")
		}
	}
	return safe
}

// String returns a string representation of the config for debugging.
// SECURITY: Redacts API keys and credentials.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}
