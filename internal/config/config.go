// Package config resolves storyvault settings.
//
// Layers, later wins:
//  1. built-in defaults
//  2. an optional YAML file
//  3. a .env file (only for variables not set in the environment)
//  4. STORYVAULT_* environment variables
//
// The merged result is checked against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvDB             = "STORYVAULT_DB"
	EnvLogLevel       = "STORYVAULT_LOG_LEVEL"
	EnvDefaultProject = "STORYVAULT_DEFAULT_PROJECT"
)

// DefaultEnvFile is the dotenv file Load reads from the working directory.
const DefaultEnvFile = ".env"

// Config is the resolved application configuration.
type Config struct {
	DB             string `yaml:"db" json:"db"`
	LogLevel       string `yaml:"log_level" json:"log_level"`
	DefaultProject string `yaml:"default_project" json:"default_project"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB:             "story-management.db",
		LogLevel:       "info",
		DefaultProject: "Default",
	}
}

// SlogLevel converts LogLevel for a slog handler. Unknown values are info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Source says where Load looks. Zero fields skip that layer, except
// Getenv, which defaults to os.Getenv.
type Source struct {
	File    string
	EnvFile string
	Getenv  func(string) string
}

// Load resolves the configuration from the YAML file at path (skipped when
// empty), ./.env and the process environment.
func Load(path string) (Config, error) {
	return Source{File: path, EnvFile: DefaultEnvFile}.Load()
}

// Load resolves the configuration from s.
func (s Source) Load() (Config, error) {
	cfg := Default()

	if s.File != "" {
		if err := readFile(s.File, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if s.EnvFile != "" {
		m, err := godotenv.Read(s.EnvFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("failed to read %s: %w", s.EnvFile, err)
		}
	}

	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[key])
	}
	if v := lookup(EnvDB); v != "" {
		cfg.DB = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := lookup(EnvDefaultProject); v != "" {
		cfg.DefaultProject = v
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject typos like "logLevel"
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

//go:embed schema.cue
var schemaSource string

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(cfg))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
