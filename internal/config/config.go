// Package config loads the run configuration ("parameter file").
//
// Sources are layered, lowest to highest precedence: built-in defaults, the
// parameter file (YAML or JSON), METAPROBE_* environment variables, and
// command-line flags that were set explicitly. A .env file, when present, is
// loaded into the process environment first. A catalog without a DSN gets one
// assembled from the DSN_* variables (see CatalogDSNFromEnv).
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/probe"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "METAPROBE_"

// Config holds one run's settings.
type Config struct {
	Infile        string        `koanf:"infile"`
	Metafile      string        `koanf:"metafile"`
	Format        string        `koanf:"format"`
	Separator     string        `koanf:"separator"`
	HasHeader     *bool         `koanf:"hasheader"`
	Encoding      string        `koanf:"encoding"`
	FlattenNested bool          `koanf:"flatten_nested"`
	Catalog       CatalogConfig `koanf:"catalog"`
	Metrics       MetricsConfig `koanf:"metrics"`
	LogLevel      string        `koanf:"log_level"`
}

// CatalogConfig selects the optional profile catalog. Empty Kind disables it.
type CatalogConfig struct {
	Kind string `koanf:"kind"`
	DSN  string `koanf:"dsn"`
}

// MetricsConfig selects the metrics backend ("none" or "datadog").
type MetricsConfig struct {
	Backend string `koanf:"backend"`
	Tags    string `koanf:"tags"`
}

func defaults() map[string]any {
	return map[string]any{
		"metrics.backend": "none",
		"log_level":       "info",
	}
}

// Options tunes Load.
type Options struct {
	// EnvFiles are dotenv files to load. Missing files are ignored unless
	// listed explicitly here; with no entries ".env" is tried.
	EnvFiles []string
}

// Load builds a Config from paramFile (may be empty) and flags (may be nil).
// It does not validate; call Validate.
func Load(paramFile string, flags *pflag.FlagSet, opt Options) (*Config, error) {
	if err := loadDotenv(opt.EnvFiles); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "load defaults")
	}

	// YAML is a superset of JSON, so one parser serves both file styles.
	if paramFile != "" {
		if err := k.Load(file.Provider(paramFile), yaml.Parser()); err != nil {
			return nil, apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "read parameter file %s", paramFile)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "decode configuration")
	}

	cfg.Catalog.Kind = NormalizeCatalogKind(cfg.Catalog.Kind)
	if cfg.Catalog.Kind != "" && cfg.Catalog.DSN == "" {
		cfg.Catalog.DSN = CatalogDSNFromEnv(cfg.Catalog.Kind, os.Getenv)
	}
	return &cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load(".env")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "load .env")
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return apperrors.WithCodef(apperrors.CodeConfigInvalid, err, "load env files")
	}
	return nil
}

// sectionKeys are nested config sections; their first underscore in an
// environment or flag name becomes the koanf path delimiter.
var sectionKeys = []string{"catalog", "metrics"}

func nest(key string) string {
	for _, s := range sectionKeys {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return key
}

// envKey maps METAPROBE_CATALOG_DSN to catalog.dsn.
func envKey(s string) string {
	return nest(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)))
}

// flagOnly are CLI flags that are not configuration keys.
var flagOnly = map[string]bool{
	"report":   true,
	"env-file": true,
}

// flagKey maps --catalog-kind to catalog.kind and --log-level to log_level.
func flagKey(name string) string {
	if flagOnly[name] {
		return ""
	}
	return nest(strings.ReplaceAll(name, "-", "_"))
}

// Validate checks the whole configuration once. Every failure is a
// CONFIG_INVALID error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Infile) == "" {
		return apperrors.ConfigInvalid("infile is required")
	}
	if strings.TrimSpace(c.Metafile) == "" {
		return apperrors.ConfigInvalid("metafile is required")
	}
	if c.Format != "" {
		if _, err := probe.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	if c.Separator != "" {
		if _, err := probe.ParseSeparator(c.Separator); err != nil {
			return err
		}
	}

	switch NormalizeCatalogKind(c.Catalog.Kind) {
	case "":
	case "sqlite", "postgres", "mssql":
		if strings.TrimSpace(c.Catalog.DSN) == "" {
			return apperrors.ConfigInvalidf("catalog.dsn is required for catalog kind %q", c.Catalog.Kind)
		}
	default:
		return apperrors.ConfigInvalidf("unknown catalog kind %q (want sqlite, postgres or mssql)", c.Catalog.Kind)
	}

	switch strings.ToLower(c.Metrics.Backend) {
	case "", "none", "datadog":
	default:
		return apperrors.ConfigInvalidf("unknown metrics backend %q (want none or datadog)", c.Metrics.Backend)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// InputSpec converts the configuration into the profiler's input.
func (c *Config) InputSpec() probe.InputSpec {
	in := probe.InputSpec{
		Path:          c.Infile,
		Format:        c.Format,
		Separator:     c.Separator,
		Encoding:      c.Encoding,
		FlattenNested: c.FlattenNested,
	}
	if c.HasHeader != nil {
		v := *c.HasHeader
		in.HasHeader = &v
	}
	return in
}

// ParseLogLevel maps debug|info|warn|error to a slog level. Empty is info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, apperrors.ConfigInvalidf("unknown log level %q", s)
	}
}
