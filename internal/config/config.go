// Package config loads podcut settings from ~/.config/podcut/config, with
// PODCUT_* environment variables as fallbacks.
package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/alnah/podcut/internal/announce"
)

// Config keys.
const (
	KeyOutputDir  = "output-dir"
	KeyGainDB     = "gain-db"
	KeyVoice      = "voice"
	KeyTTSModel   = "tts-model"
	KeyS3Bucket   = "s3-bucket"
	KeyS3Region   = "s3-region"
	KeyS3Prefix   = "s3-prefix"
	KeyS3Endpoint = "s3-endpoint"
)

// Keys lists every supported key in display order.
var Keys = []string{
	KeyOutputDir, KeyGainDB, KeyVoice, KeyTTSModel,
	KeyS3Bucket, KeyS3Region, KeyS3Prefix, KeyS3Endpoint,
}

// EnvVar returns the environment variable that backs key, e.g.
// "gain-db" -> "PODCUT_GAIN_DB".
func EnvVar(key string) string {
	return "PODCUT_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Gain limits accepted from configuration and flags.
const (
	MinGainDB = -60.0
	MaxGainDB = 60.0
)

var (
	// ErrInvalidKey indicates a key that cannot be stored in the file.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrUnknownKey indicates a key outside Keys.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue indicates a value that fails validation.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrNotDirectory indicates an output-dir that exists but is a file.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotWritable indicates an output-dir podcut cannot write to.
	ErrNotWritable = errors.New("directory is not writable")
)

// Config holds user settings. Every field is optional.
type Config struct {
	OutputDir  string `env:"PODCUT_OUTPUT_DIR" key:"output-dir"`
	GainDB     string `env:"PODCUT_GAIN_DB" key:"gain-db" validate:"omitempty,gain"`
	Voice      string `env:"PODCUT_VOICE" key:"voice" validate:"omitempty,voice"`
	TTSModel   string `env:"PODCUT_TTS_MODEL" key:"tts-model" validate:"omitempty,oneof=tts-1 tts-1-hd gpt-4o-mini-tts"`
	S3Bucket   string `env:"PODCUT_S3_BUCKET" key:"s3-bucket" validate:"omitempty,min=3,max=63"`
	S3Region   string `env:"PODCUT_S3_REGION" key:"s3-region"`
	S3Prefix   string `env:"PODCUT_S3_PREFIX" key:"s3-prefix"`
	S3Endpoint string `env:"PODCUT_S3_ENDPOINT" key:"s3-endpoint" validate:"omitempty,url"`
}

// Gain returns the configured gain and whether one is set.
func (c Config) Gain() (float64, bool) {
	if c.GainDB == "" {
		return 0, false
	}
	db, err := strconv.ParseFloat(c.GainDB, 64)
	if err != nil {
		return 0, false
	}
	return db, true
}

// S3Enabled reports whether uploads have a bucket to go to.
func (c Config) S3Enabled() bool { return c.S3Bucket != "" }

// field returns a pointer to the field stored under key.
func (c *Config) field(key string) (*string, bool) {
	switch key {
	case KeyOutputDir:
		return &c.OutputDir, true
	case KeyGainDB:
		return &c.GainDB, true
	case KeyVoice:
		return &c.Voice, true
	case KeyTTSModel:
		return &c.TTSModel, true
	case KeyS3Bucket:
		return &c.S3Bucket, true
	case KeyS3Region:
		return &c.S3Region, true
	case KeyS3Prefix:
		return &c.S3Prefix, true
	case KeyS3Endpoint:
		return &c.S3Endpoint, true
	}
	return nil, false
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/podcut.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "podcut"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "podcut"), nil
}

func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the config file, fills unset keys from the environment and
// validates the result. A missing file is not an error.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, env envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: env}); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}

	p, err := path()
	if err != nil {
		return cfg, err
	}
	data, err := parseFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	for key, value := range data {
		if f, ok := cfg.field(key); ok && value != "" {
			*f = value
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every set field.
func (c Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateValue checks value as if it were stored under key.
func ValidateValue(key, value string) error {
	var c Config
	f, ok := c.field(key)
	if !ok {
		return fmt.Errorf("%w: %s (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	*f = value
	return c.Validate()
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string { return fld.Tag.Get("key") })
	_ = v.RegisterValidation("gain", func(fl validator.FieldLevel) bool {
		db, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && db >= MinGainDB && db <= MaxGainDB
	})
	_ = v.RegisterValidation("voice", func(fl validator.FieldLevel) bool {
		return announce.IsVoice(fl.Field().String())
	})
	return v
}

// describe turns validator errors into one ErrInvalidValue naming each key.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s=%q %s", e.Field(), e.Value(), rule(e)))
	}
	return fmt.Errorf("%w: %s", ErrInvalidValue, strings.Join(msgs, "; "))
}

func rule(e validator.FieldError) string {
	switch e.Tag() {
	case "gain":
		return fmt.Sprintf("must be a number of dB between %g and %g", MinGainDB, MaxGainDB)
	case "voice":
		return "must be one of " + strings.Join(announce.Voices, ", ")
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "url":
		return "must be a URL"
	case "min", "max":
		return "must be 3 to 63 characters"
	default:
		return "is invalid"
	}
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return data, nil
}

// Save writes a single key=value to the config file, creating it if needed.
// Other keys are kept; comments are not.
func Save(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\n\r") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("%w: value for %s spans lines", ErrInvalidValue, key)
	}
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value
	return writeFile(p, existing)
}

// writeFile writes data sorted by key through a temp file and rename.
func writeFile(p string, data map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), ".config-*")
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	w := bufio.NewWriter(tmp)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, data[k])
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil { // #nosec G302 -- config file, no secrets
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	data, err := List()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns all values stored in the config file.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}
	data, err := parseFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	return data, err
}

// EnsureOutputDir expands ~, creates d if missing and checks it is a
// writable directory.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: output-dir cannot be empty", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("cannot create directory: %w", err)
		}
	case err != nil:
		return fmt.Errorf("cannot access directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotDirectory, d)
	}

	probe, err := os.CreateTemp(d, ".podcut-write-test-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, d, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
