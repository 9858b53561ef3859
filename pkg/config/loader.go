// Package config loads layered configuration into tagged structs.
//
// Sources are applied in order: `default:` struct tags, an optional YAML
// file, an optional dotenv file, then environment variables named by `env:`
// tags. A variable prefixed with the upper-cased service name
// (CATALOG_SERVER_PORT for SERVER_PORT) wins over the plain name.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// LogConfig configures logging behavior
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" default:"console"`
	Debug  bool   `yaml:"debug" env:"DEBUG" default:"false"`
}

// ConfigureZerolog sets the global zerolog level from the log configuration
func (c *LogConfig) ConfigureZerolog() {
	zerolog.SetGlobalLevel(c.ZerologLevel())
}

// ZerologLevel resolves the configured level name. Debug forces debug level
// and unknown names fall back to info.
func (c *LogConfig) ZerologLevel() zerolog.Level {
	if c.Debug {
		return zerolog.DebugLevel
	}
	switch strings.ToLower(c.Level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// JSONOutput reports whether logs should be written as JSON lines instead of
// the human-readable console format
func (c *LogConfig) JSONOutput() bool {
	return strings.EqualFold(c.Format, "json")
}

// LoaderConfig configures how configuration is loaded
type LoaderConfig struct {
	ConfigFile      string
	EnvironmentFile string
	ServiceName     string
}

// Loader handles loading configuration from multiple sources
type Loader struct {
	config LoaderConfig
}

// NewLoader creates a new configuration loader
func NewLoader(cfg LoaderConfig) *Loader {
	return &Loader{config: cfg}
}

// Load loads configuration into the provided struct pointer
func (l *Loader) Load(target interface{}) error {
	if err := l.setDefaults(reflect.ValueOf(target)); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}

	if l.config.ConfigFile != "" {
		if err := l.loadFromYAML(target, l.config.ConfigFile); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if l.config.EnvironmentFile != "" {
		if err := l.loadEnvironmentFile(l.config.EnvironmentFile); err != nil {
			return fmt.Errorf("failed to load environment file: %w", err)
		}
	}

	if err := l.loadFromEnv(reflect.ValueOf(target), ""); err != nil {
		return fmt.Errorf("failed to load from environment: %w", err)
	}

	return nil
}

func isStruct(field reflect.Value) bool {
	return field.Kind() == reflect.Struct ||
		(field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct)
}

func (l *Loader) setDefaults(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if isStruct(field) {
			if err := l.setDefaults(field); err != nil {
				return err
			}
			continue
		}

		if def := fieldType.Tag.Get("default"); def != "" {
			if err := setFieldValue(field, def); err != nil {
				return fmt.Errorf("failed to set default for field %s: %w", fieldType.Name, err)
			}
		}
	}

	return nil
}

// loadFromYAML overlays a YAML file. A missing file is not an error.
func (l *Loader) loadFromYAML(target interface{}, filename string) error {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

// loadEnvironmentFile exports variables from a dotenv file without
// overriding variables already present in the process environment
func (l *Loader) loadEnvironmentFile(filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil
	}

	values, err := godotenv.Read(filename)
	if err != nil {
		return fmt.Errorf("failed to parse environment file %s: %w", filename, err)
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to export %s: %w", key, err)
			}
		}
	}
	return nil
}

func (l *Loader) loadFromEnv(v reflect.Value, prefix string) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if isStruct(field) {
			nested := strings.ToUpper(fieldType.Name)
			if prefix != "" {
				nested = prefix + "_" + nested
			}
			if err := l.loadFromEnv(field, nested); err != nil {
				return err
			}
			continue
		}

		envName := fieldType.Tag.Get("env")
		if envName == "" {
			envName = strings.ToUpper(fieldType.Name)
			if prefix != "" {
				envName = prefix + "_" + envName
			}
		}

		candidates := []string{envName}
		if l.config.ServiceName != "" {
			candidates = append([]string{strings.ToUpper(l.config.ServiceName) + "_" + envName}, candidates...)
		}

		for _, name := range candidates {
			value, exists := os.LookupEnv(name)
			if !exists {
				continue
			}
			if err := setFieldValue(field, value); err != nil {
				return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, name, err)
			}
			break
		}
	}

	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// setFieldValue parses a string into the field's kind. String slices are
// comma-separated.
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			field.SetBool(true)
		case "false", "0", "no", "off":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid boolean value: %s", value)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value: %s", value)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		var parts []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		field.Set(reflect.ValueOf(parts).Convert(field.Type()))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}

	return nil
}

// FindConfigFile searches for <serviceName>.yaml in the current directory,
// ./config, ./configs, /etc/<serviceName> and $HOME/.<serviceName>
func FindConfigFile(serviceName string) string {
	configName := serviceName + ".yaml"

	searchPaths := []string{
		configName,
		filepath.Join("config", configName),
		filepath.Join("configs", configName),
		filepath.Join("/etc", serviceName, configName),
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, "."+serviceName, configName))
	}

	return firstExisting(searchPaths)
}

// FindEnvironmentFile searches for .env or <serviceName>.env
func FindEnvironmentFile(serviceName string) string {
	envName := serviceName + ".env"

	return firstExisting([]string{
		".env",
		envName,
		filepath.Join("config", ".env"),
		filepath.Join("config", envName),
		filepath.Join("configs", ".env"),
		filepath.Join("configs", envName),
	})
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
