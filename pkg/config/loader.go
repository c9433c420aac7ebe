// Package config loads service configuration in layers: struct tag
// defaults, then an optional YAML or JSON file, then environment
// variables, each layer overriding the one before it. Defaults live in
// code, files carry per-environment overrides, and env vars (ConfigMaps,
// Secrets) have the last word.
//
// # Struct Tags
//
// Three tags drive the loader:
//
//   - `env:"VAR_NAME"` maps the field to an environment variable
//   - `envDefault:"value"` sets a default when the field is zero-valued
//   - `required:"true"` fails loading if the field remains zero
//
// File-based loading goes through the regular `yaml` / `json` tags.
//
// # Composed Configs
//
// Service configs are usually composed from component configs: a JWT
// section, an internal-key section, a listen section. Nested structs
// participate fully in every layer. Their env tags are joined with the
// parent's tag and the global prefix using underscores, and after loading
// each nested component that implements [Validator] is validated, so a
// composed config needs no hand-written delegation:
//
//	type ServiceConfig struct {
//	    Addr string         `env:"ADDR" envDefault:":8080" yaml:"addr"`
//	    JWT  auth.JWTConfig `env:"JWT" yaml:"jwt"`
//	}
//
//	cfg := config.MustLoad[ServiceConfig](
//	    config.New().WithEnvPrefix("SVC").WithFile("config.yaml"),
//	)
//
// reads SVC_ADDR and SVC_JWT_ISSUER, and runs JWTConfig.Validate.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// durationType distinguishes time.Duration fields from plain int64
// fields during traversal (both report Kind() == Int64).
var durationType = reflect.TypeOf(time.Duration(0))

// Loader resolves a configuration struct through the package's layers.
// Configure it with [Loader.WithEnvPrefix] and [Loader.WithFile], then
// call [Loader.Load] once. A Loader is cheap; build a fresh one per Load
// rather than sharing across goroutines.
type Loader struct {
	envPrefix string
	filePath  string
}

// New creates a [Loader] that reads environment variables only, with no
// file layer and no name prefix.
func New() *Loader {
	return &Loader{}
}

// WithEnvPrefix namespaces all env lookups: a field tagged `env:"HOST"`
// reads <PREFIX>_HOST. The prefix is uppercased; empty means no
// prefixing. Returns the Loader for chaining.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = strings.ToUpper(prefix)
	return l
}

// WithFile adds a file layer. The format is chosen by extension (.yaml,
// .yml, .json); other extensions fail at Load. A nonexistent file is
// skipped, and paths containing ".." are rejected. Returns the Loader
// for chaining.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load fills the struct pointed to by cfg, layer by layer, with later
// layers overriding earlier ones:
//
//  1. envDefault struct tags
//  2. YAML/JSON file values (when configured with [Loader.WithFile])
//  3. Environment variables from "env" struct tags
//
// After loading, the struct is validated:
//   - Fields tagged `required:"true"` must hold non-zero values
//   - If the struct implements [Validator], its Validate method is called
//   - Nested struct fields implementing [Validator] are validated too,
//     recursively, so component configs enforce their own rules
//
// The cfg parameter must be a non-nil pointer to a struct. Returns a
// [*kiterr.Error] with code [kiterr.CodeConfiguration] for loading
// failures, or [kiterr.CodeValidation] for validation failures.
func (l *Loader) Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return kiterr.New(kiterr.CodeConfiguration,
			"config: Load requires a non-nil pointer to a struct")
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return kiterr.New(kiterr.CodeConfiguration,
			"config: Load requires a pointer to a struct")
	}

	if err := applyDefaults(rv); err != nil {
		return err
	}
	if l.filePath != "" {
		if err := l.loadFile(cfg); err != nil {
			return err
		}
	}
	if err := applyEnv(rv, l.envPrefix); err != nil {
		return err
	}
	return validate(cfg, rv)
}

// MustLoad loads a zero value of the struct type T through the given
// loader and panics on any loading or validation failure. Intended for
// process startup, where bad configuration must stop the service:
//
//	cfg := config.MustLoad[AppConfig](config.New().WithEnvPrefix("APP"))
func MustLoad[T any](loader *Loader) T {
	var cfg T
	if err := loader.Load(&cfg); err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

// loadFile unmarshals a YAML or JSON file into the config struct. A
// missing file is not an error; file configuration is an optional layer.
func (l *Loader) loadFile(cfg any) error {
	// Config paths come from flags and env; keep them inside the tree.
	if strings.Contains(l.filePath, "..") {
		return kiterr.New(kiterr.CodeConfiguration,
			"config: file path must not contain directory traversal (..) sequences")
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return kiterr.Wrapf(err, kiterr.CodeConfiguration,
			"config: failed to read file %q", l.filePath)
	}

	switch ext := strings.ToLower(filepath.Ext(l.filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return kiterr.Wrapf(err, kiterr.CodeConfiguration,
				"config: failed to parse YAML file %q", l.filePath)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return kiterr.Wrapf(err, kiterr.CodeConfiguration,
				"config: failed to parse JSON file %q", l.filePath)
		}
	default:
		return kiterr.Newf(kiterr.CodeConfiguration,
			"config: unsupported file extension %q (use .yaml, .yml, or .json)", ext)
	}

	return nil
}

// applyDefaults recursively sets zero-valued fields to their envDefault
// tag value. Fields that already hold a value are left alone, so a
// caller-prepopulated struct survives loading.
func applyDefaults(rv reflect.Value) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := applyDefaults(field); err != nil {
				return err
			}
			continue
		}

		tag := sf.Tag.Get("envDefault")
		if tag == "" || !field.IsZero() {
			continue
		}

		if err := setField(field, tag); err != nil {
			return kiterr.Wrapf(err, kiterr.CodeConfiguration,
				"config: failed to apply default for field %q", sf.Name)
		}
	}

	return nil
}

// applyEnv recursively sets fields from environment variables named by
// the "env" struct tag. For nested structs the parent's env tag joins
// the accumulated prefix, so a `env:"JWT"` section with an
// `env:"ISSUER"` field reads <PREFIX>_JWT_ISSUER.
func applyEnv(rv reflect.Value, prefix string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		envTag := sf.Tag.Get("env")

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := applyEnv(field, joinPrefix(prefix, envTag)); err != nil {
				return err
			}
			continue
		}

		if envTag == "" {
			continue
		}

		envKey := joinPrefix(prefix, envTag)
		val, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}

		if err := setField(field, val); err != nil {
			return kiterr.Wrapf(err, kiterr.CodeConfiguration,
				"config: failed to set field %q from env var %q", sf.Name, envKey)
		}
	}

	return nil
}

// joinPrefix joins env name segments with an underscore, skipping empty
// parts.
func joinPrefix(prefix, tag string) string {
	switch {
	case prefix == "":
		return tag
	case tag == "":
		return prefix
	default:
		return prefix + "_" + tag
	}
}

// setField parses a string into the field's type. Supported: string
// (including named string types such as auth.Secret), bool, the signed
// integer kinds, time.Duration, and string slices from comma-separated
// lists. Anything else is a configuration error.
func setField(field reflect.Value, value string) error {
	// Duration's underlying kind is int64; it must be matched by type
	// before the integer kinds below.
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("cannot parse duration %q: %w", value, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		// Works for string and any named type with underlying kind
		// string (e.g., auth.Secret, auth.Scheme).
		field.SetString(value)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool %q: %w", value, err)
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bitSize := field.Type().Bits()
		n, err := strconv.ParseInt(value, 10, bitSize)
		if err != nil {
			return fmt.Errorf("cannot parse integer %q: %w", value, err)
		}
		field.SetInt(n)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		// MakeSlice with the field's own type keeps named slice types
		// (type Roles []string) assignable.
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}

	return nil
}
