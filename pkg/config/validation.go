package config

import (
	"reflect"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// Validator is an optional interface that configuration structs may
// implement for custom validation logic. If the struct passed to
// [Loader.Load] implements Validator, its Validate method is called
// after tag-based validation ([required] tag) succeeds.
//
// Validate should return an error describing the first validation
// failure, or nil if the configuration is valid. Errors that are
// already [*kiterr.Error] are returned as-is; other errors are wrapped
// with [kiterr.CodeValidation].
//
// Example:
//
//	type ListenConfig struct {
//	    Host string `env:"HOST" required:"true"`
//	    Port int    `env:"PORT" required:"true"`
//	}
//
//	func (c *ListenConfig) Validate() error {
//	    if c.Port < 1 || c.Port > 65535 {
//	        return kiterr.Newf(kiterr.CodeValidation,
//	            "config: port %d is out of range [1, 65535]", c.Port)
//	    }
//	    return nil
//	}
type Validator interface {
	Validate() error
}

// validate performs tag-based required validation and then invokes the
// Validator interface on the config struct and, recursively, on every
// addressable nested struct field that implements it. The cfg parameter
// is the original interface value (for Validator type assertion); rv is
// the dereferenced reflect.Value of the struct.
func validate(cfg any, rv reflect.Value) error {
	if err := validateRequired(rv, ""); err != nil {
		return err
	}

	if v, ok := cfg.(Validator); ok {
		if err := runValidator(v); err != nil {
			return err
		}
	}

	return validateNested(rv)
}

// validateNested walks nested struct fields and invokes Validate on
// those whose pointer type implements [Validator]. This lets composed
// configs (a service config embedding several component configs) get
// each component's validation without delegating by hand.
func validateNested(rv reflect.Value) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)

		if field.Kind() != reflect.Struct || !field.CanAddr() || !field.CanSet() {
			continue
		}

		if v, ok := field.Addr().Interface().(Validator); ok {
			if err := runValidator(v); err != nil {
				return err
			}
		}

		if err := validateNested(field); err != nil {
			return err
		}
	}

	return nil
}

func runValidator(v Validator) error {
	if err := v.Validate(); err != nil {
		// Pass through kiterr.Error instances unchanged.
		if _, isKitErr := kiterr.AsError(err); isKitErr {
			return err
		}
		return kiterr.Wrap(err, kiterr.CodeValidation,
			"config: custom validation failed")
	}
	return nil
}

// validateRequired recursively checks that all fields tagged with
// `required:"true"` hold non-zero values. The path parameter tracks
// the dotted field path for error messages (e.g., "JWT.Issuer").
//
// Nested structs are traversed recursively. Unexported fields and
// non-struct types without a required tag are skipped.
func validateRequired(rv reflect.Value, path string) error {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}

		// Recurse into nested structs. Types with only unexported
		// fields (time.Time and friends) fall out via CanSet.
		if field.Kind() == reflect.Struct {
			if err := validateRequired(field, fieldPath); err != nil {
				return err
			}
			continue
		}

		if sf.Tag.Get("required") != "true" {
			continue
		}

		if field.IsZero() {
			return kiterr.Newf(kiterr.CodeValidation,
				"config: required field %q is empty", fieldPath)
		}
	}

	return nil
}
