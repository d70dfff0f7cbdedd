package models

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// RawStatInput maps stat names to the values entered by the user
type RawStatInput map[string]any

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func statValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("position", validatePosition)
		_ = validate.RegisterValidation("finite", validateFinite)
	})
	return validate
}

func validatePosition(fl validator.FieldLevel) bool {
	return Positions[NormalizePosition(fl.Field().String())]
}

// validateFinite rejects NaN and infinities, which weak decoding accepts from "NaN" and "Inf"
func validateFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float64 && field.Kind() != reflect.Float32 {
		return true
	}
	v := field.Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DecodeRawStats decodes raw into out, which must be a pointer to one of the
// stat structs. Every declared stat is required; numeric strings are accepted.
func DecodeRawStats(raw RawStatInput, out any) error {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}

	if raw == nil {
		raw = RawStatInput{}
	}
	if err := decoder.Decode(map[string]any(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if len(md.Unset) > 0 {
		sort.Strings(md.Unset)
		return fmt.Errorf("%w: %s", ErrMissingStat, strings.Join(md.Unset, ", "))
	}

	return Validate(out)
}

// Validate checks a decoded stat struct against its validate tags
func Validate(stats any) error {
	err := statValidator().Struct(stats)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return formatValidationErrors(validationErrors)
}

func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var negative, invalid []string
	for _, fieldError := range validationErrors {
		field := fieldError.Field()
		switch {
		case fieldError.Tag() == "gte" && fieldError.Param() == "0":
			negative = append(negative, fmt.Sprintf("%s=%v", field, fieldError.Value()))
		case fieldError.Tag() == "ltefield":
			invalid = append(invalid, fmt.Sprintf("%s must not exceed %s", field, fieldError.Param()))
		case fieldError.Tag() == "finite":
			invalid = append(invalid, fmt.Sprintf("%s must be a finite number", field))
		case fieldError.Tag() == "position":
			invalid = append(invalid, fmt.Sprintf("%s has unknown token %q", field, fieldError.Value()))
		default:
			invalid = append(invalid, fmt.Sprintf("%s failed %s", field, fieldError.Tag()))
		}
	}

	var errs []error
	if len(negative) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrNegativeCount, strings.Join(negative, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(invalid, "; ")))
	}
	return errors.Join(errs...)
}
