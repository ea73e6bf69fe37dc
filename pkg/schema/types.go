package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "number").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values, optionally bounded in length.
type StringType struct {
	maxLength *int
}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if t.maxLength != nil && len([]rune(s)) > *t.maxLength {
		return fmt.Errorf("longer than %d characters", *t.maxLength)
	}
	return nil
}

// NumberType validates a number or a vector of numbers. Parameter values are
// strings, so "12.5" and "[1,2,3]" are accepted as well as JSON numbers.
type NumberType struct {
	min, max *float64
}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	nums, err := toNumbers(value)
	if err != nil {
		return err
	}
	for _, n := range nums {
		if t.min != nil && n < *t.min {
			return fmt.Errorf("%s is below minimum %s", formatNumber(n), formatNumber(*t.min))
		}
		if t.max != nil && n > *t.max {
			return fmt.Errorf("%s is above maximum %s", formatNumber(n), formatNumber(*t.max))
		}
	}
	return nil
}

// BoolType validates booleans and their "true"/"false" spelling.
type BoolType struct{}

func (t *BoolType) Name() string { return "boolean" }

func (t *BoolType) Validate(value any) error {
	switch v := value.(type) {
	case bool:
		return nil
	case string:
		if v == "true" || v == "false" {
			return nil
		}
		return fmt.Errorf("expected true or false, got %q", v)
	default:
		return fmt.Errorf("expected boolean, got %T", value)
	}
}

// OptionType restricts a value to a dropdown's options.
type OptionType struct {
	base    Type
	options []string
}

func (t *OptionType) Name() string {
	return fmt.Sprintf("%s{%s}", t.base.Name(), strings.Join(t.options, "|"))
}

func (t *OptionType) Validate(value any) error {
	if err := t.base.Validate(value); err != nil {
		return err
	}
	v := canonical(value)
	if !slices.Contains(t.options, v) {
		return fmt.Errorf("%q is not one of %s", v, strings.Join(t.options, ", "))
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected array, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Text creates a string validator limited to maxLength runes.
func Text(maxLength int) Type { return &StringType{maxLength: &maxLength} }

// Number creates a number validator. Nil bounds are unchecked.
func Number(min, max *float64) Type { return &NumberType{min: min, max: max} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// OneOf restricts base to the given option values.
func OneOf(base Type, options ...string) Type {
	return &OptionType{base: base, options: options}
}

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// ForParameter builds the validator matching a parameter descriptor.
func ForParameter(p domain.Parameter) Type {
	var base Type
	switch p.Type {
	case domain.TypeNumber:
		base = Number(p.Min, p.Max)
	case domain.TypeString:
		if p.MaxLength != nil {
			base = Text(*p.MaxLength)
		} else {
			base = String()
		}
	default:
		base = Bool()
	}
	if len(p.Options) == 0 {
		return base
	}
	opts := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		opts = append(opts, canonical(o.Value))
	}
	return OneOf(base, opts...)
}

func toNumbers(value any) ([]float64, error) {
	switch v := value.(type) {
	case float64:
		return []float64{v}, nil
	case int:
		return []float64{float64(v)}, nil
	case []float64:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") {
			var vec []float64
			if err := json.Unmarshal([]byte(s), &vec); err != nil {
				return nil, fmt.Errorf("expected number vector, got %q", v)
			}
			return vec, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", v)
		}
		return []float64{n}, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", value)
	}
}

// canonical renders a value so "2", "2.0" and 2 compare equal.
func canonical(value any) string {
	switch v := value.(type) {
	case float64:
		return formatNumber(v)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return formatNumber(n)
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
