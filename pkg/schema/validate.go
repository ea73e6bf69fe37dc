package schema

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Schema is a map of field names to their expected types.
// Example: {"parameter": String(), "value": String()}
type Schema map[string]Type

// kvItem is the shape of one element of a key/value list.
var kvItem = Schema{
	"parameter": String(),
	"value":     String(),
}

// Validate checks if data conforms to the schema. Every schema field is
// required. Errors are reported in field name order.
func Validate(schema Schema, data map[string]any) error {
	return aggregate(validate(schema, data, false, ""))
}

// ValidateStrict is Validate that also rejects fields the schema does not declare.
func ValidateStrict(schema Schema, data map[string]any) error {
	return aggregate(validate(schema, data, true, ""))
}

func validate(schema Schema, data map[string]any, strict bool, prefix string) []error {
	var errs []error

	for _, fieldName := range sortedKeys(schema) {
		value, exists := data[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{Key: prefix + fieldName, Reason: "required"})
			continue
		}
		if err := schema[fieldName].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: prefix + fieldName, Reason: err.Error(), Value: value})
		}
	}

	if strict {
		for _, fieldName := range sortedKeys(data) {
			if _, declared := schema[fieldName]; !declared {
				errs = append(errs, &ValidationError{Key: prefix + fieldName, Reason: "not allowed"})
			}
		}
	}
	return errs
}

// ValidateKVDocument checks a decoded JSON value is an array of
// {"parameter": string, "value": string} objects with no other keys.
func ValidateKVDocument(doc any) error {
	items, ok := doc.([]any)
	if !ok {
		return &AggregateError{Errors: []error{
			&ValidationError{Key: "$", Reason: fmt.Sprintf("expected array, got %T", doc)},
		}}
	}

	var errs []error
	for i, item := range items {
		prefix := fmt.Sprintf("[%d].", i)
		obj, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, &ValidationError{Key: fmt.Sprintf("[%d]", i), Reason: fmt.Sprintf("expected object, got %T", item)})
			continue
		}
		errs = append(errs, validate(kvItem, obj, true, prefix)...)
	}
	return aggregate(errs)
}

// DecodeKV parses and structurally validates a JSON key/value list.
func DecodeKV(data []byte) ([]domain.ParameterKV, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := ValidateKVDocument(doc); err != nil {
		return nil, err
	}
	var kv []domain.ParameterKV
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return kv, nil
}

// FromDefinition builds a schema with one validator per declared parameter.
func FromDefinition(def *domain.ParameterDefinition) Schema {
	s := make(Schema)
	if def == nil {
		return s
	}
	for _, p := range def.Parameters {
		s[p.Name] = ForParameter(p)
	}
	return s
}

// ValidateParameters checks every key/value pair against the schema.
// Parameters may be omitted; unknown names are rejected.
func ValidateParameters(schema Schema, kv []domain.ParameterKV) error {
	var errs []error
	for _, p := range kv {
		typ, ok := schema[p.Parameter]
		if !ok {
			errs = append(errs, &ValidationError{Key: p.Parameter, Reason: "unknown parameter"})
			continue
		}
		if err := typ.Validate(p.Value); err != nil {
			errs = append(errs, &ValidationError{Key: p.Parameter, Reason: err.Error(), Value: p.Value})
		}
	}
	return aggregate(errs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
