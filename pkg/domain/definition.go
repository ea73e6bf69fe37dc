package domain

import (
	"encoding/json"
	"fmt"
)

// ParameterType is the declared type of a customizer parameter.
type ParameterType string

const (
	TypeNumber  ParameterType = "number"
	TypeString  ParameterType = "string"
	TypeBoolean ParameterType = "boolean"
)

// DescriptorKind is the structural variant of a parameter descriptor.
type DescriptorKind string

const (
	KindNumber       DescriptorKind = "number"
	KindNumberOption DescriptorKind = "number-option"
	KindString       DescriptorKind = "string"
	KindStringOption DescriptorKind = "string-option"
	KindBoolean      DescriptorKind = "boolean"
)

// ParameterOption is one allowed value of a dropdown parameter.
// Value is a float64 for number parameters and a string for string parameters.
type ParameterOption struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Parameter describes one customizer parameter of a model.
//
// Initial holds float64 or []float64 for numbers, string for strings and
// bool for booleans.
type Parameter struct {
	Name      string            `json:"name"`
	Caption   string            `json:"caption,omitempty"`
	Group     string            `json:"group,omitempty"`
	Type      ParameterType     `json:"type"`
	Initial   any               `json:"initial"`
	Min       *float64          `json:"min,omitempty"`
	Max       *float64          `json:"max,omitempty"`
	Step      *float64          `json:"step,omitempty"`
	MaxLength *int              `json:"maxLength,omitempty"`
	Options   []ParameterOption `json:"options,omitempty"`
}

// Kind resolves the descriptor variant from its type and the presence of options.
func (p Parameter) Kind() DescriptorKind {
	switch p.Type {
	case TypeNumber:
		if len(p.Options) > 0 {
			return KindNumberOption
		}
		return KindNumber
	case TypeString:
		if len(p.Options) > 0 {
			return KindStringOption
		}
		return KindString
	default:
		return KindBoolean
	}
}

// IsVector reports whether a number parameter holds a vector initial value.
func (p Parameter) IsVector() bool {
	_, ok := p.Initial.([]float64)
	return ok
}

type rawParameter struct {
	Name      string            `json:"name"`
	Caption   string            `json:"caption,omitempty"`
	Group     string            `json:"group,omitempty"`
	Type      ParameterType     `json:"type"`
	Initial   json.RawMessage   `json:"initial"`
	Min       *float64          `json:"min,omitempty"`
	Max       *float64          `json:"max,omitempty"`
	Step      *float64          `json:"step,omitempty"`
	MaxLength *int              `json:"maxLength,omitempty"`
	Options   []json.RawMessage `json:"options,omitempty"`
}

// UnmarshalJSON decodes the initial value and options into the Go types
// matching the declared parameter type.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var raw rawParameter
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Parameter{
		Name:      raw.Name,
		Caption:   raw.Caption,
		Group:     raw.Group,
		Type:      raw.Type,
		Min:       raw.Min,
		Max:       raw.Max,
		Step:      raw.Step,
		MaxLength: raw.MaxLength,
	}

	switch raw.Type {
	case TypeNumber:
		var n float64
		if err := json.Unmarshal(raw.Initial, &n); err == nil {
			p.Initial = n
		} else {
			var v []float64
			if err := json.Unmarshal(raw.Initial, &v); err != nil {
				return fmt.Errorf("parameter %q: initial value is neither a number nor a vector", raw.Name)
			}
			p.Initial = v
		}
		for _, o := range raw.Options {
			var opt struct {
				Name  string  `json:"name"`
				Value float64 `json:"value"`
			}
			if err := json.Unmarshal(o, &opt); err != nil {
				return fmt.Errorf("parameter %q: invalid number option: %w", raw.Name, err)
			}
			p.Options = append(p.Options, ParameterOption{Name: opt.Name, Value: opt.Value})
		}
	case TypeString:
		var s string
		if err := json.Unmarshal(raw.Initial, &s); err != nil {
			return fmt.Errorf("parameter %q: initial value is not a string", raw.Name)
		}
		p.Initial = s
		for _, o := range raw.Options {
			var opt struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			}
			if err := json.Unmarshal(o, &opt); err != nil {
				return fmt.Errorf("parameter %q: invalid string option: %w", raw.Name, err)
			}
			p.Options = append(p.Options, ParameterOption{Name: opt.Name, Value: opt.Value})
		}
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(raw.Initial, &b); err != nil {
			return fmt.Errorf("parameter %q: initial value is not a boolean", raw.Name)
		}
		p.Initial = b
	default:
		return fmt.Errorf("parameter %q: unknown type %q", raw.Name, raw.Type)
	}
	return nil
}

// ParameterDefinition is the customizer description of a model, written by
// the tool with `--export-format param`.
type ParameterDefinition struct {
	Title      string      `json:"title"`
	Parameters []Parameter `json:"parameters"`
}

// Lookup finds a parameter by name.
func (d *ParameterDefinition) Lookup(name string) (Parameter, bool) {
	if d == nil {
		return Parameter{}, false
	}
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Defaults returns the initial values of every parameter as a key/value list,
// in declaration order.
func (d *ParameterDefinition) Defaults() []ParameterKV {
	if d == nil {
		return nil
	}
	kv := make([]ParameterKV, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		kv = append(kv, ParameterKV{Parameter: p.Name, Value: FormatInitial(p.Initial)})
	}
	return kv
}

// FormatInitial renders an initial value the way parameter files store it.
func FormatInitial(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64, []float64:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
