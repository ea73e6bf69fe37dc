package schema

import (
	"testing"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func TestStringType(t *testing.T) {
	typ := Text(5)

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{"héllo", false},
		{"toolong", true},
		{42, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestNumberType(t *testing.T) {
	typ := Number(ptr(1.0), ptr(100.0))

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"20", false},
		{"1", false},
		{"100", false},
		{" 12.5 ", false},
		{20.0, false},
		{"[1, 50, 100]", false},
		{"0.5", true},
		{"101", true},
		{"[1, 200]", true},
		{"twenty", true},
		{"[1, x]", true},
		{true, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}

	if err := Number(nil, nil).Validate("-1e9"); err != nil {
		t.Errorf("unbounded number rejected: %v", err)
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()

	for _, ok := range []any{"true", "false", true, false} {
		if err := typ.Validate(ok); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []any{"yes", "1", 1, nil} {
		if err := typ.Validate(bad); err == nil {
			t.Errorf("Validate(%v) = nil, want error", bad)
		}
	}
}

func TestOptionType(t *testing.T) {
	typ := OneOf(Number(nil, nil), "1", "2")

	if err := typ.Validate("2.0"); err != nil {
		t.Errorf("Validate(2.0) = %v, want nil", err)
	}
	if err := typ.Validate("3"); err == nil {
		t.Error("Validate(3) = nil, want error")
	}

	str := OneOf(String(), "Liberation Sans")
	if err := str.Validate("Liberation Sans"); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
	if err := str.Validate("Comic Sans"); err == nil {
		t.Error("Validate(Comic Sans) = nil, want error")
	}
}

func TestSliceType(t *testing.T) {
	typ := Slice(String())

	if typ.Name() != "[string]" {
		t.Errorf("Name() = %q, want [string]", typ.Name())
	}
	if err := typ.Validate([]any{"a", "b"}); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
	if err := typ.Validate([]any{"a", 1}); err == nil {
		t.Error("Validate with int element = nil, want error")
	}
	if err := typ.Validate("a"); err == nil {
		t.Error("Validate(string) = nil, want error")
	}
}

func TestForParameter(t *testing.T) {
	tests := []struct {
		name  string
		param domain.Parameter
		ok    string
		bad   string
	}{
		{
			name:  "number",
			param: domain.Parameter{Name: "size", Type: domain.TypeNumber, Min: ptr(1.0), Max: ptr(10.0)},
			ok:    "5",
			bad:   "11",
		},
		{
			name:  "number option",
			param: domain.Parameter{Name: "q", Type: domain.TypeNumber, Options: []domain.ParameterOption{{Name: "low", Value: 1.0}}},
			ok:    "1",
			bad:   "2",
		},
		{
			name:  "string",
			param: domain.Parameter{Name: "label", Type: domain.TypeString, MaxLength: ptr(3)},
			ok:    "abc",
			bad:   "abcd",
		},
		{
			name:  "string option",
			param: domain.Parameter{Name: "font", Type: domain.TypeString, Options: []domain.ParameterOption{{Name: "a", Value: "A"}}},
			ok:    "A",
			bad:   "B",
		},
		{
			name:  "boolean",
			param: domain.Parameter{Name: "hollow", Type: domain.TypeBoolean},
			ok:    "true",
			bad:   "maybe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := ForParameter(tt.param)
			if err := typ.Validate(tt.ok); err != nil {
				t.Errorf("Validate(%q) = %v, want nil", tt.ok, err)
			}
			if err := typ.Validate(tt.bad); err == nil {
				t.Errorf("Validate(%q) = nil, want error", tt.bad)
			}
		})
	}
}
