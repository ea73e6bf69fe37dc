package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParameterFileVersion is the only fileFormatVersion the external tool understands.
const ParameterFileVersion = "1"

// DefaultGroup is the group name used when a flat key/value list is wrapped into a set.
const DefaultGroup = "model"

// ParameterKV is a single named parameter value.
type ParameterKV struct {
	Parameter string `json:"parameter" yaml:"parameter" mapstructure:"parameter"`
	Value     string `json:"value" yaml:"value" mapstructure:"value"`
}

// ParameterSet maps a group name to the parameter values of that group.
// It is the document passed to the tool with `-p`.
type ParameterSet struct {
	ParameterSets map[string]map[string]string `json:"parameterSets"`
}

// NewParameterSet returns an empty set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{ParameterSets: make(map[string]map[string]string)}
}

// ParameterSetFromKV wraps a flat list into a set with a single group.
// An empty name falls back to DefaultGroup.
func ParameterSetFromKV(kv []ParameterKV, name string) *ParameterSet {
	if name == "" {
		name = DefaultGroup
	}
	ps := NewParameterSet()
	ps.Add(name, kv)
	return ps
}

// Add replaces the group with the given values. Later duplicates win.
func (ps *ParameterSet) Add(name string, kv []ParameterKV) {
	if ps.ParameterSets == nil {
		ps.ParameterSets = make(map[string]map[string]string)
	}
	group := make(map[string]string, len(kv))
	for _, p := range kv {
		group[p.Parameter] = p.Value
	}
	ps.ParameterSets[name] = group
}

// Del removes a group.
func (ps *ParameterSet) Del(name string) {
	delete(ps.ParameterSets, name)
}

// Group returns the values of a group.
func (ps *ParameterSet) Group(name string) (map[string]string, bool) {
	if ps == nil {
		return nil, false
	}
	g, ok := ps.ParameterSets[name]
	return g, ok
}

type parameterSetFile struct {
	ParameterSets     map[string]map[string]string `json:"parameterSets"`
	FileFormatVersion string                       `json:"fileFormatVersion"`
}

// MarshalJSON always writes the fixed format version.
func (ps ParameterSet) MarshalJSON() ([]byte, error) {
	sets := ps.ParameterSets
	if sets == nil {
		sets = map[string]map[string]string{}
	}
	return json.Marshal(parameterSetFile{
		ParameterSets:     sets,
		FileFormatVersion: ParameterFileVersion,
	})
}

// UnmarshalJSON rejects documents with any other format version.
func (ps *ParameterSet) UnmarshalJSON(data []byte) error {
	var f parameterSetFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.FileFormatVersion != ParameterFileVersion {
		return fmt.Errorf("%w: unsupported parameter file version %q", ErrInvalidInput, f.FileFormatVersion)
	}
	ps.ParameterSets = f.ParameterSets
	if ps.ParameterSets == nil {
		ps.ParameterSets = make(map[string]map[string]string)
	}
	return nil
}

// InputKind tags the active variant of a ParameterInput.
type InputKind int

const (
	InputInvalid InputKind = iota
	InputFile              // caller-owned parameter file
	InputSet               // in-memory ParameterSet
	InputList              // flat key/value list
)

func (k InputKind) String() string {
	switch k {
	case InputFile:
		return "file"
	case InputSet:
		return "set"
	case InputList:
		return "list"
	default:
		return "invalid"
	}
}

// ParameterInput is one of three ways to hand parameters to an operation.
// Build it with FileInput, SetInput or ListInput; the zero value is invalid.
type ParameterInput struct {
	kind  InputKind
	file  string
	set   *ParameterSet
	group string
	list  []ParameterKV
}

// FileInput references an existing parameter file. The file is never deleted.
func FileInput(path, group string) ParameterInput {
	return ParameterInput{kind: InputFile, file: path, group: group}
}

// SetInput uses an in-memory set; a temporary file is written and removed per call.
func SetInput(set *ParameterSet, group string) ParameterInput {
	return ParameterInput{kind: InputSet, set: set, group: group}
}

// ListInput wraps a flat list into the DefaultGroup.
func ListInput(kv []ParameterKV) ParameterInput {
	return ParameterInput{kind: InputList, list: kv, group: DefaultGroup}
}

func (in ParameterInput) Kind() InputKind     { return in.kind }
func (in ParameterInput) File() string        { return in.file }
func (in ParameterInput) Set() *ParameterSet  { return in.set }
func (in ParameterInput) Group() string       { return in.group }
func (in ParameterInput) List() []ParameterKV { return in.list }

// Validate checks that the active variant carries what it needs.
func (in ParameterInput) Validate() error {
	switch in.kind {
	case InputFile:
		if in.file == "" {
			return fmt.Errorf("%w: parameter file path is empty", ErrInvalidInput)
		}
		if err := ValidateGroupName(in.group); err != nil {
			return err
		}
	case InputSet:
		if in.set == nil {
			return fmt.Errorf("%w: parameter set is nil", ErrInvalidInput)
		}
		if err := ValidateGroupName(in.group); err != nil {
			return err
		}
		if _, ok := in.set.Group(in.group); !ok {
			return fmt.Errorf("%w: parameter group %q not found in set", ErrInvalidInput, in.group)
		}
	case InputList:
		for i, p := range in.list {
			if p.Parameter == "" {
				return fmt.Errorf("%w: parameter #%d has no name", ErrInvalidInput, i)
			}
		}
	default:
		return fmt.Errorf("%w: unsupported parameter input", ErrInvalidInput)
	}
	return nil
}

// Resolve returns the set to write and the group to select for in-memory variants.
func (in ParameterInput) Resolve() (*ParameterSet, string, error) {
	switch in.kind {
	case InputSet:
		return in.set, in.group, nil
	case InputList:
		return ParameterSetFromKV(in.list, DefaultGroup), DefaultGroup, nil
	default:
		return nil, "", fmt.Errorf("%w: %s input has no in-memory parameter set", ErrInvalidInput, in.kind)
	}
}

type fileInputJSON struct {
	ParameterFile string `json:"parameterFile"`
	ParameterName string `json:"parameterName"`
}

type setInputJSON struct {
	ParameterSet  *ParameterSet `json:"parameterSet"`
	ParameterName string        `json:"parameterName"`
}

// MarshalJSON writes the variant in its wire shape.
func (in ParameterInput) MarshalJSON() ([]byte, error) {
	switch in.kind {
	case InputFile:
		return json.Marshal(fileInputJSON{ParameterFile: in.file, ParameterName: in.group})
	case InputSet:
		return json.Marshal(setInputJSON{ParameterSet: in.set, ParameterName: in.group})
	case InputList:
		list := in.list
		if list == nil {
			list = []ParameterKV{}
		}
		return json.Marshal(list)
	default:
		return nil, fmt.Errorf("%w: unsupported parameter input", ErrInvalidInput)
	}
}

// UnmarshalJSON discriminates structurally: an array is a key/value list, an
// object with "parameterFile" is a file reference, an object with
// "parameterSet" is an in-memory set. Anything else is rejected.
func (in *ParameterInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty parameter input", ErrInvalidInput)
	}

	if trimmed[0] == '[' {
		var kv []ParameterKV
		if err := decodeStrict(trimmed, &kv); err != nil {
			return fmt.Errorf("%w: parameter list: %v", ErrInvalidInput, err)
		}
		*in = ListInput(kv)
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return fmt.Errorf("%w: parameter input: %v", ErrInvalidInput, err)
	}

	_, hasFile := keys["parameterFile"]
	_, hasSet := keys["parameterSet"]
	switch {
	case hasFile && hasSet:
		return fmt.Errorf("%w: parameterFile and parameterSet are mutually exclusive", ErrInvalidInput)
	case hasFile:
		var f fileInputJSON
		if err := decodeStrict(trimmed, &f); err != nil {
			return fmt.Errorf("%w: parameter file input: %v", ErrInvalidInput, err)
		}
		*in = FileInput(f.ParameterFile, f.ParameterName)
	case hasSet:
		var s setInputJSON
		if err := decodeStrict(trimmed, &s); err != nil {
			return fmt.Errorf("%w: parameter set input: %v", ErrInvalidInput, err)
		}
		*in = SetInput(s.ParameterSet, s.ParameterName)
	default:
		return fmt.Errorf("%w: unsupported parameter input shape", ErrInvalidInput)
	}
	return in.Validate()
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
