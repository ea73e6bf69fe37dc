package cli

import (
	"fmt"
	"strings"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// ParameterFlags are the parameter related flags shared by the render commands.
type ParameterFlags struct {
	Params []string // key=value
	File   string
	Group  string
}

// Input resolves the flags to a parameter input. A parameter file wins and
// cannot be mixed with key=value pairs.
func (f ParameterFlags) Input() (domain.ParameterInput, error) {
	if f.File != "" {
		if len(f.Params) > 0 {
			return domain.ParameterInput{}, fmt.Errorf("%w: --param cannot be combined with --param-file", domain.ErrInvalidInput)
		}
		if f.Group == "" {
			return domain.ParameterInput{}, fmt.Errorf("%w: --group is required with --param-file", domain.ErrInvalidInput)
		}
		return domain.FileInput(f.File, f.Group), nil
	}

	kv := make([]domain.ParameterKV, 0, len(f.Params))
	for _, p := range f.Params {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return domain.ParameterInput{}, fmt.Errorf("%w: parameter %q is not key=value", domain.ErrInvalidInput, p)
		}
		kv = append(kv, domain.ParameterKV{Parameter: name, Value: value})
	}
	in := domain.ListInput(kv)
	if f.Group != "" {
		in = domain.SetInput(domain.ParameterSetFromKV(kv, f.Group), f.Group)
	}
	return in, nil
}
