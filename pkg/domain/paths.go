package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// groupNamePattern accepts the names customizer parameter sets are given in
// practice ("design default values", "all_20", "Large (v2)") and nothing that
// could act as a path component.
var groupNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_+()-][\p{L}\p{N} _.+()-]*$`)

// ValidateGroupName rejects names that cannot be used in a file name.
// Group names end up in the temporary parameter file and the output file names.
func ValidateGroupName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: parameter group name is empty", ErrInvalidInput)
	}
	if strings.Contains(name, "..") || !groupNamePattern.MatchString(name) {
		return fmt.Errorf("%w: invalid parameter group name %q", ErrInvalidInput, name)
	}
	return nil
}

// ResolveUnder joins name to root and rejects absolute names and names
// escaping root.
func ResolveUnder(root, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: path %q must be relative", ErrInvalidInput, name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes %s", ErrInvalidInput, name, root)
	}
	return filepath.Join(root, clean), nil
}

// Rooted resolves the parameter file of a file input under root. Other
// variants are returned unchanged. Adapters serving remote callers use it so a
// request can only reference files below a known directory.
func (in ParameterInput) Rooted(root string) (ParameterInput, error) {
	if in.kind != InputFile {
		return in, nil
	}
	path, err := ResolveUnder(root, in.file)
	if err != nil {
		return ParameterInput{}, fmt.Errorf("parameter file: %w", err)
	}
	in.file = path
	return in, nil
}
