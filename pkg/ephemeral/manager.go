// Package ephemeral derives output paths and owns the temporary files passed to
// a single tool invocation.
package ephemeral

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// TokenLength is the number of hex characters in a random token.
const TokenLength = 12

// AnimImageSuffix marks the per-frame rasters of an animation.
const AnimImageSuffix = "_animImg"

// Token returns a fresh random hex token.
func Token() string {
	b := make([]byte, TokenLength/2)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("ephemeral: reading random bytes: %v", err))
	}
	return hex.EncodeToString(b)
}

// Manager computes paths inside one output directory.
// It holds no per-call state and is safe for concurrent use.
type Manager struct {
	outputDir string
	onFile    func(delta int)
}

// Option configures a Manager.
type Option func(*Manager)

// WithFileObserver is called with +1 for each created temporary file and -1 when it is removed.
func WithFileObserver(fn func(delta int)) Option {
	return func(m *Manager) {
		m.onFile = fn
	}
}

// New returns a Manager writing into outputDir.
func New(outputDir string, opts ...Option) *Manager {
	m := &Manager{outputDir: outputDir}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OutputDir returns the directory the manager writes to.
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// OutputPath returns <outputDir>/<modelBase>[_<suffix>][_animImg].<ext>.
func (m *Manager) OutputPath(model, suffix string, format domain.ExportFormat, animImg bool) string {
	name := m.stem(model, suffix)
	if animImg {
		name += AnimImageSuffix
	}
	return filepath.Join(m.outputDir, name+"."+format.Extension())
}

// FramePattern is the glob matching every frame written for an animation.
func (m *Manager) FramePattern(model, suffix string) string {
	return filepath.Join(m.outputDir, m.stem(model, suffix)+AnimImageSuffix+"*."+domain.FormatPNG.Extension())
}

// AnimationPath is the stitched animation file.
func (m *Manager) AnimationPath(model, suffix string) string {
	return filepath.Join(m.outputDir, m.stem(model, suffix)+".webp")
}

func (m *Manager) stem(model, suffix string) string {
	name := ModelBase(model)
	if suffix != "" {
		name += "_" + suffix
	}
	return name
}

// ModelBase returns the file name of model without directory and extension.
func ModelBase(model string) string {
	base := filepath.Base(model)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParameterFile is the normalized {file, group} pair handed to the tool.
type ParameterFile struct {
	Path  string
	Group string

	owned    bool
	once     sync.Once
	onRemove func(delta int)
}

// Owned reports whether the file was created by the manager.
func (p *ParameterFile) Owned() bool {
	return p.owned
}

// Release removes the file if the manager created it. Caller supplied files
// are left untouched. A file that is already gone is not an error.
func (p *ParameterFile) Release() error {
	if p == nil || !p.owned {
		return nil
	}
	var err error
	p.once.Do(func() {
		err = os.Remove(p.Path)
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
		if p.onRemove != nil {
			p.onRemove(-1)
		}
	})
	if err != nil {
		return fmt.Errorf("removing parameter file %s: %w", p.Path, err)
	}
	return nil
}

// Materialize turns any ParameterInput into a file on disk.
// In-memory inputs are written to <outputDir>/<modelBase>_<group>_<token>.json.
func (m *Manager) Materialize(model string, in domain.ParameterInput) (*ParameterFile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Kind() == domain.InputFile {
		return &ParameterFile{Path: in.File(), Group: in.Group()}, nil
	}

	set, group, err := in.Resolve()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encoding parameter set: %w", err)
	}

	path := filepath.Join(m.outputDir, m.stem(model, group)+"_"+Token()+"."+domain.FormatParamSet.Extension())
	if err := writeExclusive(path, data); err != nil {
		return nil, fmt.Errorf("writing parameter file: %w", err)
	}
	if m.onFile != nil {
		m.onFile(1)
	}
	return &ParameterFile{Path: path, Group: group, owned: true, onRemove: m.onFile}, nil
}

// writeExclusive fails instead of overwriting an existing file.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
