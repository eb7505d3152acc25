// File: lixenwraith/confvar/builder.go
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ValidatorFunc defines the signature for a function that can validate a Registry.
// It receives the fully loaded registry and should return an error if validation fails.
type ValidatorFunc func(r *Registry) error

// Builder provides a fluent interface for building a populated registry.
// Sources are applied in increasing precedence: file, environment, arguments.
type Builder struct {
	reg          *Registry
	logger       logrus.FieldLogger
	declarations []func(*Registry) error
	file         string
	useEnv       bool
	envPrefix    string
	envTransform EnvTransformFunc
	args         []string
	err          error
	validators   []ValidatorFunc
}

// NewBuilder creates a new registry builder reading arguments from os.Args
func NewBuilder() *Builder {
	return &Builder{
		args:       os.Args[1:],
		validators: make([]ValidatorFunc, 0),
	}
}

// WithRegistry builds onto an existing registry, e.g. Default(), instead of a new one
func (b *Builder) WithRegistry(r *Registry) *Builder {
	if r == nil {
		b.err = errors.New("builder: nil registry")
	}
	b.reg = r
	return b
}

// WithLogger sets the logger of the built registry
func (b *Builder) WithLogger(l logrus.FieldLogger) *Builder {
	b.logger = l
	return b
}

// WithDeclarations adds a function that declares variables before any source is applied.
// Multiple functions run in the order they are added.
func (b *Builder) WithDeclarations(fn func(*Registry) error) *Builder {
	if fn != nil {
		b.declarations = append(b.declarations, fn)
	}
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithEnvPrefix enables environment variables and sets their prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.useEnv = true
	b.envPrefix = prefix
	return b
}

// WithEnvTransform enables environment variables with a custom name transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.useEnv = true
	b.envTransform = fn
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the registry with all specified options.
// A missing configuration file is not fatal: the registry is returned
// together with an error matching ErrConfigNotFound.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	r := b.reg
	if r == nil {
		r = NewWithLogger(b.logger)
	} else if b.logger != nil {
		r.SetLogger(b.logger)
	}

	for _, declare := range b.declarations {
		if err := declare(r); err != nil {
			return nil, fmt.Errorf("failed to declare variables: %w", err)
		}
	}

	var loadErr error
	if b.file != "" {
		if err := r.LoadFile(b.file); err != nil {
			if !errors.Is(err, ErrConfigNotFound) {
				return nil, err
			}
			loadErr = err
		}
	}

	if b.useEnv {
		transform := b.envTransform
		if transform == nil {
			transform = DefaultEnvTransform(b.envPrefix)
		}
		if err := r.ApplyEnvWith(transform); err != nil {
			return nil, err
		}
	}

	if len(b.args) > 0 {
		if err := r.ApplyArgs(b.args); err != nil {
			return nil, err
		}
	}

	for _, validator := range b.validators {
		if err := validator(r); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return r, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		// Ignore ErrConfigNotFound as it is not a fatal error for MustBuild.
		// The application can proceed with declared defaults and env vars.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return r
}
