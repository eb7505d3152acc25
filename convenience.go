// File: lixenwraith/confvar/convenience.go
package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
)

// Quick builds a registry with a single call: declarations, then the
// configuration file, then environment variables with envPrefix, then
// command-line flags from os.Args. A missing file is not fatal.
func Quick(declare func(*Registry) error, envPrefix, configFile string) (*Registry, error) {
	return NewBuilder().
		WithDeclarations(declare).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(declare func(*Registry) error, envPrefix, configFile string) *Registry {
	return NewBuilder().
		WithDeclarations(declare).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		MustBuild()
}

// FlagSet creates a pflag set with one flag per declared variable, named
// after the variable and described by its description. Setting a flag calls
// SetValueString on the variable. Boolean variables accept a bare --flag.
func (r *Registry) FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	r.Visit(func(v Variable) {
		pv, ok := v.(pflag.Value)
		if !ok {
			return
		}
		fs.Var(pv, v.Name(), v.Description())
		if v.TypeTag().Kind() == reflect.Bool {
			fs.Lookup(v.Name()).NoOptDefVal = "true"
		}
	})

	return fs
}

// ApplyArgs parses command-line arguments in "--name value", "--name=value"
// or "--boolflag" form. Unknown flags and positional arguments are ignored.
func (r *Registry) ApplyArgs(args []string) error {
	fs := r.FlagSet("config")
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to apply command-line arguments: %w", err)
	}
	return nil
}

// Debug returns a formatted listing of every variable, its type, value and description
func (r *Registry) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Registry: %s (%d variables)\n", r.ID(), r.Len()))

	r.Visit(func(v Variable) {
		b.WriteString(fmt.Sprintf("  %s:\n", v.Name()))
		b.WriteString(fmt.Sprintf("    Type: %s\n", v.TypeName()))
		b.WriteString(fmt.Sprintf("    Value: %s\n", v.ValueString()))
		if v.Description() != "" {
			b.WriteString(fmt.Sprintf("    Description: %s\n", v.Description()))
		}
	})

	return b.String()
}

// Dump writes Debug output to stdout
func (r *Registry) Dump() {
	fmt.Fprint(os.Stdout, r.Debug())
}
