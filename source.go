// FILE: lixenwraith/confvar/source.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvTransformFunc converts a variable name to an environment variable name
type EnvTransformFunc func(name string) string

// DefaultEnvTransform maps "server.port" to PREFIX + "SERVER_PORT".
// Dashes become underscores as well.
func DefaultEnvTransform(prefix string) EnvTransformFunc {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return func(name string) string {
		return prefix + strings.ToUpper(replacer.Replace(name))
	}
}

// ApplyEnv sets every declared variable whose environment variable exists,
// using DefaultEnvTransform(prefix) for the mapping.
func (r *Registry) ApplyEnv(prefix string) error {
	return r.ApplyEnvWith(DefaultEnvTransform(prefix))
}

// ApplyEnvWith is ApplyEnv with a custom name transform. Environment values
// are canonical strings and go through SetValueString; failures are joined.
func (r *Registry) ApplyEnvWith(transform EnvTransformFunc) error {
	if transform == nil {
		transform = DefaultEnvTransform("")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	var errs []error
	applied := 0
	for name, v := range r.vars {
		envVar := transform(name)
		value, exists := os.LookupEnv(envVar)
		if !exists {
			continue
		}
		if err := v.SetValueString(value); err != nil {
			errs = append(errs, fmt.Errorf("env %s: %w", envVar, err))
			continue
		}
		applied++
	}

	r.Logger().WithFields(logrus.Fields{
		"applied": applied,
		"failed":  len(errs),
	}).Info("config environment applied")

	return errors.Join(errs...)
}

// DiscoverEnv returns name -> environment variable for every declared
// variable whose environment variable is currently set.
func (r *Registry) DiscoverEnv(prefix string) map[string]string {
	transform := DefaultEnvTransform(prefix)

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	discovered := make(map[string]string)
	for name := range r.vars {
		envVar := transform(name)
		if _, exists := os.LookupEnv(envVar); exists {
			discovered[name] = envVar
		}
	}
	return discovered
}

// FromViper exposes the merged settings of a viper instance as a document.
// Viper lower-cases keys, so only lower-case names will match.
func FromViper(v *viper.Viper) (Node, error) {
	if v == nil {
		return nil, errors.New("nil viper instance")
	}
	return NodeFromValue(v.AllSettings())
}

// ApplyViper applies the settings held by v to the declared variables.
func (r *Registry) ApplyViper(v *viper.Viper) error {
	root, err := FromViper(v)
	if err != nil {
		return err
	}
	return r.ApplyDocument(root)
}
