// FILE: lixenwraith/confvar/config.go
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry maps unique dotted names to declared variables of any type.
// All methods are safe for concurrent use.
type Registry struct {
	id    uuid.UUID
	vars  map[string]Variable // Maps names to variables
	mutex sync.RWMutex        // Serializes lookup-then-mutate sequences

	logMu  sync.RWMutex
	logger logrus.FieldLogger
}

// defaultRegistry is created on first use and lives for the whole process
var defaultRegistry = sync.OnceValue(New)

// Default returns the process-wide registry.
// Libraries should accept a *Registry instead of reaching for this directly.
func Default() *Registry {
	return defaultRegistry()
}

// New creates an empty registry logging through the logrus standard logger.
func New() *Registry {
	return NewWithLogger(logrus.StandardLogger())
}

// NewWithLogger creates an empty registry logging through l.
func NewWithLogger(l logrus.FieldLogger) *Registry {
	r := &Registry{
		id:   uuid.New(),
		vars: make(map[string]Variable),
	}
	r.SetLogger(l)
	return r
}

// ID returns the registry instance identifier attached to its log entries
func (r *Registry) ID() string {
	return r.id.String()
}

// SetLogger replaces the sink for change notices and error reports.
// A nil logger restores the logrus standard logger.
func (r *Registry) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	entry := l.WithFields(logrus.Fields{
		"component": "config",
		"registry":  r.id.String(),
	})

	r.logMu.Lock()
	r.logger = entry
	r.logMu.Unlock()
}

// Logger returns the logger used by the registry and its variables
func (r *Registry) Logger() logrus.FieldLogger {
	r.logMu.RLock()
	defer r.logMu.RUnlock()
	return r.logger
}

// Lookup returns the variable declared under name. It never creates one.
func (r *Registry) Lookup(name string) (Variable, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v, found := r.vars[name]
	return v, found
}

// Len returns the number of declared variables
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.vars)
}

// Names returns all declared names with the given prefix, sorted.
func (r *Registry) Names(prefix string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.vars))
	for name := range r.vars {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Visit calls fn for every declared variable in name order.
// fn must not declare variables on the same registry.
func (r *Registry) Visit(fn func(Variable)) {
	r.mutex.RLock()
	vars := make([]Variable, 0, len(r.vars))
	for _, v := range r.vars {
		vars = append(vars, v)
	}
	r.mutex.RUnlock()

	sort.Slice(vars, func(i, j int) bool { return vars[i].Name() < vars[j].Name() })
	for _, v := range vars {
		fn(v)
	}
}

// ApplyDocument flattens root and feeds every entry whose path names a
// declared variable through that variable's SetValueString. Entries for
// unknown paths are ignored: loading a document never declares variables.
// A mapping entry is applied only when a variable is declared under its
// exact path (mapping or struct valued variables); null leaves are skipped.
// A failing entry does not stop the pass; all failures are joined and returned.
func (r *Registry) ApplyDocument(root Node) error {
	if root == nil {
		return nil
	}
	entries := Flatten(root)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	log := r.Logger()
	var errs []error
	applied := 0

	for _, entry := range entries {
		// The document root itself has no name
		if entry.Path == "" {
			continue
		}

		v, found := r.vars[entry.Path]
		if !found {
			if entry.Node.Kind() != MappingNode {
				log.WithField("path", entry.Path).Debug("config entry ignored, no variable declared")
			}
			continue
		}

		if entry.Node.Kind() == NullNode {
			log.WithField("path", entry.Path).Debug("config entry ignored, null value")
			continue
		}

		text, err := Canonical(entry.Node)
		if err != nil {
			err = fmt.Errorf("entry %q: %w", entry.Path, err)
			log.WithError(err).Error("config entry not representable")
			errs = append(errs, err)
			continue
		}

		// SetValueString logs its own failures
		if err := v.SetValueString(text); err != nil {
			errs = append(errs, fmt.Errorf("entry %q: %w", entry.Path, err))
			continue
		}
		applied++
	}

	log.WithFields(logrus.Fields{
		"entries": len(entries),
		"applied": applied,
		"failed":  len(errs),
	}).Info("config document applied")

	return errors.Join(errs...)
}
