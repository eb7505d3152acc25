// File: lixenwraith/confvar/doc.go

// Package config provides a typed configuration variable registry: code
// declares strongly-typed named settings, updates them programmatically or
// from hierarchical documents (YAML, TOML, JSON), and reads them back with
// their static type intact.
//
// Features:
//   - Generic typed variables (Var[T]) behind a type-erased Variable handle
//   - Canonical string codecs for scalars, durations and timestamps
//   - Composable container codecs: SequenceOf, SetOf, MappingOf, to any depth
//   - Struct values through mapstructure, application codecs via RegisterCodec
//   - Type-guarded re-declaration (ErrTypeMismatch), never a silent overwrite
//   - Document flattening into dotted paths; loading never creates variables
//   - Environment variables, pflag command-line flags and viper as sources
//   - Structured change and error logging through logrus
//
// Quick Start:
//
//	reg := config.New()
//	port := config.MustDeclare(reg, "server.port", "listen port", 8080)
//	hosts := config.MustDeclare(reg, "server.hosts", "upstreams", []string{"a", "b"})
//
//	if err := reg.LoadFile("config.yaml"); err != nil {
//	    log.Print(err) // bad entries are skipped, the rest still apply
//	}
//
//	fmt.Println(port.Value(), hosts.Value())
//
// Canonical form:
// Scalars are their literal text ("8080", "true", "1m30s"). Containers are
// single-line flow YAML: "[1, 2]" for sequences and sets, "{a: 1, b: 2}" for
// mappings. Documents, environment variables and flags all feed variables
// through this form.
//
// Thread Safety:
// All operations are safe for concurrent use. Declarations and document
// application are serialized by the registry lock.
package config
