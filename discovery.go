// FILE: lixenwraith/confvar/discovery.go
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions controls where FindConfigFile looks for a document
type FileDiscoveryOptions struct {
	Name       string   // file name without extension
	Extensions []string // tried in order for every directory
	Paths      []string // directories searched before the defaults

	EnvVar  string // variable holding an explicit path
	CLIFlag string // flag holding an explicit path, e.g. "--config"

	UseXDG        bool // search $XDG_CONFIG_HOME and $XDG_CONFIG_DIRS
	UseCurrentDir bool // search the working directory
}

// DefaultDiscoveryOptions returns options for appName: <APP>_CONFIG, --config,
// the working directory and the XDG directories, with every supported format.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".yaml", ".yml", ".toml", ".json"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery locates the configuration file using opts and the builder's arguments
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path := FindConfigFile(opts, b.args); path != "" {
		b.file = path
	}
	return b
}

// FindConfigFile returns the configuration file to load, or "" when there is
// none. An explicit path from the CLI flag or the environment variable wins
// and is returned without checking it exists, so a missing file is reported
// by the loader. Otherwise the first regular file named Name+ext in the
// search directories is returned.
func FindConfigFile(opts FileDiscoveryOptions, args []string) string {
	if path, ok := flagValue(args, opts.CLIFlag); ok {
		return path
	}
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}

	for _, dir := range searchDirs(opts) {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path
			}
		}
	}
	return ""
}

// flagValue finds "flag value" or "flag=value" in args, stopping at "--"
func flagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--":
			return "", false
		case arg == flag && i+1 < len(args):
			return args[i+1], true
		case strings.HasPrefix(arg, flag+"="):
			if value := arg[len(flag)+1:]; value != "" {
				return value, true
			}
		}
	}
	return "", false
}

// searchDirs lists the directories to search in priority order, without duplicates
func searchDirs(opts FileDiscoveryOptions) []string {
	dirs := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, getXDGConfigPaths(opts.Name)...)
	}

	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, dir := range dirs {
		clean := filepath.Clean(dir)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	return out
}

// getXDGConfigPaths returns the per-user then system XDG directories for appName.
// Relative entries are ignored.
func getXDGConfigPaths(appName string) []string {
	user := os.Getenv("XDG_CONFIG_HOME")
	if user == "" {
		if home, err := os.UserHomeDir(); err == nil {
			user = filepath.Join(home, ".config")
		}
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg", "/etc"}
	}

	var paths []string
	for _, base := range append([]string{user}, system...) {
		if filepath.IsAbs(base) {
			paths = append(paths, filepath.Join(base, appName))
		}
	}
	return paths
}
