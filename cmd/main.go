// FILE: lixenwraith/confvar/cmd/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/lixenwraith/confvar"
)

// appVars declares the demo application's settings
func appVars(r *config.Registry) error {
	var errs []error
	add := func(_ any, err error) { errs = append(errs, err) }

	add(config.Declare(r, "server.host", "listen address", "localhost"))
	add(config.Declare(r, "server.port", "listen port", 8080))
	add(config.Declare(r, "server.timeout", "request timeout", 30*time.Second))
	add(config.Declare(r, "server.upstreams", "upstream hosts in priority order", []string{"127.0.0.1:9000"}))
	add(config.Declare(r, "features", "feature switches", map[string]bool{"rate_limit": true}))
	add(config.Declare(r, "tags", "instance tags", map[string]struct{}{"dev": {}}))
	add(config.Declare(r, "debug", "verbose output", false))

	return errors.Join(errs...)
}

func main() {
	var (
		file      string
		envPrefix string
		logLevel  string
		logJSON   bool
	)

	// build wires logging and loads every source into a fresh registry
	build := func(args []string) (*config.Registry, error) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return nil, err
		}
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(level)
		if logJSON {
			logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
		}

		b := config.NewBuilder().
			WithLogger(logger).
			WithDeclarations(appVars).
			WithArgs(args)
		if file != "" {
			b = b.WithFile(file)
		} else {
			b = b.WithFileDiscovery(config.DefaultDiscoveryOptions("confvar"))
		}
		if envPrefix != "" {
			b = b.WithEnvPrefix(envPrefix)
		}

		reg, err := b.Build()
		if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
			return nil, err
		}
		return reg, nil
	}

	root := &cobra.Command{
		Use:           "confvar",
		Short:         "Inspect typed configuration variables and documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&file, "file", "f", "", "configuration document (yaml, toml, json)")
	root.PersistentFlags().StringVar(&envPrefix, "env-prefix", "", "apply environment variables with this prefix")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")

	var overrides []string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print every declared variable after applying all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := make([]string, 0, len(overrides))
			for _, o := range overrides {
				if !strings.Contains(o, "=") {
					return fmt.Errorf("override %q is not in name=value form", o)
				}
				args = append(args, "--"+o)
			}
			reg, err := build(args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reg.Debug())
			return nil
		},
	}
	showCmd.Flags().StringArrayVarP(&overrides, "set", "s", nil, "override a variable (name=value), repeatable")

	getCmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print the canonical value of one variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := build(nil)
			if err != nil {
				return err
			}
			v, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("variable %q is not declared", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.ValueString())
			return nil
		},
	}

	flattenCmd := &cobra.Command{
		Use:   "flatten FILE",
		Short: "Print the dotted-path entries of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.LoadDocument(args[0])
			if err != nil {
				return err
			}
			for _, entry := range config.Flatten(doc) {
				if entry.Path == "" {
					continue
				}
				text, err := config.Canonical(entry.Node)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-8s %s\n", entry.Path, entry.Node.Kind(), text)
			}
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Apply a document and report entries that do not fit their variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := build(nil)
			if err != nil {
				return err
			}
			if err := reg.LoadFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}

	root.AddCommand(showCmd, getCmd, flattenCmd, checkCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
