// Package cli implements the vnetcore command-line tool: a cobra
// command tree built with isolated state per NewRootCmd call (so tests
// can exercise it without global state), mirroring the teacher's
// internal/cli/root.go.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"gopkg.in/yaml.v3"

	"github.com/vnetcore/vnetcore/internal/config"
	"github.com/vnetcore/vnetcore/macaddr"
	"github.com/vnetcore/vnetcore/setup"
	"github.com/vnetcore/vnetcore/worker"
)

type outputFormat string

const (
	outHuman outputFormat = "human"
	outJSON  outputFormat = "json"
	outYAML  outputFormat = "yaml"
)

// Set implements pflag.Value for validation.
func (o *outputFormat) Set(v string) error {
	switch v {
	case string(outHuman), string(outJSON), string(outYAML):
		*o = outputFormat(v)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s", v)
	}
}
func (o *outputFormat) String() string { return string(*o) }
func (o *outputFormat) Type() string   { return "outputFormat" }

// Version is overridden via -ldflags at build time (e.g.
// -X github.com/vnetcore/vnetcore/internal/cli.Version=v1.2.3).
var Version = "dev"

// Exit codes for different error classes, read by Execute.
const (
	exitCodeConfigError   = 2
	exitCodeParseError    = 3
	exitCodeTopologyError = 4
)

var (
	errMissingFlag = errors.New("vnetcore: missing required flag")
	errNoBackend   = errors.New("vnetcore: no worker backend")
)

// NewRootCmd constructs a new *cobra.Command tree with isolated state.
func NewRootCmd(out io.Writer) *cobra.Command {
	var format = outHuman
	var logLevel string
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vnetcore",
		Short: "Topology-to-virtual-network setup core",
		Long:  "vnetcore assigns addresses, partitions client-address space across edge nodes, instantiates a GraphML topology through a worker backend, and computes forwarding routes between client hosts.",
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().VarP(&format, "output", "o", "output format: human|json|yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML configuration file")

	render := func(w io.Writer, v any) error {
		switch format {
		case outJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		case outYAML:
			enc := yaml.NewEncoder(w)
			defer enc.Close()
			return enc.Encode(v)
		default:
			fmt.Fprintf(w, "%+v\n", v)
			return nil
		}
	}

	var topologyPath string
	var dryRun bool

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run the two-phase setup against a config file and a GraphML topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetOutput(cmd.OutOrStdout())
			if lvl, err := logrus.ParseLevel(logLevel); err == nil {
				logger.SetLevel(lvl)
			}

			if configPath == "" {
				return fmt.Errorf("%w: --config is required", errMissingFlag)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if topologyPath == "" {
				topologyPath = cfg.SrcFile
			}
			var src io.Reader
			if topologyPath == "" || topologyPath == "-" {
				src = cmd.InOrStdin()
			} else {
				f, err := os.Open(topologyPath)
				if err != nil {
					return fmt.Errorf("vnetcore: open topology: %w", err)
				}
				defer f.Close()
				src = f
			}

			var w worker.Interface
			if !dryRun {
				return fmt.Errorf("%w: no worker backend wired; pass --dry-run", errNoBackend)
			}
			fake := worker.NewFakeInterface()
			// The in-memory worker answers local-MAC lookups for every
			// configured edge interface with one fixed address.
			for _, e := range cfg.EdgeNodes {
				intf := e.Interface
				if intf == "" {
					intf = cfg.EdgeNodeDefaults.Interface
				}
				fake.LocalMacs[intf] = macaddr.Addr{0x02, 0, 0, 0, 0, 0x01}
			}
			w = fake

			runErr := setup.Run(*cfg, src, w, logger)
			_ = render(cmd.OutOrStdout(), map[string]any{
				"hosts":          len(fake.Hosts),
				"links":          len(fake.Links),
				"clientRoutes":   len(fake.ClientRoutes),
				"internalRoutes": len(fake.InternalRoutes),
			})
			return runErr
		},
	}
	upCmd.Flags().StringVar(&topologyPath, "topology", "", "path to the GraphML topology file, or - for stdin; overrides srcFile from the config")
	upCmd.Flags().BoolVar(&dryRun, "dry-run", false, "drive an in-memory worker and report what would be installed, without touching the kernel")

	versionCmd := &cobra.Command{Use: "version", Short: "Print the version", RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
		return nil
	}}

	docsCmd := &cobra.Command{Use: "docs <directory>", Short: "Generate Markdown documentation for commands", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		root := cmd.Root()
		root.DisableAutoGenTag = true
		return doc.GenMarkdownTree(root, dir)
	}}

	rootCmd.AddCommand(upCmd, versionCmd, docsCmd)
	return rootCmd
}

// Execute builds and runs the CLI using os.Stdout, mapping the first
// fatal error to a process exit code.
func Execute() {
	cmd := NewRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		code := 1
		switch {
		case errors.Is(err, setup.ErrNoEdges),
			errors.Is(err, setup.ErrNoDefaultInterface),
			errors.Is(err, setup.ErrMacResolution),
			errors.Is(err, errMissingFlag),
			errors.Is(err, errNoBackend):
			code = exitCodeConfigError
		case errors.Is(err, setup.ErrNegativeWeight),
			errors.Is(err, setup.ErrUnknownNodeRef):
			code = exitCodeParseError
		case errors.Is(err, setup.ErrNotEnoughClients),
			errors.Is(err, setup.ErrEmptyTopology):
			code = exitCodeTopologyError
		}
		fmt.Fprintf(os.Stderr, "vnetcore: %v\n", err)
		os.Exit(code)
	}
}
