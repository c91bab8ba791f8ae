package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/dirsize/internal/dirsize"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options holds the resolved command-line configuration.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Output represents output format (table or json).
	Output string
	// Depth is the number of tree levels printed in table output.
	Depth int
	// TopN is the number of largest files and directories listed.
	TopN int
	// PreCount counts directories before scanning for a steadier estimate.
	PreCount bool
	// SparseThreshold is the logical size above which files are probed with du.
	SparseThreshold int64
	// ProbeTimeout bounds each du invocation.
	ProbeTimeout time.Duration
	// NoProgress disables the interactive progress display.
	NoProgress bool
	// Debug indicates whether debug output is enabled.
	Debug bool
}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json"}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute(ctx context.Context, args []string) error {
	cmd := c.command()
	cmd.SetArgs(args)

	return cmd.ExecuteContext(ctx)
}

func (c CLI) command() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "dirsize [flags] [path]",
		Short: "Report the disk footprint of a directory tree",
		Long: heredoc.Doc(`
			dirsize walks a directory tree and reports how much disk space every
			file and directory consumes.

			Files larger than the sparse threshold are checked with 'du' so that
			sparse files are reported with their allocated size.

			While scanning, progress is shown on stderr when it is a terminal.
			Press 'q' or Ctrl-C to cancel.

			Flags can also be set through a .dirsize.yaml config file or
			DIRSIZE_* environment variables (e.g. DIRSIZE_PROBE_TIMEOUT=10s).
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, cmd.Flags()); err != nil {
				return err
			}

			options, err := optionsFrom(v)
			if err != nil {
				return err
			}

			options.Path = "."
			if len(args) > 0 {
				options.Path = args[0]
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "table", "Output format: json or table")
	flags.IntP("depth", "d", 1, "Tree levels to print in table output (0=root only)")
	flags.IntP("top", "t", dirsize.DefaultTopN, "Number of largest files and directories to list")
	flags.Bool("precount", false, "Count directories before scanning for a more accurate progress estimate")
	flags.String("sparse-threshold", "10GiB", "Files larger than this are checked for sparseness with du")
	flags.Duration("probe-timeout", dirsize.DefaultProbeTimeout, "Timeout for each du invocation")
	flags.Bool("no-progress", false, "Disable the progress display")
	flags.Bool("debug", false, "Enable debug output")
	flags.String("config", "", "Path to a config file (default .dirsize.yaml in the working or user config directory)")
	flags.SortFlags = false

	return cmd
}

// optionsFrom reads and validates options from v.
func optionsFrom(v *viper.Viper) (Options, error) {
	options := Options{
		Output:       strings.ToLower(v.GetString("output")),
		Depth:        v.GetInt("depth"),
		TopN:         v.GetInt("top"),
		PreCount:     v.GetBool("precount"),
		ProbeTimeout: v.GetDuration("probe-timeout"),
		NoProgress:   v.GetBool("no-progress"),
		Debug:        v.GetBool("debug"),
	}

	if !slices.Contains(allowedOutputs, options.Output) {
		return Options{}, fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
	}

	if options.Depth < 0 {
		return Options{}, errors.New("depth cannot be negative")
	}

	if options.TopN < 0 {
		return Options{}, errors.New("top cannot be negative")
	}

	if options.ProbeTimeout <= 0 {
		return Options{}, errors.New("probe timeout must be positive")
	}

	threshold, err := humanize.ParseBytes(v.GetString("sparse-threshold"))
	if err != nil {
		return Options{}, fmt.Errorf("invalid sparse-threshold: %w", err)
	}

	options.SparseThreshold = int64(threshold) //nolint:gosec // Size conversion from humanize is safe

	return options, nil
}
