package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/facade"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DB         string // overrides the configured database path when set
	ConfigPath string

	// IDs overrides the request id generator (for testing).
	// If nil, the bridge uses UUIDv7.
	IDs facade.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storyvault CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storyvault",
		Short: "storyvault - a world-building database for fiction writers",
		Long: `A local database of projects, each holding characters, items, factions,
tags and timeline events.

Every command goes through the same access facade a desktop front end uses,
so "storyvault call" accepts exactly the commands that front end sends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Failures are reported on stderr, or as a JSON envelope on stdout when
// --format json is in effect.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	return execute(ctx, opts, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		f.Writer = stdout
	}
	_ = f.Error(errorCode(err), err.Error(), nil)
	return exitCode(err)
}

// exitCode maps err to a process exit code. Errors that are not ExitErrors
// come from argument and flag parsing.
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// errorCode picks the code shown in error output: the facade code when a
// request failed, otherwise a generic CLI code.
func errorCode(err error) string {
	var fe *facade.Error
	if errors.As(err, &fe) {
		return string(fe.Code)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Kind != "" {
		return exitErr.Kind
	}
	return ErrCodeGeneric
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
