package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// MigrateResult is the outcome of the migrate command.
type MigrateResult struct {
	Database string   `json:"database"`
	Version  int      `json:"version"`
	Warnings []string `json:"warnings"`
}

func (r MigrateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: schema version %d", r.Database, r.Version)
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\nwarning: %s", w)
	}
	return b.String()
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Open the database, apply any pending schema migrations and report the
resulting schema version.

Legacy databases without project scoping are upgraded in place; their rows
are assigned to project 1. A migration step that fails is reported as a
warning and leaves later steps for the next run.

Example:
  storyvault migrate --db ./story-management.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				version, err := s.store.SchemaVersion(s.ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "", "failed to read schema version", err)
				}
				res := MigrateResult{Database: s.cfg.DB, Version: version, Warnings: []string{}}
				for _, w := range s.store.MigrationWarnings() {
					res.Warnings = append(res.Warnings, w.Error())
				}
				if err := s.out.Success(res); err != nil {
					return err
				}
				if len(res.Warnings) > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d migration step(s) failed", len(res.Warnings)))
				}
				return nil
			})
		},
	}
	return cmd
}
