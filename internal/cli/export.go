package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/facade"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Render a project as a prompt-ready text outline",
		Long: `Render a project's overview, entities, tags and timeline into a fixed
plain-text outline for use as an external prompt.

Example:
  storyvault export 1
  storyvault export 1 -o crown.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project-id", args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts.RootOptions, func(s *session) error {
				var res facade.ExportResult
				if err := s.call(&res, facade.ProjectExport, id); err != nil {
					return err
				}

				if opts.Output != "" {
					if err := os.WriteFile(opts.Output, []byte(res.Text), 0o644); err != nil {
						return WrapExitError(ExitCommandError, ErrCodeWriteFailed, "failed to write export", err)
					}
					s.out.VerboseLog("wrote %s", opts.Output)
					if opts.Format == "json" {
						return s.out.Success(map[string]any{"projectId": id, "output": opts.Output})
					}
					return nil
				}

				if opts.Format == "json" {
					return s.out.Success(res)
				}
				_, err := cmd.OutOrStdout().Write([]byte(res.Text))
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the outline to a file instead of stdout")

	return cmd
}
