package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/fixture"
)

// ImportSummary is the outcome of the import command.
type ImportSummary struct {
	ProjectID int64  `json:"projectId"`
	Project   string `json:"project"`
	Tags      int    `json:"tags"`
	Entities  int    `json:"entities"`
	Events    int    `json:"events"`
}

func (s ImportSummary) String() string {
	return fmt.Sprintf("Imported %q as project #%d: %d tags, %d entities, %d events",
		s.Project, s.ProjectID, s.Tags, s.Entities, s.Events)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <bundle.yaml>",
		Short: "Create a project from a YAML seed bundle",
		Long: `Create a new project with its tags, entities and events from a YAML bundle.

Records are created through the access facade in bundle order. Events name
their related entities by the entity's key (or name when it has no key).

Example:
  storyvault import ./crown.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := fixture.LoadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, ErrCodeBadInput, "failed to load bundle", err)
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				res, err := fixture.Apply(s.ctx, s.bridge, bundle)
				if err != nil {
					return WrapExitError(ExitFailure, "", "import failed", err)
				}
				return s.out.Success(ImportSummary{
					ProjectID: res.Project.ID,
					Project:   res.Project.Name,
					Tags:      res.Tags,
					Entities:  len(res.Entities),
					Events:    res.Events,
				})
			})
		},
	}
	return cmd
}
