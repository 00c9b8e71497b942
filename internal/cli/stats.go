package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/facade"
	"github.com/roach88/storyvault/internal/record"
	"github.com/roach88/storyvault/internal/store"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <project-id>",
		Short: "Show a project's dashboard counts",
		Long: `Show how many entities (per type), events and tags a project holds, with
its most recent entities and first timeline events.

Example:
  storyvault stats 1
  storyvault stats 1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project-id", args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, rootOpts, func(s *session) error {
				var st store.Stats
				if err := s.call(&st, facade.ProjectStats, id); err != nil {
					return err
				}
				if rootOpts.Format == "json" {
					return s.out.Success(st)
				}
				return s.out.Success(formatStats(st))
			})
		},
	}
	return cmd
}

func formatStats(st store.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s (#%d)\n", st.ProjectName, st.ProjectID)

	perType := make([]string, 0, len(record.EntityTypes))
	for _, t := range record.EntityTypes {
		perType = append(perType, fmt.Sprintf("%s %d", t, st.EntitiesByType[t]))
	}
	fmt.Fprintf(&b, "Entities: %d (%s)\n", st.Entities, strings.Join(perType, ", "))
	fmt.Fprintf(&b, "Events: %d\n", st.Events)
	fmt.Fprintf(&b, "Tags: %d", st.Tags)

	if len(st.RecentEntities) > 0 {
		b.WriteString("\nRecent entities:")
		for _, e := range st.RecentEntities {
			fmt.Fprintf(&b, "\n  - %s (%s)", e.Name, e.Type)
		}
	}
	if len(st.RecentEvents) > 0 {
		b.WriteString("\nTimeline:")
		for _, ev := range st.RecentEvents {
			fmt.Fprintf(&b, "\n  - %s", ev.Name)
		}
	}
	return b.String()
}
