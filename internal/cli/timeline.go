package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/facade"
	"github.com/roach88/storyvault/internal/record"
	"github.com/roach88/storyvault/internal/store"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	Axis       string
	EntityType string
	Tag        string
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline <project-id>",
		Short: "Lay out a project's events in lanes",
		Long: `Position a project's events along world time or chapter number and
print each card's lane and canvas coordinates.

Only events placeable on the chosen axis are shown: a non-empty world time
for --axis world, a chapter number for --axis chapter.

Example:
  storyvault timeline 1
  storyvault timeline 1 --axis chapter --entity-type character`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project-id", args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, opts.RootOptions, func(s *session) error {
				var tl facade.Timeline
				q := store.EventQuery{
					ProjectID:  &id,
					Axis:       record.Axis(opts.Axis),
					EntityType: record.EntityType(opts.EntityType),
					Tag:        opts.Tag,
				}
				if err := s.call(&tl, facade.EventTimeline, q); err != nil {
					return err
				}
				if opts.Format == "json" {
					return s.out.Success(tl)
				}
				return s.out.Success(formatTimeline(tl))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Axis, "axis", string(record.AxisWorld), "timeline axis (world|chapter)")
	cmd.Flags().StringVar(&opts.EntityType, "entity-type", "", "only events related to an entity of this type")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "only events carrying this tag")

	return cmd
}

func formatTimeline(tl facade.Timeline) string {
	if len(tl.Placements) == 0 {
		return fmt.Sprintf("No events on the %s axis.", tl.Axis)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s axis, canvas %.0fx%.0f", tl.Axis, tl.Width, tl.Height)
	for _, p := range tl.Placements {
		key := p.Event.WorldTime
		if tl.Axis == record.AxisChapter && p.Event.ChapterNumber != nil {
			key = fmt.Sprintf("chapter %d", *p.Event.ChapterNumber)
		}
		fmt.Fprintf(&b, "\n  lane %d  (%4.0f,%4.0f)  %s  [%s]", p.Lane, p.X, p.Y, p.Event.Name, key)
	}
	return b.String()
}
