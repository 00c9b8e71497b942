// Package export renders a project into a fixed plain-text outline meant
// to be pasted into an external prompt. Rendering is a pure function of
// records that were already fetched.
package export

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/roach88/storyvault/internal/record"
)

//go:embed prompt.tmpl
var promptText string

var prompt = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(promptText))

// Document is everything one export needs. Entities, Tags and Events are
// rendered in the order given, which is the store's listing order.
type Document struct {
	Project  record.Project  `json:"project"`
	Entities []record.Entity `json:"entities"`
	Tags     []record.Tag    `json:"tags"`
	Events   []record.Event  `json:"events"`
}

// Render writes the outline for doc to w.
func Render(w io.Writer, doc Document) error {
	if err := prompt.Execute(w, newView(doc)); err != nil {
		return fmt.Errorf("render export: %w", err)
	}
	return nil
}

// String renders doc into a string.
func String(doc Document) (string, error) {
	var b strings.Builder
	if err := Render(&b, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}

var groupTitles = map[record.EntityType]string{
	record.EntityCharacter: "Characters",
	record.EntityItem:      "Items",
	record.EntityFaction:   "Factions",
	record.EntityEvent:     "Story Events",
}

type view struct {
	Project   record.Project
	Groups    []entityGroup
	TagGroups []tagGroup
	Events    []eventLine
}

type entityGroup struct {
	Title    string
	Entities []entityLine
}

type entityLine struct {
	Name        string
	Description string
	Tags        []string
	Fields      []fieldLine
}

type fieldLine struct {
	Key   string
	Value string
}

type tagGroup struct {
	Category string
	Tags     []record.Tag
}

type eventLine struct {
	When        string
	Name        string
	Description string
	Tags        []string
	Related     []string
}

func newView(doc Document) view {
	v := view{Project: doc.Project}

	names := make(map[int64]string, len(doc.Entities))
	byType := make(map[record.EntityType][]entityLine, len(record.EntityTypes))
	for _, e := range doc.Entities {
		names[e.ID] = e.Name
		byType[e.Type] = append(byType[e.Type], entityLine{
			Name:        e.Name,
			Description: e.Description,
			Tags:        e.Tags,
			Fields:      fieldLines(e.CustomFields),
		})
	}
	for _, t := range record.EntityTypes {
		v.Groups = append(v.Groups, entityGroup{Title: groupTitles[t], Entities: byType[t]})
	}

	index := map[string]int{}
	for _, t := range doc.Tags {
		i, ok := index[t.Category]
		if !ok {
			i = len(v.TagGroups)
			index[t.Category] = i
			v.TagGroups = append(v.TagGroups, tagGroup{Category: t.Category})
		}
		v.TagGroups[i].Tags = append(v.TagGroups[i].Tags, t)
	}

	for _, ev := range doc.Events {
		line := eventLine{
			When:        when(ev),
			Name:        ev.Name,
			Description: ev.Description,
			Tags:        ev.Tags,
		}
		for _, id := range ev.RelatedEntities {
			name, ok := names[id]
			if !ok {
				name = "#" + strconv.FormatInt(id, 10)
			}
			line.Related = append(line.Related, name)
		}
		v.Events = append(v.Events, line)
	}
	return v
}

func fieldLines(f record.Fields) []fieldLine {
	keys := f.SortedKeys()
	lines := make([]fieldLine, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fieldLine{Key: k, Value: record.Display(f[k])})
	}
	return lines
}

func when(ev record.Event) string {
	var parts []string
	if ev.WorldTime != "" {
		parts = append(parts, ev.WorldTime)
	}
	if ev.ChapterNumber != nil {
		parts = append(parts, "Chapter "+strconv.FormatInt(*ev.ChapterNumber, 10))
	}
	if len(parts) == 0 {
		return "[undated]"
	}
	return "[" + strings.Join(parts, " | ") + "]"
}
