package fixture

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storyvault/internal/facade"
	"github.com/roach88/storyvault/internal/record"
	"github.com/roach88/storyvault/internal/store"
)

func startBridge(t *testing.T) (*facade.Bridge, *store.Store) {
	t.Helper()
	discard := slog.New(slog.DiscardHandler)
	s, err := store.Open(filepath.Join(t.TempDir(), "fixture.db"), store.WithLogger(discard))
	require.NoError(t, err)

	b := facade.New(s, facade.WithLogger(discard))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		s.Close()
	})
	return b, s
}

func TestLoadFile_Saga(t *testing.T) {
	b, err := LoadFile("testdata/saga.yaml")
	require.NoError(t, err)

	assert.Equal(t, "The Shattered Crown", b.Project.Name)
	assert.Len(t, b.Tags, 2)
	assert.Len(t, b.Entities, 3)
	assert.Len(t, b.Events, 3)
	require.NotNil(t, b.Events[1].Chapter)
	assert.Equal(t, int64(3), *b.Events[1].Chapter)
	assert.Nil(t, b.Events[2].Chapter)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "project: {name: X}\nentites: []\n", "failed to parse YAML"},
		{"missing project name", "project: {description: nameless}\n", "project.name is required"},
		{"nameless entity", "project: {name: X}\nentities:\n  - type: item\n", "entities[0]: name is required"},
		{
			"duplicate reference",
			"project: {name: X}\nentities:\n  - {key: a, name: A, type: item}\n  - {key: a, name: B, type: item}\n",
			`duplicate reference "a"`,
		},
		{
			"unknown related",
			"project: {name: X}\nentities:\n  - {name: A, type: item}\nevents:\n  - {name: E, related: [B]}\n",
			`unknown related entity "B"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read bundle file")
}

func TestApply_Saga(t *testing.T) {
	bridge, s := startBridge(t)
	ctx := t.Context()

	bundle, err := LoadFile("testdata/saga.yaml")
	require.NoError(t, err)

	res, err := Apply(ctx, bridge, bundle)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tags)
	assert.Equal(t, 3, res.Events)
	assert.Len(t, res.Entities, 3)
	assert.Contains(t, res.Entities, "aria")
	assert.Contains(t, res.Entities, "Iron Guild")

	pid := res.Project.ID
	p, ok, err := s.GetProject(ctx, pid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Aria, a thief with a conscience.", p.ProtagonistInfo)

	tags, err := s.ListTags(ctx, &pid)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "#ef4444", tags[0].Color)
	assert.Equal(t, record.DefaultTagColor, tags[1].Color)

	aria, ok, err := s.GetEntity(ctx, res.Entities["aria"])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Fields{"age": record.Int(19), "origin": record.String("Port Vell")}, aria.CustomFields)

	blade, ok, err := s.GetEntity(ctx, res.Entities["blade"])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Float(2.5), blade.CustomFields["weight"])

	guild, ok, err := s.GetEntity(ctx, res.Entities["Iron Guild"])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Null{}, guild.CustomFields["leader"])

	events, err := s.ListEvents(ctx, &pid)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Rumor", events[0].Name)
	assert.Equal(t, "Betrayal", events[2].Name)
	assert.Equal(t, []int64{res.Entities["aria"], res.Entities["Iron Guild"]}, events[2].RelatedEntities)
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	bridge, s := startBridge(t)
	ctx := t.Context()

	bundle, err := Parse([]byte(`
project: {name: Broken}
tags:
  - {name: hero}
entities:
  - {name: Aria, type: character}
  - {name: Smaug, type: dragon}
  - {name: Never, type: item}
`))
	require.NoError(t, err)

	res, err := Apply(ctx, bridge, bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `entity "Smaug"`)
	assert.True(t, facade.IsCode(err, facade.CodeConstraint), "got %v", err)

	require.NotNil(t, res)
	assert.Equal(t, 1, res.Tags)
	assert.Len(t, res.Entities, 1)

	pid := res.Project.ID
	entities, err := s.ListEntities(ctx, &pid)
	require.NoError(t, err)
	assert.Len(t, entities, 1, "earlier records are kept")
}
