package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiereddocs/tiereddocs/backend/internal/config"
	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/repository"
	"github.com/tiereddocs/tiereddocs/backend/internal/export"
)

type recordingSink struct {
	keys []string
}

func (s *recordingSink) Put(_ context.Context, key string, _ []byte, _ string) error {
	s.keys = append(s.keys, key)
	return nil
}

func setup(t *testing.T) (*repository.MemoryRepo, *recordingSink) {
	t.Helper()
	store := repository.NewMemoryRepo()
	sink := &recordingSink{}
	cfg := &config.Config{Export: config.ExportConfig{Bucket: "archive", Prefix: "archived", PageSize: 50}}

	origEnv, origSink := openEnv, newSink
	openEnv = func(context.Context) (*env, error) {
		return &env{cfg: cfg, store: store, close: func() {}}, nil
	}
	newSink = func(context.Context, config.ExportConfig) (export.Sink, error) { return sink, nil }
	t.Cleanup(func() { openEnv, newSink = origEnv, origSink })
	return store, sink
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestStatsCommand(t *testing.T) {
	store, _ := setup(t)
	ctx := context.Background()
	for _, s := range []document.Status{document.StatusDraft, document.StatusPublished, document.StatusArchived} {
		_, err := store.Create(ctx, document.CreateInput{Title: "t", Content: "c", AuthorID: "a", Status: s})
		require.NoError(t, err)
	}

	out, err := run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Published: 1")
	assert.Contains(t, out, "Archived:  1")
	assert.Contains(t, out, "Total:     2")
}

func TestRestoreCommand(t *testing.T) {
	store, _ := setup(t)
	d, err := store.Create(context.Background(), document.CreateInput{Title: "Old", Content: "c", AuthorID: "a", Status: document.StatusArchived})
	require.NoError(t, err)

	out, err := run(t, "restore", d.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "to draft")

	_, err = run(t, "restore", "missing")
	require.ErrorContains(t, err, "document not found: missing")

	_, err = run(t, "restore")
	require.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	store, sink := setup(t)
	d, err := store.Create(context.Background(), document.CreateInput{Title: "Old", Content: "c", AuthorID: "a", Status: document.StatusArchived})
	require.NoError(t, err)

	out, err := run(t, "export", "--prefix", "backup/2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"backup/2024/" + d.ID + ".json"}, sink.keys)
	assert.Contains(t, out, "Exported 1 archived documents to archive")
}
