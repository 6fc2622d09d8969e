package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
)

// stepClock returns a clock that advances one second per call so ordering
// by createdAt and updatedAt comparisons are deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type storeFactory func(t *testing.T) document.Store

func create(t *testing.T, s document.Store, title, content string, status document.Status, author string) document.Document {
	t.Helper()
	d, err := s.Create(context.Background(), document.CreateInput{Title: title, Content: content, Status: status, AuthorID: author})
	require.NoError(t, err)
	return d
}

func ids(docs []document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("CreateDefaults", func(t *testing.T) {
		s := newStore(t)
		d, err := s.Create(ctx, document.CreateInput{Title: "  Getting Started  ", Content: "body", AuthorID: "author-1"})
		require.NoError(t, err)
		assert.NotEmpty(t, d.ID)
		assert.Equal(t, "Getting Started", d.Title)
		assert.Equal(t, document.StatusDraft, d.Status)
		assert.True(t, d.CreatedAt.Equal(d.UpdatedAt))

		got, err := s.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.ID, got.ID)
		assert.Equal(t, "body", got.Content)
		assert.True(t, d.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("ValidationBoundary", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, document.CreateInput{Title: strings.Repeat("t", 200), Content: "c", AuthorID: "a"})
		require.NoError(t, err)

		_, err = s.Create(ctx, document.CreateInput{Title: strings.Repeat("t", 201), Content: "c", AuthorID: "a"})
		assert.ErrorIs(t, err, document.ErrValidation)

		_, err = s.Create(ctx, document.CreateInput{Title: "t", Content: "", AuthorID: "a"})
		assert.ErrorIs(t, err, document.ErrValidation)

		_, err = s.Create(ctx, document.CreateInput{Title: "t", Content: "c", AuthorID: ""})
		assert.ErrorIs(t, err, document.ErrValidation)

		_, err = s.Create(ctx, document.CreateInput{Title: "t", Content: "c", AuthorID: "a", Status: "deleted"})
		assert.ErrorIs(t, err, document.ErrValidation)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByID(ctx, "not-a-valid-id")
		assert.ErrorIs(t, err, document.ErrNotFound)
		_, err = s.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, document.ErrNotFound)
	})

	t.Run("LifecycleRoundTrip", func(t *testing.T) {
		s := newStore(t)
		d := create(t, s, "Lifecycle", "content", "", "author-1")
		require.Equal(t, document.StatusDraft, d.Status)

		published := document.StatusPublished
		p, err := s.Update(ctx, d.ID, document.UpdateInput{Status: &published})
		require.NoError(t, err)
		assert.Equal(t, document.StatusPublished, p.Status)
		assert.True(t, p.UpdatedAt.After(d.UpdatedAt))
		assert.True(t, p.CreatedAt.Equal(d.CreatedAt))
		assert.Equal(t, "author-1", p.AuthorID)

		a, err := s.SoftDelete(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusArchived, a.Status)

		got, err := s.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusArchived, got.Status)

		r, err := s.Restore(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusDraft, r.Status)
		assert.False(t, r.UpdatedAt.Before(r.CreatedAt))
	})

	t.Run("SoftDeleteIdempotent", func(t *testing.T) {
		s := newStore(t)
		d := create(t, s, "Twice", "content", document.StatusPublished, "a")
		first, err := s.SoftDelete(ctx, d.ID)
		require.NoError(t, err)
		second, err := s.SoftDelete(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusArchived, first.Status)
		assert.Equal(t, document.StatusArchived, second.Status)
	})

	t.Run("ArchivedCannotBePublished", func(t *testing.T) {
		s := newStore(t)
		d := create(t, s, "Archived", "content", document.StatusArchived, "a")
		published := document.StatusPublished
		_, err := s.Update(ctx, d.ID, document.UpdateInput{Status: &published})
		assert.ErrorIs(t, err, document.ErrValidation)

		got, err := s.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, document.StatusArchived, got.Status)
		assert.True(t, got.UpdatedAt.Equal(d.UpdatedAt))
	})

	t.Run("UpdateFields", func(t *testing.T) {
		s := newStore(t)
		d := create(t, s, "Old title", "old content", "", "a")
		title := "  New title "
		u, err := s.Update(ctx, d.ID, document.UpdateInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "New title", u.Title)
		assert.Equal(t, "old content", u.Content)
		assert.Equal(t, document.StatusDraft, u.Status)

		empty := ""
		_, err = s.Update(ctx, d.ID, document.UpdateInput{Title: &title, Content: &empty})
		assert.ErrorIs(t, err, document.ErrValidation)
		got, err := s.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, "old content", got.Content)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		_, err := s.Update(ctx, uuid.NewString(), document.UpdateInput{Title: &title})
		assert.ErrorIs(t, err, document.ErrNotFound)
		_, err = s.Update(ctx, "nonexistent-id", document.UpdateInput{Title: &title})
		assert.ErrorIs(t, err, document.ErrNotFound)
		_, err = s.SoftDelete(ctx, uuid.NewString())
		assert.ErrorIs(t, err, document.ErrNotFound)
		_, err = s.Restore(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, document.ErrNotFound)

		// Field validation runs before the existence check.
		long := strings.Repeat("x", 201)
		_, err = s.Update(ctx, "nonexistent-id", document.UpdateInput{Title: &long})
		assert.ErrorIs(t, err, document.ErrValidation)
	})

	t.Run("ListDefaultExcludesArchived", func(t *testing.T) {
		s := newStore(t)
		draft := create(t, s, "Draft", "c", document.StatusDraft, "a")
		pub := create(t, s, "Published", "c", document.StatusPublished, "a")
		arch := create(t, s, "Archived", "c", document.StatusArchived, "a")

		page, err := s.List(ctx, document.PageRequest{Page: 1, Limit: 10}, document.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, []string{pub.ID, draft.ID}, ids(page.Items))

		archived := document.StatusArchived
		page, err = s.List(ctx, document.PageRequest{Page: 1, Limit: 10}, document.Filter{Status: &archived})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, []string{arch.ID}, ids(page.Items))

		published := document.StatusPublished
		page, err = s.List(ctx, document.PageRequest{Page: 1, Limit: 10}, document.Filter{Status: &published})
		require.NoError(t, err)
		assert.Equal(t, []string{pub.ID}, ids(page.Items))
	})

	t.Run("ListPagination", func(t *testing.T) {
		s := newStore(t)
		var created []document.Document
		for i := 0; i < 25; i++ {
			created = append(created, create(t, s, fmt.Sprintf("Doc %02d", i), "c", "", "a"))
		}
		create(t, s, "Hidden", "c", document.StatusArchived, "a")

		p1, err := s.List(ctx, document.PageRequest{Page: 1, Limit: 10}, document.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(25), p1.Total)
		assert.Equal(t, 3, p1.TotalPages)
		assert.True(t, p1.HasNext)
		assert.False(t, p1.HasPrev)
		require.Len(t, p1.Items, 10)
		assert.Equal(t, created[24].ID, p1.Items[0].ID)

		p3, err := s.List(ctx, document.PageRequest{Page: 3, Limit: 10}, document.Filter{})
		require.NoError(t, err)
		assert.Len(t, p3.Items, 5)
		assert.False(t, p3.HasNext)
		assert.True(t, p3.HasPrev)
		assert.Equal(t, created[0].ID, p3.Items[4].ID)

		p4, err := s.List(ctx, document.PageRequest{Page: 4, Limit: 10}, document.Filter{})
		require.NoError(t, err)
		assert.Empty(t, p4.Items)
		assert.NotNil(t, p4.Items)
		assert.False(t, p4.HasNext)
		assert.Equal(t, int64(25), p4.Total)

		_, err = s.List(ctx, document.PageRequest{Page: 1, Limit: 101}, document.Filter{})
		assert.ErrorIs(t, err, document.ErrValidation)
	})

	t.Run("ListHugePage", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			create(t, s, "alpha", "c", "", "a")
		}
		for _, req := range []document.PageRequest{
			{Page: 1 << 62, Limit: 4},
			{Page: math.MaxInt, Limit: 100},
			{Page: 1 << 40, Limit: 100},
		} {
			for _, f := range []document.Filter{{}, {Query: "alpha"}} {
				p, err := s.List(ctx, req, f)
				require.NoError(t, err)
				assert.Empty(t, p.Items)
				assert.NotNil(t, p.Items)
				assert.Equal(t, int64(3), p.Total)
				assert.False(t, p.HasNext)
				assert.True(t, p.HasPrev)
			}
		}
	})

	t.Run("SearchOrdering", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			create(t, s, "filler", "gamma delta epsilon", "", "a")
		}
		low := create(t, s, "note", "alpha beta beta", "", "a")
		high := create(t, s, "note", "alpha alpha alpha", "", "a")
		mid := create(t, s, "note", "alpha alpha beta", document.StatusPublished, "a")
		create(t, s, "note", "alpha alpha alpha alpha", document.StatusArchived, "a")

		got, err := s.SearchByText(ctx, "alpha", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{high.ID, mid.ID, low.ID}, ids(got))

		got, err = s.SearchByText(ctx, "alpha", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{high.ID, mid.ID}, ids(got))

		page, err := s.List(ctx, document.PageRequest{Page: 1, Limit: 2}, document.Filter{Query: "ALPHA"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, []string{high.ID, mid.ID}, ids(page.Items))

		published := document.StatusPublished
		page, err = s.List(ctx, document.PageRequest{Page: 1, Limit: 10}, document.Filter{Query: "alpha", Status: &published})
		require.NoError(t, err)
		assert.Equal(t, []string{mid.ID}, ids(page.Items))

		got, err = s.SearchByText(ctx, "zeta", 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.SearchByText(ctx, " ?! ", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("SearchTiesNewestFirst", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			create(t, s, "filler", "gamma delta", "", "a")
		}
		older := create(t, s, "same", "kappa word", "", "a")
		newer := create(t, s, "same", "kappa word", "", "a")
		got, err := s.SearchByText(ctx, "kappa", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{newer.ID, older.ID}, ids(got))
	})

	t.Run("CountsAndAuthorQueries", func(t *testing.T) {
		s := newStore(t)
		a1 := create(t, s, "one", "c", document.StatusDraft, "alice")
		a2 := create(t, s, "two", "c", document.StatusPublished, "alice")
		create(t, s, "three", "c", document.StatusArchived, "alice")
		b1 := create(t, s, "four", "c", document.StatusPublished, "bob")

		n, err := s.CountByStatus(ctx, document.StatusPublished)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		n, err = s.CountByStatus(ctx, document.StatusArchived)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.CountByAuthor(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		n, err = s.CountByAuthor(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, n)

		recent, err := s.FindRecentByAuthor(ctx, "alice", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, a1.ID}, ids(recent))

		recent, err = s.FindRecentByAuthor(ctx, "alice", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID}, ids(recent))

		pub, err := s.FindPublished(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{b1.ID, a2.ID}, ids(pub))
	})

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(ctx))
	})
}
