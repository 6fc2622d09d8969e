package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
)

// MemoryRepo is an in-process document store used for development and unit
// tests. It keeps the same semantics as the persistent stores; ids are UUIDs.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]document.Document
	opts  repoOptions
}

var _ document.Store = (*MemoryRepo)(nil)

func NewMemoryRepo(opts ...Option) *MemoryRepo {
	return &MemoryRepo{store: make(map[string]document.Document), opts: newOptions(opts)}
}

func (m *MemoryRepo) Create(_ context.Context, in document.CreateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateCreate(in); err != nil {
		return document.Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.opts.now()
	d := document.Document{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Status:    in.Status,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.store[d.ID] = d
	return d, nil
}

func (m *MemoryRepo) GetByID(_ context.Context, id string) (document.Document, error) {
	if !validUUID(id) {
		return document.Document{}, document.ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	return d, nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, in document.UpdateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateUpdate(in); err != nil {
		return document.Document{}, err
	}
	if !validUUID(id) {
		return document.Document{}, document.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	if in.Status != nil && !document.CanTransition(d.Status, *in.Status) {
		return document.Document{}, document.InvalidTransition(d.Status, *in.Status)
	}
	if in.Title != nil {
		d.Title = *in.Title
	}
	if in.Content != nil {
		d.Content = *in.Content
	}
	if in.Status != nil {
		d.Status = *in.Status
	}
	d.UpdatedAt = m.opts.now()
	m.store[id] = d
	return d, nil
}

func (m *MemoryRepo) SoftDelete(ctx context.Context, id string) (document.Document, error) {
	return m.Update(ctx, id, document.StatusUpdate(document.StatusArchived))
}

func (m *MemoryRepo) Restore(ctx context.Context, id string) (document.Document, error) {
	return m.Update(ctx, id, document.StatusUpdate(document.StatusDraft))
}

func (m *MemoryRepo) List(_ context.Context, page document.PageRequest, filter document.Filter) (document.Page, error) {
	page = page.Normalize()
	if err := document.ValidatePage(page); err != nil {
		return document.Page{}, err
	}
	m.mu.RLock()
	ranked := m.collect(func(d document.Document) bool { return matchesStatus(d, filter.Status) }, filter.Terms(), filter.HasQuery())
	m.mu.RUnlock()

	total := int64(len(ranked))
	offset, ok := page.Offset()
	if !ok || offset >= total {
		return document.NewPage(nil, total, page), nil
	}
	end := min(int(offset)+page.Limit, len(ranked))
	var items []document.Document
	for _, r := range ranked[offset:end] {
		items = append(items, r.Document)
	}
	return document.NewPage(items, total, page), nil
}

func (m *MemoryRepo) CountByStatus(_ context.Context, status document.Status) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, d := range m.store {
		if d.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) CountByAuthor(_ context.Context, authorID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, d := range m.store {
		if d.AuthorID == authorID && d.Status != document.StatusArchived {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) FindRecentByAuthor(_ context.Context, authorID string, limit int) ([]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ranked := m.collect(func(d document.Document) bool {
		return d.AuthorID == authorID && d.Status != document.StatusArchived
	}, nil, false)
	return firstN(ranked, document.ClampLimit(limit)), nil
}

func (m *MemoryRepo) FindPublished(_ context.Context, limit int) ([]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ranked := m.collect(func(d document.Document) bool { return d.Status == document.StatusPublished }, nil, false)
	return firstN(ranked, document.ClampLimit(limit)), nil
}

func (m *MemoryRepo) SearchByText(_ context.Context, term string, limit int) ([]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ranked := m.collect(func(d document.Document) bool { return d.Status != document.StatusArchived }, document.Terms(term), true)
	return firstN(ranked, document.ClampLimit(limit)), nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }

// collect returns the documents accepted by keep, ordered the way the
// persistent stores order them. With search set only documents scoring above
// zero are kept and the order is score desc, createdAt desc; otherwise
// createdAt desc. Callers hold the read lock.
func (m *MemoryRepo) collect(keep func(document.Document) bool, terms []string, search bool) []document.Ranked {
	out := make([]document.Ranked, 0, len(m.store))
	for _, d := range m.store {
		if !keep(d) {
			continue
		}
		r := document.Ranked{Document: d}
		if search {
			r.Score = document.Score(d, terms)
			if r.Score == 0 {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Document.CreatedAt.Equal(b.Document.CreatedAt) {
			return a.Document.CreatedAt.After(b.Document.CreatedAt)
		}
		return a.Document.ID > b.Document.ID
	})
	return out
}

func matchesStatus(d document.Document, status *document.Status) bool {
	if status == nil {
		return d.Status != document.StatusArchived
	}
	return d.Status == *status
}

func firstN(ranked []document.Ranked, n int) []document.Document {
	out := make([]document.Document, 0, n)
	for i := 0; i < len(ranked) && i < n; i++ {
		out = append(out, ranked[i].Document)
	}
	return out
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
