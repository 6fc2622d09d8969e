package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/repository"
	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
	"github.com/tiereddocs/tiereddocs/backend/pkg/metrics"
)

// Service defines the document business operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, in document.CreateInput) (document.Document, error)
	Get(ctx context.Context, id string) (document.Document, error)
	List(ctx context.Context, page document.PageRequest, filter document.Filter) (document.Page, error)
	Update(ctx context.Context, id string, in document.UpdateInput) (document.Document, error)
	Delete(ctx context.Context, id string) (document.Document, error)
	Restore(ctx context.Context, id string) (document.Document, error)
	Stats(ctx context.Context) (Stats, error)
	RecentByAuthor(ctx context.Context, authorID string, limit int) ([]document.Document, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	Search(ctx context.Context, q string, limit int) ([]document.Document, error)
	Published(ctx context.Context, limit int) ([]document.Document, error)
	Ping(ctx context.Context) error
}

// Stats summarises documents by status. Total counts live documents only
// (published + draft).
type Stats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Archived  int64 `json:"archived"`
}

// New returns a Service over store.
func New(store document.Store) Service {
	return &docService{store: store, log: logger.For("DocsService")}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

type docService struct {
	store document.Store
	log   *logger.Logger
}

// observe records the outcome of op. Only unexpected failures are logged as
// errors; not-found and validation errors are part of normal traffic.
func (s *docService) observe(op string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, document.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, document.ErrValidation):
		outcome = metrics.OutcomeValidation
	default:
		outcome = metrics.OutcomeError
		s.log.Trace("failed to "+op+" document", err)
	}
	metrics.DocumentOperations.WithLabelValues(op, outcome).Inc()
}

func (s *docService) Create(ctx context.Context, in document.CreateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateCreate(in); err != nil {
		s.observe("create", err)
		return document.Document{}, err
	}
	d, err := s.store.Create(ctx, in)
	s.observe("create", err)
	if err != nil {
		return document.Document{}, err
	}
	s.log.Infof("document created with ID: %s", d.ID)
	return d, nil
}

func (s *docService) Get(ctx context.Context, id string) (document.Document, error) {
	d, err := s.store.GetByID(ctx, id)
	s.observe("get", err)
	return d, err
}

func (s *docService) List(ctx context.Context, page document.PageRequest, filter document.Filter) (document.Page, error) {
	page = page.Normalize()
	if err := document.ValidatePage(page); err != nil {
		s.observe("list", err)
		return document.Page{}, err
	}
	p, err := s.store.List(ctx, page, filter)
	s.observe("list", err)
	return p, err
}

func (s *docService) Update(ctx context.Context, id string, in document.UpdateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateUpdate(in); err != nil {
		s.observe("update", err)
		return document.Document{}, err
	}
	d, err := s.store.Update(ctx, id, in)
	s.observe("update", err)
	if err != nil {
		return document.Document{}, err
	}
	s.log.Infof("document updated: %s", d.ID)
	return d, nil
}

func (s *docService) Delete(ctx context.Context, id string) (document.Document, error) {
	d, err := s.store.SoftDelete(ctx, id)
	s.observe("delete", err)
	if err != nil {
		return document.Document{}, err
	}
	s.log.Infof("document soft-deleted: %s", d.ID)
	return d, nil
}

func (s *docService) Restore(ctx context.Context, id string) (document.Document, error) {
	d, err := s.store.Restore(ctx, id)
	s.observe("restore", err)
	if err != nil {
		return document.Document{}, err
	}
	s.log.Infof("document restored: %s", d.ID)
	return d, nil
}

func (s *docService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	g, gctx := errgroup.WithContext(ctx)
	count := func(status document.Status, dst *int64) {
		g.Go(func() error {
			n, err := s.store.CountByStatus(gctx, status)
			*dst = n
			return err
		})
	}
	count(document.StatusPublished, &st.Published)
	count(document.StatusDraft, &st.Draft)
	count(document.StatusArchived, &st.Archived)
	err := g.Wait()
	s.observe("stats", err)
	if err != nil {
		return Stats{}, err
	}
	st.Total = st.Published + st.Draft
	return st, nil
}

func (s *docService) RecentByAuthor(ctx context.Context, authorID string, limit int) ([]document.Document, error) {
	docs, err := s.store.FindRecentByAuthor(ctx, authorID, limit)
	s.observe("recent_by_author", err)
	return docs, err
}

func (s *docService) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	n, err := s.store.CountByAuthor(ctx, authorID)
	s.observe("count_by_author", err)
	return n, err
}

func (s *docService) Search(ctx context.Context, q string, limit int) ([]document.Document, error) {
	docs, err := s.store.SearchByText(ctx, q, limit)
	s.observe("search", err)
	return docs, err
}

func (s *docService) Published(ctx context.Context, limit int) ([]document.Document, error) {
	docs, err := s.store.FindPublished(ctx, limit)
	s.observe("published", err)
	return docs, err
}

func (s *docService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
