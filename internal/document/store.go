package document

import "context"

// Store persists documents and answers queries over them. Implementations
// hold no process-wide mutable state beyond their connection to the backing
// collection, which is the single source of truth.
//
// All methods return ErrNotFound, a *ValidationError or a *StoreError on
// failure.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, id string, in UpdateInput) (Document, error)
	SoftDelete(ctx context.Context, id string) (Document, error)
	Restore(ctx context.Context, id string) (Document, error)

	// List returns one page. Count and page are read separately and may
	// reflect slightly different snapshots under concurrent writes.
	List(ctx context.Context, page PageRequest, filter Filter) (Page, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	FindRecentByAuthor(ctx context.Context, authorID string, limit int) ([]Document, error)
	FindPublished(ctx context.Context, limit int) ([]Document, error)
	SearchByText(ctx context.Context, term string, limit int) ([]Document, error)

	Ping(ctx context.Context) error
}

// StatusUpdate is the UpdateInput that only changes the status.
func StatusUpdate(s Status) UpdateInput {
	return UpdateInput{Status: &s}
}
