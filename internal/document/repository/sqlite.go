package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/repository/migrations"
)

// SQLiteRepo implements document.Store on an embedded SQLite database.
// Relevance search uses an FTS5 index over title and content ranked by bm25.
type SQLiteRepo struct {
	db   *sql.DB
	opts repoOptions
}

var _ document.Store = (*SQLiteRepo)(nil)

// NewSQLiteRepo wraps db and applies pending migrations.
func NewSQLiteRepo(ctx context.Context, db *sql.DB, opts ...Option) (*SQLiteRepo, error) {
	r := &SQLiteRepo{db: db, opts: newOptions(opts)}
	if err := r.migrate(ctx, migrations.FS); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepo) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, "INSERT INTO schema_migrations(version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

const (
	sqliteColumns   = "d.id, d.title, d.content, d.status, d.author_id, d.created_at, d.updated_at"
	sqliteReturning = "id, title, content, status, author_id, created_at, updated_at"
)

// sqliteRecord is the stored shape of a document; timestamps are unix nanos.
type sqliteRecord struct {
	ID        string
	Title     string
	Content   string
	Status    string
	AuthorID  string
	CreatedAt int64
	UpdatedAt int64
}

func (r sqliteRecord) toDocument() document.Document {
	return document.Document{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Status:    document.Status(r.Status),
		AuthorID:  r.AuthorID,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (sqliteRecord, error) {
	var rec sqliteRecord
	err := s.Scan(&rec.ID, &rec.Title, &rec.Content, &rec.Status, &rec.AuthorID, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// ftsQuery turns free text into an FTS5 expression matching any term.
func ftsQuery(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// sqliteStatusClause is the List status predicate and its arguments.
func sqliteStatusClause(status *document.Status) (string, []any) {
	if status == nil {
		return "d.status != ?", []any{string(document.StatusArchived)}
	}
	return "d.status = ?", []any{string(*status)}
}

func (r *SQLiteRepo) Create(ctx context.Context, in document.CreateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateCreate(in); err != nil {
		return document.Document{}, err
	}
	now := r.opts.now()
	rec := sqliteRecord{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Status:    string(in.Status),
		AuthorID:  in.AuthorID,
		CreatedAt: now.UnixNano(),
		UpdatedAt: now.UnixNano(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, status, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Content, rec.Status, rec.AuthorID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return document.Document{}, document.WrapStore("insert document", err)
	}
	return rec.toDocument(), nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (document.Document, error) {
	if !validUUID(id) {
		return document.Document{}, document.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+sqliteColumns+" FROM documents d WHERE d.id = ?", id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, document.WrapStore("find document", err)
	}
	return rec.toDocument(), nil
}

// sqliteUpdate builds a single conditional UPDATE ... RETURNING statement.
// A blocked status transition leaves the WHERE clause unmatched.
func sqliteUpdate(id string, in document.UpdateInput, now time.Time) (string, []any) {
	sets := []string{"updated_at = ?"}
	args := []any{now.UnixNano()}
	if in.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *in.Title)
	}
	if in.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *in.Content)
	}
	where := "id = ?"
	whereArgs := []any{id}
	if in.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*in.Status))
		if blocked := document.BlockedSources(*in.Status); len(blocked) > 0 {
			marks := make([]string, 0, len(blocked))
			for _, s := range blocked {
				marks = append(marks, "?")
				whereArgs = append(whereArgs, string(s))
			}
			where += " AND status NOT IN (" + strings.Join(marks, ", ") + ")"
		}
	}
	q := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE " + where + " RETURNING " + sqliteReturning
	return q, append(args, whereArgs...)
}

func (r *SQLiteRepo) Update(ctx context.Context, id string, in document.UpdateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateUpdate(in); err != nil {
		return document.Document{}, err
	}
	if !validUUID(id) {
		return document.Document{}, document.ErrNotFound
	}
	q, args := sqliteUpdate(id, in, r.opts.now())
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, args...))
	if err == nil {
		return rec.toDocument(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, document.WrapStore("update document", err)
	}
	if in.Status == nil {
		return document.Document{}, document.ErrNotFound
	}
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	return document.Document{}, document.InvalidTransition(cur.Status, *in.Status)
}

func (r *SQLiteRepo) SoftDelete(ctx context.Context, id string) (document.Document, error) {
	return r.Update(ctx, id, document.StatusUpdate(document.StatusArchived))
}

func (r *SQLiteRepo) Restore(ctx context.Context, id string) (document.Document, error) {
	return r.Update(ctx, id, document.StatusUpdate(document.StatusDraft))
}

func (r *SQLiteRepo) List(ctx context.Context, page document.PageRequest, filter document.Filter) (document.Page, error) {
	page = page.Normalize()
	if err := document.ValidatePage(page); err != nil {
		return document.Page{}, err
	}
	where, args := sqliteStatusClause(filter.Status)
	from := "documents d"
	order := "d.created_at DESC, d.id DESC"
	if filter.HasQuery() {
		terms := filter.Terms()
		if len(terms) == 0 {
			return document.NewPage(nil, 0, page), nil
		}
		from = "documents_fts JOIN documents d ON d.rowid = documents_fts.rowid"
		where = "documents_fts MATCH ? AND " + where
		args = append([]any{ftsQuery(terms)}, args...)
		order = "bm25(documents_fts) ASC, " + order
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+" WHERE "+where, args...).Scan(&total); err != nil {
		return document.Page{}, document.WrapStore("count documents", err)
	}
	offset, ok := page.Offset()
	if !ok || offset >= total {
		return document.NewPage(nil, total, page), nil
	}
	q := "SELECT " + sqliteColumns + " FROM " + from + " WHERE " + where + " ORDER BY " + order + " LIMIT ? OFFSET ?"
	items, err := r.query(ctx, q, append(args, page.Limit, offset)...)
	if err != nil {
		return document.Page{}, document.WrapStore("list documents", err)
	}
	return document.NewPage(items, total, page), nil
}

func (r *SQLiteRepo) CountByStatus(ctx context.Context, status document.Status) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE status = ?", string(status)).Scan(&n)
	return n, document.WrapStore("count by status", err)
}

func (r *SQLiteRepo) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE author_id = ? AND status != ?",
		authorID, string(document.StatusArchived)).Scan(&n)
	return n, document.WrapStore("count by author", err)
}

func (r *SQLiteRepo) FindRecentByAuthor(ctx context.Context, authorID string, limit int) ([]document.Document, error) {
	docs, err := r.query(ctx,
		"SELECT "+sqliteColumns+" FROM documents d WHERE d.author_id = ? AND d.status != ? ORDER BY d.created_at DESC, d.id DESC LIMIT ?",
		authorID, string(document.StatusArchived), document.ClampLimit(limit))
	return docs, document.WrapStore("find recent by author", err)
}

func (r *SQLiteRepo) FindPublished(ctx context.Context, limit int) ([]document.Document, error) {
	docs, err := r.query(ctx,
		"SELECT "+sqliteColumns+" FROM documents d WHERE d.status = ? ORDER BY d.created_at DESC, d.id DESC LIMIT ?",
		string(document.StatusPublished), document.ClampLimit(limit))
	return docs, document.WrapStore("find published", err)
}

func (r *SQLiteRepo) SearchByText(ctx context.Context, term string, limit int) ([]document.Document, error) {
	terms := document.Terms(term)
	if len(terms) == 0 {
		return []document.Document{}, nil
	}
	docs, err := r.query(ctx,
		"SELECT "+sqliteColumns+` FROM documents_fts JOIN documents d ON d.rowid = documents_fts.rowid
		 WHERE documents_fts MATCH ? AND d.status != ?
		 ORDER BY bm25(documents_fts) ASC, d.created_at DESC, d.id DESC LIMIT ?`,
		ftsQuery(terms), string(document.StatusArchived), document.ClampLimit(limit))
	return docs, document.WrapStore("search documents", err)
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return document.WrapStore("ping", r.db.PingContext(ctx))
}

func (r *SQLiteRepo) query(ctx context.Context, q string, args ...any) ([]document.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []document.Document{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.toDocument())
	}
	return out, rows.Err()
}
