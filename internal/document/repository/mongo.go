package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
)

// MongoRepo implements document.Store on a MongoDB collection. Documents are
// keyed by ObjectID and searched through a text index on title+content.
type MongoRepo struct {
	col  *mongo.Collection
	opts repoOptions
}

var _ document.Store = (*MongoRepo)(nil)

// NewMongoRepo wraps col. Call EnsureIndexes once at startup.
func NewMongoRepo(col *mongo.Collection, opts ...Option) *MongoRepo {
	o := newOptions(opts)
	now := o.now
	// BSON dates carry millisecond precision; keep returned values equal to
	// what is stored.
	o.now = func() time.Time { return now().Truncate(time.Millisecond) }
	return &MongoRepo{col: col, opts: o}
}

// Indexes is the set of indexes the queries of MongoRepo rely on.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
			Options: options.Index().SetName("title_content_text"),
		},
	}
}

func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	if _, err := m.col.Indexes().CreateMany(ctx, Indexes()); err != nil {
		return document.WrapStore("create indexes", err)
	}
	return nil
}

// mongoRecord is the stored shape of a document.
type mongoRecord struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Status    string             `bson:"status"`
	AuthorID  string             `bson:"authorId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	Score     float64            `bson:"score,omitempty"`
}

func (r mongoRecord) toDocument() document.Document {
	return document.Document{
		ID:        r.ID.Hex(),
		Title:     r.Title,
		Content:   r.Content,
		Status:    document.Status(r.Status),
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func newMongoRecord(in document.CreateInput, now time.Time) mongoRecord {
	return mongoRecord{
		ID:        primitive.NewObjectID(),
		Title:     in.Title,
		Content:   in.Content,
		Status:    string(in.Status),
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func parseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// statusFilter is the predicate List applies for an optional status.
func statusFilter(status *document.Status) bson.M {
	if status == nil {
		return bson.M{"status": bson.M{"$ne": string(document.StatusArchived)}}
	}
	return bson.M{"status": string(*status)}
}

// listFilter builds the full List predicate.
func listFilter(f document.Filter) bson.M {
	filter := statusFilter(f.Status)
	if f.HasQuery() {
		filter["$text"] = bson.M{"$search": f.Query}
	}
	return filter
}

// listSort orders by text score when searching, otherwise newest first.
func listSort(search bool) bson.D {
	if search {
		return bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
			{Key: "createdAt", Value: -1},
		}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}

func findOptions(search bool) *options.FindOptions {
	opts := options.Find().SetSort(listSort(search))
	if search {
		opts.SetProjection(bson.M{
			"title": 1, "content": 1, "status": 1, "authorId": 1, "createdAt": 1, "updatedAt": 1,
			"score": bson.M{"$meta": "textScore"},
		})
	}
	return opts
}

func (m *MongoRepo) Create(ctx context.Context, in document.CreateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateCreate(in); err != nil {
		return document.Document{}, err
	}
	rec := newMongoRecord(in, m.opts.now())
	if _, err := m.col.InsertOne(ctx, rec); err != nil {
		return document.Document{}, document.WrapStore("insert document", err)
	}
	return rec.toDocument(), nil
}

func (m *MongoRepo) GetByID(ctx context.Context, id string) (document.Document, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	var rec mongoRecord
	if err := m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return document.Document{}, document.ErrNotFound
		}
		return document.Document{}, document.WrapStore("find document", err)
	}
	return rec.toDocument(), nil
}

// buildUpdate returns the filter and $set of an update. A status change is
// guarded in the filter so that a forbidden transition matches nothing.
func buildUpdate(oid primitive.ObjectID, in document.UpdateInput, now time.Time) (bson.M, bson.M) {
	filter := bson.M{"_id": oid}
	set := bson.M{"updatedAt": now}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Content != nil {
		set["content"] = *in.Content
	}
	if in.Status != nil {
		set["status"] = string(*in.Status)
		if blocked := document.BlockedSources(*in.Status); len(blocked) > 0 {
			names := make([]string, 0, len(blocked))
			for _, s := range blocked {
				names = append(names, string(s))
			}
			filter["status"] = bson.M{"$nin": names}
		}
	}
	return filter, bson.M{"$set": set}
}

func (m *MongoRepo) Update(ctx context.Context, id string, in document.UpdateInput) (document.Document, error) {
	in = in.Normalize()
	if err := document.ValidateUpdate(in); err != nil {
		return document.Document{}, err
	}
	oid, ok := parseObjectID(id)
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	filter, update := buildUpdate(oid, in, m.opts.now())
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec mongoRecord
	err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
	if err == nil {
		return rec.toDocument(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return document.Document{}, document.WrapStore("update document", err)
	}
	if in.Status == nil {
		return document.Document{}, document.ErrNotFound
	}
	// Nothing matched: either the id is unknown or the transition is blocked.
	cur, err := m.GetByID(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	return document.Document{}, document.InvalidTransition(cur.Status, *in.Status)
}

func (m *MongoRepo) SoftDelete(ctx context.Context, id string) (document.Document, error) {
	return m.Update(ctx, id, document.StatusUpdate(document.StatusArchived))
}

func (m *MongoRepo) Restore(ctx context.Context, id string) (document.Document, error) {
	return m.Update(ctx, id, document.StatusUpdate(document.StatusDraft))
}

func (m *MongoRepo) List(ctx context.Context, page document.PageRequest, filter document.Filter) (document.Page, error) {
	page = page.Normalize()
	if err := document.ValidatePage(page); err != nil {
		return document.Page{}, err
	}
	search := filter.HasQuery()
	if search && len(filter.Terms()) == 0 {
		return document.NewPage(nil, 0, page), nil
	}
	f := listFilter(filter)
	offset, ok := page.Offset()
	if !ok {
		total, err := m.col.CountDocuments(ctx, f)
		if err != nil {
			return document.Page{}, document.WrapStore("count documents", err)
		}
		return document.NewPage(nil, total, page), nil
	}
	opts := findOptions(search).SetSkip(offset).SetLimit(int64(page.Limit))

	var (
		total int64
		items []document.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := m.col.CountDocuments(gctx, f)
		total = n
		return err
	})
	g.Go(func() error {
		var err error
		items, err = m.find(gctx, f, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return document.Page{}, document.WrapStore("list documents", err)
	}
	return document.NewPage(items, total, page), nil
}

func (m *MongoRepo) CountByStatus(ctx context.Context, status document.Status) (int64, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{"status": string(status)})
	return n, document.WrapStore("count by status", err)
}

func (m *MongoRepo) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	f := statusFilter(nil)
	f["authorId"] = authorID
	n, err := m.col.CountDocuments(ctx, f)
	return n, document.WrapStore("count by author", err)
}

func (m *MongoRepo) FindRecentByAuthor(ctx context.Context, authorID string, limit int) ([]document.Document, error) {
	f := statusFilter(nil)
	f["authorId"] = authorID
	docs, err := m.find(ctx, f, findOptions(false).SetLimit(int64(document.ClampLimit(limit))))
	return docs, document.WrapStore("find recent by author", err)
}

func (m *MongoRepo) FindPublished(ctx context.Context, limit int) ([]document.Document, error) {
	published := document.StatusPublished
	docs, err := m.find(ctx, statusFilter(&published), findOptions(false).SetLimit(int64(document.ClampLimit(limit))))
	return docs, document.WrapStore("find published", err)
}

func (m *MongoRepo) SearchByText(ctx context.Context, term string, limit int) ([]document.Document, error) {
	if len(document.Terms(term)) == 0 {
		return []document.Document{}, nil
	}
	f := listFilter(document.Filter{Query: term})
	docs, err := m.find(ctx, f, findOptions(true).SetLimit(int64(document.ClampLimit(limit))))
	return docs, document.WrapStore("search documents", err)
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return document.WrapStore("ping", m.col.Database().Client().Ping(ctx, nil))
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]document.Document, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []document.Document{}
	for cur.Next(ctx) {
		var rec mongoRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec.toDocument())
	}
	return out, cur.Err()
}
