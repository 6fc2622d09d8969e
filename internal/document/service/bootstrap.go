package service

import (
	"context"
	"fmt"

	"github.com/tiereddocs/tiereddocs/backend/internal/config"
	"github.com/tiereddocs/tiereddocs/backend/internal/database"
	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/repository"
	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
)

// OpenStore builds the document store selected by cfg.Store.Driver. The
// returned close func releases the underlying connection and is never nil.
// In development a failed Mongo connection falls back to the memory store.
func OpenStore(ctx context.Context, cfg *config.Config) (document.Store, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts, cfg.MongoDB.ConnectBackoff)
		if err != nil {
			if cfg.Server.Environment == "development" {
				logger.Warnf("cannot connect to MongoDB (%v); using memory-backed repo", err)
				return repository.NewMemoryRepo(), noop, nil
			}
			return nil, noop, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		repo := repository.NewMongoRepo(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, noop, err
		}
		logger.Infof("using MongoDB store %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		return repo, closeFn, nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		repo, err := repository.NewSQLiteRepo(ctx, db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		logger.Infof("using SQLite store at %s", cfg.SQLite.Path)
		return repo, func() { _ = db.Close() }, nil
	case config.DriverMemory:
		logger.Infof("using in-memory store")
		return repository.NewMemoryRepo(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
