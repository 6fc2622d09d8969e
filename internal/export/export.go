// Package export copies archived documents to object storage as JSON.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
	"github.com/tiereddocs/tiereddocs/backend/pkg/metrics"
)

// Sink receives exported objects. *storage.MinIOStorage implements it.
type Sink interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Lister is the part of document.Store the exporter reads from.
type Lister interface {
	List(ctx context.Context, page document.PageRequest, filter document.Filter) (document.Page, error)
}

// Report summarises one export run.
type Report struct {
	Exported int      `json:"exported"`
	Keys     []string `json:"keys"`
}

// Exporter pages through archived documents and writes each one to the sink
// as <prefix>/<id>.json.
type Exporter struct {
	src         Lister
	sink        Sink
	prefix      string
	pageSize    int
	concurrency int
	log         *logger.Logger
}

func New(src Lister, sink Sink, prefix string, pageSize int) *Exporter {
	if pageSize < 1 || pageSize > document.MaxLimit {
		pageSize = document.MaxLimit
	}
	return &Exporter{src: src, sink: sink, prefix: prefix, pageSize: pageSize, concurrency: 4, log: logger.For("Export")}
}

// Key is the object key a document is exported under.
func (e *Exporter) Key(id string) string {
	return path.Join(e.prefix, id+".json")
}

// ExportArchived uploads every archived document. It stops at the first
// failed upload; the report lists the keys written before the failure.
func (e *Exporter) ExportArchived(ctx context.Context) (Report, error) {
	archived := document.StatusArchived
	filter := document.Filter{Status: &archived}
	rep := Report{Keys: []string{}}
	var mu sync.Mutex

	for page := 1; ; page++ {
		p, err := e.src.List(ctx, document.PageRequest{Page: page, Limit: e.pageSize}, filter)
		if err != nil {
			return rep, fmt.Errorf("list archived page %d: %w", page, err)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for _, d := range p.Items {
			g.Go(func() error {
				body, err := json.Marshal(d)
				if err != nil {
					return err
				}
				key := e.Key(d.ID)
				if err := e.sink.Put(gctx, key, body, "application/json"); err != nil {
					return err
				}
				metrics.DocumentsExported.Inc()
				mu.Lock()
				rep.Keys = append(rep.Keys, key)
				rep.Exported++
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			e.log.Trace("export failed", err)
			return rep, err
		}
		if !p.HasNext {
			break
		}
	}
	sort.Strings(rep.Keys)
	e.log.Infof("exported %d archived documents", rep.Exported)
	return rep, nil
}
