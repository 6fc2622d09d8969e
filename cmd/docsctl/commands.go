package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tiereddocs/tiereddocs/backend/internal/config"
	"github.com/tiereddocs/tiereddocs/backend/internal/document"
	"github.com/tiereddocs/tiereddocs/backend/internal/document/service"
	"github.com/tiereddocs/tiereddocs/backend/internal/export"
	"github.com/tiereddocs/tiereddocs/backend/internal/storage"
	"github.com/tiereddocs/tiereddocs/backend/pkg/logger"
)

// env is what every command needs: configuration and an open store.
type env struct {
	cfg   *config.Config
	store document.Store
	close func()
}

// openEnv and newSink are replaced in tests.
var (
	openEnv = func(ctx context.Context) (*env, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.Log.Level)
		store, closeFn, err := service.OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &env{cfg: cfg, store: store, close: closeFn}, nil
	}
	newSink = func(ctx context.Context, cfg config.ExportConfig) (export.Sink, error) {
		return storage.NewMinIOStorage(ctx, cfg)
	}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docsctl",
		Short:         "Operate the document store",
		Long:          `Inspect and maintain documents using the same configuration as the document service.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newStatsCmd(), newRestoreCmd(), newExportCmd())
	return root
}

func withEnv(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer e.close()
		return run(cmd, args, e)
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show document counts by status",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			st, err := service.New(e.store).Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}
			cmd.Printf("Published: %d\n", st.Published)
			cmd.Printf("Draft:     %d\n", st.Draft)
			cmd.Printf("Archived:  %d\n", st.Archived)
			cmd.Printf("Total:     %d\n", st.Total)
			return nil
		}),
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [doc-id]",
		Short: "Restore an archived document to draft",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			d, err := service.New(e.store).Restore(cmd.Context(), args[0])
			if errors.Is(err, document.ErrNotFound) {
				return fmt.Errorf("document not found: %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to restore document: %w", err)
			}
			cmd.Printf("Restored %s (%q) to %s\n", d.ID, d.Title, d.Status)
			return nil
		}),
	}
}

func newExportCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived documents to object storage",
		Long:  `Uploads every archived document as JSON to <prefix>/<id>.json in the configured MinIO bucket.`,
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			sink, err := newSink(cmd.Context(), e.cfg.Export)
			if err != nil {
				return fmt.Errorf("failed to open export bucket: %w", err)
			}
			if prefix == "" {
				prefix = e.cfg.Export.Prefix
			}
			rep, err := export.New(e.store, sink, prefix, e.cfg.Export.PageSize).ExportArchived(cmd.Context())
			if err != nil {
				return fmt.Errorf("export stopped after %d documents: %w", rep.Exported, err)
			}
			for _, k := range rep.Keys {
				cmd.Printf("  %s\n", k)
			}
			cmd.Printf("Exported %d archived documents to %s\n", rep.Exported, e.cfg.Export.Bucket)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Object key prefix (defaults to EXPORT_PREFIX)")
	return cmd
}
