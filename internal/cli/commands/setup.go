// Package commands implements the funnelboard subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-data/funnelboard/internal/cache"
	"github.com/meridian-data/funnelboard/internal/catalog"
	"github.com/meridian-data/funnelboard/internal/cli/config"
	"github.com/meridian-data/funnelboard/internal/funnel"
	"github.com/meridian-data/funnelboard/internal/warehouse"
)

// pipelineSetup bundles everything a command needs to render the funnel.
// Close releases the warehouse connection.
type pipelineSetup struct {
	Pipeline *funnel.Pipeline
	Cache    *cache.Cache
	Adapter  warehouse.Adapter
}

func (s *pipelineSetup) Close() {
	if s.Adapter != nil {
		_ = s.Adapter.Close()
	}
}

// newPipelineSetup connects to the configured warehouse and wires the
// catalog, cache, and render pipeline together.
func newPipelineSetup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipelineSetup, error) {
	cat, err := catalog.New(cfg.Dialect(), cfg.Table)
	if err != nil {
		return nil, err
	}

	adapter, err := warehouse.Open(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Source.Type, err)
	}

	c := cache.New(adapter.Query,
		cache.WithTTL(time.Duration(cfg.CacheTTLSecs)*time.Second),
		cache.WithLogger(logger))

	return &pipelineSetup{
		Pipeline: funnel.NewPipeline(cat, c, logger),
		Cache:    c,
		Adapter:  adapter,
	}, nil
}
