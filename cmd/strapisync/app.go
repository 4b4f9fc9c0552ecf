package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/custodia-labs/strapisync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/strapisync/internal/adapters/driven/download"
	"github.com/custodia-labs/strapisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/strapisync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/strapisync/internal/adapters/driving/cli"
	"github.com/custodia-labs/strapisync/internal/connectors/strapi"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
	"github.com/custodia-labs/strapisync/internal/core/services"
	strapinorm "github.com/custodia-labs/strapisync/internal/normalisers/strapi"
	"github.com/custodia-labs/strapisync/internal/postprocessors"
	"github.com/custodia-labs/strapisync/internal/postprocessors/media"
)

// filesDir is the directory under the data dir media is downloaded to.
const filesDir = "files"

// buildApp wires adapters into services. A dry run reads the persisted
// graph but writes nodes, cache entries and downloads to memory only.
func buildApp(opts cli.Options) (*cli.App, error) {
	config, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(config.DataDir())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var (
		nodes driven.NodeStore  = store.NodeStore()
		cache driven.CacheStore = store.CacheStore()
		tasks driven.TaskStore  = store.TaskStore()
		fs                      = afero.NewOsFs()
	)
	if opts.DryRun {
		nodes = memory.NewNodeOverlay(nodes)
		cache = memory.NewCacheOverlay(cache)
		tasks = memory.NewTaskStore()
		fs = afero.NewMemMapFs()
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	names, cfgs := config.PostProcessors()
	if names == nil {
		names = postprocessors.DefaultNames
	}
	pipeline, err := registry.BuildPipeline(names, cfgs)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("building post-processors: %w", err)
	}

	downloader := download.New(filepath.Join(config.DataDir(), filesDir), download.WithFs(fs))
	auth := strapi.NewAuthenticator()

	syncOrch := services.NewSyncOrchestrator(
		config,
		strapi.NewFactory(auth),
		strapinorm.New(),
		nodes,
		cache,
		pipeline,
		media.NewFactory(cache, nodes, downloader),
	)

	return &cli.App{
		Config:  config,
		Sync:    syncOrch,
		Graph:   services.NewGraphService(nodes),
		Sources: services.NewSourceService(config, auth),
		Tasks:   tasks,
		Close:   store.Close,
	}, nil
}
