package app

import (
	"context"
	"fmt"
	"time"

	"github.com/socialsync-hq/fbgraph/internal/config"
	"github.com/socialsync-hq/fbgraph/internal/logger"
	"github.com/socialsync-hq/fbgraph/internal/storage"
	"github.com/socialsync-hq/fbgraph/internal/watch"
	"github.com/socialsync-hq/fbgraph/pkg/graph"
	"github.com/socialsync-hq/fbgraph/pkg/httpclient"
	"github.com/socialsync-hq/fbgraph/pkg/pages"
	"github.com/socialsync-hq/fbgraph/pkg/publishers"
)

// Watcher represents the likes-watcher runtime. It manages the poll loop,
// coordinating between the watched-pages registry, the graph client, and
// publishers. It also handles storage initialization and cleanup.
type Watcher struct {
	cfg          *config.Config
	pageReg      *pages.Registry
	fanout       *publishers.Fanout
	watchService *watch.Service
	pollInterval time.Duration
	accessToken  string
	log          logger.Logger
	store        storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pageReg, err := pages.LoadRegistry(cfg.PagesFile)
	if err != nil {
		return nil, fmt.Errorf("load pages registry: %w", err)
	}
	pageList := pageReg.All()
	pageIDs := make([]string, 0, len(pageList))
	for _, p := range pageList {
		pageIDs = append(pageIDs, p.ID)
	}
	log.InfoObj("pages registry loaded", "pages_meta", map[string]any{
		"count": len(pageIDs),
		"ids":   pageIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubRegistry := publishers.DefaultRegistry()
	pubClients, err := publishers.BuildAll(ctx, pubRegistry, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		TokenTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"token_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	accessToken := cfg.AccessToken
	if accessToken == "" {
		if tok, found, err := store.CachedToken(storage.LongLivedTokenKey); err == nil && found {
			accessToken = tok
			log.InfoObj("using cached long-lived access token", "token_key", storage.LongLivedTokenKey)
		}
	}
	if accessToken == "" {
		store.Close()
		return nil, fmt.Errorf("access_token must be configured or cached for the watcher")
	}

	settings := graph.NewSettings(cfg.GraphURL, cfg.ClientID, cfg.AppSecret)
	client := graph.NewClient(settings, httpclient.NewRestyClient(cfg.HTTPTimeout))
	watchService := watch.NewService(client, fanout, store, log)

	return &Watcher{
		cfg:          cfg,
		pageReg:      pageReg,
		fanout:       fanout,
		watchService: watchService,
		pollInterval: cfg.PollInterval,
		accessToken:  accessToken,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.watchService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.closeStore()
	watched := w.pageReg.All()
	if len(watched) == 0 {
		w.log.WarnObj("no pages configured; watcher idle", "pages_file", w.cfg.PagesFile)
		<-ctx.Done()
		return nil
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"pages_count":      len(watched),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
	})

	if err := w.runOnce(ctx, watched); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, watched); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// runOnce performs a single poll pass across all watched pages.
func (w *Watcher) runOnce(ctx context.Context, watched []pages.Page) error {
	start := time.Now()
	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"pages_count": len(watched),
		"started_at":  start.UTC(),
	})
	if err := w.watchService.Run(ctx, w.accessToken, watched); err != nil {
		return err
	}
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"pages_count": len(watched),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (w *Watcher) closeStore() {
	if w == nil || w.store == nil {
		return
	}
	if err := w.store.Close(); err != nil {
		w.log.ErrorObj("storage close failed", "error", err)
	}
}
