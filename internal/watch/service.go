package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/socialsync-hq/fbgraph/internal/enrich"
	"github.com/socialsync-hq/fbgraph/internal/logger"
	"github.com/socialsync-hq/fbgraph/internal/storage"
	"github.com/socialsync-hq/fbgraph/pkg/pages"
	"github.com/socialsync-hq/fbgraph/pkg/publishers"
)

// LikesClient is the slice of the graph client the watcher needs.
type LikesClient interface {
	PageLikes(ctx context.Context, pageID, accessToken string) (int64, error)
}

// Sink receives like-count events; satisfied by *publishers.Fanout.
type Sink interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Service polls watched pages and publishes like-count changes.
type Service struct {
	client  LikesClient
	sink    Sink
	store   storage.Store
	scraper *enrich.Scraper
	log     logger.Logger
}

// NewService wires a watcher over the graph client, event sink, and store.
func NewService(client LikesClient, sink Sink, store storage.Store, log logger.Logger) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		client:  client,
		sink:    sink,
		store:   store,
		scraper: enrich.NewScraper(nil),
		log:     log,
	}
}

// Run executes a poll pass for all configured pages.
func (s *Service) Run(ctx context.Context, accessToken string, watched []pages.Page) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("watch service is not initialized")
	}
	if len(watched) == 0 {
		return fmt.Errorf("no pages configured for watching")
	}

	errs := make([]error, 0, len(watched))
	for i, p := range watched {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.runPage(ctx, accessToken, p); err != nil {
			errs = append(errs, fmt.Errorf("page %s: %w", p.ID, err))
			s.log.ErrorObj("page poll failed", "page_error", map[string]any{
				"page_id": p.ID,
				"error":   err.Error(),
			})
		}

		if delay := p.RequestDelay(); delay > 0 && i < len(watched)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runPage(ctx context.Context, accessToken string, p pages.Page) error {
	likes, err := s.client.PageLikes(ctx, p.ID, accessToken)
	if err != nil {
		return fmt.Errorf("fetch likes: %w", err)
	}

	prev, seen, err := s.store.LastLikes(p.ID)
	if err != nil {
		return fmt.Errorf("load last likes: %w", err)
	}

	switch {
	case !seen:
		s.logFirstSighting(ctx, p, likes)
		if err := s.publish(ctx, publishers.NewEvent(p.ID, p.Name, likes, nil)); err != nil {
			return err
		}
	case likes != prev:
		if err := s.publish(ctx, publishers.NewEvent(p.ID, p.Name, likes, &prev)); err != nil {
			return err
		}
	default:
		s.log.DebugObj("page likes unchanged", "page_poll", map[string]any{
			"page_id": p.ID,
			"likes":   likes,
		})
	}

	if err := s.store.RecordLikes(p.ID, likes); err != nil {
		return fmt.Errorf("record likes: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, evt publishers.Event) error {
	if s.sink == nil {
		return nil
	}
	delivered, err := s.sink.Publish(ctx, evt)
	if err != nil {
		return fmt.Errorf("publish event (%d delivered): %w", delivered, err)
	}
	s.log.InfoObj("likes event published", "likes_event", map[string]any{
		"page_id":   evt.PageID,
		"likes":     evt.Likes,
		"delta":     evt.Delta,
		"delivered": delivered,
	})
	return nil
}

// logFirstSighting records metadata for a newly watched page. When a public
// link is configured its OG tags are scraped for operator context.
func (s *Service) logFirstSighting(ctx context.Context, p pages.Page, likes int64) {
	fields := map[string]any{
		"page_id": p.ID,
		"name":    p.Name,
		"likes":   likes,
	}

	if link := pages.ConfigString(p, pages.ConfigLinkURLKey, ""); link != "" && s.scraper != nil {
		if meta, err := s.scraper.PageMeta(ctx, link, pages.Headers(p)); err != nil {
			s.log.WarnObj("page metadata scrape failed", "metadata_error", map[string]any{
				"page_id": p.ID,
				"url":     link,
				"error":   err.Error(),
			})
		} else {
			fields["og_title"] = meta.Title
			fields["og_description"] = meta.Description
			fields["og_image"] = meta.ImageURL
		}
	}

	s.log.InfoObj("page observed for the first time", "page_meta", fields)
}
