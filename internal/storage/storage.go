package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides local DB/cache abstraction.

// LongLivedTokenKey is the cache key under which an exchanged long-lived
// access token is stored and later resolved.
const LongLivedTokenKey = "long_lived"

// Store persists the last observed like-count per page and caches exchanged
// long-lived access tokens.
type Store interface {
	Close() error
	LastLikes(pageID string) (int64, bool, error)
	RecordLikes(pageID string, count int64) error
	CachedToken(key string) (string, bool, error)
	StoreToken(key, token string, ttl time.Duration) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TokenTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTokenTTL        = 60 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) LastLikes(string) (int64, bool, error)   { return 0, false, nil }
func (noopStore) RecordLikes(string, int64) error         { return nil }
func (noopStore) CachedToken(string) (string, bool, error) { return "", false, nil }
func (noopStore) StoreToken(string, string, time.Duration) error {
	return nil
}
