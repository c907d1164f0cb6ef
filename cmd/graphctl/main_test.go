package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/socialsync-hq/fbgraph/internal/config"
	"github.com/socialsync-hq/fbgraph/internal/storage"
)

func cacheBackedConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(t.TempDir(), "fbgraph.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestResolveTokenPrefersFlagThenConfig(t *testing.T) {
	cfg := cacheBackedConfig(t)
	cfg.AccessToken = "cfg-tok"

	tok, err := resolveToken("flag-tok", cfg)
	if err != nil || tok != "flag-tok" {
		t.Fatalf("flag token not preferred: %q %v", tok, err)
	}

	tok, err = resolveToken("", cfg)
	if err != nil || tok != "cfg-tok" {
		t.Fatalf("config token not used: %q %v", tok, err)
	}
}

func TestResolveTokenFallsBackToCachedToken(t *testing.T) {
	cfg := cacheBackedConfig(t)

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	if err := store.StoreToken(storage.LongLivedTokenKey, "cached-tok", time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	tok, err := resolveToken("", cfg)
	if err != nil {
		t.Fatalf("resolveToken: %v", err)
	}
	if tok != "cached-tok" {
		t.Fatalf("cached token not used: %q", tok)
	}
}

func TestResolveTokenErrorsWhenNothingAvailable(t *testing.T) {
	if _, err := resolveToken("", cacheBackedConfig(t)); err == nil {
		t.Fatalf("expected error with no token sources")
	}
}
