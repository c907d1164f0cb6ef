package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	likesBucket       = "page_likes"
	tokenBucket       = "tokens"
	likesValueBytes   = 8
	expiryHeaderBytes = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	tokenTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{likesBucket, tokenBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		tokenTTL:        opts.TokenTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LastLikes returns the last recorded like-count for the page, if any.
func (b *boltStore) LastLikes(pageID string) (int64, bool, error) {
	if b == nil || b.db == nil {
		return 0, false, nil
	}

	var (
		count int64
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(likesBucket))
		if bucket == nil {
			return fmt.Errorf("likes bucket missing")
		}
		value := bucket.Get([]byte(pageID))
		if len(value) != likesValueBytes {
			return nil
		}
		count = int64(binary.BigEndian.Uint64(value))
		found = true
		return nil
	})
	return count, found, err
}

// RecordLikes stores the like-count for the page, replacing any prior value.
func (b *boltStore) RecordLikes(pageID string, count int64) error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(likesBucket))
		if bucket == nil {
			return fmt.Errorf("likes bucket missing")
		}
		buf := make([]byte, likesValueBytes)
		binary.BigEndian.PutUint64(buf, uint64(count))
		return bucket.Put([]byte(pageID), buf)
	})
}

// CachedToken returns a cached token for the key when present and unexpired.
func (b *boltStore) CachedToken(key string) (string, bool, error) {
	if b == nil || b.db == nil {
		return "", false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return "", false, err
	}

	var (
		token string
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return fmt.Errorf("token bucket missing")
		}

		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}

		expiry, rest, ok := decodeTokenValue(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(k)
		}

		token = string(rest)
		found = true
		return nil
	})
	return token, found, err
}

// StoreToken caches the token for the key. A non-positive ttl falls back to
// the store default.
func (b *boltStore) StoreToken(key, token string, ttl time.Duration) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = b.tokenTTL
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return fmt.Errorf("token bucket missing")
		}
		buf := make([]byte, expiryHeaderBytes+len(token))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(ttl).Unix()))
		copy(buf[expiryHeaderBytes:], token)
		return bucket.Put([]byte(key), buf)
	})
}

// maybeCleanupExpired removes expired cached tokens on a fixed cadence to
// avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tokenBucket))
		if bucket == nil {
			return fmt.Errorf("token bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, _, ok := decodeTokenValue(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeTokenValue splits a stored token value into expiry and token bytes.
func decodeTokenValue(value []byte) (time.Time, []byte, bool) {
	if len(value) < expiryHeaderBytes {
		return time.Time{}, nil, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryHeaderBytes]))
	if unix <= 0 {
		return time.Time{}, nil, false
	}
	return time.Unix(unix, 0), value[expiryHeaderBytes:], true
}
