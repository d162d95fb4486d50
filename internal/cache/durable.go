// Tidesweep - Community Cleanup Data Gateway
// Copyright 2026 Dana K. (danakm)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/danakm/tidesweep

package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/danakm/tidesweep/internal/logging"
)

// cacheKeyPrefix namespaces cache entries inside the shared BadgerDB so the
// durable cache can coexist with other stores in the same database.
const cacheKeyPrefix = "cache:"

// durableEntry is the on-disk envelope for a cached value. StoredAt is kept
// separately from ExpiresAt so readers can apply their own maximum age:
// the extended-fallback path accepts entries past their TTL as long as they
// are not older than its cutoff.
type durableEntry struct {
	Value     json.RawMessage `json:"value"`
	StoredAt  time.Time       `json:"stored_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Lookup describes the outcome of a durable-tier read.
type Lookup struct {
	// Found is true when a decodable entry exists, expired or not.
	Found bool
	// Fresh is true when the entry is within the TTL it was stored with.
	Fresh bool
	// StoredAt is when the entry was written; zero when Found is false.
	StoredAt time.Time
}

// Age returns how long ago the entry was stored, relative to now.
func (l Lookup) Age(now time.Time) time.Duration {
	if !l.Found {
		return 0
	}
	return now.Sub(l.StoredAt)
}

// Durable is the BadgerDB-backed cache tier. Unlike the memory tier it
// serializes values, survives restarts, and deliberately retains expired
// entries so stale data can be served when the upstream is down.
type Durable struct {
	db  *badger.DB
	now func() time.Time
}

// NewDurable wraps an open BadgerDB handle. The caller owns the handle's
// lifecycle; Close the database, not the Durable.
func NewDurable(db *badger.DB) *Durable {
	return &Durable{db: db, now: time.Now}
}

// OpenBadger opens (or creates) the BadgerDB database used by the durable
// cache and the local report store. With inMemory set, nothing touches disk;
// tests use this mode.
func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

// Set stores value under key with the given TTL. The entry is written
// without a Badger-level TTL: expiry is recorded in the envelope so expired
// entries remain readable for the stale-read path until overwritten.
func (d *Durable) Set(key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	now := d.now()
	entry := durableEntry{
		Value:    raw,
		StoredAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cacheKeyPrefix+key), data)
	})
}

// Get reads the entry for key into out and reports what it found. A missing
// key is (Lookup{}, nil). A corrupt entry is logged, deleted, and treated as
// a miss rather than an error: the cache heals itself and the caller falls
// through to the next data source.
func (d *Durable) Get(key string, out interface{}) (Lookup, error) {
	var entry durableEntry

	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return Lookup{}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	if err := json.Unmarshal(entry.Value, out); err != nil {
		logging.Warn().Str("key", key).Err(err).Msg("Discarding corrupt durable cache entry")
		if delErr := d.Delete(key); delErr != nil {
			logging.Warn().Str("key", key).Err(delErr).Msg("Failed to delete corrupt cache entry")
		}
		return Lookup{}, nil
	}

	fresh := entry.ExpiresAt.IsZero() || d.now().Before(entry.ExpiresAt)
	return Lookup{Found: true, Fresh: fresh, StoredAt: entry.StoredAt}, nil
}

// Delete removes the entry for key. Deleting an absent key is a no-op.
func (d *Durable) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(cacheKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// RunGC triggers one round of Badger value-log garbage collection. Callers
// run this periodically; ErrNoRewrite (nothing to collect) is not an error.
func (d *Durable) RunGC() error {
	err := d.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// badgerLogger routes Badger's internal logging through zerolog at reduced
// severity; Badger is chatty at INFO.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}
