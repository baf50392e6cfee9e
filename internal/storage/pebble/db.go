package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound reports a missing key without leaking the engine's own
// sentinel to callers.
var ErrNotFound = errors.New("pebble: key not found")

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed batch/write.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs for operations within
	// the configured interval.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application; Pebble
	// still syncs on its own policies. Trades durability for throughput.
	FsyncModeNever
)

// Options configures the Pebble store wrapper.
type Options struct {
	// DataDir is the path to the Pebble database directory.
	DataDir string
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning; nil picks sensible defaults.
	PebbleOptions *pebble.Options
}

// groupCommitWindow returns the WAL coalescing interval implied by the
// fsync mode, zero when the WAL should not be throttled.
func (o Options) groupCommitWindow() time.Duration {
	switch o.Fsync {
	case FsyncModeAlways, FsyncModeNever:
		return 0
	case FsyncModeInterval:
		if o.FsyncInterval > 0 {
			return o.FsyncInterval
		}
		return 5 * time.Millisecond
	default:
		return 5 * time.Millisecond
	}
}

// DB wraps a Pebble database instance so the archive sees one durability
// policy and copied reads instead of engine internals.
type DB struct {
	inner *pebble.DB
	write *pebble.WriteOptions
}

// Open creates or opens a Pebble database with the provided options.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	if window := opts.groupCommitWindow(); window > 0 {
		po.WALMinSyncInterval = func() time.Duration { return window }
	}
	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("pebble: open %s: %w", opts.DataDir, err)
	}
	write := pebble.NoSync
	if opts.Fsync == FsyncModeAlways {
		write = pebble.Sync
	}
	return &DB{inner: inner, write: write}, nil
}

// Close closes the Pebble database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// Set writes one key directly with the configured durability.
func (db *DB) Set(key, value []byte) error {
	return db.inner.Set(key, value, db.write)
}

// Delete removes one key directly with the configured durability.
func (db *DB) Delete(key []byte) error {
	return db.inner.Delete(key, db.write)
}

// Get returns an owned copy of the value under key, or ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	val, closer, err := db.inner.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %x", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// NewBatch starts an atomic multi-key update; commit with CommitBatch.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits the provided batch with the configured durability.
func (db *DB) CommitBatch(_ context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	return b.Commit(db.write)
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}
