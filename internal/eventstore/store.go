package eventstore

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/willhoy/blazingmq/internal/blob"
	"github.com/willhoy/blazingmq/internal/protocol"
	pebblestore "github.com/willhoy/blazingmq/internal/storage/pebble"
)

// Entry is one archived message.
type Entry struct {
	Header          protocol.PutHeader
	ApplicationData []byte
}

// Store archives PUT messages in Pebble, keyed by queue id and GUID.
type Store struct {
	db *pebblestore.DB
}

// New wraps an open database.
func New(db *pebblestore.DB) *Store {
	return &Store{db: db}
}

// Put archives a single message.
func (s *Store) Put(h protocol.PutHeader, appData []byte) error {
	return s.db.Set(KeyMessage(h.QueueID, h.GUID), EncodeRecord(h, appData))
}

// Archive drains the iterator, archiving every remaining message as one
// atomic batch. It returns the number of messages archived; a structural
// error from the iterator aborts the whole batch.
func (s *Store) Archive(ctx context.Context, it *protocol.PutMessageIterator) (int, error) {
	batch := s.db.NewBatch()
	defer batch.Close()
	count := 0
	var data blob.Blob
	for it.Next() == 1 {
		if err := it.LoadApplicationData(&data); err != nil {
			return 0, err
		}
		h := it.Header()
		rec := EncodeRecord(h, data.Bytes())
		if err := batch.Set(KeyMessage(h.QueueID, h.GUID), rec, nil); err != nil {
			return 0, err
		}
		count++
	}
	if err := it.Err(); err != nil {
		return 0, fmt.Errorf("eventstore: iteration failed after %d messages: %w", count, err)
	}
	if err := s.db.CommitBatch(ctx, batch); err != nil {
		return 0, err
	}
	return count, nil
}

// Get loads one archived message.
func (s *Store) Get(queueID uint32, guid protocol.MessageGUID) (Entry, error) {
	raw, err := s.db.Get(KeyMessage(queueID, guid))
	if err != nil {
		return Entry{}, err
	}
	return DecodeRecord(raw)
}

// List returns up to limit archived messages of a queue in GUID order;
// limit <= 0 means all.
func (s *Store) List(queueID uint32, limit int) ([]Entry, error) {
	prefix := KeyQueuePrefix(queueID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []Entry
	for iter.First(); iter.Valid() && (limit <= 0 || len(out) < limit); iter.Next() {
		e, err := DecodeRecord(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
