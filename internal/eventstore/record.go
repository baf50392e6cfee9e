package eventstore

import (
	"errors"
	"fmt"

	"github.com/willhoy/blazingmq/internal/protocol"
)

var ErrCorruptRecord = errors.New("eventstore: corrupt record")

// A stored record is the message's re-encoded PUT header followed by its
// application data:
//
//	putHeader(40) | appData
//
// The archive adds no framing of its own: the header's crc32c field is
// rewritten to cover the application data exactly as stored, so a record
// self-checks on read. For a message archived without decompression the
// rewrite is a no-op, since the wire checksum already covers those bytes.

// EncodeRecord frames one message for storage.
func EncodeRecord(h protocol.PutHeader, appData []byte) []byte {
	h.CRC32C = protocol.ChecksumCRC32C(appData)
	out := make([]byte, 0, protocol.PutHeaderMinSize+len(appData))
	out = append(out, h.Encode()...)
	return append(out, appData...)
}

// DecodeRecord verifies the checksum and splits a record back into its
// header and an owned application-data slice.
func DecodeRecord(raw []byte) (Entry, error) {
	h, err := protocol.DecodePutHeaderBytes(raw)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	appData := raw[protocol.PutHeaderMinSize:]
	if protocol.ChecksumCRC32C(appData) != h.CRC32C {
		return Entry{}, fmt.Errorf("%w: checksum mismatch for %s", ErrCorruptRecord, h.GUID)
	}
	return Entry{
		Header:          h,
		ApplicationData: append([]byte(nil), appData...),
	}, nil
}
