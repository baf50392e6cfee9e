// Package protocol implements the broker wire protocol's PUT event layer:
// fixed header codecs, the typed options view, the event builder, and the
// read-only PUT message iterator.
//
// # Overview
//
// A PUT event is one contiguous byte sequence (delivered as a blob chain)
// that starts with a fixed event header and carries a sequence of
// variable-length PUT messages. Each message bundles a PUT header, an
// optional options area, an optional message-properties area, and a payload
// that may be compressed. All integers are big-endian; all length fields
// count 4-byte words; padded regions end with a pad byte in [1,4] equal to
// the number of padding bytes inclusive.
//
// API surface (internal)
//
//	eh, _ := protocol.DecodeEventHeader(b)
//	var it protocol.PutMessageIterator
//	_ = it.Reset(b, eh, compression.DecompressAlways)
//	for it.Next() == 1 {
//	    size := it.ApplicationDataSize()
//	    _ = size
//	}
//	if err := it.Err(); err != nil {
//	    it.DumpBlob(os.Stderr)
//	}
//
// The iterator never logs; callers check Next's return and Err, and may use
// DumpBlob for diagnostics. One iterator instance is owned by one goroutine
// at a time; distinct iterators may alias the same blob concurrently.
package protocol
