// Package eventstore implements the Pebble-backed message archive fed by
// the PUT message iterator.
//
// # Overview
//
// Each archived message is keyed by queue id and message GUID and stored as
// a self-checking record:
//
//	q/{queueID_be4}/m/{guid}  ->  putHeader | appData
//
// The header is the message's PUT header re-encoded after iteration, with
// its crc32c field rewritten to cover the application data as stored. A
// record of a decompressed message therefore carries a cleared compression
// type, the decompressed bytes, and a checksum over them; a record archived
// without decompression keeps the wire checksum unchanged.
//
// API surface (internal)
//
//	s := eventstore.New(db)
//	n, _ := s.Archive(ctx, it)              // drain a positioned iterator
//	e, _ := s.Get(queueID, guid)
//	entries, _ := s.List(queueID, 100)
package eventstore
