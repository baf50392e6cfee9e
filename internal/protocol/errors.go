package protocol

import "errors"

// Structural errors surfaced by header decoding and iteration. Every one of
// them reported by Next leaves the iterator invalid; recovery past the
// corruption point within an event is not attempted. ErrInvalidOption and
// the accessor errors below leave the iterator's state unchanged.
var (
	ErrTruncatedHeader        = errors.New("protocol: truncated header")
	ErrInvalidLength          = errors.New("protocol: invalid length")
	ErrInvalidPadding         = errors.New("protocol: invalid padding byte")
	ErrUnsupportedCompression = errors.New("protocol: unsupported compression type")
	ErrDecompressFailed       = errors.New("protocol: decompression failed")
	ErrInvalidOption          = errors.New("protocol: invalid option record")

	ErrNotPutEvent   = errors.New("protocol: event type is not PUT")
	ErrNotPositioned = errors.New("protocol: iterator is not positioned on a message")
	ErrOwnedData     = errors.New("protocol: application data is decompressed, no blob position")
	ErrNoProperties  = errors.New("protocol: message has no properties")
	ErrBlobMismatch  = errors.New("protocol: blob length differs from source iterator")
)

// Return codes of PutMessageIterator.Next. Positive means a message is
// available, zero means the end of the event, negative identifies the error
// kind; Err carries the matching sentinel. ErrInvalidOption has no code
// here: the options area is parsed lazily, so it surfaces from the options
// accessors instead of Next.
const (
	rcHasMessage             = 1
	rcEnd                    = 0
	rcTruncatedHeader        = -1
	rcInvalidLength          = -2
	rcInvalidPadding         = -3
	rcUnsupportedCompression = -4
	rcDecompressFailed       = -5
)
