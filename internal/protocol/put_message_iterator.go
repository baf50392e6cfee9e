package protocol

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/willhoy/blazingmq/internal/blob"
	"github.com/willhoy/blazingmq/internal/compression"
	"github.com/willhoy/blazingmq/internal/properties"
)

// dumpBlobMaxBytes bounds the diagnostic hex dump emitted by DumpBlob.
const dumpBlobMaxBytes = 256

// PutMessageIterator provides read-only sequential access to the messages
// of one PUT event.
//
// Typical usage:
//
//	var it PutMessageIterator
//	if err := it.Reset(b, eh, compression.DecompressNone); err != nil { … }
//	for it.Next() == 1 {
//	    _ = it.ApplicationDataSize()
//	}
//	if err := it.Err(); err != nil { … }
//
// The iterator holds a non-owning reference to the blob; the caller keeps
// the blob alive, or rebinds cached state onto a longer-lived copy with
// ResetFrom. The decompressed buffer, when one exists, is exclusively owned
// and replaced on every successful Next.
type PutMessageIterator struct {
	blobIter blob.Iterator

	// header is a copy of the current PUT header. When application data was
	// decompressed the copy has its compression type cleared while the
	// on-wire header stays intact.
	header PutHeader

	applicationDataSize    int // -1 until positioned; decompressed size when owned
	rawApplicationDataSize int // on-wire size, padding excluded
	lazyPayloadSize        int // -1 until first MessagePayloadSize call
	lazyPayloadPos         blob.Position
	messagePropertiesSize  int // includes sub-header and internal padding
	applicationDataPos     blob.Position
	optionsSize            int
	optionsPos             blob.Position

	// advanceLength is how far Next steps before decoding; -1 marks the
	// invalid state.
	advanceLength int

	optionsView *OptionsView

	policy               compression.Policy
	maxDecompressedBytes int

	// appData owns the decompressed application data; nil means the data is
	// aliased into the blob.
	appData []byte

	err error
}

// IterOption configures a PutMessageIterator at construction.
type IterOption func(*PutMessageIterator)

// WithMaxDecompressedBytes caps the decompressed size of one message's
// application data; n <= 0 means unbounded.
func WithMaxDecompressedBytes(n int) IterOption {
	return func(it *PutMessageIterator) { it.maxDecompressedBytes = n }
}

// NewPutMessageIterator returns an invalid iterator; Reset puts it to work.
// The zero value is equally usable.
func NewPutMessageIterator(opts ...IterOption) *PutMessageIterator {
	it := &PutMessageIterator{}
	it.Clear()
	for _, o := range opts {
		o(it)
	}
	return it
}

// Clear restores the default-constructed, invalid state. The decompression
// size cap set at construction survives.
func (it *PutMessageIterator) Clear() {
	it.blobIter.Reset()
	it.resetMessageState()
	it.advanceLength = -1
	it.policy = compression.DecompressNone
	it.err = nil
}

func (it *PutMessageIterator) resetMessageState() {
	it.header = PutHeader{}
	it.applicationDataSize = -1
	it.rawApplicationDataSize = 0
	it.lazyPayloadSize = -1
	it.lazyPayloadPos = blob.NoPosition
	it.messagePropertiesSize = 0
	it.applicationDataPos = blob.NoPosition
	it.optionsSize = 0
	it.optionsPos = blob.NoPosition
	it.optionsView = nil
	it.appData = nil
}

// Reset points the iterator at the event carried by b, whose already-decoded
// header is eh, and arms the given decompression policy. On success the
// iterator is in the pre-first-message state.
func (it *PutMessageIterator) Reset(b *blob.Blob, eh EventHeader, policy compression.Policy) error {
	it.Clear()
	if b == nil {
		return fmt.Errorf("%w: nil blob", ErrInvalidLength)
	}
	if eh.Type != EventTypePut {
		return fmt.Errorf("%w: got %s", ErrNotPutEvent, eh.Type)
	}
	if eh.HeaderWords < EventHeaderMinWords {
		return fmt.Errorf("%w: event header words %d", ErrInvalidLength, eh.HeaderWords)
	}
	total := int(eh.TotalLength)
	if total < eh.HeaderBytes() {
		return fmt.Errorf("%w: event length %d below header", ErrInvalidLength, total)
	}
	if total > b.Length() {
		return fmt.Errorf("%w: event length %d exceeds blob %d", ErrInvalidLength, total, b.Length())
	}
	start, err := blob.PositionAt(b, eh.HeaderBytes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLength, err)
	}
	iter, err := blob.NewIterator(b, start, total-eh.HeaderBytes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLength, err)
	}
	it.blobIter = iter
	it.policy = policy
	it.advanceLength = 0
	return nil
}

// ResetFrom points the iterator at b while inheriting all cached offsets and
// state from other. Used when other's blob will not outlive the cached
// state; b must be byte-identical to other's blob, which is approximated by
// requiring equal total lengths.
func (it *PutMessageIterator) ResetFrom(b *blob.Blob, other *PutMessageIterator) error {
	if b == nil || other == nil {
		return fmt.Errorf("%w: nil argument", ErrBlobMismatch)
	}
	src := other.blobIter.Blob()
	if src == nil {
		it.Clear()
		it.policy = other.policy
		it.maxDecompressedBytes = other.maxDecompressedBytes
		return nil
	}
	if b.Length() != src.Length() {
		return fmt.Errorf("%w: %d vs %d bytes", ErrBlobMismatch, b.Length(), src.Length())
	}
	// Cached positions are segmentation-dependent; remap them through their
	// absolute offsets since the new chain may be segmented differently.
	remap := func(p blob.Position) (blob.Position, error) {
		if p.IsUnset() {
			return blob.NoPosition, nil
		}
		off, err := blob.AbsoluteOffset(src, p)
		if err != nil {
			return blob.NoPosition, err
		}
		return blob.PositionAt(b, off)
	}
	cursor, err := remap(other.blobIter.Position())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlobMismatch, err)
	}
	iter, err := blob.NewIterator(b, cursor, other.blobIter.Remaining())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlobMismatch, err)
	}
	adPos, err := remap(other.applicationDataPos)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlobMismatch, err)
	}
	optPos, err := remap(other.optionsPos)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlobMismatch, err)
	}
	payloadPos, err := remap(other.lazyPayloadPos)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlobMismatch, err)
	}
	it.blobIter = iter
	it.header = other.header
	it.applicationDataSize = other.applicationDataSize
	it.rawApplicationDataSize = other.rawApplicationDataSize
	it.lazyPayloadSize = other.lazyPayloadSize
	it.lazyPayloadPos = payloadPos
	it.messagePropertiesSize = other.messagePropertiesSize
	it.applicationDataPos = adPos
	it.optionsSize = other.optionsSize
	it.optionsPos = optPos
	it.advanceLength = other.advanceLength
	it.optionsView = nil // rebuilt lazily against the new blob
	it.policy = other.policy
	it.maxDecompressedBytes = other.maxDecompressedBytes
	it.appData = append([]byte(nil), other.appData...)
	if len(it.appData) == 0 {
		it.appData = nil
	}
	it.err = other.err
	return nil
}

// IsValid reports whether Next may be called.
func (it *PutMessageIterator) IsValid() bool {
	return it.advanceLength >= 0 && !it.blobIter.AtEnd()
}

// Err returns the structural error that invalidated the iterator, nil after
// a clean end of iteration.
func (it *PutMessageIterator) Err() error { return it.err }

func (it *PutMessageIterator) onMessage() bool { return it.applicationDataSize >= 0 }

func (it *PutMessageIterator) fail(rc int, err error) int {
	it.resetMessageState()
	it.err = err
	it.advanceLength = -1
	return rc
}

// Next advances to the next message. It returns 1 when positioned on a
// message, 0 at the end of the event (the iterator becomes invalid), and a
// negative code on a structural error (the iterator becomes invalid and Err
// reports the cause; further calls return 0).
func (it *PutMessageIterator) Next() int {
	if !it.IsValid() {
		return rcEnd
	}
	if err := it.blobIter.Advance(it.advanceLength); err != nil {
		return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
	}
	it.resetMessageState()
	if it.blobIter.AtEnd() {
		it.advanceLength = -1
		return rcEnd
	}

	b := it.blobIter.Blob()
	msgStart := it.blobIter.Position()
	remaining := it.blobIter.Remaining()

	if remaining < PutHeaderMinSize {
		return it.fail(rcTruncatedHeader,
			fmt.Errorf("%w: %d bytes left for put header", ErrTruncatedHeader, remaining))
	}
	var raw [PutHeaderMinSize]byte
	if err := it.blobIter.ReadBytes(raw[:], PutHeaderMinSize); err != nil {
		return it.fail(rcTruncatedHeader, fmt.Errorf("%w: %v", ErrTruncatedHeader, err))
	}
	h := decodePutHeader(raw[:])
	if err := validatePutHeader(h); err != nil {
		return it.fail(rcInvalidLength, err)
	}

	headerBytes := h.HeaderBytes()
	totalBytes := h.TotalBytes()
	optionsBytes := h.OptionsBytes()
	if headerBytes > remaining {
		return it.fail(rcTruncatedHeader,
			fmt.Errorf("%w: header %d bytes, %d left", ErrTruncatedHeader, headerBytes, remaining))
	}
	if totalBytes > remaining {
		return it.fail(rcTruncatedHeader,
			fmt.Errorf("%w: message %d bytes, %d left", ErrTruncatedHeader, totalBytes, remaining))
	}
	if optionsBytes > totalBytes-headerBytes {
		return it.fail(rcInvalidLength,
			fmt.Errorf("%w: options %d bytes exceed message body", ErrInvalidLength, optionsBytes))
	}

	// The last byte of every message is its pad count.
	padPos, err := blob.FindOffset(b, msgStart, totalBytes-1)
	if err != nil {
		return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
	}
	var padByte [1]byte
	if err := blob.ReadBytes(padByte[:], b, padPos, 1); err != nil {
		return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
	}
	pad := int(padByte[0])
	if pad < 1 || pad > WordSize {
		return it.fail(rcInvalidPadding, fmt.Errorf("%w: %d", ErrInvalidPadding, pad))
	}
	rawADSize := totalBytes - headerBytes - optionsBytes - pad
	if rawADSize < 0 {
		return it.fail(rcInvalidLength,
			fmt.Errorf("%w: padding %d exceeds application data", ErrInvalidLength, pad))
	}

	if optionsBytes > 0 {
		if it.optionsPos, err = blob.FindOffset(b, msgStart, headerBytes); err != nil {
			return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
		}
		it.optionsSize = optionsBytes
	}
	adPos, err := blob.FindOffset(b, msgStart, headerBytes+optionsBytes)
	if err != nil {
		return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
	}
	it.applicationDataPos = adPos
	it.rawApplicationDataSize = rawADSize

	alg := h.Compression
	needDecompress := false
	if alg != compression.AlgorithmNone {
		switch it.policy {
		case compression.DecompressAlways:
			needDecompress = true
		case compression.DecompressOldProperties:
			needDecompress = h.HasFlag(FlagMessageProperties) && h.IsLegacyProperties()
		}
	}
	if needDecompress {
		if !alg.IsKnown() {
			return it.fail(rcUnsupportedCompression,
				fmt.Errorf("%w: %s", ErrUnsupportedCompression, alg))
		}
		rawBuf := make([]byte, rawADSize)
		if err := blob.ReadBytes(rawBuf, b, adPos, rawADSize); err != nil {
			return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
		}
		out, err := compression.Decompress(rawBuf, alg, it.maxDecompressedBytes)
		if err != nil {
			return it.fail(rcDecompressFailed, fmt.Errorf("%w: %v", ErrDecompressFailed, err))
		}
		it.appData = out
		it.applicationDataSize = len(out)
		h.Compression = compression.AlgorithmNone // exposed copy only
	} else {
		it.applicationDataSize = rawADSize
	}
	it.header = h

	// Properties size is measured only when the application data at hand is
	// uncompressed; under DecompressNone a compressed area stays opaque.
	if h.HasFlag(FlagMessageProperties) && (it.appData != nil || alg == compression.AlgorithmNone) {
		var mph [properties.HeaderSize]byte
		if it.appData != nil {
			if len(it.appData) < properties.HeaderSize {
				return it.fail(rcInvalidLength,
					fmt.Errorf("%w: %d bytes for properties header", ErrInvalidLength, len(it.appData)))
			}
			copy(mph[:], it.appData)
		} else {
			if rawADSize < properties.HeaderSize {
				return it.fail(rcInvalidLength,
					fmt.Errorf("%w: %d bytes for properties header", ErrInvalidLength, rawADSize))
			}
			if err := blob.ReadBytes(mph[:], b, adPos, properties.HeaderSize); err != nil {
				return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
			}
		}
		mpaSize, err := properties.AreaLength(mph[:])
		if err != nil {
			return it.fail(rcInvalidLength, fmt.Errorf("%w: %v", ErrInvalidLength, err))
		}
		if mpaSize > it.applicationDataSize {
			return it.fail(rcInvalidLength,
				fmt.Errorf("%w: properties %d bytes exceed application data %d",
					ErrInvalidLength, mpaSize, it.applicationDataSize))
		}
		it.messagePropertiesSize = mpaSize
	}

	it.advanceLength = totalBytes
	return rcHasMessage
}

// Header returns the cached PUT header of the current message. When the
// message was decompressed the copy reports AlgorithmNone while the on-wire
// header keeps its compression type.
func (it *PutMessageIterator) Header() PutHeader { return it.header }

// HasMessageProperties reports whether the current message carries a
// properties area.
func (it *PutMessageIterator) HasMessageProperties() bool {
	return it.onMessage() && it.header.HasFlag(FlagMessageProperties)
}

// HasOptions reports whether the current message carries options.
func (it *PutMessageIterator) HasOptions() bool { return it.optionsSize > 0 }

// HasMsgGroupID reports whether the current message carries a MSG_GROUP_ID
// option.
func (it *PutMessageIterator) HasMsgGroupID() bool {
	if !it.HasOptions() {
		return false
	}
	v, err := it.cachedOptionsView()
	if err != nil {
		return false
	}
	_, ok := v.Find(OptionTypeMsgGroupID)
	return ok
}

// ApplicationDataSize returns the size of the current message's application
// data: properties plus payload, padding excluded; the decompressed size
// when decompression applied.
func (it *PutMessageIterator) ApplicationDataSize() int {
	if !it.onMessage() {
		return 0
	}
	return it.applicationDataSize
}

// LoadApplicationDataPosition loads the blob position of the application
// data. Defined only in zero-copy mode; when the data was decompressed the
// bytes live in an owned buffer and have no blob position.
func (it *PutMessageIterator) LoadApplicationDataPosition(pos *blob.Position) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	if it.appData != nil {
		return ErrOwnedData
	}
	*pos = it.applicationDataPos
	return nil
}

// LoadApplicationData gather-copies the application data (decompressed when
// the policy applied) into dst.
func (it *PutMessageIterator) LoadApplicationData(dst *blob.Blob) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	if it.appData != nil {
		dst.Reset()
		dst.AppendBytes(it.appData)
		return nil
	}
	return blob.CopyToBlob(dst, it.blobIter.Blob(), it.applicationDataPos, it.applicationDataSize)
}

// MessagePropertiesSize returns the size of the properties area, sub-header
// and internal padding included. It is zero when the message has no
// properties, and zero when the area is still compressed under
// DecompressNone.
func (it *PutMessageIterator) MessagePropertiesSize() int {
	if !it.HasMessageProperties() {
		return 0
	}
	return it.messagePropertiesSize
}

// LoadMessagePropertiesPosition loads the blob position of the properties
// area. Defined only in zero-copy mode for a message that has properties.
func (it *PutMessageIterator) LoadMessagePropertiesPosition(pos *blob.Position) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	if it.appData != nil {
		return ErrOwnedData
	}
	if it.MessagePropertiesSize() == 0 {
		return ErrNoProperties
	}
	*pos = it.applicationDataPos
	return nil
}

// LoadMessageProperties gather-copies the properties area, sub-header and
// padding included, into dst. A message without properties empties dst and
// succeeds.
func (it *PutMessageIterator) LoadMessageProperties(dst *blob.Blob) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	dst.Reset()
	n := it.MessagePropertiesSize()
	if n == 0 {
		return nil
	}
	if it.appData != nil {
		dst.AppendBytes(it.appData[:n])
		return nil
	}
	return blob.CopyToBlob(dst, it.blobIter.Blob(), it.applicationDataPos, n)
}

// LoadMessagePropertiesInto decodes the properties area into p. A message
// without properties clears p and succeeds.
func (it *PutMessageIterator) LoadMessagePropertiesInto(p *properties.MessageProperties) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	p.Clear()
	n := it.MessagePropertiesSize()
	if n == 0 {
		return nil
	}
	if it.appData != nil {
		return p.Decode(it.appData[:n])
	}
	buf := make([]byte, n)
	if err := blob.ReadBytes(buf, it.blobIter.Blob(), it.applicationDataPos, n); err != nil {
		return err
	}
	return p.Decode(buf)
}

// MessagePayloadSize returns the payload size: application data minus the
// properties area. Computed on first call and cached.
func (it *PutMessageIterator) MessagePayloadSize() int {
	if !it.onMessage() {
		return 0
	}
	if it.lazyPayloadSize < 0 {
		it.lazyPayloadSize = it.applicationDataSize - it.MessagePropertiesSize()
	}
	return it.lazyPayloadSize
}

// LoadMessagePayload gather-copies the payload (the application data past
// the properties area) into dst.
func (it *PutMessageIterator) LoadMessagePayload(dst *blob.Blob) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	size := it.MessagePayloadSize()
	if it.appData != nil {
		dst.Reset()
		dst.AppendBytes(it.appData[len(it.appData)-size:])
		return nil
	}
	pos, err := it.payloadPosition()
	if err != nil {
		return err
	}
	return blob.CopyToBlob(dst, it.blobIter.Blob(), pos, size)
}

func (it *PutMessageIterator) payloadPosition() (blob.Position, error) {
	if !it.lazyPayloadPos.IsUnset() {
		return it.lazyPayloadPos, nil
	}
	pos, err := blob.FindOffset(it.blobIter.Blob(), it.applicationDataPos, it.MessagePropertiesSize())
	if err != nil {
		return blob.NoPosition, err
	}
	it.lazyPayloadPos = pos
	return pos, nil
}

// OptionsSize returns the size of the options area, zero when absent.
func (it *PutMessageIterator) OptionsSize() int { return it.optionsSize }

// LoadOptions gather-copies the options area into dst. A message without
// options empties dst and succeeds.
func (it *PutMessageIterator) LoadOptions(dst *blob.Blob) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	dst.Reset()
	if it.optionsSize == 0 {
		return nil
	}
	return blob.CopyToBlob(dst, it.blobIter.Blob(), it.optionsPos, it.optionsSize)
}

// LoadOptionsView rebuilds v over the current message's options area. A
// message without options yields a valid, empty view.
func (it *PutMessageIterator) LoadOptionsView(v *OptionsView) error {
	if !it.onMessage() {
		return ErrNotPositioned
	}
	return v.Reset(it.blobIter.Blob(), blob.Section{Start: it.optionsPos, Length: it.optionsSize})
}

func (it *PutMessageIterator) cachedOptionsView() (*OptionsView, error) {
	if it.optionsView == nil {
		v := new(OptionsView)
		if err := v.Reset(it.blobIter.Blob(), blob.Section{Start: it.optionsPos, Length: it.optionsSize}); err != nil {
			return nil, err
		}
		it.optionsView = v
	}
	return it.optionsView, nil
}

// ExtractMsgGroupID extracts the group id carried by the current message
// into id. It returns false when the message has none or the option is
// malformed.
func (it *PutMessageIterator) ExtractMsgGroupID(id *string) bool {
	if !it.HasOptions() {
		return false
	}
	v, err := it.cachedOptionsView()
	if err != nil {
		return false
	}
	return v.LoadMsgGroupID(id)
}

// DumpBlob writes a bounded hex dump of the head of the underlying blob to
// w, for diagnostics after a structural error.
func (it *PutMessageIterator) DumpBlob(w io.Writer) {
	b := it.blobIter.Blob()
	if b == nil || b.Length() == 0 {
		fmt.Fprintln(w, "/no blob/")
		return
	}
	n := b.Length()
	if n > dumpBlobMaxBytes {
		n = dumpBlobMaxBytes
	}
	buf := make([]byte, n)
	if err := blob.ReadBytes(buf, b, blob.Start(), n); err != nil {
		fmt.Fprintf(w, "/unreadable blob: %v/\n", err)
		return
	}
	d := hex.Dumper(w)
	d.Write(buf)
	d.Close()
	if b.Length() > n {
		fmt.Fprintf(w, "... (%d of %d bytes shown)\n", n, b.Length())
	}
}
