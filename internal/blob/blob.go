package blob

import "errors"

var (
	ErrOutOfBounds     = errors.New("blob: position out of bounds")
	ErrNotEnoughBytes  = errors.New("blob: not enough bytes remaining")
	ErrInvalidPosition = errors.New("blob: invalid position")
)

// Blob is an ordered chain of byte segments with a known total length.
// Readers treat it as immutable; distinct readers may alias the same Blob.
type Blob struct {
	segments [][]byte
	length   int
}

// New returns an empty Blob.
func New() *Blob {
	return &Blob{}
}

// FromSegments wraps the provided segments without copying. Empty segments
// are skipped so every stored segment has at least one byte.
func FromSegments(segments ...[]byte) *Blob {
	b := &Blob{}
	for _, s := range segments {
		b.AppendSegment(s)
	}
	return b
}

// FromBytes splits data into segments of at most segmentSize bytes without
// copying. A segmentSize <= 0 yields a single segment.
func FromBytes(data []byte, segmentSize int) *Blob {
	if segmentSize <= 0 || segmentSize >= len(data) {
		return FromSegments(data)
	}
	b := &Blob{}
	for len(data) > 0 {
		n := segmentSize
		if n > len(data) {
			n = len(data)
		}
		b.AppendSegment(data[:n])
		data = data[n:]
	}
	return b
}

// AppendSegment adds a segment to the end of the chain. No-op for empty
// segments.
func (b *Blob) AppendSegment(seg []byte) {
	if len(seg) == 0 {
		return
	}
	b.segments = append(b.segments, seg)
	b.length += len(seg)
}

// AppendBytes copies data into a freshly owned segment at the end of the
// chain.
func (b *Blob) AppendBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	b.AppendSegment(append([]byte(nil), data...))
}

// Reset drops all segments.
func (b *Blob) Reset() {
	b.segments = nil
	b.length = 0
}

// Length returns the total number of bytes across all segments.
func (b *Blob) Length() int {
	if b == nil {
		return 0
	}
	return b.length
}

// NumSegments returns the number of segments in the chain.
func (b *Blob) NumSegments() int { return len(b.segments) }

// Segment returns the i-th segment. The returned slice must not be mutated.
func (b *Blob) Segment(i int) []byte { return b.segments[i] }

// Bytes flattens the chain into a single freshly allocated slice.
func (b *Blob) Bytes() []byte {
	if b == nil || b.length == 0 {
		return nil
	}
	out := make([]byte, 0, b.length)
	for _, s := range b.segments {
		out = append(out, s...)
	}
	return out
}
