package blob

// ReadBytes gather-copies n bytes starting at pos into dst. len(dst) must be
// at least n. The blob is not modified and pos is not advanced.
func ReadBytes(dst []byte, b *Blob, pos Position, n int) error {
	if n == 0 {
		return nil
	}
	if n < 0 || len(dst) < n {
		return ErrNotEnoughBytes
	}
	if !validate(b, pos, false) {
		return ErrInvalidPosition
	}
	seg, off := pos.Segment, pos.Offset
	written := 0
	for written < n {
		if seg >= len(b.segments) {
			return ErrNotEnoughBytes
		}
		c := copy(dst[written:n], b.segments[seg][off:])
		written += c
		seg++
		off = 0
	}
	return nil
}

// ContiguousBytes returns a zero-copy view of the n bytes at pos when they
// fall within a single segment, or (nil, false) when the range spans a seam
// or overruns the blob.
func ContiguousBytes(b *Blob, pos Position, n int) ([]byte, bool) {
	if n <= 0 || !validate(b, pos, false) {
		return nil, false
	}
	seg := b.segments[pos.Segment]
	if pos.Offset+n > len(seg) {
		return nil, false
	}
	return seg[pos.Offset : pos.Offset+n], true
}

// CopyToBlob resets dst and appends a freshly owned copy of the n bytes at
// pos in src.
func CopyToBlob(dst *Blob, src *Blob, pos Position, n int) error {
	dst.Reset()
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	if err := ReadBytes(buf, src, pos, n); err != nil {
		return err
	}
	dst.AppendSegment(buf)
	return nil
}
