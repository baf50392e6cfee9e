package blob

// Iterator is a forward-only cursor over a window of a Blob. It tracks the
// current position and the number of bytes remaining in the window; Advance
// walks across segment seams in O(1) amortized time.
type Iterator struct {
	blob      *Blob
	pos       Position
	remaining int
}

// NewIterator returns an iterator over the window of length bytes starting
// at start. The window must fit within b.
func NewIterator(b *Blob, start Position, length int) (Iterator, error) {
	if b == nil || length < 0 {
		return Iterator{remaining: -1}, ErrInvalidPosition
	}
	off, err := AbsoluteOffset(b, start)
	if err != nil {
		return Iterator{remaining: -1}, err
	}
	if off+length > b.Length() {
		return Iterator{remaining: -1}, ErrOutOfBounds
	}
	return Iterator{blob: b, pos: start, remaining: length}, nil
}

// Reset returns the iterator to the empty, detached state.
func (it *Iterator) Reset() {
	it.blob = nil
	it.pos = NoPosition
	it.remaining = -1
}

// Blob returns the underlying blob, or nil when detached.
func (it *Iterator) Blob() *Blob { return it.blob }

// Position returns the current position within the blob.
func (it *Iterator) Position() Position { return it.pos }

// Remaining returns the number of bytes left in the window, -1 when
// detached.
func (it *Iterator) Remaining() int { return it.remaining }

// AtEnd reports whether the window is exhausted (or the iterator detached).
func (it *Iterator) AtEnd() bool { return it.remaining <= 0 }

// Advance moves the cursor forward by exactly n bytes. It fails without
// moving when fewer than n bytes remain in the window.
func (it *Iterator) Advance(n int) error {
	if n < 0 || it.remaining < 0 {
		return ErrInvalidPosition
	}
	if n == 0 {
		return nil
	}
	if n > it.remaining {
		return ErrNotEnoughBytes
	}
	p, err := FindOffset(it.blob, it.pos, n)
	if err != nil {
		return err
	}
	it.pos = p
	it.remaining -= n
	return nil
}

// ReadBytes gather-copies n bytes at the current position into dst without
// advancing.
func (it *Iterator) ReadBytes(dst []byte, n int) error {
	if it.remaining < 0 {
		return ErrInvalidPosition
	}
	if n > it.remaining {
		return ErrNotEnoughBytes
	}
	return ReadBytes(dst, it.blob, it.pos, n)
}
