package acp

// MaxTokenWidth is the widest token ReadBits accepts.
const MaxTokenWidth = 24

// BitReader yields MSB-first bit fields from a byte slice.
type BitReader struct {
	src   []byte
	pos   int    // next byte to load
	acc   uint32 // pending bits, right-aligned
	nbits int    // number of valid bits in acc
}

// NewBitReader returns a reader positioned at the first bit of src.
func NewBitReader(src []byte) *BitReader {
	return &BitReader{src: src}
}

// ReadBits returns the next n bits, 1 <= n <= MaxTokenWidth.
// It returns ErrStreamExhausted when fewer than n bits remain.
func (r *BitReader) ReadBits(n int) (uint32, error) {
	if n < 1 || n > MaxTokenWidth {
		return 0, ErrTokenWidth
	}

	for r.nbits < n {
		if r.pos >= len(r.src) {
			return 0, ErrStreamExhausted
		}
		r.acc = r.acc<<8 | uint32(r.src[r.pos])
		r.pos++
		r.nbits += 8
	}

	r.nbits -= n
	return (r.acc >> r.nbits) & (1<<n - 1), nil
}

// Remaining returns how many unread bits are left.
func (r *BitReader) Remaining() int {
	return r.nbits + 8*(len(r.src)-r.pos)
}
