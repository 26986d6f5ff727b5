package acp

import (
	"fmt"
	"slices"
)

const (
	DictionarySize = 0x8900 // dictionary capacity in entries
	MinTokenWidth  = 9

	tokenEnd      = 0x100 // end of stream
	tokenWiden    = 0x101 // token width += 1
	tokenReset    = 0x102 // width back to 9, dictionary cursor back to 0
	tokenFirstRef = 0x103

	// initialOutput caps the up-front allocation; the declared size is not
	// trusted until tokens actually produce that many bytes.
	initialOutput = 1 << 16
)

// Decompress decodes an acp LZW stream into at most size bytes.
//
// Each non-control token records the current output position in the
// dictionary. Literal tokens (< 0x100) emit one byte. Reference tokens copy
// the run starting at dictionary[t-0x103] whose length is the distance to the
// following dictionary entry plus one. A reset only rewinds the dictionary
// cursor; stale entries stay in place.
//
// If the stream ends early with an end token the bytes decoded so far are
// returned. The output grows as tokens are decoded, so a large declared size
// on a short stream costs no more than the bytes it really produces.
func Decompress(src []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrTooLarge, size)
	}

	br := NewBitReader(src)
	out := make([]byte, 0, min(size, initialOutput))

	var dict [DictionarySize]int
	width := MinTokenWidth
	next := 0 // dictionary cursor

	for len(out) < size {
		dst := len(out) // output cursor
		token, err := br.ReadBits(width)
		if err != nil {
			return nil, fmt.Errorf("token at output offset %d: %w", dst, err)
		}

		switch token {
		case tokenEnd:
			return out, nil

		case tokenWiden:
			width++
			if width > MaxTokenWidth {
				return nil, fmt.Errorf("%w: %d bits", ErrTokenWidth, width)
			}

		case tokenReset:
			width = MinTokenWidth
			next = 0

		default:
			if next >= len(dict) {
				return nil, ErrDictionaryFull
			}
			dict[next] = dst
			next++

			if token < tokenEnd {
				out = append(out, byte(token))
				continue
			}

			index := int(token - tokenFirstRef)
			if index >= next || index+1 >= len(dict) {
				return nil, fmt.Errorf("%w: index %d with %d entries", ErrBadReference, index, next)
			}

			source := dict[index]
			count := min(size-dst, dict[index+1]-source+1)
			if count < 0 {
				return nil, fmt.Errorf("%w: negative run at index %d", ErrBadReference, index)
			}

			out = slices.Grow(out, count)[:dst+count]
			clear(out[dst:])
			copyRun(out, source, dst, count)
		}
	}

	return out, nil
}

// copyRun copies count bytes from source to dst within buf. When dst is ahead
// of source the copy is split into chunks no longer than the gap so repeating
// patterns are replicated.
func copyRun(buf []byte, source, dst, count int) {
	if dst <= source {
		copy(buf[dst:dst+count], buf[source:source+count])
		return
	}

	for count > 0 {
		n := min(dst-source, count)
		copy(buf[dst:dst+n], buf[source:source+n])
		dst += n
		count -= n
	}
}
