// Package acp detects and unwraps the "acp\0" LZW payload wrapper found
// inside some ESC-ARC archive entries.
//
// Wrapper layout (big-endian, unlike the enclosing archive):
//
//	0x00: magic "acp\0" (4 bytes)
//	0x04: decompressed size (4 bytes)
//	0x08: LZW token stream
//
// There is no compressor; archives are always written with payloads stored.
package acp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Magic is the 4-byte tag that starts a wrapped payload.
const Magic = "acp\x00"

// HeaderSize is the length of the magic plus the size field.
const HeaderSize = 8

// IsWrapped reports whether data starts with Magic.
func IsWrapped(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// DecodedSize returns the size declared by a wrapped payload's header.
func DecodedSize(data []byte) (int, error) {
	if !IsWrapped(data) {
		return len(data), nil
	}
	if len(data) < HeaderSize {
		return 0, fmt.Errorf("%w: truncated header (%d bytes)", ErrStreamExhausted, len(data))
	}

	size := binary.BigEndian.Uint32(data[4:HeaderSize])
	if size > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return int(size), nil
}

// Unwrap returns data unchanged unless it is a wrapped payload, in which case
// the decompressed bytes are returned.
func Unwrap(data []byte) ([]byte, error) {
	if !IsWrapped(data) {
		return data, nil
	}

	size, err := DecodedSize(data)
	if err != nil {
		return nil, err
	}

	out, err := Decompress(data[HeaderSize:], size)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress acp payload: %w", err)
	}
	return out, nil
}
