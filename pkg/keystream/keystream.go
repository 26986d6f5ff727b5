// Package keystream implements the 32-bit XOR keystream that ESC-ARC archives
// use to obfuscate their header counts and metadata table.
//
// The keystream is an obfuscation scheme. It offers no confidentiality.
package keystream

import "encoding/binary"

// Diffusion is XORed into the state before every step.
const Diffusion uint32 = 0x65AC9365

// Next advances state by one step. The returned value is both the key and the
// new state.
func Next(state uint32) uint32 {
	state ^= Diffusion
	state ^= (((state >> 1) ^ state) >> 3) ^ (((state << 1) ^ state) << 3)
	return state
}

// Stream owns one keystream state. Encoders and decoders must call it the same
// number of times in the same order to stay in sync.
type Stream struct {
	state uint32
}

// New returns a stream starting at seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Next advances the stream and returns the next key.
func (s *Stream) Next() uint32 {
	s.state = Next(s.state)
	return s.state
}

// State returns the current state without advancing.
func (s *Stream) State() uint32 {
	return s.state
}

// XOR obfuscates buf in place. Whole little-endian words take one key each;
// every byte of a trailing partial word takes the low byte of its own key.
// Applying XOR twice from the same state restores the input.
func (s *Stream) XOR(buf []byte) {
	words := len(buf) / 4
	for i := 0; i < words; i++ {
		w := binary.LittleEndian.Uint32(buf[i*4:])
		binary.LittleEndian.PutUint32(buf[i*4:], w^s.Next())
	}

	for i := words * 4; i < len(buf); i++ {
		buf[i] ^= byte(s.Next())
	}
}

// Uint32 de-obfuscates (or obfuscates) a single scalar field.
func (s *Stream) Uint32(v uint32) uint32 {
	return v ^ s.Next()
}
