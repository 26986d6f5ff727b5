// Package arc reads and writes ESC-ARC archives (*.bin).
//
// Layout (little-endian):
//
//	0x00: signature, Shift-JIS "ESC-ARC1" or "ESC-ARC2" (8 bytes)
//	0x08: keystream seed (4 bytes)
//	0x0C: entry count, obfuscated (4 bytes)
//	0x10: name table length, obfuscated (4 bytes)
//	0x14: metadata, obfuscated as one block (count * 12 bytes)
//	      name offset, content offset, content size per entry
//	after: name table, zero-terminated Shift-JIS names
//	after: entry contents, each followed by a zero byte
//
// Entry contents may carry an acp LZW wrapper, which Decode removes.
package arc

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Version identifies the container revision.
type Version int

const (
	Version1 Version = 1 // recognized, never read or written
	Version2 Version = 2
)

// Signatures as stored at offset 0.
const (
	SignatureV1 = "ESC-ARC1"
	SignatureV2 = "ESC-ARC2"
)

// Layout constants
const (
	SignatureSize  = 8
	HeaderSize     = 0x14
	RecordSize     = 12
	seedOffset     = 0x08
	countOffset    = 0x0C
	namesLenOffset = 0x10
)

// Entry is one named file inside an archive.
type Entry struct {
	Name string
	Data []byte
}

// Header is the decoded fixed-size archive header.
type Header struct {
	Signature   string
	Version     Version
	Seed        uint32
	Count       uint32 // de-obfuscated entry count
	NamesLength uint32 // de-obfuscated name table length
}

// Record is one de-obfuscated metadata triplet and its resolved name.
type Record struct {
	Name       string
	NameOffset uint32
	Offset     uint32 // absolute, from the start of the archive
	Size       uint32 // stored size, including the zero terminator
}

// Index is an archive's directory without entry payloads.
type Index struct {
	Header  Header
	Records []Record
}

// ParseVersion maps an 8-byte signature to a Version. Both known versions are
// returned without error; callers decide which they accept.
func ParseVersion(sig []byte) (Version, error) {
	if len(sig) != SignatureSize {
		return 0, fmt.Errorf("%w: %d-byte signature", ErrUnrecognizedSignature, len(sig))
	}

	s, err := DecodeShiftJIS(sig)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnrecognizedSignature, err)
	}

	switch s {
	case SignatureV1:
		return Version1, nil
	case SignatureV2:
		return Version2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedSignature, s)
	}
}

// checkVersion rejects versions this package cannot handle.
func checkVersion(v Version) error {
	if v != Version2 {
		return ErrUnsupportedVersion
	}
	return nil
}

// signatureBytes encodes a signature for writing. Only ESC-ARC2 is accepted;
// ESC-ARC1 is rejected here exactly as ReadIndex rejects it.
func signatureBytes(signature string) ([]byte, error) {
	sig, err := EncodeShiftJIS(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedSignature, err)
	}
	version, err := ParseVersion(sig)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	return sig, nil
}

// ReadHeader reads the fixed header fields. The count and name table length
// are left obfuscated; ReadIndex de-obfuscates them.
func ReadHeader(data []byte) (*Header, error) {
	if len(data) < SignatureSize {
		return nil, fmt.Errorf("%w: %d-byte file has no signature: %w", ErrCorrupt, len(data), io.ErrUnexpectedEOF)
	}

	sig := data[:SignatureSize]
	version, err := ParseVersion(sig)
	if err != nil {
		return nil, err
	}

	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d-byte file is shorter than the header: %w", ErrCorrupt, len(data), io.ErrUnexpectedEOF)
	}

	return &Header{
		Signature:   string(sig),
		Version:     version,
		Seed:        binary.LittleEndian.Uint32(data[seedOffset:]),
		Count:       binary.LittleEndian.Uint32(data[countOffset:]),
		NamesLength: binary.LittleEndian.Uint32(data[namesLenOffset:]),
	}, nil
}

// MetadataEnd returns the offset just past the metadata block.
func (h *Header) MetadataEnd() uint64 {
	return HeaderSize + uint64(h.Count)*RecordSize
}

// NamesEnd returns the offset just past the name table.
func (h *Header) NamesEnd() uint64 {
	return h.MetadataEnd() + uint64(h.NamesLength)
}

// ContentRange returns the [start, end) range of the record's stored bytes
// in an archive of archiveLen bytes.
func (r *Record) ContentRange(archiveLen int) (int, int, error) {
	end := uint64(r.Offset) + uint64(r.Size)
	if end > uint64(archiveLen) {
		return 0, 0, fmt.Errorf("%w: %q content 0x%X+%d exceeds %d-byte archive",
			ErrCorrupt, r.Name, r.Offset, r.Size, archiveLen)
	}
	return int(r.Offset), int(end), nil
}

// SortEntries sorts entries by name, ignoring case. Archives written by the
// game's own tools are ordered this way.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
