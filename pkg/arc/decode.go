package arc

import (
	"encoding/binary"
	"fmt"

	"github.com/esctools/pkg/acp"
	"github.com/esctools/pkg/keystream"
)

// ReadIndex parses the header, metadata and name table of an ESC-ARC2
// archive. Entry payloads are not touched.
func ReadIndex(data []byte) (*Index, error) {
	if len(data) >= SignatureSize {
		version, err := ParseVersion(data[:SignatureSize])
		if err != nil {
			return nil, err
		}
		if err := checkVersion(version); err != nil {
			return nil, err
		}
	}

	header, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	// Count and names length each take one key, then the metadata block
	// continues the same sequence.
	keys := keystream.New(header.Seed)
	header.Count = keys.Uint32(header.Count)
	header.NamesLength = keys.Uint32(header.NamesLength)

	metaEnd := header.MetadataEnd()
	namesEnd := header.NamesEnd()
	if metaEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d entries need %d bytes of metadata, file has %d",
			ErrCorrupt, header.Count, metaEnd-HeaderSize, len(data))
	}
	if namesEnd > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d-byte name table ends past %d-byte file",
			ErrCorrupt, header.NamesLength, len(data))
	}

	metadata := make([]byte, metaEnd-HeaderSize)
	copy(metadata, data[HeaderSize:metaEnd])
	keys.XOR(metadata)

	names := data[metaEnd:namesEnd]

	index := &Index{
		Header:  *header,
		Records: make([]Record, 0, header.Count),
	}

	for pos := 0; pos < len(metadata); pos += RecordSize {
		rec := Record{
			NameOffset: binary.LittleEndian.Uint32(metadata[pos:]),
			Offset:     binary.LittleEndian.Uint32(metadata[pos+4:]),
			Size:       binary.LittleEndian.Uint32(metadata[pos+8:]),
		}

		if uint64(rec.NameOffset) > uint64(len(names)) {
			return nil, fmt.Errorf("%w: entry %d name offset %d outside %d-byte name table",
				ErrCorrupt, len(index.Records), rec.NameOffset, len(names))
		}
		rec.Name, err = ReadName(names, int(rec.NameOffset))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(index.Records), err)
		}

		if _, _, err := rec.ContentRange(len(data)); err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(index.Records), err)
		}

		index.Records = append(index.Records, rec)
	}

	return index, nil
}

// StoredBytes returns the record's bytes as stored in data, without the
// trailing zero terminator that the stored size counts.
//
// Exactly one trailing zero is dropped, and only when the last stored byte
// is zero. A record whose size excludes the terminator keeps its bytes
// unless the payload itself ends in 0x00; that final byte is then lost.
func StoredBytes(data []byte, rec Record) ([]byte, error) {
	start, end, err := rec.ContentRange(len(data))
	if err != nil {
		return nil, err
	}

	content := data[start:end]
	if n := len(content); n > 0 && content[n-1] == 0 {
		content = content[:n-1]
	}
	return content, nil
}

// DecodeEntry returns the record's payload with any acp wrapper removed.
// The result never aliases data.
func DecodeEntry(data []byte, rec Record) ([]byte, error) {
	start, end, err := rec.ContentRange(len(data))
	if err != nil {
		return nil, err
	}

	// The decompressor stops at its declared size, so a wrapped payload is
	// handed over with its terminator.
	if raw := data[start:end]; acp.IsWrapped(raw) {
		out, err := acp.Unwrap(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rec.Name, err)
		}
		return out, nil
	}

	content, err := StoredBytes(data, rec)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), content...), nil
}

// Decode returns every entry of an ESC-ARC2 archive in metadata order.
func Decode(data []byte) ([]Entry, error) {
	index, err := ReadIndex(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(index.Records))
	for _, rec := range index.Records {
		payload, err := DecodeEntry(data, rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: rec.Name, Data: payload})
	}

	return entries, nil
}
