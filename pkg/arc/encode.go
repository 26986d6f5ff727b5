package arc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/esctools/pkg/keystream"
)

// Encode builds an archive holding entries in the given order. Payloads are
// stored verbatim; callers that want the game's ordering call SortEntries
// first.
//
// The seed is always zero. Every scalar still goes through the keystream so
// that ReadIndex handles these archives like any other.
func Encode(entries []Entry, signature string) ([]byte, error) {
	sig, err := signatureBytes(signature)
	if err != nil {
		return nil, err
	}

	// Name table and per-entry metadata
	var names []byte
	records := make([]Record, len(entries))
	for i, entry := range entries {
		raw, err := encodeName(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		records[i].Name = entry.Name
		records[i].NameOffset = uint32(len(names))
		names = append(names, raw...)
		names = append(names, 0)
	}

	// First payload follows the name table, the rest are packed back to back
	offset := uint64(HeaderSize) + uint64(len(entries))*RecordSize + uint64(len(names))
	for i, entry := range entries {
		size := uint64(len(entry.Data)) + 1
		if offset+size > math.MaxUint32 {
			return nil, fmt.Errorf("%w: entry %d (%s) ends at %d", ErrTooLarge, i, entry.Name, offset+size)
		}
		records[i].Offset = uint32(offset)
		records[i].Size = uint32(size)
		offset += size
	}

	buf := make([]byte, HeaderSize, offset)
	copy(buf, sig)

	keys := keystream.New(0)
	binary.LittleEndian.PutUint32(buf[seedOffset:], keys.State())
	binary.LittleEndian.PutUint32(buf[countOffset:], keys.Uint32(uint32(len(entries))))
	binary.LittleEndian.PutUint32(buf[namesLenOffset:], keys.Uint32(uint32(len(names))))

	for _, rec := range records {
		buf = binary.LittleEndian.AppendUint32(buf, keys.Uint32(rec.NameOffset))
		buf = binary.LittleEndian.AppendUint32(buf, keys.Uint32(rec.Offset))
		buf = binary.LittleEndian.AppendUint32(buf, keys.Uint32(rec.Size))
	}

	buf = append(buf, names...)
	for _, entry := range entries {
		buf = append(buf, entry.Data...)
		buf = append(buf, 0)
	}

	return buf, nil
}
