package arc

import (
	"github.com/cespare/xxhash/v2"

	"github.com/esctools/pkg/acp"
)

// EntryInfo describes one record for listings.
type EntryInfo struct {
	Record
	Wrapped bool   // payload carries an acp wrapper
	Length  int    // decoded payload length
	Digest  uint64 // xxhash64 of the decoded payload
	Err     error  // decode failure, if any
}

// Summarize lists an archive's records. A record whose payload cannot be
// decoded is reported through EntryInfo.Err rather than failing the listing.
func Summarize(data []byte) (*Index, []EntryInfo, error) {
	index, err := ReadIndex(data)
	if err != nil {
		return nil, nil, err
	}

	infos := make([]EntryInfo, len(index.Records))
	for i, rec := range index.Records {
		info := EntryInfo{Record: rec}

		if start, end, err := rec.ContentRange(len(data)); err == nil {
			info.Wrapped = acp.IsWrapped(data[start:end])
		}

		payload, err := DecodeEntry(data, rec)
		if err != nil {
			info.Err = err
		} else {
			info.Length = len(payload)
			info.Digest = xxhash.Sum64(payload)
		}

		infos[i] = info
	}

	return index, infos, nil
}
