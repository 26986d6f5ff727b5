package arc

import "strings"

// AddEntries merges entries into an existing archive and re-encodes it with
// the original signature. An entry whose name matches an existing one
// (ignoring case) replaces it; the rest are appended. The result is sorted
// with SortEntries.
//
// Existing acp-wrapped entries are written back decompressed.
func AddEntries(archive []byte, entries []Entry) ([]byte, int, error) {
	index, err := ReadIndex(archive)
	if err != nil {
		return nil, 0, err
	}

	merged := make([]Entry, 0, len(index.Records)+len(entries))
	for _, rec := range index.Records {
		payload, err := DecodeEntry(archive, rec)
		if err != nil {
			return nil, 0, err
		}
		merged = append(merged, Entry{Name: rec.Name, Data: payload})
	}

	byName := make(map[string]int, len(merged))
	for i, entry := range merged {
		byName[strings.ToLower(entry.Name)] = i
	}

	replaced := 0
	for _, entry := range entries {
		key := strings.ToLower(entry.Name)
		if i, ok := byName[key]; ok {
			merged[i] = entry
			replaced++
			continue
		}
		byName[key] = len(merged)
		merged = append(merged, entry)
	}

	SortEntries(merged)

	out, err := Encode(merged, index.Header.Signature)
	if err != nil {
		return nil, 0, err
	}
	return out, replaced, nil
}
