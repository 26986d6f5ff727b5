package arc

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DecodeShiftJIS decodes Shift-JIS bytes to a Go string.
func DecodeShiftJIS(data []byte) (string, error) {
	utf8Bytes, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(utf8Bytes), nil
}

// EncodeShiftJIS encodes a Go string to Shift-JIS bytes.
func EncodeShiftJIS(s string) ([]byte, error) {
	sjisBytes, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return nil, err
	}
	return sjisBytes, nil
}

// ReadName reads a zero-terminated Shift-JIS name starting at offset.
// A name without a terminator runs to the end of table.
func ReadName(table []byte, offset int) (string, error) {
	if offset < 0 || offset > len(table) {
		return "", fmt.Errorf("%w: name offset %d outside %d-byte name table", ErrCorrupt, offset, len(table))
	}

	raw := table[offset:]
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		raw = raw[:end]
	}
	return DecodeShiftJIS(raw)
}

// encodeName encodes an entry name for the name table.
func encodeName(name string) ([]byte, error) {
	raw, err := EncodeShiftJIS(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return raw, nil
}
