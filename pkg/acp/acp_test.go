package acp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"runtime"
	"testing"
)

// bitWriter packs MSB-first fields, the inverse of BitReader.
type bitWriter struct {
	buf   []byte
	acc   uint64
	nbits int
}

func (w *bitWriter) write(v uint32, n int) {
	w.acc = w.acc<<n | uint64(v)&(1<<n-1)
	w.nbits += n
	for w.nbits >= 8 {
		w.nbits -= 8
		w.buf = append(w.buf, byte(w.acc>>w.nbits))
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		return append(w.buf, byte(w.acc<<(8-w.nbits)))
	}
	return w.buf
}

// tokens packs values at a fixed width.
func tokens(width int, values ...uint32) []byte {
	var w bitWriter
	for _, v := range values {
		w.write(v, width)
	}
	return w.bytes()
}

func wrap(size uint32, stream []byte) []byte {
	buf := make([]byte, HeaderSize, HeaderSize+len(stream))
	copy(buf, Magic)
	binary.BigEndian.PutUint32(buf[4:], size)
	return append(buf, stream...)
}

func TestBitReaderCrossesBytes(t *testing.T) {
	// 0x041, 0x100, 0x1FF as 9-bit fields plus 5 padding bits
	r := NewBitReader([]byte{0x20, 0xC0, 0x3F, 0xF0})

	for i, want := range []uint32{0x041, 0x100, 0x1FF} {
		got, err := r.ReadBits(9)
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if got != want {
			t.Errorf("token %d: got 0x%03X, want 0x%03X", i, got, want)
		}
	}

	if r.Remaining() != 5 {
		t.Errorf("remaining: got %d, want 5", r.Remaining())
	}
	if _, err := r.ReadBits(9); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("read past end: got %v, want ErrStreamExhausted", err)
	}
}

func TestBitReaderWidths(t *testing.T) {
	var w bitWriter
	fields := []struct {
		v uint32
		n int
	}{
		{1, 1}, {0x5, 3}, {0xABCDE, 20}, {0xFFFFFF, 24}, {0, 7}, {0x123456, 24}, {0x3FF, 10},
	}
	for _, f := range fields {
		w.write(f.v, f.n)
	}

	r := NewBitReader(w.bytes())
	for i, f := range fields {
		got, err := r.ReadBits(f.n)
		if err != nil {
			t.Fatalf("field %d: %v", i, err)
		}
		if got != f.v {
			t.Errorf("field %d: got 0x%X, want 0x%X", i, got, f.v)
		}
	}
}

func TestBitReaderRejectsWidth(t *testing.T) {
	r := NewBitReader([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	for _, n := range []int{0, -1, 25, 32} {
		if _, err := r.ReadBits(n); !errors.Is(err, ErrTokenWidth) {
			t.Errorf("ReadBits(%d): got %v, want ErrTokenWidth", n, err)
		}
	}
}

func TestBitReaderEmpty(t *testing.T) {
	r := NewBitReader(nil)
	if _, err := r.ReadBits(1); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("got %v, want ErrStreamExhausted", err)
	}
}

func TestDecompressLiteral(t *testing.T) {
	out, err := Decompress(tokens(9, 0x41, tokenEnd), 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0x41}) {
		t.Errorf("got %x, want 41", out)
	}
}

func TestDecompressBackReference(t *testing.T) {
	out, err := Decompress(tokens(9, 'A', tokenFirstRef, tokenEnd), 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "AAA" {
		t.Errorf("got %q, want %q", out, "AAA")
	}
}

func TestDecompressStopsAtSize(t *testing.T) {
	// no end token: the loop stops once size bytes exist
	out, err := Decompress(tokens(9, 'a', 'b', 'c'), 2)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "ab" {
		t.Errorf("got %q, want %q", out, "ab")
	}
}

func TestDecompressRepeatingPattern(t *testing.T) {
	// dict[0]=0 dict[1]=1 dict[2]=2: ref 0 copies dict[1]-dict[0]+1 = 2 bytes
	// dict[3]=4: ref 2 copies dict[3]-dict[2]+1 = 3 bytes from offset 2,
	// overlapping its own output
	stream := tokens(9, 'a', 'b', tokenFirstRef, tokenFirstRef+2, tokenEnd)
	out, err := Decompress(stream, 9)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "abababa" {
		t.Errorf("got %q, want %q", out, "abababa")
	}
}

func TestDecompressWidenAndReset(t *testing.T) {
	var w bitWriter
	w.write('x', 9)
	w.write(tokenWiden, 9)
	w.write('y', 10)
	w.write(tokenFirstRef, 10) // dict[0]=0 dict[1]=1: copies "xy"
	w.write(tokenReset, 10)
	w.write('z', 9)
	w.write(tokenEnd, 9)

	out, err := Decompress(w.bytes(), 16)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "xyxyz" {
		t.Errorf("got %q, want %q", out, "xyxyz")
	}
}

func TestDecompressResetKeepsStaleEntries(t *testing.T) {
	// After a reset the cursor rewinds, but dictionary slots past it still
	// hold old offsets. A reference to the freshly recorded entry reads its
	// run length from the stale neighbour.
	var w bitWriter
	w.write('a', 9) // dict[0]=0
	w.write('b', 9) // dict[1]=1
	w.write('c', 9) // dict[2]=2
	w.write(tokenReset, 9)
	w.write(tokenFirstRef, 9) // dict[0]=3, source=3, dict[1]=1 -> count -1
	out, err := Decompress(w.bytes(), 8)
	if !errors.Is(err, ErrBadReference) {
		t.Fatalf("got %q, %v; want ErrBadReference", out, err)
	}
}

func TestDecompressErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		size   int
		want   error
	}{
		{"empty", nil, 1, ErrStreamExhausted},
		{"truncated", tokens(9, 'a'), 4, ErrStreamExhausted},
		{"reference ahead", tokens(9, tokenFirstRef+1), 4, ErrBadReference},
		{"reference past cursor", tokens(9, 'a', tokenFirstRef+5), 4, ErrBadReference},
		{"negative size", nil, -1, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.stream, tt.size)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecompressWidthOverflow(t *testing.T) {
	var w bitWriter
	width := MinTokenWidth
	for width <= MaxTokenWidth {
		w.write(tokenWiden, width)
		width++
	}

	_, err := Decompress(w.bytes(), 1)
	if !errors.Is(err, ErrTokenWidth) {
		t.Errorf("got %v, want ErrTokenWidth", err)
	}
}

func TestDecompressDictionaryFull(t *testing.T) {
	var w bitWriter
	for i := 0; i <= DictionarySize; i++ {
		w.write(uint32(i&0xFF), 9)
	}

	_, err := Decompress(w.bytes(), DictionarySize+1)
	if !errors.Is(err, ErrDictionaryFull) {
		t.Errorf("got %v, want ErrDictionaryFull", err)
	}
}

func TestDecompressReferenceAtDictionaryTop(t *testing.T) {
	var w bitWriter
	for i := 0; i < DictionarySize-1; i++ {
		w.write('t', 9)
	}
	for width := MinTokenWidth; width < 16; width++ {
		w.write(tokenWiden, width)
	}
	// records the last slot, then refers to it; its run end is past capacity
	w.write(tokenFirstRef+DictionarySize-1, 16)

	_, err := Decompress(w.bytes(), 2*DictionarySize)
	if !errors.Is(err, ErrBadReference) {
		t.Errorf("got %v, want ErrBadReference", err)
	}
}

func TestDecompressDictionaryResetAvoidsOverflow(t *testing.T) {
	var w bitWriter
	for i := 0; i < DictionarySize; i++ {
		w.write('q', 9)
	}
	w.write(tokenReset, 9)
	w.write('r', 9)

	out, err := Decompress(w.bytes(), DictionarySize+1)
	if err != nil {
		t.Fatal(err)
	}
	if out[len(out)-1] != 'r' {
		t.Errorf("last byte: got %q, want 'r'", out[len(out)-1])
	}
}

func TestUnwrapPassThrough(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("ac"),
		[]byte("acp"),
		[]byte("acp!1234"),
		[]byte("ACP\x00\x00\x00\x00\x01A"),
		[]byte("plain entry data"),
	}

	for _, in := range inputs {
		out, err := Unwrap(in)
		if err != nil {
			t.Errorf("Unwrap(%q): %v", in, err)
			continue
		}
		if !bytes.Equal(out, in) {
			t.Errorf("Unwrap(%q) = %q", in, out)
		}
	}
}

func TestUnwrap(t *testing.T) {
	payload := wrap(3, tokens(9, 'A', tokenFirstRef, tokenEnd))
	if !IsWrapped(payload) {
		t.Fatal("IsWrapped = false")
	}

	size, err := DecodedSize(payload)
	if err != nil || size != 3 {
		t.Fatalf("DecodedSize = %d, %v", size, err)
	}

	out, err := Unwrap(payload)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "AAA" {
		t.Errorf("got %q, want %q", out, "AAA")
	}
}

func TestUnwrapHugeDeclaredSize(t *testing.T) {
	payload := wrap(0x7FFFFFFF, tokens(9, 'A', tokenEnd))

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	out, err := Unwrap(payload)
	runtime.ReadMemStats(&after)

	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "A" {
		t.Errorf("got %q, want %q", out, "A")
	}
	if n := after.TotalAlloc - before.TotalAlloc; n > 8<<20 {
		t.Errorf("allocated %d bytes for a 1-byte result", n)
	}
}

func TestUnwrapErrors(t *testing.T) {
	if _, err := Unwrap([]byte("acp\x00\x00\x00")); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("short header: got %v", err)
	}
	if _, err := Unwrap(wrap(0x80000000, nil)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("huge size: got %v", err)
	}
	if _, err := Unwrap(wrap(8, tokens(9, 'a'))); !errors.Is(err, ErrStreamExhausted) {
		t.Errorf("truncated stream: got %v", err)
	}
}
