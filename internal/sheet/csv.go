package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/tabwork/tabwork/internal/engine"
)

// readCSV decodes a delimited text file. The parser tolerates ragged
// row widths and stray quotes; schema repair happens in the table
// builder.
func (c *Codec) readCSV(path string, comma rune) (*engine.Table, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, &engine.ReadError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(decodeReader(f))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &engine.ReadError{Path: path, Err: err}
	}
	head, rows, err := header(path, records)
	if err != nil {
		return nil, err
	}
	t, err := engine.FromStringRows(head, rows)
	if err != nil {
		return nil, err
	}
	return t.WithSource(path), nil
}

// writeCSV encodes the table as delimited text, cells in their
// canonical form.
func (c *Codec) writeCSV(t *engine.Table, path string, comma rune) error {
	return c.atomicWrite(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = comma

		if err := cw.Write(t.ColumnNames()); err != nil {
			return err
		}
		record := make([]string, t.NumCols())
		for i := 0; i < t.NumRows(); i++ {
			for j, cell := range t.Row(i) {
				record[j] = cell.String()
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// decodeReader wraps a raw file so the CSV parser sees clean UTF-8: a
// leading byte-order mark is dropped and invalid sequences are replaced
// on the fly, without loading the file into memory.
func decodeReader(r io.Reader) io.Reader {
	return newUTF8Sanitizer(newBOMSkipper(r))
}

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// bomSkipper drops the UTF-8 byte-order mark Windows tools like to put
// at the start of CSV files.
type bomSkipper struct {
	br      *bufio.Reader
	checked bool
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{br: bufio.NewReader(r)}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if lead, err := b.br.Peek(len(bomUTF8)); err == nil && bytes.Equal(lead, bomUTF8) {
			b.br.Discard(len(bomUTF8))
		}
	}
	return b.br.Read(p)
}

const sanitizerChunk = 4096

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' as they stream
// past. A multi-byte sequence cut off at a chunk boundary is held back
// and rejoined with the next chunk, so only genuinely invalid bytes are
// replaced.
type utf8Sanitizer struct {
	r    io.Reader
	buf  []byte // read scratch
	out  []byte // sanitized bytes not yet handed to the caller
	off  int
	hold []byte // possible partial sequence awaiting the next chunk
	err  error  // deferred until out drains
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, buf: make([]byte, sanitizerChunk)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for s.off == len(s.out) {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out[s.off:])
	s.off += n
	return n, nil
}

// fill reads the next chunk and appends its sanitized form to out. At
// end of input any held partial sequence is flushed as replacements.
func (s *utf8Sanitizer) fill() {
	s.out = s.out[:0]
	s.off = 0

	n, err := s.r.Read(s.buf)
	if err != nil {
		s.err = err
	}
	data := append(s.hold, s.buf[:n]...)
	s.hold = nil
	atEOF := err != nil

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && incompleteSequence(data) {
				s.hold = append([]byte(nil), data...)
				return
			}
			s.out = append(s.out, '?')
			data = data[1:]
			continue
		}
		s.out = append(s.out, data[:size]...)
		data = data[size:]
	}
}

// incompleteSequence reports whether data is the prefix of a longer
// multi-byte sequence rather than plain garbage.
func incompleteSequence(data []byte) bool {
	if len(data) == 0 || len(data) >= utf8.UTFMax {
		return false
	}
	var want int
	switch b := data[0]; {
	case b < 0xC0:
		return false
	case b < 0xE0:
		want = 2
	case b < 0xF0:
		want = 3
	default:
		want = 4
	}
	if len(data) >= want {
		return false
	}
	for _, b := range data[1:] {
		if b&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
