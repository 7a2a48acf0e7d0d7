package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Charset names reported by Decode.
const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO88599    = "ISO-8859-9"
)

// Decode returns a UTF-8 view of r and the charset it was read as. A UTF-8
// BOM is dropped. UTF-16 needs a BOM; other input is taken as UTF-8 when
// valid, then as the single-byte charset chardet reports, then as
// Windows-1252.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("sniffing encoding: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, CharsetUTF8, nil
	case bytes.HasPrefix(head, bomUTF16LE):
		return decodeWith(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), CharsetUTF16LE, nil
	case bytes.HasPrefix(head, bomUTF16BE):
		return decodeWith(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), CharsetUTF16BE, nil
	case validUTF8(head, len(head) == sniffSize):
		return br, CharsetUTF8, nil
	}

	// head is not valid UTF-8 here, so a UTF-8 guess from chardet is ignored.
	switch detectCharset(head) {
	case CharsetISO88599:
		return decodeWith(br, charmap.ISO8859_9), CharsetISO88599, nil
	}

	return decodeWith(br, charmap.Windows1252), CharsetWindows1252, nil
}

func decodeWith(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}

// validUTF8 reports whether b is UTF-8. When b was cut at the sniff window
// a trailing incomplete rune is tolerated.
func validUTF8(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}

	if !truncated {
		return false
	}

	for cut := 1; cut < utf8.UTFMax && cut < len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) {
			return !utf8.FullRune(b[len(b)-cut:])
		}
	}

	return false
}

func detectCharset(b []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil {
		return ""
	}

	switch result.Charset {
	case "UTF-8":
		return CharsetUTF8
	case "ISO-8859-1", "windows-1252":
		return CharsetWindows1252
	case "ISO-8859-9":
		return CharsetISO88599
	}

	return ""
}
