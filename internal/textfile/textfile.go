// Package textfile reads text sources whose encoding is signalled by a leading byte-order mark.
package textfile

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
)

// Encoding is the encoding detected from a buffer's leading bytes.
type Encoding string

const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-bom"
	UTF16BigEnd Encoding = "utf-16be"
	UTF16LitEnd Encoding = "utf-16le"
)

// DetectEncoding inspects the leading bytes of b.
//
// The UTF-8 marker is recognised on its first two bytes (EF BB); three bytes are skipped
// when decoding.
func DetectEncoding(b []byte) Encoding {
	if len(b) < 2 {
		return UTF8
	}
	switch {
	case b[0] == 0xFE && b[1] == 0xFF:
		return UTF16BigEnd
	case b[0] == 0xFF && b[1] == 0xFE:
		return UTF16LitEnd
	case b[0] == 0xEF && b[1] == 0xBB:
		return UTF8BOM
	default:
		return UTF8
	}
}

// Decode converts b to a string, stripping any byte-order mark.
//
// A dangling odd byte at the end of UTF-16 input is dropped.
func Decode(b []byte) string {
	switch DetectEncoding(b) {
	case UTF16BigEnd:
		return decodeUTF16(b[2:], unicode.BigEndian)
	case UTF16LitEnd:
		return decodeUTF16(b[2:], unicode.LittleEndian)
	case UTF8BOM:
		if len(b) < 3 {
			return ""
		}
		return string(b[3:])
	default:
		return string(b)
	}
}

func decodeUTF16(b []byte, order unicode.Endianness) string {
	b = b[:len(b)&^1]
	// Unpaired surrogates decode to U+FFFD; even-length input never errors.
	out, _ := unicode.UTF16(order, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	return string(out)
}

// ReadFile reads path and decodes it with Decode.
func ReadFile(path string) (string, error) {
	// #nosec G304 -- template and theme paths are resolved by the renderer.
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(b), nil
}
