package csvparse

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported in Meta.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
	EncodingWindows1251 = "windows-1251"
	EncodingLatin1      = "iso-8859-1"
)

var legacyEncodings = map[string]encoding.Encoding{
	EncodingWindows1252: charmap.Windows1252,
	"cp1252":            charmap.Windows1252,
	EncodingWindows1251: charmap.Windows1251,
	"cp1251":            charmap.Windows1251,
	EncodingLatin1:      charmap.ISO8859_1,
	"latin1":            charmap.ISO8859_1,
}

// decoded is the UTF-8 text of a file plus how it was obtained.
type decoded struct {
	text     []byte
	encoding string
	// guessed is set when invalid UTF-8 was decoded as windows-1252.
	guessed bool
}

// decode converts data to UTF-8. A byte order mark always wins; otherwise the
// requested charset is used, and invalid UTF-8 without a request falls back
// to windows-1252.
func decode(data []byte, requested string) (decoded, error) {
	if name := bomEncoding(data); name != "" {
		text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return decoded{}, fmt.Errorf("decode %s: %w", name, err)
		}

		return decoded{text: text, encoding: name}, nil
	}

	requested = strings.ToLower(strings.TrimSpace(requested))

	switch requested {
	case "", EncodingUTF8, "utf8":
		if utf8.Valid(data) {
			return decoded{text: data, encoding: EncodingUTF8}, nil
		}

		if requested != "" {
			return decoded{}, fmt.Errorf("file is not valid %s", EncodingUTF8)
		}

		text, err := decodeWith(charmap.Windows1252, data)
		if err != nil {
			return decoded{}, err
		}

		return decoded{text: text, encoding: EncodingWindows1252, guessed: true}, nil
	}

	enc, ok := legacyEncodings[requested]
	if !ok {
		return decoded{}, fmt.Errorf("unsupported encoding %q", requested)
	}

	text, err := decodeWith(enc, data)
	if err != nil {
		return decoded{}, err
	}

	return decoded{text: text, encoding: canonicalEncoding(enc)}, nil
}

func decodeWith(enc encoding.Encoding, data []byte) ([]byte, error) {
	text, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return text, nil
}

func bomEncoding(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	}

	return ""
}

func canonicalEncoding(enc encoding.Encoding) string {
	switch enc {
	case charmap.Windows1251:
		return EncodingWindows1251
	case charmap.ISO8859_1:
		return EncodingLatin1
	default:
		return EncodingWindows1252
	}
}
