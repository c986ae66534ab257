package csvimport

// reader.go buffers an uploaded file and decodes it to text.
//
// The whole file is read before parsing starts, so a consumer never sees a
// partial row. Decoding handles the usual spreadsheet-export artifacts:
//
//   - UTF-8 BOM (0xEF 0xBB 0xBF) added by Windows programs is dropped
//   - invalid UTF-8 bytes are replaced with U+FFFD, one per byte
//   - single-byte encodings are decoded only when explicitly configured

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultMaxBytes is the default upload size limit (10MB).
const DefaultMaxBytes int64 = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when an upload exceeds ReadOptions.MaxBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedEncoding is returned for an unknown ReadOptions.Encoding.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadOptions controls how uploaded bytes become text.
type ReadOptions struct {
	// MaxBytes caps the file size; <= 0 means DefaultMaxBytes.
	MaxBytes int64

	// Encoding names the source charset: "utf-8" (default), "windows-1252"
	// or "iso-8859-1".
	Encoding string

	// Strict rejects lines that end inside a quoted field.
	Strict bool
}

func (o ReadOptions) maxBytes() int64 {
	if o.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return o.MaxBytes
}

// LookupEncoding resolves an encoding name. A nil encoding means UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// readAll reads r fully, failing with ErrFileTooLarge past the limit.
func readAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// ReadText reads the whole of r and decodes it to a string.
func ReadText(r io.Reader, opts ReadOptions) (string, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return "", err
	}

	data, err := readAll(r, opts.maxBytes())
	if err != nil {
		return "", err
	}

	if enc != nil {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("encoding error: %w", err)
		}
		return string(decoded), nil
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return string(sanitizeUTF8(data)), nil
}

// sanitizeUTF8 replaces each invalid byte with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune(utf8.RuneError)
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
