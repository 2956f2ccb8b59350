package loader

import (
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Source materializes file contents. Paths are whatever the caller's
// directory walk produced; a Source does not interpret them.
type Source interface {
	ReadFile(path string) ([]byte, error)
}

// OSSource reads from the local file system.
type OSSource struct{}

func (OSSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FSSource reads from an fs.FS such as an extracted archive.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(s.FS, path)
}

// IOError is a failure reported by a Source.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Encoding selects how raw bytes become text.
type Encoding string

var encodings = struct {
	Auto        Encoding
	UTF8        Encoding
	Windows1252 Encoding
}{
	Auto:        "auto",
	UTF8:        "utf-8",
	Windows1252: "windows-1252",
}

var (
	EncodingAuto        = encodings.Auto
	EncodingUTF8        = encodings.UTF8
	EncodingWindows1252 = encodings.Windows1252
)

// ParseEncoding accepts the names used in configuration files.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "auto":
		return encodings.Auto, nil
	case "utf-8", "utf8":
		return encodings.UTF8, nil
	case "windows-1252", "cp1252", "ansi":
		return encodings.Windows1252, nil
	default:
		return "", fmt.Errorf("unknown encoding %q", s)
	}
}

// Decode converts data to UTF-8 text. A byte order mark always wins and is
// stripped; under Auto, input without one that is not valid UTF-8 is read
// as Windows-1252.
func Decode(data []byte, enc Encoding) (string, error) {
	var t transform.Transformer
	switch enc {
	case encodings.Windows1252:
		if hasBOM(data) {
			t = unicode.BOMOverride(charmap.Windows1252.NewDecoder())
		} else {
			t = charmap.Windows1252.NewDecoder()
		}
	case encodings.UTF8:
		t = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	default:
		if hasBOM(data) || utf8.Valid(data) {
			t = unicode.BOMOverride(unicode.UTF8.NewDecoder())
		} else {
			t = charmap.Windows1252.NewDecoder()
		}
	}
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", enc, err)
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true
	}
	return false
}
