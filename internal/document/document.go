// Package document is an in-memory text buffer addressed by byte offsets.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrBadLocation is returned when a read falls outside the document.
var ErrBadLocation = errors.New("bad location")

type Document struct {
	text []byte
}

func New(text []byte) *Document {
	return &Document{text: text}
}

func FromString(s string) *Document {
	return New([]byte(s))
}

// Load reads a document from disk.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return New(b), nil
}

// Get returns length bytes starting at offset.
func (d *Document) Get(offset, length int) (string, error) {
	if offset < 0 || length < 0 || offset+length > len(d.text) {
		return "", fmt.Errorf("%w: offset=%d length=%d size=%d", ErrBadLocation, offset, length, len(d.text))
	}
	return string(d.text[offset : offset+length]), nil
}

func (d *Document) Len() int { return len(d.text) }

func (d *Document) Bytes() []byte { return d.text }

// ExtractMarker removes the first occurrence of marker from text and
// returns the remaining text with the marker's offset. The offset is -1
// when the marker does not occur.
func ExtractMarker(text, marker string) (string, int) {
	idx := strings.Index(text, marker)
	if idx < 0 || marker == "" {
		return text, -1
	}
	return text[:idx] + text[idx+len(marker):], idx
}
