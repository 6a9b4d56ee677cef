package javaparse

import "bytes"

// placeholderType is the class name spliced after a dangling `new ` so the
// surrounding call still parses as a call.
const (
	placeholderType = "$Completion"
	placeholder     = placeholderType + "()"
)

// splice records an insertion into the parsed text. A zero splice maps
// every offset to itself.
type splice struct {
	at     int
	length int
}

// spliceCompletion inserts a placeholder creation at cursor when the cursor
// directly follows `new ` and no type name has been typed yet.
func spliceCompletion(text []byte, cursor int) ([]byte, splice) {
	if cursor < len("new ") || cursor > len(text) {
		return text, splice{}
	}
	if !bytes.Equal(text[cursor-len("new "):cursor], []byte("new ")) {
		return text, splice{}
	}
	rest := bytes.TrimLeft(text[cursor:], " \t\r\n")
	if len(rest) > 0 && isIdentifierStart(rest[0]) {
		return text, splice{}
	}
	out := make([]byte, 0, len(text)+len(placeholder))
	out = append(out, text[:cursor]...)
	out = append(out, placeholder...)
	out = append(out, text[cursor:]...)
	return out, splice{at: cursor, length: len(placeholder)}
}

// original maps an offset in the spliced text back to the source text.
func (s splice) original(offset int) int {
	switch {
	case s.length == 0 || offset <= s.at:
		return offset
	case offset < s.at+s.length:
		return s.at
	}
	return offset - s.length
}

func isIdentifierStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
