// Package signature works with JDT-style type signatures.
//
// A signature is a compact string encoding of a Java type:
//
//	Ljava.util.List<Ljava.lang.String;>;  resolved class type
//	QString;                              unresolved class type
//	TT;                                   type variable
//	[I                                    array of int
//	+Ljava.lang.Number;                   ? extends Number
//	-Ljava.lang.Number;                   ? super Number
//	*                                     ?
//
// Primitive types use a single letter (Z B C D F I J S V).
package signature

import (
	"strings"
)

const (
	Resolved     = 'L'
	Unresolved   = 'Q'
	TypeVariable = 'T'
	Array        = '['
	Extends      = '+'
	Super        = '-'
	Star         = '*'
	GenericStart = '<'
	GenericEnd   = '>'
	NameEnd      = ';'
)

var primitives = map[string]byte{
	"boolean": 'Z',
	"byte":    'B',
	"char":    'C',
	"double":  'D',
	"float":   'F',
	"int":     'I',
	"long":    'J',
	"short":   'S',
	"void":    'V',
}

var primitiveNames = func() map[byte]string {
	m := make(map[byte]string, len(primitives))
	for name, c := range primitives {
		m[c] = name
	}
	return m
}()

// IsPrimitiveName reports whether name is a Java primitive type keyword.
func IsPrimitiveName(name string) bool {
	_, ok := primitives[name]
	return ok
}

// Erasure strips every generic section from sig. It accepts both signatures
// and dotted source names ("java.util.List<java.lang.String>").
func Erasure(sig string) string {
	if strings.IndexByte(sig, GenericStart) < 0 {
		return sig
	}
	var b strings.Builder
	depth := 0
	for i := 0; i < len(sig); i++ {
		switch c := sig[i]; c {
		case GenericStart:
			depth++
		case GenericEnd:
			depth--
		default:
			if depth == 0 {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// TypeArguments returns the type argument signatures of the last generic
// section of sig, or nil when sig is not parameterized.
func TypeArguments(sig string) []string {
	start, end := lastGenericSection(sig)
	if start < 0 {
		return nil
	}
	var args []string
	for i := start + 1; i < end; {
		next := scan(sig, i)
		if next <= i {
			break
		}
		args = append(args, sig[i:next])
		i = next
	}
	return args
}

// lastGenericSection returns the bounds of the outermost '<' … '>' pair that
// appears last at depth zero.
func lastGenericSection(sig string) (int, int) {
	start, end := -1, -1
	depth := 0
	for i := 0; i < len(sig); i++ {
		switch sig[i] {
		case GenericStart:
			if depth == 0 {
				start = i
			}
			depth++
		case GenericEnd:
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if start < 0 || end < start {
		return -1, -1
	}
	return start, end
}

// scan returns the index just past the type signature starting at sig[i].
func scan(sig string, i int) int {
	if i >= len(sig) {
		return i
	}
	switch c := sig[i]; c {
	case Array, Extends, Super:
		return scan(sig, i+1)
	case Star:
		return i + 1
	case Resolved, Unresolved, TypeVariable:
		depth := 0
		for j := i + 1; j < len(sig); j++ {
			switch sig[j] {
			case GenericStart:
				depth++
			case GenericEnd:
				depth--
			case NameEnd:
				if depth == 0 {
					return j + 1
				}
			}
		}
		return len(sig)
	default:
		return i + 1
	}
}

// Qualifier returns the package (or outer type) qualifier of a class type
// signature. Type variables, unresolved simple names, primitives and
// wildcards have an empty qualifier.
func Qualifier(sig string) string {
	erased := Erasure(sig)
	start := 0
	for start < len(erased) && erased[start] == Array {
		start++
	}
	if start < len(erased) && (erased[start] == Resolved || erased[start] == Unresolved) {
		start++
	}
	lastDot := strings.LastIndexByte(erased, '.')
	if lastDot < start {
		return ""
	}
	return erased[start:lastDot]
}

// ArrayCount returns the number of array dimensions of sig.
func ArrayCount(sig string) int {
	n := 0
	for n < len(sig) && sig[n] == Array {
		n++
	}
	return n
}

// ElementType returns sig with all array dimensions removed.
func ElementType(sig string) string {
	return sig[ArrayCount(sig):]
}

// TypeVariableSignature builds the signature of a type variable.
func TypeVariableSignature(name string) string {
	return string(TypeVariable) + name + string(NameEnd)
}

// IsTypeVariable reports whether sig denotes a bare type variable.
func IsTypeVariable(sig string) bool {
	return len(sig) > 0 && sig[0] == TypeVariable
}

// CreateTypeSignature encodes a Java source type name such as
// "java.util.Map<String, List<T>>[]". When resolved is true class names
// are encoded as resolved ('L'), otherwise as unresolved ('Q').
func CreateTypeSignature(name string, resolved bool) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasSuffix(name, "...") {
		return string(Array) + CreateTypeSignature(strings.TrimSuffix(name, "..."), resolved)
	}
	if strings.HasSuffix(name, "]") {
		if open := strings.LastIndexByte(name, '['); open > 0 {
			return string(Array) + CreateTypeSignature(name[:open], resolved)
		}
	}
	if name == "?" {
		return string(Star)
	}
	if rest, ok := strings.CutPrefix(name, "?"); ok {
		rest = strings.TrimSpace(rest)
		if bound, ok := strings.CutPrefix(rest, "extends"); ok {
			return string(Extends) + CreateTypeSignature(bound, resolved)
		}
		if bound, ok := strings.CutPrefix(rest, "super"); ok {
			return string(Super) + CreateTypeSignature(bound, resolved)
		}
		return string(Star)
	}
	if c, ok := primitives[name]; ok {
		return string(c)
	}

	base, args := splitGeneric(name)
	kind := byte(Unresolved)
	if resolved {
		kind = Resolved
	}
	var b strings.Builder
	b.WriteByte(kind)
	b.WriteString(base)
	if len(args) > 0 {
		b.WriteByte(GenericStart)
		for _, a := range args {
			b.WriteString(CreateTypeSignature(a, resolved))
		}
		b.WriteByte(GenericEnd)
	}
	b.WriteByte(NameEnd)
	return b.String()
}

// splitGeneric splits "Map<K, List<V>>" into "Map" and ["K", "List<V>"].
func splitGeneric(name string) (string, []string) {
	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		return name, nil
	}
	return strings.TrimSpace(name[:open]), SplitTopLevel(name[open+1 : len(name)-1])
}

// SplitTopLevel splits s at commas that are not nested in angle brackets.
func SplitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// ToString renders sig as Java source text, e.g.
// "Ljava.util.List<Ljava.lang.String;>;" -> "java.util.List<java.lang.String>".
func ToString(sig string) string {
	s, _ := render(sig, 0)
	return s
}

func render(sig string, i int) (string, int) {
	if i >= len(sig) {
		return "", i
	}
	switch c := sig[i]; c {
	case Array:
		s, next := render(sig, i+1)
		return s + "[]", next
	case Star:
		return "?", i + 1
	case Extends:
		s, next := render(sig, i+1)
		return "? extends " + s, next
	case Super:
		s, next := render(sig, i+1)
		return "? super " + s, next
	case Resolved, Unresolved, TypeVariable:
		var b strings.Builder
		j := i + 1
		for j < len(sig) && sig[j] != NameEnd {
			if sig[j] == GenericStart {
				b.WriteByte('<')
				j++
				first := true
				for j < len(sig) && sig[j] != GenericEnd {
					arg, next := render(sig, j)
					if next <= j {
						j = len(sig)
						break
					}
					if !first {
						b.WriteByte(',')
					}
					b.WriteString(arg)
					first = false
					j = next
				}
				b.WriteByte('>')
				j++
				continue
			}
			b.WriteByte(sig[j])
			j++
		}
		return b.String(), j + 1
	default:
		if name, ok := primitiveNames[c]; ok {
			return name, i + 1
		}
		return string(c), i + 1
	}
}

// QualifiedName returns the erased dotted name of sig ("java.util.List").
func QualifiedName(sig string) string {
	return Erasure(ToString(sig))
}

// SimpleName returns the last segment of the erased name of sig.
func SimpleName(sig string) string {
	name := QualifiedName(sig)
	name = strings.TrimRight(name, "[]")
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		return name[dot+1:]
	}
	return name
}

// Substitute replaces type variables in sig using bindings (type variable
// name -> signature). Unbound variables are kept.
func Substitute(sig string, bindings map[string]string) string {
	if len(bindings) == 0 || !strings.ContainsRune(sig, TypeVariable) {
		return sig
	}
	var b strings.Builder
	for i := 0; i < len(sig); {
		if sig[i] == TypeVariable && startsType(sig, i) {
			end := strings.IndexByte(sig[i:], NameEnd)
			if end > 0 {
				name := sig[i+1 : i+end]
				if bound, ok := bindings[name]; ok {
					b.WriteString(bound)
				} else {
					b.WriteString(sig[i : i+end+1])
				}
				i += end + 1
				continue
			}
		}
		if sig[i] == Resolved || sig[i] == Unresolved {
			if startsType(sig, i) {
				// copy the class name verbatim; only its arguments are substituted.
				j := i + 1
				for j < len(sig) && sig[j] != GenericStart && sig[j] != NameEnd {
					j++
				}
				b.WriteString(sig[i:j])
				i = j
				continue
			}
		}
		b.WriteByte(sig[i])
		i++
	}
	return b.String()
}

// startsType reports whether a type signature may begin at sig[i].
func startsType(sig string, i int) bool {
	if i == 0 {
		return true
	}
	switch sig[i-1] {
	case GenericStart, NameEnd, Array, Extends, Super:
		return true
	}
	return false
}
