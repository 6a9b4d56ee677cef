package signature

import "strings"

// IsAssignable reports whether a value typed by candidate can be used where
// target is expected.
//
// Erasures must match. A target without type arguments is open and accepts
// any candidate arity. Otherwise arities must match and every argument must
// either be textually equal, be a bare type variable on the candidate side,
// or meet a bare type variable on the target side (which makes the whole
// signature assignable). Upper-bound wildcards on the candidate side are
// compared by their bound.
func IsAssignable(candidate, target string) bool {
	if Erasure(candidate) != Erasure(target) {
		return false
	}

	candidateArgs := TypeArguments(candidate)
	targetArgs := TypeArguments(target)
	if len(targetArgs) > 0 && len(candidateArgs) != len(targetArgs) {
		return false
	}

	for i, targetArg := range targetArgs {
		candidateArg := candidateArgs[i]
		if targetArg == candidateArg {
			continue
		}
		bound := strings.TrimPrefix(candidateArg, string(Extends))
		if Qualifier(bound) == "" {
			continue
		}
		if Qualifier(targetArg) == "" {
			return true
		}
		if targetArg != bound {
			return false
		}
	}
	return true
}

// SameTypeArgumentCount reports whether two source-style names such as
// "Map<K,V>" declare the same number of comma separated type arguments in
// their first generic section.
func SameTypeArgumentCount(left, right string) bool {
	return len(firstSectionArgs(left)) == len(firstSectionArgs(right))
}

func firstSectionArgs(s string) []string {
	open := strings.IndexByte(s, GenericStart)
	if open < 0 {
		return nil
	}
	closing := strings.IndexByte(s[open:], GenericEnd)
	if closing < 0 {
		return nil
	}
	section := s[open+1 : open+closing]
	if section == "" {
		return []string{}
	}
	return strings.Split(section, ",")
}
