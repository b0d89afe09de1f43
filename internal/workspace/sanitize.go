package workspace

import "strings"

// illegalPathChars are the characters no path segment may contain on the
// platforms clinicians actually use.
const illegalPathChars = `<>:"/\|?*`

// Sanitize maps a display name to a safe path segment. Every illegal
// character becomes '_' and surrounding whitespace is trimmed.
//
// Distinct names can sanitize to the same segment ("a/b" and "a?b");
// callers writing by sanitized key overwrite each other in that case.
func Sanitize(name string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalPathChars, r) {
			return '_'
		}
		return r
	}, name))
}

// ValidSegment reports whether a sanitized name can be used as a folder
// name below the patients folder.
func ValidSegment(segment string) bool {
	return segment != "" && segment != "." && segment != ".."
}
