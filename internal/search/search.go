// Package search ranks the processes of already-loaded sessions against a
// text term and splits process text into highlight fragments.
//
// Everything here is pure: no I/O, no shared state. The term is always
// matched literally and case-insensitively.
package search

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/HendryAvila/clinimap/internal/records"
)

// Result is one matching process.
type Result struct {
	Process records.Process
	// Session points into the slice given to Search.
	Session   *records.Session
	Relevance int
}

// Search returns every process whose text contains term, ranked by the
// number of non-overlapping occurrences. Ties keep session/process order.
// A blank term matches nothing.
func Search(term string, sessions []records.Session) []Result {
	if strings.TrimSpace(term) == "" {
		return nil
	}

	var results []Result
	for i := range sessions {
		sess := &sessions[i]
		for _, p := range sess.Processes {
			if n := Count(p.Text, term); n > 0 {
				results = append(results, Result{Process: p, Session: sess, Relevance: n})
			}
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return b.Relevance - a.Relevance
	})
	return results
}

// Count returns the number of non-overlapping case-insensitive
// occurrences of term in text.
func Count(text, term string) int {
	if term == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(text); {
		if size, ok := matchAt(text[i:], term); ok {
			n++
			i += size
			continue
		}
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	return n
}

// Fragment is a piece of highlighted text.
type Fragment struct {
	Match bool
	Text  string
}

// Highlight splits text around the case-insensitive occurrences of term.
// Concatenating the fragments always gives back text exactly. A blank term
// yields text as a single unmatched fragment.
func Highlight(text, term string) []Fragment {
	if text == "" {
		return nil
	}
	if strings.TrimSpace(term) == "" {
		return []Fragment{{Text: text}}
	}

	var frags []Fragment
	start := 0
	for i := 0; i < len(text); {
		if size, ok := matchAt(text[i:], term); ok {
			if i > start {
				frags = append(frags, Fragment{Text: text[start:i]})
			}
			frags = append(frags, Fragment{Match: true, Text: text[i : i+size]})
			i += size
			start = i
			continue
		}
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	if start < len(text) {
		frags = append(frags, Fragment{Text: text[start:]})
	}
	return frags
}

// matchAt reports whether s starts with term under Unicode case folding,
// and how many bytes of s the match spans.
func matchAt(s, term string) (int, bool) {
	i := 0
	for _, tr := range term {
		if i >= len(s) {
			return 0, false
		}
		sr, w := utf8.DecodeRuneInString(s[i:])
		if !equalFold(sr, tr) {
			return 0, false
		}
		i += w
	}
	return i, true
}

func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
