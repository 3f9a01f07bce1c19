package search

import (
	"regexp"
	"regexp/syntax"
	"unicode/utf8"
)

// matcher yields the matches of a pattern one at a time, left to right, with
// the same results as FindAllStringIndex.
//
// Matching resumes on a suffix of the text, which loses the character before
// the resume point. Patterns that look at it (^ in multi-line mode, \A, \b, \B)
// are therefore scanned in a single pass up front.
type matcher struct {
	re      *regexp.Regexp
	text    string
	pos     int
	prevEnd int
	done    bool

	upfront [][]int
	eager   bool
}

func newMatcher(re *regexp.Regexp, text string) *matcher {
	m := &matcher{re: re, text: text, prevEnd: -1}
	if looksBehind(re) {
		m.eager = true
		m.upfront = re.FindAllStringIndex(text, -1)
	}
	return m
}

// next returns the start and end offsets of the next match.
func (m *matcher) next() (int, int, bool) {
	if m.eager {
		if len(m.upfront) == 0 {
			return 0, 0, false
		}
		loc := m.upfront[0]
		m.upfront = m.upfront[1:]
		return loc[0], loc[1], true
	}

	for !m.done && m.pos <= len(m.text) {
		loc := m.re.FindStringIndex(m.text[m.pos:])
		if loc == nil {
			m.done = true
			break
		}
		start, end := m.pos+loc[0], m.pos+loc[1]
		if start == end && start == m.prevEnd {
			// empty match right after the previous match
			m.step(start)
			continue
		}
		m.prevEnd = end
		if end > start {
			m.pos = end
		} else {
			m.step(end)
		}
		return start, end, true
	}
	return 0, 0, false
}

// step moves the resume point one character past at.
func (m *matcher) step(at int) {
	if at >= len(m.text) {
		m.done = true
		return
	}
	_, width := utf8.DecodeRuneInString(m.text[at:])
	m.pos = at + width
}

func looksBehind(re *regexp.Regexp) bool {
	tree, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil {
		return true
	}
	return hasLookBehind(tree)
}

func hasLookBehind(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpBeginLine, syntax.OpBeginText, syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return true
	}
	for _, sub := range re.Sub {
		if hasLookBehind(sub) {
			return true
		}
	}
	return false
}
