// Package optset edits compositor argument lists as an ordered mapping from
// flag name to values, serialized back to a flat token string only at the
// launch boundary.
package optset

import "strings"

type (
	entry struct {
		flag   string // empty for positional tokens
		values []string
	}

	// Set is an ordered sequence of (flag, values) pairs. A flag occurs at
	// most once; edits preserve the position of existing flags.
	Set struct {
		entries []entry
	}
)

// Parse tokenizes a flat argument string. Tokens starting with a dash open a
// new flag; following tokens up to the next dash token are its values.
// Tokens appearing before any flag are kept as positionals.
func Parse(s string) *Set {
	set := &Set{}
	cur := -1
	for _, tok := range strings.Fields(s) {
		if isFlag(tok) {
			set.entries = append(set.entries, entry{flag: tok})
			cur = len(set.entries) - 1
			continue
		}

		if cur < 0 {
			set.entries = append(set.entries, entry{values: []string{tok}})
			continue
		}
		set.entries[cur].values = append(set.entries[cur].values, tok)
	}

	return set
}

// A dash followed by a digit is a negative number, kept as a value.
func isFlag(tok string) bool {
	return len(tok) > 1 && tok[0] == '-' && (tok[1] < '0' || tok[1] > '9')
}

// Has reports whether flag is present in the set.
func (s *Set) Has(flag string) bool {
	return s.index(flag) >= 0
}

// Value returns the first value of flag, if the flag is present and has one.
func (s *Set) Value(flag string) (string, bool) {
	i := s.index(flag)
	if i < 0 || len(s.entries[i].values) == 0 {
		return "", false
	}

	return s.entries[i].values[0], true
}

// Add appends flag with the given values if it is not already present.
// Adding an existing flag is a no-op.
func (s *Set) Add(flag string, values ...string) {
	if s.Has(flag) {
		return
	}
	s.entries = append(s.entries, entry{flag: flag, values: values})
}

// Put sets flag to the given values, replacing the values of an existing
// occurrence in place, or appending the flag if absent.
func (s *Set) Put(flag string, values ...string) {
	if i := s.index(flag); i >= 0 {
		s.entries[i].values = values
		return
	}
	s.entries = append(s.entries, entry{flag: flag, values: values})
}

// Tokens returns the set as an argument vector.
func (s *Set) Tokens() []string {
	var toks []string
	for _, e := range s.entries {
		if e.flag != "" {
			toks = append(toks, e.flag)
		}
		toks = append(toks, e.values...)
	}

	return toks
}

// String serializes the set back to a flat argument string.
func (s *Set) String() string {
	return strings.Join(s.Tokens(), " ")
}

// Empty reports whether the set holds no tokens at all.
func (s *Set) Empty() bool {
	return len(s.entries) == 0
}

func (s *Set) index(flag string) int {
	for i, e := range s.entries {
		if e.flag == flag {
			return i
		}
	}

	return -1
}
