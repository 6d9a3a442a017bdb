// Package match implements the name selection rules shared by every
// command: a domain (or snapshot) is selected when any of the supplied
// regular expressions finds a match anywhere in its name, or when no
// pattern was supplied at all.
package match

import (
	"fmt"
	"regexp"
)

// Compile compiles a list of user-supplied patterns. Compilation is
// all-or-nothing: a single invalid pattern fails the whole list, since a
// typo'd pattern silently matching nothing would make batch commands like
// delete far too surprising.
func Compile(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Matches reports whether name is selected by the pattern list. An empty
// list selects every name. Patterns use search semantics: they match
// anywhere within the name, not against the whole of it.
func Matches(name string, patterns []*regexp.Regexp) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
