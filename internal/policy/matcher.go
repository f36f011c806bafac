package policy

import (
	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher reports whether a root-relative path matches a dynamic rule set.
type Matcher interface {
	Matches(relativePath string) bool
}

// NullMatcher never matches. It stands in when gitignore rules are disabled
// so callers never branch on the presence of a rule set.
type NullMatcher struct{}

// Matches always reports false.
func (NullMatcher) Matches(string) bool { return false }

// GitignoreMatcher matches root-relative paths against compiled
// .gitignore-style rules.
type GitignoreMatcher struct {
	compiled *gitignore.GitIgnore
}

// NewGitignoreMatcher compiles gitignore pattern lines into a matcher.
// The lines are expected to already have comments and blanks stripped.
func NewGitignoreMatcher(patternLines []string) *GitignoreMatcher {
	return &GitignoreMatcher{compiled: gitignore.CompileIgnoreLines(patternLines...)}
}

// Matches reports whether the relative path is excluded by the rule set.
func (matcher *GitignoreMatcher) Matches(relativePath string) bool {
	if matcher == nil || matcher.compiled == nil {
		return false
	}
	return matcher.compiled.MatchesPath(relativePath)
}

var _ Matcher = NullMatcher{}
var _ Matcher = (*GitignoreMatcher)(nil)
