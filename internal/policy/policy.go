// Package policy decides, per filesystem entry, whether the entry is visible
// to a directory walk. Rules are evaluated in a fixed order: static name
// denylist, extension denylist, hidden-file rule, user glob patterns, then
// dynamic gitignore rules. The first matching rule excludes the entry.
// Protected names are exempt from every rule.
package policy

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"repoexport/internal/utils"
)

// ignoredDirectoryNames lists version-control metadata, caches, build output,
// and dependency directories excluded regardless of other rules.
var ignoredDirectoryNames = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	".idea":        {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"venv":         {},
	".mypy_cache":  {},
	"__pycache__":  {},
}

// ignoredFileNames lists file names excluded regardless of other rules.
// secret.env carries credentials and is hidden unconditionally.
var ignoredFileNames = map[string]struct{}{
	".DS_Store":  {},
	"secret.env": {},
}

// ignoredExtensions lists compiled-artifact, credential, and database
// extensions excluded regardless of other rules. Extensions are compared
// lower-cased.
var ignoredExtensions = map[string]struct{}{
	".pyc":    {},
	".class":  {},
	".o":      {},
	".exe":    {},
	".dll":    {},
	".so":     {},
	".dylib":  {},
	".pdb":    {},
	".key":    {},
	".pem":    {},
	".crt":    {},
	".p12":    {},
	".db":     {},
	".sqlite": {},
}

// hiddenNameExceptions lists dot-prefixed names the hidden-file rule keeps visible.
var hiddenNameExceptions = map[string]struct{}{
	utils.GitIgnoreFileName:   {},
	utils.GitHubDirectoryName: {},
}

// Entry describes one filesystem entry under evaluation.
type Entry struct {
	Name         string
	RelativePath string
	IsDirectory  bool
}

// Policy is the combined rule set deciding visibility of filesystem entries.
type Policy struct {
	userPatterns   []string
	dynamicMatcher Matcher
	protectedNames map[string]struct{}
}

// New constructs a Policy from user glob patterns and a dynamic rule matcher.
// structureOutputName and the gitignore file become the two protected names
// that no rule may exclude, guaranteeing the tool's own configuration and
// output always appear in the rendered tree.
func New(userPatterns []string, dynamicMatcher Matcher, structureOutputName string) *Policy {
	if dynamicMatcher == nil {
		dynamicMatcher = NullMatcher{}
	}
	protectedNames := map[string]struct{}{
		utils.GitIgnoreFileName: {},
	}
	if structureOutputName != "" {
		protectedNames[structureOutputName] = struct{}{}
	}
	return &Policy{
		userPatterns:   userPatterns,
		dynamicMatcher: dynamicMatcher,
		protectedNames: protectedNames,
	}
}

// ProtectedNames returns the names exempt from every exclusion rule.
func (evaluationPolicy *Policy) ProtectedNames() []string {
	names := make([]string, 0, len(evaluationPolicy.protectedNames))
	for name := range evaluationPolicy.protectedNames {
		names = append(names, name)
	}
	return names
}

// IsProtected reports whether the relative path is one of the protected names.
func (evaluationPolicy *Policy) IsProtected(relativePath string) bool {
	_, protected := evaluationPolicy.protectedNames[filepath.ToSlash(relativePath)]
	return protected
}

// ShouldSkip reports whether the entry is excluded from the walk.
func (evaluationPolicy *Policy) ShouldSkip(entry Entry) bool {
	normalizedRelativePath := filepath.ToSlash(entry.RelativePath)

	if evaluationPolicy.IsProtected(normalizedRelativePath) {
		return false
	}

	if entry.IsDirectory {
		if _, ignored := ignoredDirectoryNames[entry.Name]; ignored {
			return true
		}
	} else {
		if _, ignored := ignoredFileNames[entry.Name]; ignored {
			return true
		}
	}
	if _, ignored := ignoredExtensions[strings.ToLower(filepath.Ext(entry.Name))]; ignored {
		return true
	}

	if strings.HasPrefix(entry.Name, ".") {
		if _, allowed := hiddenNameExceptions[entry.Name]; !allowed {
			return true
		}
	}

	for _, userPattern := range evaluationPolicy.userPatterns {
		if matchesUserPattern(userPattern, normalizedRelativePath, entry.IsDirectory) {
			return true
		}
	}

	if evaluationPolicy.dynamicMatcher.Matches(normalizedRelativePath) {
		return true
	}
	if entry.IsDirectory && evaluationPolicy.dynamicMatcher.Matches(normalizedRelativePath+"/") {
		return true
	}

	return false
}

// matchesUserPattern evaluates a single user glob against the relative path.
// Patterns use doublestar syntax, so "*" stays within one path segment and
// "**" crosses segments. A trailing slash anchors the pattern to directories.
// Malformed patterns never match.
func matchesUserPattern(userPattern string, relativePath string, isDirectory bool) bool {
	normalizedPattern := filepath.ToSlash(userPattern)
	if strings.HasSuffix(normalizedPattern, "/") {
		if !isDirectory {
			return false
		}
		normalizedPattern = strings.TrimSuffix(normalizedPattern, "/")
	}
	isMatched, matchError := doublestar.Match(normalizedPattern, relativePath)
	return matchError == nil && isMatched
}
