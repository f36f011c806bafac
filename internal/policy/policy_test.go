package policy_test

import (
	"testing"

	"repoexport/internal/policy"
	"repoexport/internal/utils"
)

// structureFileName is the protected output name used throughout these tests.
const structureFileName = "estructura.txt"

func newPolicy(userPatterns []string, matcher policy.Matcher) *policy.Policy {
	return policy.New(userPatterns, matcher, structureFileName)
}

func fileEntry(relativePath string) policy.Entry {
	return policy.Entry{Name: baseName(relativePath), RelativePath: relativePath}
}

func directoryEntry(relativePath string) policy.Entry {
	return policy.Entry{Name: baseName(relativePath), RelativePath: relativePath, IsDirectory: true}
}

func baseName(relativePath string) string {
	lastSeparator := -1
	for characterIndex := range relativePath {
		if relativePath[characterIndex] == '/' {
			lastSeparator = characterIndex
		}
	}
	return relativePath[lastSeparator+1:]
}

func TestStaticDenylistExcludesDefaults(t *testing.T) {
	evaluationPolicy := newPolicy(nil, nil)

	excludedEntries := []policy.Entry{
		directoryEntry(".git"),
		directoryEntry(".svn"),
		directoryEntry(".hg"),
		directoryEntry(".idea"),
		directoryEntry("node_modules"),
		directoryEntry("dist"),
		directoryEntry("build"),
		directoryEntry("venv"),
		directoryEntry(".mypy_cache"),
		directoryEntry("__pycache__"),
		fileEntry(".DS_Store"),
		fileEntry("module.pyc"),
		fileEntry("Main.class"),
		fileEntry("object.o"),
		fileEntry("tool.exe"),
		fileEntry("library.dll"),
		fileEntry("library.so"),
		fileEntry("library.dylib"),
		fileEntry("symbols.pdb"),
		fileEntry("ARTIFACT.SO"),
		fileEntry("secret.env"),
		fileEntry("server.key"),
		fileEntry("server.pem"),
		fileEntry("server.crt"),
		fileEntry("bundle.p12"),
		fileEntry("data.db"),
		fileEntry("data.sqlite"),
	}
	for _, entry := range excludedEntries {
		if !evaluationPolicy.ShouldSkip(entry) {
			t.Fatalf("expected %q to be excluded by the static denylist", entry.RelativePath)
		}
	}

	visibleEntries := []policy.Entry{
		fileEntry("keep.txt"),
		directoryEntry("src"),
		fileEntry("src/main.go"),
	}
	for _, entry := range visibleEntries {
		if evaluationPolicy.ShouldSkip(entry) {
			t.Fatalf("expected %q to stay visible", entry.RelativePath)
		}
	}
}

func TestHiddenFileRuleWithExceptions(t *testing.T) {
	evaluationPolicy := newPolicy(nil, nil)

	if !evaluationPolicy.ShouldSkip(fileEntry(".hidden")) {
		t.Fatal("expected dot-prefixed file to be excluded")
	}
	if !evaluationPolicy.ShouldSkip(directoryEntry(".cache")) {
		t.Fatal("expected dot-prefixed directory to be excluded")
	}
	if evaluationPolicy.ShouldSkip(fileEntry(utils.GitIgnoreFileName)) {
		t.Fatal("expected the gitignore file to stay visible")
	}
	if evaluationPolicy.ShouldSkip(directoryEntry(utils.GitHubDirectoryName)) {
		t.Fatal("expected the .github directory to stay visible")
	}
}

func TestUserPatternsMatchRelativePaths(t *testing.T) {
	testCases := []struct {
		name         string
		userPatterns []string
		entry        policy.Entry
		expectSkip   bool
	}{
		{name: "prefix_glob", userPatterns: []string{"temp*"}, entry: directoryEntry("temp123"), expectSkip: true},
		{name: "prefix_glob_no_match", userPatterns: []string{"temp*"}, entry: directoryEntry("keep"), expectSkip: false},
		{name: "single_star_stays_in_segment", userPatterns: []string{"*.log"}, entry: fileEntry("logs/app.log"), expectSkip: false},
		{name: "doublestar_crosses_segments", userPatterns: []string{"**/*.log"}, entry: fileEntry("logs/app.log"), expectSkip: true},
		{name: "directory_anchor_skips_directories", userPatterns: []string{"cache/"}, entry: directoryEntry("cache"), expectSkip: true},
		{name: "directory_anchor_ignores_files", userPatterns: []string{"cache/"}, entry: fileEntry("cache"), expectSkip: false},
		{name: "malformed_pattern_never_matches", userPatterns: []string{"[unclosed"}, entry: fileEntry("anything.txt"), expectSkip: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			evaluationPolicy := newPolicy(testCase.userPatterns, nil)
			if evaluationPolicy.ShouldSkip(testCase.entry) != testCase.expectSkip {
				t.Fatalf("expected skip=%v for %q with patterns %v", testCase.expectSkip, testCase.entry.RelativePath, testCase.userPatterns)
			}
		})
	}
}

func TestGitignoreMatcherExcludesMatchingPaths(t *testing.T) {
	matcher := policy.NewGitignoreMatcher([]string{"temp*"})
	evaluationPolicy := newPolicy(nil, matcher)

	if !evaluationPolicy.ShouldSkip(directoryEntry("temp123")) {
		t.Fatal("expected temp123 to be excluded by gitignore rules")
	}
	if evaluationPolicy.ShouldSkip(directoryEntry("keep")) {
		t.Fatal("expected keep to stay visible")
	}
}

func TestProtectedNamesExemptFromAllRules(t *testing.T) {
	// A gitignore matching everything must not hide the tool's own trace.
	matcher := policy.NewGitignoreMatcher([]string{"*"})
	evaluationPolicy := newPolicy([]string{"*"}, matcher)

	if evaluationPolicy.ShouldSkip(fileEntry(utils.GitIgnoreFileName)) {
		t.Fatal("expected the gitignore file to be protected from all rules")
	}
	if evaluationPolicy.ShouldSkip(fileEntry(structureFileName)) {
		t.Fatal("expected the structure output file to be protected from all rules")
	}
	if !evaluationPolicy.ShouldSkip(fileEntry("anything.txt")) {
		t.Fatal("expected unprotected entries to remain excluded")
	}
}

func TestNullMatcherNeverMatches(t *testing.T) {
	var matcher policy.Matcher = policy.NullMatcher{}
	if matcher.Matches("anything") {
		t.Fatal("expected the null matcher to never match")
	}
}
