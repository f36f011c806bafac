package tags

import (
	"path/filepath"
	"strings"
)

// defaultLanguage tags fenced blocks for unrecognized file types.
const defaultLanguage = "text"

// languageByExtension maps file extensions to fenced-code-block languages.
var languageByExtension = map[string]string{
	".py":   "python",
	".md":   "markdown",
	".json": "json",
	".sh":   "bash",
	".yml":  "bash",
	".yaml": "yaml",
	".html": "html",
	".txt":  "txt",
	".css":  "css",
	".go":   "go",
	".toml": "toml",
}

// languageByFileName maps extensionless special file names to languages.
var languageByFileName = map[string]string{
	".gitignore": "gitignore",
}

// DetectLanguage returns the syntax-highlighting language for the fenced code
// block embedding a file's content.
func DetectLanguage(fileName string) string {
	if language, known := languageByFileName[fileName]; known {
		return language
	}
	if language, known := languageByExtension[strings.ToLower(filepath.Ext(fileName))]; known {
		return language
	}
	return defaultLanguage
}
