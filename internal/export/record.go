package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"repoexport/internal/utils"
)

// titlePrefix marks every derived record title.
const titlePrefix = "-"

// recordContentType is the fixed content-type marker of export records.
const recordContentType = "text/markdown"

// recordBodyFormat renders the tag line followed by a language-tagged fenced
// code block holding the raw file content.
const recordBodyFormat = "## [[Tags]]\n%s\n\n```%s\n%s\n```"

// Record is one TiddlyWiki tiddler produced for a changed file.
type Record struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Tags     string `json:"tags"`
	Type     string `json:"type"`
	Created  string `json:"created"`
	Modified string `json:"modified"`
}

// DeriveTitle converts a root-relative path into a record title: the prefix
// marker followed by the path with separators replaced by underscores. The
// transformation is a pure function of the relative path; distinct paths can
// collide only when a file name itself contains underscores, which the
// exporter detects per run.
func DeriveTitle(relativePath string) string {
	return titlePrefix + strings.ReplaceAll(filepath.ToSlash(relativePath), "/", "_")
}

// BuildRecord assembles the export record for one changed file.
func BuildRecord(title string, tagList []string, language string, content string, timestamp time.Time) Record {
	joinedTags := strings.Join(tagList, " ")
	formattedTimestamp := utils.FormatTiddlerTimestamp(timestamp)
	return Record{
		Title:    title,
		Text:     fmt.Sprintf(recordBodyFormat, joinedTags, language, content),
		Tags:     joinedTags,
		Type:     recordContentType,
		Created:  formattedTimestamp,
		Modified: formattedTimestamp,
	}
}
