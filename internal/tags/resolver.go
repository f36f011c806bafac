// Package tags assigns semantic wiki tags to exported files from JSON side
// tables and detects the fenced-code-block language for file content.
package tags

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultFallbackTag marks files no side table mentions.
const DefaultFallbackTag = "[[--- Unclassified]]"

// sideTableExtension selects the side-table files inside the tags directory.
const sideTableExtension = ".json"

// sideTableEntry is one object inside a tag side table. Tags is the
// space-joined tag string as stored in the wiki.
type sideTableEntry struct {
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// Resolver maps derived record titles to ordered semantic tag lists. It is
// constructed once at process start and performs no filesystem writes, so the
// exporter can treat it as a pure function of the title.
type Resolver struct {
	titleToTags map[string][]string
	fallbackTag string
}

// NewResolver builds a Resolver from every *.json side table inside
// tagsDirectory, processed in name order. A missing directory or a malformed
// table degrades to fewer loaded entries with a logged warning; construction
// never fails.
func NewResolver(tagsDirectory string, fallbackTag string, logger *zap.Logger) *Resolver {
	if fallbackTag == "" {
		fallbackTag = DefaultFallbackTag
	}
	resolver := &Resolver{
		titleToTags: make(map[string][]string),
		fallbackTag: fallbackTag,
	}

	directoryEntries, readDirectoryError := os.ReadDir(tagsDirectory)
	if readDirectoryError != nil {
		logger.Warn("tag side tables unavailable",
			zap.String("directory", tagsDirectory),
			zap.Error(readDirectoryError))
		return resolver
	}

	loadedTables := 0
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() || !strings.EqualFold(filepath.Ext(directoryEntry.Name()), sideTableExtension) {
			continue
		}
		tablePath := filepath.Join(tagsDirectory, directoryEntry.Name())
		if resolver.loadSideTable(tablePath, logger) {
			loadedTables++
		}
	}
	if loadedTables == 0 {
		logger.Warn("no tag side tables found", zap.String("directory", tagsDirectory))
	}
	return resolver
}

// loadSideTable merges one side table into the title index. Entries without a
// title are skipped; later tables override earlier ones for the same title.
func (resolver *Resolver) loadSideTable(tablePath string, logger *zap.Logger) bool {
	tableData, readError := os.ReadFile(tablePath)
	if readError != nil {
		logger.Warn("skipping unreadable tag side table", zap.String("path", tablePath), zap.Error(readError))
		return false
	}
	var tableEntries []sideTableEntry
	if unmarshalError := json.Unmarshal(tableData, &tableEntries); unmarshalError != nil {
		logger.Warn("skipping malformed tag side table", zap.String("path", tablePath), zap.Error(unmarshalError))
		return false
	}
	for _, tableEntry := range tableEntries {
		trimmedTitle := strings.TrimSpace(tableEntry.Title)
		if trimmedTitle == "" {
			continue
		}
		tagList := strings.Fields(tableEntry.Tags)
		if len(tagList) == 0 {
			continue
		}
		resolver.titleToTags[trimmedTitle] = tagList
	}
	return true
}

// TagsForTitle returns the ordered tag list recorded for the derived title,
// or a single fallback sentinel tag when no side table mentions it. The
// result is never empty.
func (resolver *Resolver) TagsForTitle(title string) []string {
	if tagList, known := resolver.titleToTags[title]; known {
		return tagList
	}
	return []string{resolver.fallbackTag}
}
