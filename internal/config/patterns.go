package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// commentPrefix marks comment lines inside pattern files.
const commentPrefix = "#"

// LoadPatternFile reads a pattern file with one pattern per line.
// Blank lines and lines starting with "#" are skipped. A missing file yields
// no patterns and no error so callers can treat pattern files as optional.
func LoadPatternFile(patternFilePath string) ([]string, error) {
	fileHandle, openError := os.Open(patternFilePath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening pattern file %s: %w", patternFilePath, openError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", patternFilePath, closeError)
		}
	}()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patterns = append(patterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("reading pattern file %s: %w", patternFilePath, scanError)
	}
	return patterns, nil
}
