// Package tree renders a filtered directory tree as ordered ASCII lines.
package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"repoexport/internal/policy"
	"repoexport/internal/utils"
)

// Branch connector glyphs. Consumers diff the rendered file across commits,
// so the exact glyphs are part of the output contract.
const (
	midConnector     = "├── "
	lastConnector    = "└── "
	midContinuation  = "│   "
	lastContinuation = "    "
)

// errorAbsolutePathFormat reports failure to resolve the walk root.
const errorAbsolutePathFormat = "getting absolute path for %s: %w"

// errorRootNotDirectoryFormat reports a root that is not a walkable directory.
const errorRootNotDirectoryFormat = "root %s is not a directory"

// Walker renders directory trees filtered through an exclusion policy.
type Walker struct {
	evaluationPolicy *policy.Policy
	logger           *zap.Logger
}

// NewWalker constructs a Walker using the provided policy and logger.
func NewWalker(evaluationPolicy *policy.Policy, logger *zap.Logger) *Walker {
	return &Walker{evaluationPolicy: evaluationPolicy, logger: logger}
}

// workItem is one pending entry awaiting rendering. The prefix already
// encodes every ancestor's is-last-sibling flag.
type workItem struct {
	absolutePath string
	name         string
	prefix       string
	isLastChild  bool
	isDirectory  bool
	isSymlink    bool
}

// Render walks rootPath depth first and returns one rendered line per
// visible entry. The traversal uses an explicit work stack so pathological
// nesting depth cannot exhaust the call stack. Output is deterministic for a
// fixed filesystem snapshot and policy.
func (walker *Walker) Render(rootPath string) ([]string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	rootInformation, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		return nil, fmt.Errorf("stat root %s: %w", absoluteRootPath, rootStatError)
	}
	if !rootInformation.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, absoluteRootPath)
	}

	lines := []string{}
	pending := pushReversed(nil, walker.visibleChildren(absoluteRootPath, absoluteRootPath, ""))
	for len(pending) > 0 {
		currentItem := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		connector := midConnector
		continuation := midContinuation
		if currentItem.isLastChild {
			connector = lastConnector
			continuation = lastContinuation
		}
		lines = append(lines, currentItem.prefix+connector+currentItem.name)

		// Symlinked directories are listed but never traversed; following
		// them could loop the walk through a symlink cycle.
		if currentItem.isDirectory && !currentItem.isSymlink {
			childItems := walker.visibleChildren(currentItem.absolutePath, absoluteRootPath, currentItem.prefix+continuation)
			pending = pushReversed(pending, childItems)
		}
	}
	return lines, nil
}

// visibleChildren lists, sorts, and filters the direct children of
// directoryPath. A listing failure is recovered: the walker logs a warning
// and treats the directory as empty so the overall tree is still produced.
func (walker *Walker) visibleChildren(directoryPath string, rootPath string, childPrefix string) []workItem {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		walker.logger.Warn("skipping unreadable directory",
			zap.String("path", directoryPath),
			zap.Error(readDirectoryError))
		return nil
	}

	sort.SliceStable(directoryEntries, func(firstIndex, secondIndex int) bool {
		firstLower := strings.ToLower(directoryEntries[firstIndex].Name())
		secondLower := strings.ToLower(directoryEntries[secondIndex].Name())
		if firstLower != secondLower {
			return firstLower < secondLower
		}
		return directoryEntries[firstIndex].Name() < directoryEntries[secondIndex].Name()
	})

	var surviving []workItem
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(directoryPath, directoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootPath)
		isSymlink := directoryEntry.Type()&fs.ModeSymlink != 0
		entryIsDirectory := directoryEntry.IsDir()
		if isSymlink {
			// Policy rules treat a symlink to a directory as a directory
			// even though the walk never traverses it.
			if targetInformation, statError := os.Stat(childPath); statError == nil {
				entryIsDirectory = targetInformation.IsDir()
			}
		}
		entry := policy.Entry{
			Name:         directoryEntry.Name(),
			RelativePath: relativeChildPath,
			IsDirectory:  entryIsDirectory,
		}
		if walker.evaluationPolicy.ShouldSkip(entry) {
			walker.logger.Debug("excluded by policy", zap.String("path", relativeChildPath))
			continue
		}
		surviving = append(surviving, workItem{
			absolutePath: childPath,
			name:         directoryEntry.Name(),
			prefix:       childPrefix,
			isDirectory:  entryIsDirectory,
			isSymlink:    isSymlink,
		})
	}
	if len(surviving) > 0 {
		surviving[len(surviving)-1].isLastChild = true
	}
	return surviving
}

// pushReversed pushes items onto the stack in reverse so the first sibling
// pops first, preserving the sorted sibling order of a recursive walk.
func pushReversed(stack []workItem, items []workItem) []workItem {
	for itemIndex := len(items) - 1; itemIndex >= 0; itemIndex-- {
		stack = append(stack, items[itemIndex])
	}
	return stack
}
