// Package export walks the repository, detects per-file content changes
// through a persisted fingerprint store, and emits one TiddlyWiki JSON record
// per changed file.
package export

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"repoexport/internal/policy"
	"repoexport/internal/tags"
	"repoexport/internal/utils"
)

// Defaults for the export allow-list and directory skip set.
var (
	// DefaultAllowedExtensions lists the file extensions eligible for export.
	DefaultAllowedExtensions = []string{".py", ".md", ".json", ".sh", ".html", ".css", ".yml", ".yaml", ".txt", ".toml", ".go"}
	// DefaultAllowedFileNames lists extensionless files eligible for export.
	DefaultAllowedFileNames = []string{utils.GitIgnoreFileName}
	// DefaultSkipDirectories lists directory names never descended into.
	DefaultSkipDirectories = []string{
		".git", "__pycache__", ".mypy_cache", "venv", ".venv",
		"node_modules", "dist", "build",
		utils.DefaultExportDirectoryName, utils.DefaultTagsDirectoryName,
	}
)

// recordFilePermissions applies to written export records.
const recordFilePermissions = 0o644

// TagResolver supplies the ordered semantic tag list for a derived title.
type TagResolver interface {
	TagsForTitle(title string) []string
}

// Options configures a single export run.
type Options struct {
	RootPath          string
	OutputDirectory   string
	StorePath         string
	AllowedExtensions []string
	AllowedFileNames  []string
	SkipDirectories   []string
	// ProtectedPaths are root-relative paths exported regardless of the
	// allow-list and the dynamic rules.
	ProtectedPaths []string
	// DynamicMatcher excludes gitignored paths from the walk. Nil selects
	// the null matcher.
	DynamicMatcher policy.Matcher
	DryRun         bool
	Prune          bool
}

// Exporter performs change-aware export runs. A run is single threaded and
// strictly sequential; two concurrent runs against the same store are not
// coordinated and the last writer wins.
type Exporter struct {
	options           Options
	resolver          TagResolver
	logger            *zap.Logger
	now               func() time.Time
	allowedExtensions map[string]struct{}
	allowedFileNames  map[string]struct{}
	skipDirectories   map[string]struct{}
	protectedPaths    map[string]struct{}
}

// NewExporter constructs an Exporter. Empty allow-list and skip-set options
// fall back to the package defaults.
func NewExporter(options Options, resolver TagResolver, logger *zap.Logger) *Exporter {
	if options.DynamicMatcher == nil {
		options.DynamicMatcher = policy.NullMatcher{}
	}
	if len(options.AllowedExtensions) == 0 {
		options.AllowedExtensions = DefaultAllowedExtensions
	}
	if len(options.AllowedFileNames) == 0 {
		options.AllowedFileNames = DefaultAllowedFileNames
	}
	if len(options.SkipDirectories) == 0 {
		options.SkipDirectories = DefaultSkipDirectories
	}
	return &Exporter{
		options:           options,
		resolver:          resolver,
		logger:            logger,
		now:               time.Now,
		allowedExtensions: lowercaseSet(options.AllowedExtensions),
		allowedFileNames:  nameSet(options.AllowedFileNames),
		skipDirectories:   nameSet(options.SkipDirectories),
		protectedPaths:    nameSet(options.ProtectedPaths),
	}
}

// Run executes one export pass and returns the root-relative paths whose
// content changed since the previous run. A dry run reports the same list but
// writes neither records nor the store. Running twice without intervening
// filesystem changes reports no changes on the second run.
func (exporter *Exporter) Run() ([]string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(exporter.options.RootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", exporter.options.RootPath, absolutePathError)
	}
	rootInformation, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		return nil, fmt.Errorf("stat root %s: %w", absoluteRootPath, rootStatError)
	}
	if !rootInformation.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absoluteRootPath)
	}

	if !exporter.options.DryRun {
		if mkdirError := os.MkdirAll(exporter.options.OutputDirectory, 0o755); mkdirError != nil {
			return nil, fmt.Errorf("creating output directory %s: %w", exporter.options.OutputDirectory, mkdirError)
		}
	}

	// The store itself carries an allowed extension; keep it out of the walk.
	absoluteStorePath, storePathError := filepath.Abs(exporter.options.StorePath)
	if storePathError != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", exporter.options.StorePath, storePathError)
	}

	previousStore := LoadStore(exporter.options.StorePath, exporter.logger)
	newStore := FingerprintStore{}
	titleOwners := make(map[string]string)
	changedPaths := []string{}

	pendingDirectories := []string{absoluteRootPath}
	for len(pendingDirectories) > 0 {
		currentDirectory := pendingDirectories[len(pendingDirectories)-1]
		pendingDirectories = pendingDirectories[:len(pendingDirectories)-1]

		directoryEntries, readDirectoryError := os.ReadDir(currentDirectory)
		if readDirectoryError != nil {
			if currentDirectory == absoluteRootPath {
				return nil, fmt.Errorf("reading directory %s: %w", currentDirectory, readDirectoryError)
			}
			exporter.logger.Warn("skipping unreadable directory",
				zap.String("path", currentDirectory), zap.Error(readDirectoryError))
			continue
		}

		var subdirectories []string
		for _, directoryEntry := range directoryEntries {
			childPath := filepath.Join(currentDirectory, directoryEntry.Name())
			// Symlinks are never followed; a symlinked directory could loop
			// the walk through a cycle.
			if directoryEntry.Type()&fs.ModeSymlink != 0 {
				continue
			}
			if directoryEntry.IsDir() {
				if _, skipped := exporter.skipDirectories[directoryEntry.Name()]; skipped {
					continue
				}
				subdirectories = append(subdirectories, childPath)
				continue
			}
			if childPath == absoluteStorePath {
				continue
			}
			relativeChildPath := utils.RelativePathOrSelf(childPath, absoluteRootPath)
			if !exporter.isEligible(directoryEntry.Name(), relativeChildPath) {
				continue
			}
			changed, processError := exporter.processFile(childPath, relativeChildPath, previousStore, newStore, titleOwners)
			if processError != nil {
				return changedPaths, processError
			}
			if changed {
				changedPaths = append(changedPaths, relativeChildPath)
			}
		}
		// Reverse push keeps subdirectory visiting order lexicographic.
		for directoryIndex := len(subdirectories) - 1; directoryIndex >= 0; directoryIndex-- {
			pendingDirectories = append(pendingDirectories, subdirectories[directoryIndex])
		}
	}

	if !exporter.options.DryRun {
		if saveError := SaveStore(exporter.options.StorePath, newStore); saveError != nil {
			return changedPaths, saveError
		}
		if exporter.options.Prune {
			exporter.pruneOrphans(previousStore, newStore)
		}
	}
	return changedPaths, nil
}

// isEligible applies the coarse export filter: protected paths always pass,
// gitignored paths are dropped, then the extension or exact file name must be
// in the allowed set.
func (exporter *Exporter) isEligible(fileName string, relativePath string) bool {
	if _, protected := exporter.protectedPaths[relativePath]; protected {
		return true
	}
	if exporter.options.DynamicMatcher.Matches(relativePath) {
		return false
	}
	if _, allowed := exporter.allowedFileNames[fileName]; allowed {
		return true
	}
	_, allowed := exporter.allowedExtensions[strings.ToLower(filepath.Ext(fileName))]
	return allowed
}

// processFile fingerprints one eligible file, records it in the new store,
// and exports it when dirty. Read and decode failures are recovered by
// skipping the file with a warning; only record-write failures abort the run.
func (exporter *Exporter) processFile(filePath string, relativePath string, previousStore FingerprintStore, newStore FingerprintStore, titleOwners map[string]string) (bool, error) {
	content, readError := os.ReadFile(filePath)
	if readError != nil {
		exporter.logger.Warn("skipping unreadable file", zap.String("path", relativePath), zap.Error(readError))
		return false, nil
	}
	if utils.IsBinary(content) {
		exporter.logger.Warn("skipping undecodable file", zap.String("path", relativePath))
		return false, nil
	}

	recordTitle := DeriveTitle(relativePath)
	if ownerPath, claimed := titleOwners[recordTitle]; claimed {
		exporter.logger.Warn("skipping file with colliding title",
			zap.String("path", relativePath),
			zap.String("title", recordTitle),
			zap.String("collidesWith", ownerPath))
		return false, nil
	}
	titleOwners[recordTitle] = relativePath

	fingerprint := Fingerprint(content)
	newStore[relativePath] = fingerprint
	if previousFingerprint, known := previousStore[relativePath]; known && previousFingerprint == fingerprint {
		return false, nil
	}

	if exporter.options.DryRun {
		exporter.logger.Info("would export", zap.String("path", relativePath))
		return true, nil
	}

	record := BuildRecord(
		recordTitle,
		exporter.resolver.TagsForTitle(recordTitle),
		tags.DetectLanguage(filepath.Base(relativePath)),
		string(content),
		exporter.now(),
	)
	encodedRecord, marshalError := json.MarshalIndent(record, "", "  ")
	if marshalError != nil {
		return false, fmt.Errorf("encoding record for %s: %w", relativePath, marshalError)
	}
	recordPath := filepath.Join(exporter.options.OutputDirectory, recordTitle+".json")
	if writeError := os.WriteFile(recordPath, encodedRecord, recordFilePermissions); writeError != nil {
		return false, fmt.Errorf("writing record %s: %w", recordPath, writeError)
	}
	exporter.logger.Info("exported", zap.String("path", relativePath))
	return true, nil
}

// pruneOrphans removes record files for paths present in the previous store
// but absent from the current walk. Removal failures are warnings; the run
// has already succeeded at this point.
func (exporter *Exporter) pruneOrphans(previousStore FingerprintStore, newStore FingerprintStore) {
	for relativePath := range previousStore {
		if _, stillPresent := newStore[relativePath]; stillPresent {
			continue
		}
		orphanPath := filepath.Join(exporter.options.OutputDirectory, DeriveTitle(relativePath)+".json")
		removeError := os.Remove(orphanPath)
		if removeError != nil && !os.IsNotExist(removeError) {
			exporter.logger.Warn("failed to prune orphaned record",
				zap.String("path", orphanPath), zap.Error(removeError))
			continue
		}
		if removeError == nil {
			exporter.logger.Info("pruned orphaned record", zap.String("path", relativePath))
		}
	}
}

func lowercaseSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(value)] = struct{}{}
	}
	return set
}

func nameSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
