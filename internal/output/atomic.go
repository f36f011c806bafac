// Package output writes rendered artifacts to disk atomically.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// temporaryFilePattern names the scratch files used during atomic writes.
const temporaryFilePattern = ".repoexport-*"

// WriteAtomicLines joins lines with newlines and writes them atomically to
// destinationPath. See WriteAtomicBytes for the replacement guarantee.
func WriteAtomicLines(destinationPath string, lines []string) error {
	return WriteAtomicBytes(destinationPath, []byte(strings.Join(lines, "\n")))
}

// WriteAtomicBytes writes data to a temporary file created in the destination
// directory, then renames it over destinationPath. The temporary file lives on
// the same volume as the destination, so the rename is atomic: a reader of
// destinationPath sees either the previous complete content or the new
// complete content, never a partial write. On failure the previous destination
// content is left untouched and the temporary file is removed.
func WriteAtomicBytes(destinationPath string, data []byte) error {
	destinationDirectory := filepath.Dir(destinationPath)
	temporaryFile, createError := os.CreateTemp(destinationDirectory, temporaryFilePattern)
	if createError != nil {
		return fmt.Errorf("creating temporary file in %s: %w", destinationDirectory, createError)
	}
	temporaryPath := temporaryFile.Name()

	_, writeError := temporaryFile.Write(data)
	closeError := temporaryFile.Close()
	if writeError != nil {
		removeTemporary(temporaryPath)
		return fmt.Errorf("writing temporary file for %s: %w", destinationPath, writeError)
	}
	if closeError != nil {
		removeTemporary(temporaryPath)
		return fmt.Errorf("closing temporary file for %s: %w", destinationPath, closeError)
	}
	if renameError := os.Rename(temporaryPath, destinationPath); renameError != nil {
		removeTemporary(temporaryPath)
		return fmt.Errorf("replacing %s: %w", destinationPath, renameError)
	}
	return nil
}

func removeTemporary(temporaryPath string) {
	if removeError := os.Remove(temporaryPath); removeError != nil && !os.IsNotExist(removeError) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", temporaryPath, removeError)
	}
}
