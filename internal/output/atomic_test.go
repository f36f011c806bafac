package output_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repoexport/internal/output"
)

const destinationFileName = "estructura.txt"

func TestWriteAtomicLinesCreatesDestination(t *testing.T) {
	destinationPath := filepath.Join(t.TempDir(), destinationFileName)
	lines := []string{"├── dir", "│   └── inside.md", "└── keep.txt"}

	if writeError := output.WriteAtomicLines(destinationPath, lines); writeError != nil {
		t.Fatalf("WriteAtomicLines error: %v", writeError)
	}

	content, readError := os.ReadFile(destinationPath)
	if readError != nil {
		t.Fatalf("read destination: %v", readError)
	}
	if string(content) != strings.Join(lines, "\n") {
		t.Fatalf("unexpected destination content: %q", string(content))
	}
}

func TestWriteAtomicLinesReplacesExistingContentWholesale(t *testing.T) {
	destinationPath := filepath.Join(t.TempDir(), destinationFileName)
	if writeError := os.WriteFile(destinationPath, []byte("previous content"), 0o600); writeError != nil {
		t.Fatalf("seed destination: %v", writeError)
	}

	if writeError := output.WriteAtomicLines(destinationPath, []string{"new content"}); writeError != nil {
		t.Fatalf("WriteAtomicLines error: %v", writeError)
	}

	content, readError := os.ReadFile(destinationPath)
	if readError != nil {
		t.Fatalf("read destination: %v", readError)
	}
	if string(content) != "new content" {
		t.Fatalf("expected fully new content, got %q", string(content))
	}
}

func TestWriteAtomicBytesFailureLeavesDestinationUntouched(t *testing.T) {
	existingDirectory := t.TempDir()
	destinationPath := filepath.Join(existingDirectory, "missing-subdir", destinationFileName)

	writeError := output.WriteAtomicBytes(destinationPath, []byte("data"))
	if writeError == nil {
		t.Fatal("expected an error when the destination directory does not exist")
	}
	if _, statError := os.Stat(destinationPath); !os.IsNotExist(statError) {
		t.Fatal("expected no destination file after a failed write")
	}
}

func TestWriteAtomicBytesLeavesNoTemporaryFilesBehind(t *testing.T) {
	destinationDirectory := t.TempDir()
	destinationPath := filepath.Join(destinationDirectory, destinationFileName)

	if writeError := output.WriteAtomicBytes(destinationPath, []byte("data")); writeError != nil {
		t.Fatalf("WriteAtomicBytes error: %v", writeError)
	}

	directoryEntries, readError := os.ReadDir(destinationDirectory)
	if readError != nil {
		t.Fatalf("read destination directory: %v", readError)
	}
	if len(directoryEntries) != 1 || directoryEntries[0].Name() != destinationFileName {
		t.Fatalf("expected only the destination file, got %v", directoryEntries)
	}
}
