package config

import (
	"os"
	"path/filepath"
	"testing"

	"repoexport/internal/utils"
)

type configTestCase struct {
	name                 string
	globalContent        string
	localContent         string
	expectOutputName     string
	expectHonorGitignore *bool
	expectExcludeCount   int
	expectFallbackTag    string
	expectPrune          *bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:                 "local_overrides_global",
			globalContent:        "structure:\n  output: global.txt\n  honor_gitignore: false\n",
			localContent:         "structure:\n  output: local.txt\n  honor_gitignore: true\nexport:\n  fallback_tag: \"[[Pending]]\"\n",
			expectOutputName:     "local.txt",
			expectHonorGitignore: boolPointer(true),
			expectFallbackTag:    "[[Pending]]",
		},
		{
			name:                 "global_only",
			globalContent:        "structure:\n  output: tree.txt\nexport:\n  prune: true\n",
			expectOutputName:     "tree.txt",
			expectHonorGitignore: nil,
			expectPrune:          boolPointer(true),
		},
		{
			name:               "excludes_accumulate_and_deduplicate",
			globalContent:      "structure:\n  exclude:\n    - vendor\n    - tmp\n",
			localContent:       "structure:\n  exclude:\n    - vendor\n    - cache\n",
			expectExcludeCount: 3,
		},
		{
			name: "missing_files_yield_zero_value",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			workingDirectory := t.TempDir()

			// os.UserConfigDir derives the platform configuration root from
			// these; point them all at fixtures, then ask it where the global
			// file belongs so the test stays hermetic on every platform.
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			t.Setenv("AppData", t.TempDir())
			t.Setenv("HOME", t.TempDir())
			configRoot, configRootError := os.UserConfigDir()
			if configRootError != nil {
				t.Fatalf("resolve user config dir: %v", configRootError)
			}
			globalConfigDirectory := filepath.Join(configRoot, utils.GlobalConfigDirectoryName)
			if mkdirError := os.MkdirAll(globalConfigDirectory, 0o755); mkdirError != nil {
				t.Fatalf("create config dir: %v", mkdirError)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(globalConfigDirectory, utils.GlobalConfigFileName)
				if writeError := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); writeError != nil {
					t.Fatalf("write global config: %v", writeError)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDirectory, utils.ConfigFileName)
				if writeError := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); writeError != nil {
					t.Fatalf("write local config: %v", writeError)
				}
			}

			loadedConfiguration, loadError := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
			if loadError != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", loadError)
			}

			if loadedConfiguration.Structure.OutputName != testCase.expectOutputName {
				t.Fatalf("expected output name %q, got %q", testCase.expectOutputName, loadedConfiguration.Structure.OutputName)
			}
			if testCase.expectHonorGitignore == nil {
				if loadedConfiguration.Structure.HonorGitignore != nil {
					t.Fatalf("expected no honor_gitignore override")
				}
			} else if loadedConfiguration.Structure.HonorGitignore == nil ||
				*loadedConfiguration.Structure.HonorGitignore != *testCase.expectHonorGitignore {
				t.Fatalf("unexpected honor_gitignore value")
			}
			if testCase.expectExcludeCount > 0 && len(loadedConfiguration.Structure.Exclude) != testCase.expectExcludeCount {
				t.Fatalf("expected %d exclude patterns, got %v", testCase.expectExcludeCount, loadedConfiguration.Structure.Exclude)
			}
			if loadedConfiguration.Export.FallbackTag != testCase.expectFallbackTag {
				t.Fatalf("expected fallback tag %q, got %q", testCase.expectFallbackTag, loadedConfiguration.Export.FallbackTag)
			}
			if testCase.expectPrune != nil {
				if loadedConfiguration.Export.Prune == nil || *loadedConfiguration.Export.Prune != *testCase.expectPrune {
					t.Fatalf("unexpected prune value")
				}
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectoryPath(t *testing.T) {
	workingDirectory := t.TempDir()
	directoryAsConfig := filepath.Join(workingDirectory, "configdir")
	if mkdirError := os.Mkdir(directoryAsConfig, 0o755); mkdirError != nil {
		t.Fatalf("create directory: %v", mkdirError)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, loadError := LoadApplicationConfiguration(LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: "configdir",
	})
	if loadError == nil {
		t.Fatal("expected an error for a directory configuration path")
	}
}
