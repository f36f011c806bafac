// Package config loads application configuration and pattern files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"repoexport/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Structure StructureConfiguration `mapstructure:"structure"`
	Export    ExportConfiguration    `mapstructure:"export"`
}

// StructureConfiguration defines defaults for the structure command.
type StructureConfiguration struct {
	OutputName     string   `mapstructure:"output"`
	Exclude        []string `mapstructure:"exclude"`
	HonorGitignore *bool    `mapstructure:"honor_gitignore"`
}

// ExportConfiguration defines defaults for the export command.
type ExportConfiguration struct {
	OutputDirectory   string   `mapstructure:"output_dir"`
	StorePath         string   `mapstructure:"store"`
	TagsDirectory     string   `mapstructure:"tags_dir"`
	FallbackTag       string   `mapstructure:"fallback_tag"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	AllowedFileNames  []string `mapstructure:"allowed_filenames"`
	SkipDirectories   []string `mapstructure:"skip_dirs"`
	Prune             *bool    `mapstructure:"prune"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// The local file overrides the global one key by key.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if configRoot, configRootError := os.UserConfigDir(); configRootError == nil && configRoot != "" {
		globalPath := filepath.Join(configRoot, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	merged.Structure.Exclude = utils.DeduplicatePatterns(merged.Structure.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	pathInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if pathInformation.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Structure = result.Structure.merge(override.Structure)
	result.Export = result.Export.merge(override.Export)
	return result
}

func (configuration StructureConfiguration) merge(override StructureConfiguration) StructureConfiguration {
	result := configuration
	if override.OutputName != "" {
		result.OutputName = override.OutputName
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append(result.Exclude, override.Exclude...)
	}
	if override.HonorGitignore != nil {
		result.HonorGitignore = cloneBool(override.HonorGitignore)
	}
	return result
}

func (configuration ExportConfiguration) merge(override ExportConfiguration) ExportConfiguration {
	result := configuration
	if override.OutputDirectory != "" {
		result.OutputDirectory = override.OutputDirectory
	}
	if override.StorePath != "" {
		result.StorePath = override.StorePath
	}
	if override.TagsDirectory != "" {
		result.TagsDirectory = override.TagsDirectory
	}
	if override.FallbackTag != "" {
		result.FallbackTag = override.FallbackTag
	}
	if len(override.AllowedExtensions) > 0 {
		result.AllowedExtensions = override.AllowedExtensions
	}
	if len(override.AllowedFileNames) > 0 {
		result.AllowedFileNames = override.AllowedFileNames
	}
	if len(override.SkipDirectories) > 0 {
		result.SkipDirectories = override.SkipDirectories
	}
	if override.Prune != nil {
		result.Prune = cloneBool(override.Prune)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
