package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"repoexport/internal/config"
	"repoexport/internal/export"
	"repoexport/internal/tags"
	"repoexport/internal/utils"
)

const (
	changedFilesHeaderFormat = "\nChanged files: %d\n"
	changedFileLineFormat    = "  - %s\n"
	noChangesMessage         = "  (no changes detected)"
)

// exportOptions stores flag values for the export command.
type exportOptions struct {
	outputDirectory string
	storePath       string
	tagsDirectory   string
	fallbackTag     string
	dryRun          bool
	prune           bool
	verbosity       int
}

// createExportCommand returns the export subcommand.
func createExportCommand(configFilePath *string) *cobra.Command {
	var options exportOptions

	exportCommand := &cobra.Command{
		Use:     exportUse,
		Aliases: []string{exportAlias},
		Short:   exportShortDescription,
		Long:    exportLongDescription,
		Example: exportUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runExport(command, rootArgument(arguments), *configFilePath, options)
		},
	}

	exportCommand.Flags().StringVar(&options.outputDirectory, outputDirFlagName, "", outputDirFlagDescription)
	exportCommand.Flags().StringVar(&options.storePath, storeFlagName, "", storeFlagDescription)
	exportCommand.Flags().StringVar(&options.tagsDirectory, tagsDirFlagName, "", tagsDirFlagDescription)
	exportCommand.Flags().StringVar(&options.fallbackTag, fallbackTagFlagName, "", fallbackTagDescription)
	exportCommand.Flags().BoolVar(&options.dryRun, dryRunFlagName, false, dryRunFlagDescription)
	exportCommand.Flags().BoolVar(&options.prune, pruneFlagName, false, pruneFlagDescription)
	exportCommand.Flags().CountVarP(&options.verbosity, verboseFlagName, verboseFlagShorthand, verboseFlagDescription)
	return exportCommand
}

// runExport performs one change-aware export run and reports the changed files.
func runExport(command *cobra.Command, rootPath string, configFilePath string, options exportOptions) error {
	loggerInstance, loggerError := utils.NewApplicationLogger(options.verbosity)
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	defer loggerInstance.Sync()

	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: configFilePath})
	if configurationError != nil {
		return fmt.Errorf(errorLoadConfiguration, configurationError)
	}

	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return fmt.Errorf("getting absolute path for %s: %w", rootPath, absolutePathError)
	}

	outputDirectory := resolveRootedPath(absoluteRootPath, firstNonEmpty(options.outputDirectory, configuration.Export.OutputDirectory, utils.DefaultExportDirectoryName))
	storePath := resolveRootedPath(absoluteRootPath, firstNonEmpty(options.storePath, configuration.Export.StorePath, utils.DefaultStoreFileName))
	tagsDirectory := resolveRootedPath(absoluteRootPath, firstNonEmpty(options.tagsDirectory, configuration.Export.TagsDirectory, utils.DefaultTagsDirectoryName))
	fallbackTag := firstNonEmpty(options.fallbackTag, configuration.Export.FallbackTag, tags.DefaultFallbackTag)
	structureOutputName := firstNonEmpty(configuration.Structure.OutputName, utils.DefaultStructureFileName)

	prune := options.prune
	if !command.Flags().Changed(pruneFlagName) && configuration.Export.Prune != nil {
		prune = *configuration.Export.Prune
	}

	skipDirectories := configuration.Export.SkipDirectories
	if len(skipDirectories) == 0 {
		skipDirectories = append(skipDirectories, export.DefaultSkipDirectories...)
	}
	skipDirectories = append(skipDirectories, filepath.Base(outputDirectory), filepath.Base(tagsDirectory))

	resolver := tags.NewResolver(tagsDirectory, fallbackTag, loggerInstance)
	exporter := export.NewExporter(export.Options{
		RootPath:          absoluteRootPath,
		OutputDirectory:   outputDirectory,
		StorePath:         storePath,
		AllowedExtensions: configuration.Export.AllowedExtensions,
		AllowedFileNames:  configuration.Export.AllowedFileNames,
		SkipDirectories:   skipDirectories,
		ProtectedPaths:    []string{filepath.Base(structureOutputName), utils.GitIgnoreFileName},
		DynamicMatcher:    loadDynamicMatcher(absoluteRootPath, true, loggerInstance),
		DryRun:            options.dryRun,
		Prune:             prune,
	}, resolver, loggerInstance)

	changedPaths, runError := exporter.Run()
	if runError != nil {
		return runError
	}

	fmt.Printf(changedFilesHeaderFormat, len(changedPaths))
	if len(changedPaths) == 0 {
		fmt.Println(noChangesMessage)
		return nil
	}
	for _, changedPath := range changedPaths {
		fmt.Printf(changedFileLineFormat, changedPath)
	}
	return nil
}

// resolveRootedPath anchors a relative path at the walk root.
func resolveRootedPath(absoluteRootPath string, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(absoluteRootPath, path)
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
