package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repoexport/internal/config"
	"repoexport/internal/output"
	"repoexport/internal/policy"
	"repoexport/internal/services/clipboard"
	"repoexport/internal/tree"
	"repoexport/internal/utils"
)

const (
	overwritePromptFormat      = "The file '%s' already exists. Overwrite? [y/N]: "
	operationCancelledMessage  = "Operation cancelled."
	structureExportedFormat    = "Structure exported to: %s\n"
	errorLoadConfiguration     = "loading configuration: %w"
	errorLoadExcludeFileFormat = "loading exclude patterns from %s: %w"
)

// affirmativeAnswers accepts English and Spanish confirmations.
var affirmativeAnswers = map[string]struct{}{
	"y":   {},
	"yes": {},
	"s":   {},
	"si":  {},
}

// structureOptions stores flag values for the structure command.
type structureOptions struct {
	outputName        string
	honorGitignore    bool
	exclusionPatterns []string
	excludeFromPath   string
	dryRun            bool
	force             bool
	copyToClipboard   bool
	verbosity         int
}

// createStructureCommand returns the structure subcommand.
func createStructureCommand(configFilePath *string) *cobra.Command {
	var options structureOptions

	structureCommand := &cobra.Command{
		Use:     structureUse,
		Aliases: []string{structureAlias},
		Short:   structureShortDescription,
		Long:    structureLongDescription,
		Example: structureUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runStructure(command, rootArgument(arguments), *configFilePath, options)
		},
	}

	structureCommand.Flags().StringVarP(&options.outputName, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	structureCommand.Flags().BoolVar(&options.honorGitignore, honorGitignoreFlagName, false, honorGitignoreDescription)
	structureCommand.Flags().StringArrayVarP(&options.exclusionPatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	structureCommand.Flags().StringVar(&options.excludeFromPath, excludeFromFlagName, "", excludeFromFlagDesc)
	structureCommand.Flags().BoolVar(&options.dryRun, dryRunFlagName, false, dryRunFlagDescription)
	structureCommand.Flags().BoolVarP(&options.force, forceFlagName, forceFlagShorthand, false, forceFlagDescription)
	structureCommand.Flags().BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	structureCommand.Flags().CountVarP(&options.verbosity, verboseFlagName, verboseFlagShorthand, verboseFlagDescription)
	return structureCommand
}

// runStructure renders the filtered tree and writes it atomically.
func runStructure(command *cobra.Command, rootPath string, configFilePath string, options structureOptions) error {
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

	outputName := resolveOutputName(command, options, configuration)
	honorGitignore := resolveHonorGitignore(command, options, configuration)

	exclusionPatterns := append([]string{}, configuration.Structure.Exclude...)
	exclusionPatterns = append(exclusionPatterns, options.exclusionPatterns...)
	if options.excludeFromPath != "" {
		filePatterns, loadError := config.LoadPatternFile(options.excludeFromPath)
		if loadError != nil {
			// A malformed or unreadable pattern file degrades the run, it
			// does not abort it.
			loggerInstance.Warn("ignoring exclude pattern file", zap.String("path", options.excludeFromPath), zap.Error(loadError))
		}
		exclusionPatterns = append(exclusionPatterns, filePatterns...)
	}
	exclusionPatterns = utils.DeduplicatePatterns(exclusionPatterns)

	dynamicMatcher := loadDynamicMatcher(absoluteRootPath, honorGitignore, loggerInstance)
	evaluationPolicy := policy.New(exclusionPatterns, dynamicMatcher, filepath.Base(outputName))
	walker := tree.NewWalker(evaluationPolicy, loggerInstance)

	renderedLines, renderError := walker.Render(absoluteRootPath)
	if renderError != nil {
		return renderError
	}
	renderedTree := strings.Join(renderedLines, "\n")

	if options.dryRun {
		fmt.Println(renderedTree)
		loggerInstance.Info("dry run, nothing written")
		return nil
	}

	destinationPath := outputName
	if !filepath.IsAbs(destinationPath) {
		destinationPath = filepath.Join(absoluteRootPath, outputName)
	}
	if _, statError := os.Stat(destinationPath); statError == nil && !options.force {
		if !confirmOverwrite(os.Stdin, os.Stdout, filepath.Base(destinationPath)) {
			fmt.Println(operationCancelledMessage)
			return nil
		}
	}

	if writeError := output.WriteAtomicLines(destinationPath, renderedLines); writeError != nil {
		return writeError
	}

	if options.copyToClipboard {
		if copyError := clipboard.NewService().Copy(renderedTree); copyError != nil {
			loggerInstance.Warn("failed to copy tree to clipboard", zap.Error(copyError))
		}
	}

	fmt.Printf(structureExportedFormat, destinationPath)
	return nil
}

// resolveOutputName picks the structure file name from flag, configuration,
// or the default, in that order.
func resolveOutputName(command *cobra.Command, options structureOptions, configuration config.ApplicationConfiguration) string {
	if command.Flags().Changed(outputFlagName) && options.outputName != "" {
		return options.outputName
	}
	if configuration.Structure.OutputName != "" {
		return configuration.Structure.OutputName
	}
	return utils.DefaultStructureFileName
}

// resolveHonorGitignore picks the gitignore toggle from flag or configuration.
func resolveHonorGitignore(command *cobra.Command, options structureOptions, configuration config.ApplicationConfiguration) bool {
	if command.Flags().Changed(honorGitignoreFlagName) {
		return options.honorGitignore
	}
	if configuration.Structure.HonorGitignore != nil {
		return *configuration.Structure.HonorGitignore
	}
	return false
}

// loadDynamicMatcher compiles the root's gitignore file into a matcher, or
// returns the null matcher when disabled, missing, or empty.
func loadDynamicMatcher(absoluteRootPath string, honorGitignore bool, loggerInstance *zap.Logger) policy.Matcher {
	if !honorGitignore {
		return policy.NullMatcher{}
	}
	gitignorePath := filepath.Join(absoluteRootPath, utils.GitIgnoreFileName)
	patternLines, loadError := config.LoadPatternFile(gitignorePath)
	if loadError != nil {
		loggerInstance.Warn("ignoring unreadable gitignore file", zap.String("path", gitignorePath), zap.Error(loadError))
		return policy.NullMatcher{}
	}
	if len(patternLines) == 0 {
		return policy.NullMatcher{}
	}
	return policy.NewGitignoreMatcher(patternLines)
}

// confirmOverwrite asks whether an existing destination may be replaced.
// Declining cancels only this write, not the whole process.
func confirmOverwrite(input io.Reader, outputWriter io.Writer, fileName string) bool {
	fmt.Fprintf(outputWriter, overwritePromptFormat, fileName)
	scanner := bufio.NewScanner(input)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	_, affirmative := affirmativeAnswers[answer]
	return affirmative
}
