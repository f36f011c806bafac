// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repoexport/internal/utils"
)

const (
	rootUse              = "repoexport"
	rootShortDescription = "repoexport repository documentation utilities"
	rootLongDescription  = `repoexport snapshots a repository for a personal wiki.
The structure command renders a filtered ASCII tree of the repository.
The export command emits one TiddlyWiki JSON record per changed source file.`

	versionFlagName        = "version"
	versionFlagDescription = "display application version"
	versionTemplate        = "repoexport version: %s\n"

	configFlagName        = "config"
	configFlagDescription = "path to a configuration file"

	verboseFlagName        = "verbose"
	verboseFlagShorthand   = "v"
	verboseFlagDescription = "increase logging verbosity (repeatable)"

	dryRunFlagName        = "dry-run"
	dryRunFlagDescription = "report what would be done without writing"

	defaultPath = "."

	structureUse              = "structure [root]"
	structureAlias            = "s"
	structureShortDescription = "render the repository tree (" + structureAlias + ")"
	structureLongDescription  = `Render a filtered ASCII tree of the repository and write it atomically
to the destination file. Use --dry-run to print the tree instead.`
	structureUsageExample = `  # Write estructura.txt at the repository root
  repoexport structure .

  # Respect .gitignore and exclude the vendor directory
  repoexport structure --honor-gitignore -e vendor .`

	exportUse              = "export [root]"
	exportAlias            = "x"
	exportShortDescription = "export changed files as wiki records (" + exportAlias + ")"
	exportLongDescription  = `Walk the repository, fingerprint eligible files, and write one TiddlyWiki
JSON record per file whose content changed since the previous run.`
	exportUsageExample = `  # Export changed files using the defaults
  repoexport export .

  # Preview the changed-file list without writing
  repoexport export --dry-run .`

	outputFlagName            = "output"
	outputFlagShorthand       = "o"
	outputFlagDescription     = "destination file name for the rendered tree"
	honorGitignoreFlagName    = "honor-gitignore"
	honorGitignoreDescription = "exclude paths matched by .gitignore"
	excludeFlagName           = "exclude"
	excludeFlagShorthand      = "e"
	excludeFlagDescription    = "glob pattern to exclude (repeatable)"
	excludeFromFlagName       = "exclude-from"
	excludeFromFlagDesc       = "file with glob patterns to exclude, one per line"
	forceFlagName             = "force"
	forceFlagShorthand        = "f"
	forceFlagDescription      = "overwrite an existing destination without asking"
	copyFlagName              = "copy"
	copyFlagDescription       = "copy the rendered tree to the system clipboard"

	outputDirFlagName        = "output-dir"
	outputDirFlagDescription = "directory receiving export records"
	storeFlagName            = "store"
	storeFlagDescription     = "path of the fingerprint store"
	tagsDirFlagName          = "tags-dir"
	tagsDirFlagDescription   = "directory holding tag side tables"
	fallbackTagFlagName      = "fallback-tag"
	fallbackTagDescription   = "sentinel tag for files without a side-table entry"
	pruneFlagName            = "prune"
	pruneFlagDescription     = "delete records whose source files disappeared"
)

// Execute runs the repoexport application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var configFilePath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createStructureCommand(&configFilePath),
		createExportCommand(&configFilePath),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// rootArgument returns the walk root from the positional arguments.
func rootArgument(arguments []string) string {
	if len(arguments) == 0 {
		return defaultPath
	}
	return arguments[0]
}
