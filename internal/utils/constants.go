package utils

// File and directory names shared across the tool.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitHubDirectoryName is the GitHub metadata directory kept visible in rendered trees.
	GitHubDirectoryName = ".github"
	// DefaultStructureFileName is the default destination of the rendered tree.
	DefaultStructureFileName = "estructura.txt"
	// DefaultExportDirectoryName is the default destination directory for export records.
	DefaultExportDirectoryName = "tiddlers-export"
	// DefaultStoreFileName is the default location of the fingerprint store.
	DefaultStoreFileName = ".hashes.json"
	// DefaultTagsDirectoryName is the default directory holding tag side tables.
	DefaultTagsDirectoryName = "tiddler_tag_doc"
	// GlobalConfigDirectoryName is the per-user configuration directory under
	// the platform configuration root (~/.config on Unix).
	GlobalConfigDirectoryName = "repoexport"
	// GlobalConfigFileName is the file name of the per-user configuration.
	GlobalConfigFileName = "config.yaml"
	// ConfigFileName is the per-repository configuration file name looked up
	// in the working directory.
	ConfigFileName = ".repoexport.yaml"
)

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal CLI errors.
const ApplicationExecutionFailedMessage = "application execution failed"
