package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/winget-publish/internal/checksum"
	"github.com/temirov/winget-publish/internal/execshell"
	"github.com/temirov/winget-publish/internal/filesystem"
	"github.com/temirov/winget-publish/internal/githubcli"
	"github.com/temirov/winget-publish/internal/gitrepo"
	"github.com/temirov/winget-publish/internal/manifest"
	"github.com/temirov/winget-publish/internal/ui"
	pathutils "github.com/temirov/winget-publish/internal/utils/path"
)

const (
	commandUseNameConstant                = "winget-publish"
	commandUsageTemplateConstant          = commandUseNameConstant + " <version>"
	commandExampleTemplateConstant        = commandUseNameConstant + " 0.1.99"
	commandShortDescriptionConstant       = "Publish a new package version to winget-pkgs"
	commandLongDescriptionConstant        = "winget-publish computes the installer checksum, refreshes the cached fork clone of the manifest repository, copies the latest manifest version to the requested one with updated version, URL and checksum fields, and opens a pull request against the upstream repository."
	usageLineTemplateConstant             = "Usage: %s\n"
	exampleLineTemplateConstant           = "Example: %s\n"
	argumentCountMessageConstant          = "exactly one version argument is required"
	cacheDirectoryResolveTemplateConstant = "unable to resolve cache directory: %w"
	dryRunFlagNameConstant                = "dry-run"
	dryRunFlagUsageConstant               = "Generate manifests and print the commit, push and pull request commands without running them"
	cacheDirectoryFlagNameConstant        = "cache-directory"
	cacheDirectoryFlagUsageConstant       = "Directory holding the cached manifest repository clone"
	expectedArgumentCountConstant         = 1
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the publish command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() Configuration
	// CommandRunner replaces the os/exec runner used for git, gh and curl.
	CommandRunner execshell.CommandRunner
	HomeExpander  *pathutils.HomeExpander
}

// Build constructs the publish command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUsageTemplateConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Example:       commandExampleTemplateConstant,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	command.Flags().String(cacheDirectoryFlagNameConstant, "", cacheDirectoryFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != expectedArgumentCountConstant {
		builder.printUsage(command)
		return UsageError{Message: argumentCountMessageConstant}
	}

	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.buildService(command, configuration, logger)
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	_, publishError := service.Publish(executionContext, Options{Version: arguments[0], Configuration: configuration})
	var usageError UsageError
	if errors.As(publishError, &usageError) {
		builder.printUsage(command)
	}
	return publishError
}

func (builder *CommandBuilder) buildService(command *cobra.Command, configuration Configuration, logger *zap.Logger) (*Service, error) {
	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunnerWithWriters(command.OutOrStdout(), command.ErrOrStderr())
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, ui.NewCommandEchoPrinter(command.OutOrStdout()))
	if executorError != nil {
		return nil, executorError
	}

	hostingClient, hostingError := githubcli.NewClient(shellExecutor)
	if hostingError != nil {
		return nil, hostingError
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, managerError
	}

	var remoteInspector RemoteInspector = repositoryManager
	if configuration.RepositoryInspector == RepositoryInspectorGoGit {
		remoteInspector = gitrepo.NewGoGitRemoteInspector()
	}

	downloader, downloaderError := checksum.NewCurlDownloader(shellExecutor)
	if downloaderError != nil {
		return nil, downloaderError
	}
	checksumComputer, computerError := checksum.NewComputer(downloader, "")
	if computerError != nil {
		return nil, computerError
	}

	fileSystem := filesystem.OSFileSystem{}
	versionLocator, locatorError := manifest.NewLocator(fileSystem)
	if locatorError != nil {
		return nil, locatorError
	}
	manifestGenerator, generatorError := manifest.NewGenerator(manifest.GeneratorDependencies{
		FileSystem: fileSystem,
		Copier:     manifest.RecursiveCopier{},
	})
	if generatorError != nil {
		return nil, generatorError
	}

	return NewService(ServiceDependencies{
		HostingClient:     hostingClient,
		GitClient:         repositoryManager,
		RemoteInspector:   remoteInspector,
		ChecksumComputer:  checksumComputer,
		VersionLocator:    versionLocator,
		ManifestGenerator: manifestGenerator,
		FileSystem:        fileSystem,
		CacheLocker:       NewFileCacheLocker(logger),
		Output:            command.OutOrStdout(),
		Logger:            logger,
	})
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) (Configuration, error) {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun, flagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if flagError != nil {
			return Configuration{}, flagError
		}
		configuration.DryRun = dryRun
	}
	if command.Flags().Changed(cacheDirectoryFlagNameConstant) {
		cacheDirectory, flagError := command.Flags().GetString(cacheDirectoryFlagNameConstant)
		if flagError != nil {
			return Configuration{}, flagError
		}
		configuration.CacheDirectory = cacheDirectory
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	cacheDirectory, expandError := homeExpander.ExpandAbsolute(configuration.CacheDirectory)
	if expandError != nil {
		return Configuration{}, fmt.Errorf(cacheDirectoryResolveTemplateConstant, expandError)
	}
	configuration.CacheDirectory = cacheDirectory

	return configuration, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) printUsage(command *cobra.Command) {
	fmt.Fprintf(command.OutOrStdout(), usageLineTemplateConstant, commandUsageTemplateConstant)
	fmt.Fprintf(command.OutOrStdout(), exampleLineTemplateConstant, commandExampleTemplateConstant)
}
