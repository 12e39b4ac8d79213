package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/winget-publish/internal/filesystem"
	"github.com/temirov/winget-publish/internal/githubcli"
	"github.com/temirov/winget-publish/internal/gitrepo"
	"github.com/temirov/winget-publish/internal/manifest"
)

const (
	branchNameTemplateConstant              = "%s-%s"
	invalidVersionMessageConstant           = "invalid version"
	emptyDefaultBranchMessageConstant       = "upstream reported no default branch"
	publishingMessageTemplateConstant       = "Publishing %s version %s"
	installerURLMessageTemplateConstant     = "Installer URL: %s"
	computingChecksumMessageConstant        = "Computing SHA256..."
	downloadingMessageTemplateConstant      = "Downloading %s..."
	checksumMessageTemplateConstant         = "SHA256: %s"
	findingVersionMessageConstant           = "Finding latest existing version..."
	latestVersionMessageTemplateConstant    = "Latest version: %s"
	creatingBranchMessageTemplateConstant   = "Creating branch %s..."
	copyingManifestsMessageTemplateConstant = "Copying manifests from %s to %s..."
	updatingManifestsMessageConstant        = "Updating version, URL, and SHA256..."
	updatedManifestsMessageConstant         = "Updated manifests:"
	manifestHeaderTemplateConstant          = "--- %s ---"
	defaultBranchResolvedLogMessageConstant = "resolved upstream default branch"
	publishStartedLogMessageConstant        = "publish started"
	publishCompletedLogMessageConstant      = "publish completed"
	staleBranchLogMessageConstant           = "deleting stale local branch"
	logFieldPackageConstant                 = "package"
	logFieldVersionConstant                 = "version"
	logFieldBranchConstant                  = "branch"
	logFieldPreviousVersionConstant         = "previous_version"
	logFieldPullRequestConstant             = "pull_request"
	logFieldDryRunConstant                  = "dry_run"
)

// ChecksumComputer downloads a resource and returns its lowercase hex SHA-256 digest.
type ChecksumComputer interface {
	Compute(executionContext context.Context, url string) (string, error)
}

// VersionLocator finds the most recent version directory of a package.
type VersionLocator interface {
	LatestVersion(repositoryRoot string, manifestPath string) (manifest.Version, error)
}

// ManifestGenerator produces a new version directory from an existing one.
type ManifestGenerator interface {
	Generate(request manifest.GenerateRequest) ([]manifest.GeneratedManifest, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	HostingClient     HostingClient
	GitClient         GitClient
	RemoteInspector   RemoteInspector
	ChecksumComputer  ChecksumComputer
	VersionLocator    VersionLocator
	ManifestGenerator ManifestGenerator
	FileSystem        filesystem.FileSystem
	CacheLocker       CacheLocker
	Output            io.Writer
	Logger            *zap.Logger
}

// Options configure a single publish run. Configuration.CacheDirectory must already be an absolute path.
type Options struct {
	Version       string
	Configuration Configuration
}

// Result captures the outcome of a publish run.
type Result struct {
	Version         manifest.Version
	PreviousVersion manifest.Version
	Branch          string
	InstallerURL    string
	InstallerSHA256 string
	Manifests       []manifest.GeneratedManifest
	PullRequestURL  string
	DryRun          bool
}

// Service runs the publish pipeline from checksum computation to pull request creation.
type Service struct {
	hostingClient     HostingClient
	gitClient         GitClient
	checksumComputer  ChecksumComputer
	versionLocator    VersionLocator
	manifestGenerator ManifestGenerator
	fileSystem        filesystem.FileSystem
	cacheLocker       CacheLocker
	synchronizer      *Synchronizer
	publisher         *Publisher
	output            io.Writer
	logger            *zap.Logger
}

// NewService constructs a Service from the provided dependencies. CacheLocker is optional.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.ChecksumComputer == nil {
		return nil, ErrChecksumComputerNotConfigured
	}
	if dependencies.VersionLocator == nil {
		return nil, ErrVersionLocatorNotConfigured
	}
	if dependencies.ManifestGenerator == nil {
		return nil, ErrManifestGeneratorNotConfigured
	}

	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	synchronizer, synchronizerError := NewSynchronizer(SynchronizerDependencies{
		HostingClient:   dependencies.HostingClient,
		GitClient:       dependencies.GitClient,
		RemoteInspector: dependencies.RemoteInspector,
		FileSystem:      dependencies.FileSystem,
		Output:          output,
		Logger:          logger,
	})
	if synchronizerError != nil {
		return nil, synchronizerError
	}

	publisher, publisherError := NewPublisher(dependencies.GitClient, dependencies.HostingClient, output)
	if publisherError != nil {
		return nil, publisherError
	}

	return &Service{
		hostingClient:     dependencies.HostingClient,
		gitClient:         dependencies.GitClient,
		checksumComputer:  dependencies.ChecksumComputer,
		versionLocator:    dependencies.VersionLocator,
		manifestGenerator: dependencies.ManifestGenerator,
		fileSystem:        dependencies.FileSystem,
		cacheLocker:       dependencies.CacheLocker,
		synchronizer:      synchronizer,
		publisher:         publisher,
		output:            output,
		logger:            logger,
	}, nil
}

// Publish validates the version, prepares the cached clone, generates the new manifests and opens the pull request.
// In dry-run mode the commit, push and pull request commands are printed instead of executed.
func (service *Service) Publish(executionContext context.Context, options Options) (result Result, publishError error) {
	version, versionError := manifest.ParseVersion(options.Version)
	if versionError != nil {
		return Result{}, UsageError{Message: invalidVersionMessageConstant, Cause: versionError}
	}

	configuration := options.Configuration.Sanitize()
	if validationError := configuration.Validate(); validationError != nil {
		return Result{}, validationError
	}
	upstream, _ := gitrepo.ParseRepositoryIdentifier(configuration.UpstreamRepository)
	fork, _ := gitrepo.ParseRepositoryIdentifier(configuration.ForkRepository)

	result = Result{
		Version:      version,
		Branch:       fmt.Sprintf(branchNameTemplateConstant, configuration.PackageIdentifier, version.String()),
		InstallerURL: ExpandVersionTemplate(configuration.InstallerURLTemplate, version.String()),
		DryRun:       configuration.DryRun,
	}
	releaseNotesURL := ExpandVersionTemplate(configuration.ReleaseNotesURLTemplate, version.String())

	service.logger.Info(publishStartedLogMessageConstant,
		zap.String(logFieldPackageConstant, configuration.PackageIdentifier),
		zap.String(logFieldVersionConstant, version.String()),
		zap.Bool(logFieldDryRunConstant, configuration.DryRun),
	)
	service.printf(publishingMessageTemplateConstant, configuration.PackageIdentifier, version.String())
	service.printf(installerURLMessageTemplateConstant, result.InstallerURL)
	fmt.Fprintln(service.output)

	if authenticationError := service.hostingClient.CheckAuthentication(executionContext); authenticationError != nil {
		if errors.Is(authenticationError, githubcli.ErrNotAuthenticated) {
			return Result{}, fmt.Errorf(authenticationErrorTemplateConstant, authenticationError, authenticationGuidanceMessageConstant)
		}
		return Result{}, authenticationError
	}

	fmt.Fprintln(service.output, computingChecksumMessageConstant)
	service.printf(downloadingMessageTemplateConstant, result.InstallerURL)
	digest, checksumError := service.checksumComputer.Compute(executionContext, result.InstallerURL)
	if checksumError != nil {
		return Result{}, fmt.Errorf(checksumErrorTemplateConstant, checksumError)
	}
	result.InstallerSHA256 = digest
	service.printf(checksumMessageTemplateConstant, digest)
	fmt.Fprintln(service.output)

	cacheDirectory := filepath.Clean(configuration.CacheDirectory)
	if mkdirError := service.fileSystem.MkdirAll(cacheDirectory, cacheDirectoryPermissionsConstant); mkdirError != nil {
		return Result{}, fmt.Errorf(cacheDirectoryErrorTemplateConstant, cacheDirectory, mkdirError)
	}
	if service.cacheLocker != nil {
		release, lockError := service.cacheLocker.Acquire(executionContext, cacheDirectory)
		if lockError != nil {
			return Result{}, fmt.Errorf(lockErrorTemplateConstant, cacheDirectory, lockError)
		}
		defer func() {
			if releaseError := release(); releaseError != nil && publishError == nil {
				publishError = fmt.Errorf(lockErrorTemplateConstant, cacheDirectory, releaseError)
			}
		}()
	}

	defaultBranch, branchError := service.resolveDefaultBranch(executionContext, configuration.DefaultBranch, upstream)
	if branchError != nil {
		return Result{}, branchError
	}

	clonePath := filepath.Join(cacheDirectory, upstream.Repository)
	synchronizeError := service.synchronizer.Synchronize(executionContext, SynchronizeOptions{
		ClonePath:     clonePath,
		Fork:          fork,
		Upstream:      upstream,
		DefaultBranch: defaultBranch,
	})
	if synchronizeError != nil {
		return Result{}, synchronizeError
	}

	fmt.Fprintln(service.output, findingVersionMessageConstant)
	previousVersion, locateError := service.versionLocator.LatestVersion(clonePath, configuration.ManifestPath)
	if locateError != nil {
		return Result{}, fmt.Errorf(locateVersionErrorTemplateConstant, locateError)
	}
	result.PreviousVersion = previousVersion
	service.printf(latestVersionMessageTemplateConstant, previousVersion.String())

	service.printf(creatingBranchMessageTemplateConstant, result.Branch)
	if prepareError := service.prepareBranch(executionContext, clonePath, result.Branch); prepareError != nil {
		return Result{}, prepareError
	}

	service.printf(copyingManifestsMessageTemplateConstant, previousVersion.String(), version.String())
	fmt.Fprintln(service.output, updatingManifestsMessageConstant)
	generatedManifests, generateError := service.manifestGenerator.Generate(manifest.GenerateRequest{
		RepositoryRoot: clonePath,
		ManifestPath:   configuration.ManifestPath,
		SourceVersion:  previousVersion,
		TargetVersion:  version,
		Values: manifest.FieldValues{
			PackageVersion:  version.String(),
			InstallerURL:    result.InstallerURL,
			InstallerSHA256: digest,
			ReleaseNotesURL: releaseNotesURL,
		},
	})
	if generateError != nil {
		return Result{}, fmt.Errorf(generateManifestsErrorTemplateConstant, generateError)
	}
	result.Manifests = generatedManifests
	service.printManifests(generatedManifests)

	commitMessage := CommitMessage(configuration.PackageIdentifier, version.String())
	publishRequest := PublishRequest{
		ClonePath:     clonePath,
		Branch:        result.Branch,
		CommitMessage: commitMessage,
		PullRequest: githubcli.PullRequestOptions{
			Repository:    upstream.String(),
			BaseBranch:    defaultBranch,
			HeadReference: HeadReference(fork, result.Branch),
			Title:         commitMessage,
			Body:          PullRequestBody(configuration.ManifestPath, upstream),
		},
	}

	if configuration.DryRun {
		if _, describeError := service.publisher.Describe(publishRequest); describeError != nil {
			return Result{}, describeError
		}
		service.logCompletion(result)
		return result, nil
	}

	pullRequestURL, publishChangesError := service.publisher.Publish(executionContext, publishRequest)
	if publishChangesError != nil {
		return Result{}, publishChangesError
	}
	result.PullRequestURL = pullRequestURL
	service.logCompletion(result)
	return result, nil
}

func (service *Service) resolveDefaultBranch(executionContext context.Context, configuredBranch string, upstream gitrepo.RepositoryIdentifier) (string, error) {
	if len(configuredBranch) > 0 {
		return configuredBranch, nil
	}

	metadata, metadataError := service.hostingClient.ResolveRepoMetadata(executionContext, upstream.String())
	if metadataError != nil {
		return "", fmt.Errorf(defaultBranchErrorTemplateConstant, upstream.String(), metadataError)
	}
	if len(metadata.DefaultBranch) == 0 {
		return "", fmt.Errorf(defaultBranchErrorTemplateConstant, upstream.String(), errors.New(emptyDefaultBranchMessageConstant))
	}

	service.logger.Info(defaultBranchResolvedLogMessageConstant, zap.String(logFieldRepositoryConstant, upstream.String()), zap.String(logFieldBranchConstant, metadata.DefaultBranch))
	return metadata.DefaultBranch, nil
}

func (service *Service) prepareBranch(executionContext context.Context, clonePath string, branch string) error {
	branchExists, existsError := service.gitClient.BranchExists(executionContext, clonePath, branch)
	if existsError != nil {
		return fmt.Errorf(prepareBranchErrorTemplateConstant, branch, existsError)
	}
	if branchExists {
		service.logger.Info(staleBranchLogMessageConstant, zap.String(logFieldBranchConstant, branch))
		if deleteError := service.gitClient.DeleteBranch(executionContext, clonePath, branch); deleteError != nil {
			return fmt.Errorf(prepareBranchErrorTemplateConstant, branch, deleteError)
		}
	}
	if createError := service.gitClient.CreateBranch(executionContext, clonePath, branch); createError != nil {
		return fmt.Errorf(prepareBranchErrorTemplateConstant, branch, createError)
	}
	return nil
}

func (service *Service) printManifests(generatedManifests []manifest.GeneratedManifest) {
	fmt.Fprintln(service.output)
	fmt.Fprintln(service.output, updatedManifestsMessageConstant)
	for _, generatedManifest := range generatedManifests {
		service.printf(manifestHeaderTemplateConstant, generatedManifest.FileName)
		fmt.Fprintln(service.output, generatedManifest.Content)
	}
}

func (service *Service) printf(template string, arguments ...any) {
	fmt.Fprintf(service.output, template+"\n", arguments...)
}

func (service *Service) logCompletion(result Result) {
	service.logger.Info(publishCompletedLogMessageConstant,
		zap.String(logFieldVersionConstant, result.Version.String()),
		zap.String(logFieldPreviousVersionConstant, result.PreviousVersion.String()),
		zap.String(logFieldBranchConstant, result.Branch),
		zap.String(logFieldPullRequestConstant, result.PullRequestURL),
		zap.Bool(logFieldDryRunConstant, result.DryRun),
	)
}
