package publish

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/winget-publish/internal/filesystem"
	"github.com/temirov/winget-publish/internal/githubcli"
	"github.com/temirov/winget-publish/internal/gitrepo"
)

const (
	originRemoteNameConstant              = "origin"
	upstreamRemoteNameConstant            = "upstream"
	headReferenceConstant                 = "HEAD"
	remoteBranchReferenceTemplateConstant = "%s/%s"
	cacheDirectoryPermissionsConstant     = 0o755
	usingCachedCloneMessageConstant       = "Using cached %s clone..."
	forkingCloneMessageConstant           = "Forking/cloning %s..."
	fetchingUpstreamMessageConstant       = "Fetching latest from upstream..."
	syncingForkMessageConstant            = "Syncing fork with upstream..."
	forkFailureLogMessageConstant         = "gh repo fork failed; assuming the fork already exists"
	upstreamRemoteLogMessageConstant      = "upstream remote configured"
	logFieldRepositoryConstant            = "repository"
	logFieldClonePathConstant             = "clone_path"
	logFieldRemoteChangeConstant          = "remote_change"
)

// HostingClient is the subset of githubcli.Client the publish workflow relies on.
type HostingClient interface {
	CheckAuthentication(executionContext context.Context) error
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
	ForkRepository(executionContext context.Context, repository string) error
	CloneRepository(executionContext context.Context, repository string, destinationPath string) error
	SyncFork(executionContext context.Context, forkRepository string, sourceRepository string, branch string) error
	CreatePullRequest(executionContext context.Context, options githubcli.PullRequestOptions) (string, error)
}

// GitClient is the subset of gitrepo.RepositoryManager the publish workflow relies on.
type GitClient interface {
	EnsureRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) (gitrepo.RemoteChange, error)
	Fetch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	ResetHard(executionContext context.Context, repositoryPath string, reference string) error
	Clean(executionContext context.Context, repositoryPath string) error
	Checkout(executionContext context.Context, repositoryPath string, branchName string) error
	BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error)
	DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error
	StageAll(executionContext context.Context, repositoryPath string) error
	Commit(executionContext context.Context, repositoryPath string, message string) error
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
}

// RemoteInspector reads the URL configured for a remote of a local clone.
type RemoteInspector interface {
	RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// SynchronizerDependencies enumerates collaborators required by the synchronizer.
type SynchronizerDependencies struct {
	HostingClient   HostingClient
	GitClient       GitClient
	RemoteInspector RemoteInspector
	FileSystem      filesystem.FileSystem
	Output          io.Writer
	Logger          *zap.Logger
}

// SynchronizeOptions describe the clone to prepare.
type SynchronizeOptions struct {
	ClonePath     string
	Fork          gitrepo.RepositoryIdentifier
	Upstream      gitrepo.RepositoryIdentifier
	DefaultBranch string
}

// Synchronizer keeps the cached clone aligned with the upstream default branch.
type Synchronizer struct {
	hostingClient   HostingClient
	gitClient       GitClient
	remoteInspector RemoteInspector
	fileSystem      filesystem.FileSystem
	output          io.Writer
	logger          *zap.Logger
}

// NewSynchronizer constructs a Synchronizer.
func NewSynchronizer(dependencies SynchronizerDependencies) (*Synchronizer, error) {
	if dependencies.HostingClient == nil {
		return nil, ErrHostingClientNotConfigured
	}
	if dependencies.GitClient == nil {
		return nil, ErrGitClientNotConfigured
	}
	if dependencies.RemoteInspector == nil {
		return nil, ErrRemoteInspectorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synchronizer{
		hostingClient:   dependencies.HostingClient,
		gitClient:       dependencies.GitClient,
		remoteInspector: dependencies.RemoteInspector,
		fileSystem:      dependencies.FileSystem,
		output:          output,
		logger:          logger,
	}, nil
}

// Synchronize reuses or creates the clone, hard-resets it to the upstream default branch and force-syncs the fork.
// A cached clone whose origin does not reference the fork is rejected before any destructive command runs.
func (synchronizer *Synchronizer) Synchronize(executionContext context.Context, options SynchronizeOptions) error {
	cloneExists, inspectError := filesystem.Exists(synchronizer.fileSystem, options.ClonePath)
	if inspectError != nil {
		return fmt.Errorf(inspectCloneErrorTemplateConstant, options.ClonePath, inspectError)
	}

	if cloneExists {
		if cachedError := synchronizer.prepareCachedClone(executionContext, options); cachedError != nil {
			return cachedError
		}
	} else {
		if cloneError := synchronizer.createClone(executionContext, options); cloneError != nil {
			return cloneError
		}
	}

	return synchronizer.alignWithUpstream(executionContext, options)
}

func (synchronizer *Synchronizer) prepareCachedClone(executionContext context.Context, options SynchronizeOptions) error {
	fmt.Fprintf(synchronizer.output, usingCachedCloneMessageConstant+"\n", options.Upstream.Repository)

	originURL, originError := synchronizer.remoteInspector.RemoteURL(executionContext, options.ClonePath, originRemoteNameConstant)
	if originError != nil {
		return fmt.Errorf(inspectOriginErrorTemplateConstant, options.ClonePath, originError)
	}
	if !gitrepo.RemoteReferencesRepository(originURL, options.Fork) {
		return UnexpectedOriginError{
			RemoteURL:          originURL,
			ExpectedRepository: options.Fork.String(),
			ClonePath:          options.ClonePath,
		}
	}

	if resetError := synchronizer.gitClient.ResetHard(executionContext, options.ClonePath, headReferenceConstant); resetError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.ClonePath, resetError)
	}
	if cleanError := synchronizer.gitClient.Clean(executionContext, options.ClonePath); cleanError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.ClonePath, cleanError)
	}
	if checkoutError := synchronizer.gitClient.Checkout(executionContext, options.ClonePath, options.DefaultBranch); checkoutError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.ClonePath, checkoutError)
	}
	return nil
}

func (synchronizer *Synchronizer) createClone(executionContext context.Context, options SynchronizeOptions) error {
	fmt.Fprintf(synchronizer.output, forkingCloneMessageConstant+"\n", options.Upstream.Repository)

	parentDirectory := filepath.Dir(options.ClonePath)
	if mkdirError := synchronizer.fileSystem.MkdirAll(parentDirectory, cacheDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(cacheDirectoryErrorTemplateConstant, parentDirectory, mkdirError)
	}

	if forkError := synchronizer.hostingClient.ForkRepository(executionContext, options.Upstream.String()); forkError != nil {
		synchronizer.logger.Warn(forkFailureLogMessageConstant, zap.String(logFieldRepositoryConstant, options.Upstream.String()), zap.Error(forkError))
	}

	if cloneError := synchronizer.hostingClient.CloneRepository(executionContext, options.Fork.String(), options.ClonePath); cloneError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.Fork.String(), cloneError)
	}
	return nil
}

func (synchronizer *Synchronizer) alignWithUpstream(executionContext context.Context, options SynchronizeOptions) error {
	fmt.Fprintln(synchronizer.output, fetchingUpstreamMessageConstant)

	upstreamURL, urlError := gitrepo.HTTPSRemoteURL(options.Upstream)
	if urlError != nil {
		return fmt.Errorf(upstreamRemoteErrorTemplateConstant, urlError)
	}
	remoteChange, remoteError := synchronizer.gitClient.EnsureRemote(executionContext, options.ClonePath, upstreamRemoteNameConstant, upstreamURL)
	if remoteError != nil {
		return fmt.Errorf(upstreamRemoteErrorTemplateConstant, remoteError)
	}
	synchronizer.logger.Debug(upstreamRemoteLogMessageConstant, zap.String(logFieldClonePathConstant, options.ClonePath), zap.String(logFieldRemoteChangeConstant, string(remoteChange)))

	if fetchError := synchronizer.gitClient.Fetch(executionContext, options.ClonePath, upstreamRemoteNameConstant, options.DefaultBranch); fetchError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.ClonePath, fetchError)
	}
	upstreamReference := fmt.Sprintf(remoteBranchReferenceTemplateConstant, upstreamRemoteNameConstant, options.DefaultBranch)
	if resetError := synchronizer.gitClient.ResetHard(executionContext, options.ClonePath, upstreamReference); resetError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.ClonePath, resetError)
	}

	fmt.Fprintln(synchronizer.output, syncingForkMessageConstant)
	if syncError := synchronizer.hostingClient.SyncFork(executionContext, options.Fork.String(), options.Upstream.String(), options.DefaultBranch); syncError != nil {
		return fmt.Errorf(synchronizeRepositoryErrorTemplateConstant, options.Fork.String(), syncError)
	}
	return nil
}
