package publish

import (
	"errors"
	"fmt"
)

const (
	usageErrorTemplateConstant                 = "%s: %s"
	unexpectedOriginErrorTemplateConstant      = "unexpected origin remote: %s; expected %s. Delete %s and retry"
	authenticationGuidanceMessageConstant      = "Please authenticate with GitHub first: gh auth login"
	hostingClientMissingMessageConstant        = "hosting client not configured"
	gitClientMissingMessageConstant            = "git client not configured"
	remoteInspectorMissingMessageConstant      = "remote inspector not configured"
	checksumComputerMissingMessageConstant     = "checksum computer not configured"
	versionLocatorMissingMessageConstant       = "version locator not configured"
	manifestGeneratorMissingMessageConstant    = "manifest generator not configured"
	fileSystemMissingMessageConstant           = "file system not configured"
	authenticationErrorTemplateConstant        = "%w. %s"
	checksumErrorTemplateConstant              = "unable to compute installer checksum: %w"
	cacheDirectoryErrorTemplateConstant        = "unable to prepare cache directory %s: %w"
	lockErrorTemplateConstant                  = "unable to lock cache directory %s: %w"
	defaultBranchErrorTemplateConstant         = "unable to resolve default branch of %s: %w"
	inspectOriginErrorTemplateConstant         = "unable to read origin remote of %s: %w"
	inspectCloneErrorTemplateConstant          = "unable to inspect cached clone %s: %w"
	locateVersionErrorTemplateConstant         = "unable to find latest version: %w"
	generateManifestsErrorTemplateConstant     = "unable to generate manifests: %w"
	prepareBranchErrorTemplateConstant         = "unable to prepare branch %s: %w"
	upstreamRemoteErrorTemplateConstant        = "unable to configure upstream remote: %w"
	synchronizeRepositoryErrorTemplateConstant = "unable to synchronize %s: %w"
	publishChangesErrorTemplateConstant        = "unable to publish changes: %w"
)

var (
	// ErrHostingClientNotConfigured indicates the service was constructed without a GitHub client.
	ErrHostingClientNotConfigured = errors.New(hostingClientMissingMessageConstant)
	// ErrGitClientNotConfigured indicates the service was constructed without a git client.
	ErrGitClientNotConfigured = errors.New(gitClientMissingMessageConstant)
	// ErrRemoteInspectorNotConfigured indicates the synchronizer was constructed without a remote inspector.
	ErrRemoteInspectorNotConfigured = errors.New(remoteInspectorMissingMessageConstant)
	// ErrChecksumComputerNotConfigured indicates the service was constructed without a checksum computer.
	ErrChecksumComputerNotConfigured = errors.New(checksumComputerMissingMessageConstant)
	// ErrVersionLocatorNotConfigured indicates the service was constructed without a version locator.
	ErrVersionLocatorNotConfigured = errors.New(versionLocatorMissingMessageConstant)
	// ErrManifestGeneratorNotConfigured indicates the service was constructed without a manifest generator.
	ErrManifestGeneratorNotConfigured = errors.New(manifestGeneratorMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates a component was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
)

// UsageError reports invalid command-line input.
type UsageError struct {
	Message string
	Cause   error
}

// Error describes the usage problem.
func (usageError UsageError) Error() string {
	if usageError.Cause == nil {
		return usageError.Message
	}
	return fmt.Sprintf(usageErrorTemplateConstant, usageError.Message, usageError.Cause)
}

// Unwrap exposes the underlying cause.
func (usageError UsageError) Unwrap() error {
	return usageError.Cause
}

// UnexpectedOriginError reports a cached clone whose origin remote does not reference the configured fork.
type UnexpectedOriginError struct {
	RemoteURL          string
	ExpectedRepository string
	ClonePath          string
}

// Error describes the mismatched remote and how to recover.
func (originError UnexpectedOriginError) Error() string {
	return fmt.Sprintf(unexpectedOriginErrorTemplateConstant, originError.RemoteURL, originError.ExpectedRepository, originError.ClonePath)
}
