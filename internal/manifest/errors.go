package manifest

import (
	"errors"
	"fmt"
)

const (
	noVersionsFoundMessageConstant          = "no existing versions found"
	packageNotFoundTemplateConstant         = "package not found in upstream: %s"
	destinationExistsTemplateConstant       = "manifest directory already exists: %s"
	copyManifestsErrorTemplateConstant      = "unable to copy manifests from %s to %s: %w"
	readManifestErrorTemplateConstant       = "unable to read manifest %s: %w"
	writeManifestErrorTemplateConstant      = "unable to write manifest %s: %w"
	listManifestsErrorTemplateConstant      = "unable to list manifests in %s: %w"
	inspectDestinationErrorTemplateConstant = "unable to inspect %s: %w"
	fileSystemMissingMessageConstant        = "manifest file system not configured"
	copierMissingMessageConstant            = "manifest directory copier not configured"
)

// ErrNoVersionsFound indicates the manifest directory holds no version subdirectories.
var ErrNoVersionsFound = errors.New(noVersionsFoundMessageConstant)

// ErrFileSystemNotConfigured indicates a component was constructed without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrCopierNotConfigured indicates the generator was constructed without a directory copier.
var ErrCopierNotConfigured = errors.New(copierMissingMessageConstant)

// PackageNotFoundError reports a manifest path that does not exist in the clone.
type PackageNotFoundError struct {
	ManifestPath string
}

// Error describes the missing package.
func (notFoundError PackageNotFoundError) Error() string {
	return fmt.Sprintf(packageNotFoundTemplateConstant, notFoundError.ManifestPath)
}

// DestinationExistsError reports a target version directory that is already present.
type DestinationExistsError struct {
	Path string
}

// Error describes the conflicting directory.
func (existsError DestinationExistsError) Error() string {
	return fmt.Sprintf(destinationExistsTemplateConstant, existsError.Path)
}
