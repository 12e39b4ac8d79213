package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/temirov/winget-publish/internal/filesystem"
)

// Locator finds the most recent version directory of a package manifest.
type Locator struct {
	fileSystem filesystem.FileSystem
}

// NewLocator constructs a Locator over the file system.
func NewLocator(fileSystem filesystem.FileSystem) (*Locator, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Locator{fileSystem: fileSystem}, nil
}

// LatestVersion returns the numerically greatest version among the subdirectories of manifestPath inside
// repositoryRoot. Entries whose names are not versions are ignored.
func (locator *Locator) LatestVersion(repositoryRoot string, manifestPath string) (Version, error) {
	manifestDirectory := filepath.Join(repositoryRoot, filepath.FromSlash(manifestPath))
	isDirectory, inspectError := filesystem.IsDirectory(locator.fileSystem, manifestDirectory)
	if inspectError != nil {
		return Version{}, fmt.Errorf(inspectDestinationErrorTemplateConstant, manifestDirectory, inspectError)
	}
	if !isDirectory {
		return Version{}, PackageNotFoundError{ManifestPath: manifestPath}
	}

	entries, listError := locator.fileSystem.ReadDir(manifestDirectory)
	if listError != nil {
		return Version{}, fmt.Errorf(listManifestsErrorTemplateConstant, manifestDirectory, listError)
	}

	var latestVersion Version
	versionFound := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidateVersion, parseError := ParseVersion(entry.Name())
		if parseError != nil {
			continue
		}
		if !versionFound || candidateVersion.Compare(latestVersion) > 0 {
			latestVersion = candidateVersion
			versionFound = true
		}
	}

	if !versionFound {
		return Version{}, ErrNoVersionsFound
	}
	return latestVersion, nil
}
