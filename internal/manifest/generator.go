package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/copy"

	"github.com/temirov/winget-publish/internal/filesystem"
)

const (
	manifestFileExtensionConstant   = ".yaml"
	manifestFilePermissionsConstant = 0o644
)

// DirectoryCopier copies a directory tree to a destination that does not exist yet.
type DirectoryCopier interface {
	CopyDirectory(sourcePath string, destinationPath string) error
}

// RecursiveCopier copies directory trees with github.com/otiai10/copy, keeping symbolic links as links.
type RecursiveCopier struct{}

// CopyDirectory copies sourcePath into destinationPath recursively.
func (RecursiveCopier) CopyDirectory(sourcePath string, destinationPath string) error {
	return copy.Copy(sourcePath, destinationPath, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
		Sync: true,
	})
}

// GeneratorDependencies enumerates collaborators required by the generator.
type GeneratorDependencies struct {
	FileSystem filesystem.FileSystem
	Copier     DirectoryCopier
}

// GenerateRequest describes the new version directory to produce.
type GenerateRequest struct {
	RepositoryRoot string
	ManifestPath   string
	SourceVersion  Version
	TargetVersion  Version
	Values         FieldValues
}

// GeneratedManifest is a manifest file written for the new version.
type GeneratedManifest struct {
	FileName string
	Path     string
	Content  string
}

// Generator creates a version directory by copying the previous one and patching its manifests.
type Generator struct {
	fileSystem filesystem.FileSystem
	copier     DirectoryCopier
}

// NewGenerator constructs a Generator.
func NewGenerator(dependencies GeneratorDependencies) (*Generator, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Copier == nil {
		return nil, ErrCopierNotConfigured
	}
	return &Generator{fileSystem: dependencies.FileSystem, copier: dependencies.Copier}, nil
}

// Generate copies the source version directory to the target version and patches every manifest in it. The returned
// manifests are sorted by file name. An existing target directory is left untouched and reported as
// DestinationExistsError.
func (generator *Generator) Generate(request GenerateRequest) ([]GeneratedManifest, error) {
	manifestDirectory := filepath.Join(request.RepositoryRoot, filepath.FromSlash(request.ManifestPath))
	sourceDirectory := filepath.Join(manifestDirectory, request.SourceVersion.String())
	targetDirectory := filepath.Join(manifestDirectory, request.TargetVersion.String())

	targetExists, inspectError := filesystem.Exists(generator.fileSystem, targetDirectory)
	if inspectError != nil {
		return nil, fmt.Errorf(inspectDestinationErrorTemplateConstant, targetDirectory, inspectError)
	}
	if targetExists {
		return nil, DestinationExistsError{Path: targetDirectory}
	}

	if copyError := generator.copier.CopyDirectory(sourceDirectory, targetDirectory); copyError != nil {
		return nil, fmt.Errorf(copyManifestsErrorTemplateConstant, sourceDirectory, targetDirectory, copyError)
	}

	entries, listError := generator.fileSystem.ReadDir(targetDirectory)
	if listError != nil {
		return nil, fmt.Errorf(listManifestsErrorTemplateConstant, targetDirectory, listError)
	}

	generatedManifests := make([]GeneratedManifest, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), manifestFileExtensionConstant) {
			continue
		}

		manifestFilePath := filepath.Join(targetDirectory, entry.Name())
		originalContent, readError := generator.fileSystem.ReadFile(manifestFilePath)
		if readError != nil {
			return nil, fmt.Errorf(readManifestErrorTemplateConstant, manifestFilePath, readError)
		}

		patchedContent := PatchManifest(string(originalContent), request.Values)
		if writeError := generator.fileSystem.WriteFile(manifestFilePath, []byte(patchedContent), manifestFilePermissionsConstant); writeError != nil {
			return nil, fmt.Errorf(writeManifestErrorTemplateConstant, manifestFilePath, writeError)
		}

		generatedManifests = append(generatedManifests, GeneratedManifest{
			FileName: entry.Name(),
			Path:     manifestFilePath,
			Content:  patchedContent,
		})
	}

	sort.Slice(generatedManifests, func(leftIndex int, rightIndex int) bool {
		return generatedManifests[leftIndex].FileName < generatedManifests[rightIndex].FileName
	})
	return generatedManifests, nil
}
