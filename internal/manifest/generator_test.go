package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/winget-publish/internal/filesystem"
	"github.com/temirov/winget-publish/internal/manifest"
)

const (
	testSourceVersionConstant         = "0.1.98"
	testInstallerFileNameConstant     = "sinelaw.fresh-editor.installer.yaml"
	testLocaleFileNameConstant        = "sinelaw.fresh-editor.locale.en-US.yaml"
	testVersionFileNameConstant       = "sinelaw.fresh-editor.yaml"
	testNotesFileNameConstant         = "README.txt"
	testVersionManifestConstant       = "PackageIdentifier: sinelaw.fresh-editor\nPackageVersion: 0.1.98\nDefaultLocale: en-US\nManifestType: version\nManifestVersion: 1.6.0\n"
	testNotesContentConstant          = "PackageVersion: 0.1.98\n"
	testExistingTargetContentConstant = "PackageVersion: keep-me\n"
	testCopyFailureMessageConstant    = "copy failed"
)

type failingCopier struct{}

func (failingCopier) CopyDirectory(string, string) error {
	return errors.New(testCopyFailureMessageConstant)
}

func writeSourceManifests(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()
	sourceDirectory := filepath.Join(repositoryRoot, filepath.FromSlash(testManifestPathConstant), testSourceVersionConstant)
	require.NoError(testInstance, os.MkdirAll(sourceDirectory, 0o755))

	sourceFiles := map[string]string{
		testInstallerFileNameConstant: testRootPortableInstallerManifestConstant,
		testLocaleFileNameConstant:    testLocaleManifestConstant,
		testVersionFileNameConstant:   testVersionManifestConstant,
		testNotesFileNameConstant:     testNotesContentConstant,
	}
	for fileName, content := range sourceFiles {
		require.NoError(testInstance, os.WriteFile(filepath.Join(sourceDirectory, fileName), []byte(content), 0o644))
	}
	return sourceDirectory
}

func newTestGenerator(testInstance *testing.T, copier manifest.DirectoryCopier) *manifest.Generator {
	testInstance.Helper()
	generator, creationError := manifest.NewGenerator(manifest.GeneratorDependencies{
		FileSystem: filesystem.OSFileSystem{},
		Copier:     copier,
	})
	require.NoError(testInstance, creationError)
	return generator
}

func testGenerateRequest(testInstance *testing.T, repositoryRoot string) manifest.GenerateRequest {
	testInstance.Helper()
	sourceVersion, sourceError := manifest.ParseVersion(testSourceVersionConstant)
	require.NoError(testInstance, sourceError)
	targetVersion, targetError := manifest.ParseVersion(testNewVersionConstant)
	require.NoError(testInstance, targetError)

	return manifest.GenerateRequest{
		RepositoryRoot: repositoryRoot,
		ManifestPath:   testManifestPathConstant,
		SourceVersion:  sourceVersion,
		TargetVersion:  targetVersion,
		Values:         testFieldValues(),
	}
}

func TestGeneratorProducesPatchedVersionDirectory(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	sourceDirectory := writeSourceManifests(testInstance, repositoryRoot)
	generator := newTestGenerator(testInstance, manifest.RecursiveCopier{})

	generatedManifests, generateError := generator.Generate(testGenerateRequest(testInstance, repositoryRoot))
	require.NoError(testInstance, generateError)

	require.Len(testInstance, generatedManifests, 3)
	require.Equal(testInstance, testInstallerFileNameConstant, generatedManifests[0].FileName)
	require.Equal(testInstance, testLocaleFileNameConstant, generatedManifests[1].FileName)
	require.Equal(testInstance, testVersionFileNameConstant, generatedManifests[2].FileName)

	targetDirectory := filepath.Join(repositoryRoot, filepath.FromSlash(testManifestPathConstant), testNewVersionConstant)
	for _, generatedManifest := range generatedManifests {
		require.Equal(testInstance, filepath.Join(targetDirectory, generatedManifest.FileName), generatedManifest.Path)
		writtenContent, readError := os.ReadFile(generatedManifest.Path)
		require.NoError(testInstance, readError)
		require.Equal(testInstance, generatedManifest.Content, string(writtenContent))

		decoded := map[string]any{}
		require.NoError(testInstance, yaml.Unmarshal(writtenContent, &decoded))
		require.Equal(testInstance, testNewVersionConstant, decoded["PackageVersion"])
	}

	installer := decodeInstallerManifest(testInstance, generatedManifests[0].Content)
	require.Equal(testInstance, testNewInstallerURLConstant, installer.Installers[0].InstallerURL)
	require.Equal(testInstance, testNewDigestConstant, installer.Installers[0].InstallerSHA256)

	locale := localeManifestFixture{}
	require.NoError(testInstance, yaml.Unmarshal([]byte(generatedManifests[1].Content), &locale))
	require.Equal(testInstance, testNewReleaseNotesConstant, locale.ReleaseNotesURL)

	copiedNotes, notesError := os.ReadFile(filepath.Join(targetDirectory, testNotesFileNameConstant))
	require.NoError(testInstance, notesError)
	require.Equal(testInstance, testNotesContentConstant, string(copiedNotes))

	sourceInstaller, sourceError := os.ReadFile(filepath.Join(sourceDirectory, testInstallerFileNameConstant))
	require.NoError(testInstance, sourceError)
	require.Equal(testInstance, testRootPortableInstallerManifestConstant, string(sourceInstaller))
}

func TestGeneratorRefusesExistingDestination(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeSourceManifests(testInstance, repositoryRoot)

	targetDirectory := filepath.Join(repositoryRoot, filepath.FromSlash(testManifestPathConstant), testNewVersionConstant)
	require.NoError(testInstance, os.MkdirAll(targetDirectory, 0o755))
	existingManifestPath := filepath.Join(targetDirectory, testVersionFileNameConstant)
	require.NoError(testInstance, os.WriteFile(existingManifestPath, []byte(testExistingTargetContentConstant), 0o644))

	generator := newTestGenerator(testInstance, manifest.RecursiveCopier{})
	_, generateError := generator.Generate(testGenerateRequest(testInstance, repositoryRoot))

	var existsError manifest.DestinationExistsError
	require.ErrorAs(testInstance, generateError, &existsError)
	require.Equal(testInstance, targetDirectory, existsError.Path)

	entries, listError := os.ReadDir(targetDirectory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, entries, 1)
	existingContent, readError := os.ReadFile(existingManifestPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testExistingTargetContentConstant, string(existingContent))
}

func TestGeneratorWrapsCopyFailure(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	writeSourceManifests(testInstance, repositoryRoot)

	generator := newTestGenerator(testInstance, failingCopier{})
	_, generateError := generator.Generate(testGenerateRequest(testInstance, repositoryRoot))
	require.Error(testInstance, generateError)
	require.Contains(testInstance, generateError.Error(), testCopyFailureMessageConstant)
}

func TestNewGeneratorValidatesDependencies(testInstance *testing.T) {
	_, missingFileSystemError := manifest.NewGenerator(manifest.GeneratorDependencies{Copier: manifest.RecursiveCopier{}})
	require.ErrorIs(testInstance, missingFileSystemError, manifest.ErrFileSystemNotConfigured)

	_, missingCopierError := manifest.NewGenerator(manifest.GeneratorDependencies{FileSystem: filesystem.OSFileSystem{}})
	require.ErrorIs(testInstance, missingCopierError, manifest.ErrCopierNotConfigured)
}
