package publish

import (
	"fmt"
	"strings"

	"github.com/temirov/winget-publish/internal/gitrepo"
)

const (
	defaultPackageIdentifierConstant       = "sinelaw.fresh-editor"
	defaultManifestPathConstant            = "manifests/s/sinelaw/fresh-editor"
	defaultUpstreamRepositoryConstant      = "microsoft/winget-pkgs"
	defaultForkRepositoryConstant          = "sinelaw/winget-pkgs"
	defaultBranchNameConstant              = "master"
	defaultCacheDirectoryConstant          = "~/.cache/winget-publish"
	defaultInstallerURLTemplateConstant    = "https://github.com/sinelaw/fresh/releases/download/v{version}/fresh-editor-x86_64-pc-windows-msvc.zip"
	defaultReleaseNotesURLTemplateConstant = "https://github.com/sinelaw/fresh/releases/tag/v{version}"
	versionPlaceholderConstant             = "{version}"
	configurationKeySeparatorConstant      = "."
	packageIdentifierKeyConstant           = "package_identifier"
	manifestPathKeyConstant                = "manifest_path"
	upstreamRepositoryKeyConstant          = "upstream_repository"
	forkRepositoryKeyConstant              = "fork_repository"
	defaultBranchKeyConstant               = "default_branch"
	cacheDirectoryKeyConstant              = "cache_directory"
	installerURLTemplateKeyConstant        = "installer_url_template"
	releaseNotesURLTemplateKeyConstant     = "release_notes_url_template"
	repositoryInspectorKeyConstant         = "repository_inspector"
	dryRunKeyConstant                      = "dry_run"
	requiredConfigurationTemplateConstant  = "configuration value %s must be provided"
	invalidRepositoryTemplateConstant      = "configuration value %s is invalid: %w"
	unsupportedInspectorTemplateConstant   = "configuration value %s must be %q or %q, got %q"
)

// RepositoryInspectorKind selects the backend used to read the cached clone's origin remote.
type RepositoryInspectorKind string

// Supported repository inspector backends.
const (
	RepositoryInspectorGit   RepositoryInspectorKind = RepositoryInspectorKind("git")
	RepositoryInspectorGoGit RepositoryInspectorKind = RepositoryInspectorKind("go-git")
)

// Configuration captures the publish settings loaded from configuration files, environment and flags.
type Configuration struct {
	PackageIdentifier       string                  `mapstructure:"package_identifier"`
	ManifestPath            string                  `mapstructure:"manifest_path"`
	UpstreamRepository      string                  `mapstructure:"upstream_repository"`
	ForkRepository          string                  `mapstructure:"fork_repository"`
	DefaultBranch           string                  `mapstructure:"default_branch"`
	CacheDirectory          string                  `mapstructure:"cache_directory"`
	InstallerURLTemplate    string                  `mapstructure:"installer_url_template"`
	ReleaseNotesURLTemplate string                  `mapstructure:"release_notes_url_template"`
	RepositoryInspector     RepositoryInspectorKind `mapstructure:"repository_inspector"`
	DryRun                  bool                    `mapstructure:"dry_run"`
}

// DefaultConfiguration provides the settings used to publish fresh-editor to microsoft/winget-pkgs.
func DefaultConfiguration() Configuration {
	return Configuration{
		PackageIdentifier:       defaultPackageIdentifierConstant,
		ManifestPath:            defaultManifestPathConstant,
		UpstreamRepository:      defaultUpstreamRepositoryConstant,
		ForkRepository:          defaultForkRepositoryConstant,
		DefaultBranch:           defaultBranchNameConstant,
		CacheDirectory:          defaultCacheDirectoryConstant,
		InstallerURLTemplate:    defaultInstallerURLTemplateConstant,
		ReleaseNotesURLTemplate: defaultReleaseNotesURLTemplateConstant,
		RepositoryInspector:     RepositoryInspectorGit,
		DryRun:                  false,
	}
}

// DefaultConfigurationValues renders DefaultConfiguration as viper defaults nested under keyPrefix.
func DefaultConfigurationValues(keyPrefix string) map[string]any {
	defaults := DefaultConfiguration()
	values := map[string]any{
		packageIdentifierKeyConstant:       defaults.PackageIdentifier,
		manifestPathKeyConstant:            defaults.ManifestPath,
		upstreamRepositoryKeyConstant:      defaults.UpstreamRepository,
		forkRepositoryKeyConstant:          defaults.ForkRepository,
		defaultBranchKeyConstant:           defaults.DefaultBranch,
		cacheDirectoryKeyConstant:          defaults.CacheDirectory,
		installerURLTemplateKeyConstant:    defaults.InstallerURLTemplate,
		releaseNotesURLTemplateKeyConstant: defaults.ReleaseNotesURLTemplate,
		repositoryInspectorKeyConstant:     string(defaults.RepositoryInspector),
		dryRunKeyConstant:                  defaults.DryRun,
	}

	trimmedPrefix := strings.TrimSpace(keyPrefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixedValues
}

// Sanitize trims configuration values and normalizes the inspector name without applying implicit defaults.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration

	sanitized.PackageIdentifier = strings.TrimSpace(configuration.PackageIdentifier)
	sanitized.ManifestPath = strings.Trim(strings.TrimSpace(configuration.ManifestPath), "/")
	sanitized.UpstreamRepository = strings.TrimSpace(configuration.UpstreamRepository)
	sanitized.ForkRepository = strings.TrimSpace(configuration.ForkRepository)
	sanitized.DefaultBranch = strings.TrimSpace(configuration.DefaultBranch)
	sanitized.CacheDirectory = strings.TrimSpace(configuration.CacheDirectory)
	sanitized.InstallerURLTemplate = strings.TrimSpace(configuration.InstallerURLTemplate)
	sanitized.ReleaseNotesURLTemplate = strings.TrimSpace(configuration.ReleaseNotesURLTemplate)
	sanitized.RepositoryInspector = RepositoryInspectorKind(strings.ToLower(strings.TrimSpace(string(configuration.RepositoryInspector))))

	return sanitized
}

// Validate reports the first missing or malformed setting. An empty default branch is allowed and resolved from
// the upstream repository at run time.
func (configuration Configuration) Validate() error {
	requiredValues := []struct {
		key   string
		value string
	}{
		{key: packageIdentifierKeyConstant, value: configuration.PackageIdentifier},
		{key: manifestPathKeyConstant, value: configuration.ManifestPath},
		{key: cacheDirectoryKeyConstant, value: configuration.CacheDirectory},
		{key: installerURLTemplateKeyConstant, value: configuration.InstallerURLTemplate},
		{key: releaseNotesURLTemplateKeyConstant, value: configuration.ReleaseNotesURLTemplate},
	}
	for _, required := range requiredValues {
		if len(strings.TrimSpace(required.value)) == 0 {
			return fmt.Errorf(requiredConfigurationTemplateConstant, required.key)
		}
	}

	if _, upstreamError := gitrepo.ParseRepositoryIdentifier(configuration.UpstreamRepository); upstreamError != nil {
		return fmt.Errorf(invalidRepositoryTemplateConstant, upstreamRepositoryKeyConstant, upstreamError)
	}
	if _, forkError := gitrepo.ParseRepositoryIdentifier(configuration.ForkRepository); forkError != nil {
		return fmt.Errorf(invalidRepositoryTemplateConstant, forkRepositoryKeyConstant, forkError)
	}

	switch configuration.RepositoryInspector {
	case RepositoryInspectorGit, RepositoryInspectorGoGit:
	default:
		return fmt.Errorf(unsupportedInspectorTemplateConstant, repositoryInspectorKeyConstant, RepositoryInspectorGit, RepositoryInspectorGoGit, configuration.RepositoryInspector)
	}

	return nil
}

// ExpandVersionTemplate substitutes every {version} placeholder in template.
func ExpandVersionTemplate(template string, version string) string {
	return strings.ReplaceAll(template, versionPlaceholderConstant, version)
}
