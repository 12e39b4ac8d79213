package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/winget-publish/internal/execshell"
	"github.com/temirov/winget-publish/internal/githubcli"
	pathutils "github.com/temirov/winget-publish/internal/utils/path"
)

const testInstallerPayloadConstant = "PK\x03\x04 fresh-editor installer payload"

// scriptedCommandRunner answers git, gh and curl invocations the way the real tools would for a first publish.
type scriptedCommandRunner struct {
	testInstance    *testing.T
	commands        []string
	unauthenticated bool
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command.String())
	arguments := command.Details.Arguments

	switch command.Name {
	case execshell.CommandCurl:
		outputPath := argumentFollowing(arguments, "--output")
		require.NoError(runner.testInstance, os.WriteFile(outputPath, []byte(testInstallerPayloadConstant), 0o600))
	case execshell.CommandGitHub:
		switch strings.Join(arguments[:2], " ") {
		case "auth status":
			if runner.unauthenticated {
				return execshell.ExecutionResult{ExitCode: 1, StandardError: "You are not logged into any GitHub hosts."}, nil
			}
		case "repo clone":
			writeManifestRepository(runner.testInstance, arguments[3])
		case "pr create":
			return execshell.ExecutionResult{StandardOutput: testPullRequestURLConstant + "\n"}, nil
		}
	case execshell.CommandGit:
		switch arguments[0] {
		case "remote":
			if arguments[1] == "get-url" {
				return execshell.ExecutionResult{ExitCode: 2, StandardError: "error: No such remote '" + arguments[2] + "'"}, nil
			}
		case "rev-parse":
			return execshell.ExecutionResult{ExitCode: 1}, nil
		}
	}
	return execshell.ExecutionResult{}, nil
}

func argumentFollowing(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return ""
}

func buildTestCommand(testInstance *testing.T, builder *CommandBuilder, arguments ...string) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	return command, output
}

func TestCommandBuilds(testInstance *testing.T) {
	builder := CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.IsType(testInstance, &cobra.Command{}, command)
	require.NotNil(testInstance, command.Flags().Lookup(dryRunFlagNameConstant))
	require.NotNil(testInstance, command.Flags().Lookup(cacheDirectoryFlagNameConstant))
}

func TestCommandPublishesThroughExternalTools(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	runner := &scriptedCommandRunner{testInstance: testInstance}
	builder := &CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() Configuration {
			configuration := DefaultConfiguration()
			configuration.CacheDirectory = "~/winget-cache"
			return configuration
		},
		CommandRunner: runner,
		HomeExpander:  pathutils.NewHomeExpanderWithProvider(func() (string, error) { return homeDirectory, nil }),
	}
	command, output := buildTestCommand(testInstance, builder, testVersionConstant)

	require.NoError(testInstance, command.Execute())

	clonePath := filepath.Join(homeDirectory, "winget-cache", testCloneDirectoryConstant)
	require.Len(testInstance, runner.commands, 15)
	require.Equal(testInstance, "gh auth status", runner.commands[0])
	require.True(testInstance, strings.HasPrefix(runner.commands[1], "curl --fail --location --silent --show-error --output "))
	require.True(testInstance, strings.HasSuffix(runner.commands[1], " "+testInstallerURLConstant))
	require.Equal(testInstance, []string{
		"gh repo fork microsoft/winget-pkgs --clone=false",
		"gh repo clone sinelaw/winget-pkgs " + clonePath,
		"git remote get-url upstream",
		"git remote add upstream " + testUpstreamURLConstant,
		"git fetch upstream master",
		"git reset --hard upstream/master",
		"gh repo sync sinelaw/winget-pkgs --source microsoft/winget-pkgs --branch master --force",
		"git rev-parse --verify --quiet refs/heads/" + testBranchConstant,
		"git checkout -b " + testBranchConstant,
		"git add .",
		"git commit -m " + testCommitMessageConstant,
		"git push -u origin " + testBranchConstant,
	}, runner.commands[2:14])
	require.True(testInstance, strings.HasPrefix(runner.commands[14], "gh pr create --repo microsoft/winget-pkgs --base master --head sinelaw:"+testBranchConstant+" --title "+testCommitMessageConstant+" --body ## Description"))

	expectedDigest := sha256.Sum256([]byte(testInstallerPayloadConstant))
	installerContent := readGeneratedManifest(testInstance, clonePath, testInstallerFileNameConstant)
	require.Contains(testInstance, installerContent, "  InstallerSha256: "+hex.EncodeToString(expectedDigest[:])+"\n")
	require.Contains(testInstance, installerContent, "  InstallerUrl: "+testInstallerURLConstant+"\n")

	printed := output.String()
	require.Contains(testInstance, printed, "  $ gh auth status\n")
	require.Contains(testInstance, printed, "SHA256: "+hex.EncodeToString(expectedDigest[:])+"\n")
	require.Contains(testInstance, printed, "Pull request created: "+testPullRequestURLConstant+"\n")
}

func TestCommandRequiresSingleVersionArgument(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "none", arguments: []string{}},
		{name: "two", arguments: []string{"0.1.99", "0.1.100"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			runner := &scriptedCommandRunner{testInstance: subtest}
			command, output := buildTestCommand(subtest, &CommandBuilder{CommandRunner: runner}, testCase.arguments...)

			executionError := command.Execute()
			var usageError UsageError
			require.ErrorAs(subtest, executionError, &usageError)
			require.Equal(subtest, "Usage: winget-publish <version>\nExample: winget-publish 0.1.99\n", output.String())
			require.Empty(subtest, runner.commands)
		})
	}
}

func TestCommandPrintsUsageForInvalidVersion(testInstance *testing.T) {
	runner := &scriptedCommandRunner{testInstance: testInstance}
	builder := &CommandBuilder{CommandRunner: runner}
	command, output := buildTestCommand(testInstance, builder, "--cache-directory", testInstance.TempDir(), "latest")

	executionError := command.Execute()
	var usageError UsageError
	require.ErrorAs(testInstance, executionError, &usageError)
	require.Contains(testInstance, output.String(), "Usage: winget-publish <version>\n")
	require.Empty(testInstance, runner.commands)
}

func TestCommandReportsMissingAuthentication(testInstance *testing.T) {
	runner := &scriptedCommandRunner{testInstance: testInstance, unauthenticated: true}
	command, _ := buildTestCommand(testInstance, &CommandBuilder{CommandRunner: runner}, "--cache-directory", testInstance.TempDir(), testVersionConstant)

	executionError := command.Execute()
	require.ErrorIs(testInstance, executionError, githubcli.ErrNotAuthenticated)
	require.Contains(testInstance, executionError.Error(), "Please authenticate with GitHub first: gh auth login")
	require.Equal(testInstance, []string{"gh auth status"}, runner.commands)
}

func TestCommandDryRunFlagOverridesConfiguration(testInstance *testing.T) {
	cacheDirectory := testInstance.TempDir()
	runner := &scriptedCommandRunner{testInstance: testInstance}
	command, output := buildTestCommand(testInstance, &CommandBuilder{CommandRunner: runner}, "--dry-run", "--cache-directory", cacheDirectory, testVersionConstant)

	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, "git checkout -b "+testBranchConstant, runner.commands[len(runner.commands)-1])
	require.Contains(testInstance, output.String(), "  $ git add .\n")
	require.NotContains(testInstance, output.String(), "Pull request created")
	require.DirExists(testInstance, filepath.Join(cacheDirectory, testCloneDirectoryConstant, filepath.FromSlash(defaultManifestPathConstant), testVersionConstant))
}

func TestCommandReadsOriginWithGoGitInspector(testInstance *testing.T) {
	cacheDirectory := testInstance.TempDir()
	clonePath := filepath.Join(cacheDirectory, testCloneDirectoryConstant)
	repository, initError := git.PlainInit(clonePath, false)
	require.NoError(testInstance, initError)
	_, remoteError := repository.CreateRemote(&config.RemoteConfig{Name: originRemoteNameConstant, URLs: []string{testForkOriginURLConstant}})
	require.NoError(testInstance, remoteError)
	writeManifestRepository(testInstance, clonePath)

	runner := &scriptedCommandRunner{testInstance: testInstance}
	builder := &CommandBuilder{
		ConfigurationProvider: func() Configuration {
			configuration := DefaultConfiguration()
			configuration.RepositoryInspector = RepositoryInspectorGoGit
			configuration.CacheDirectory = cacheDirectory
			return configuration
		},
		CommandRunner: runner,
	}
	command, _ := buildTestCommand(testInstance, builder, testVersionConstant)

	require.NoError(testInstance, command.Execute())
	require.NotContains(testInstance, runner.commands, "git remote get-url origin")
	require.Equal(testInstance, []string{"git reset --hard HEAD", "git clean -fd", "git checkout master"}, runner.commands[2:5])
}
