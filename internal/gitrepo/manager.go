package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/winget-publish/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	gitRemoteSubcommandConstant              = "remote"
	gitRemoteGetURLSubcommandConstant        = "get-url"
	gitRemoteAddSubcommandConstant           = "add"
	gitRemoteSetURLSubcommandConstant        = "set-url"
	gitFetchSubcommandConstant               = "fetch"
	gitResetSubcommandConstant               = "reset"
	gitResetHardFlagConstant                 = "--hard"
	gitCleanSubcommandConstant               = "clean"
	gitCleanForceDirectoriesFlagConstant     = "-fd"
	gitCheckoutSubcommandConstant            = "checkout"
	gitCheckoutCreateFlagConstant            = "-b"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitVerifyFlagConstant                    = "--verify"
	gitQuietFlagConstant                     = "--quiet"
	gitBranchSubcommandConstant              = "branch"
	gitForceDeleteFlagConstant               = "-D"
	gitAddSubcommandConstant                 = "add"
	gitAddAllPathspecConstant                = "."
	gitCommitSubcommandConstant              = "commit"
	gitMessageFlagConstant                   = "-m"
	gitPushSubcommandConstant                = "push"
	gitSetUpstreamFlagConstant               = "-u"
	localBranchReferenceTemplateConstant     = "refs/heads/%s"
	revParseMissingExitCodeConstant          = 1
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates a git operation was requested without a working directory.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// GitExecutor is the subset of execshell.ShellExecutor the manager relies on.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RemoteChange reports what EnsureRemote did to a remote definition.
type RemoteChange string

// Remote change outcomes.
const (
	RemoteUnchanged RemoteChange = RemoteChange("unchanged")
	RemoteAdded     RemoteChange = RemoteChange("added")
	RemoteUpdated   RemoteChange = RemoteChange("updated")
)

// RepositoryManager runs git commands against a working tree named by its path.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// RemoteURL returns the fetch URL configured for the remote.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.run(executionContext, repositoryPath, false, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// EnsureRemote makes remoteName point at remoteURL, adding the remote when it is missing.
func (manager *RepositoryManager) EnsureRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) (RemoteChange, error) {
	currentURL, lookupError := manager.RemoteURL(executionContext, repositoryPath, remoteName)
	if lookupError != nil {
		var failedError execshell.CommandFailedError
		if !errors.As(lookupError, &failedError) {
			return "", lookupError
		}
		if _, addError := manager.run(executionContext, repositoryPath, false, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, remoteURL); addError != nil {
			return "", addError
		}
		return RemoteAdded, nil
	}

	if currentURL == remoteURL {
		return RemoteUnchanged, nil
	}
	if _, setError := manager.run(executionContext, repositoryPath, false, gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, remoteName, remoteURL); setError != nil {
		return "", setError
	}
	return RemoteUpdated, nil
}

// Fetch downloads a single branch from the remote.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, executionError := manager.run(executionContext, repositoryPath, true, gitFetchSubcommandConstant, remoteName, branchName)
	return executionError
}

// ResetHard moves the checked-out branch and working tree to the reference, discarding local changes.
func (manager *RepositoryManager) ResetHard(executionContext context.Context, repositoryPath string, reference string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitResetSubcommandConstant, gitResetHardFlagConstant, reference)
	return executionError
}

// Clean removes untracked files and directories.
func (manager *RepositoryManager) Clean(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitCleanSubcommandConstant, gitCleanForceDirectoriesFlagConstant)
	return executionError
}

// Checkout switches to an existing branch.
func (manager *RepositoryManager) Checkout(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitCheckoutSubcommandConstant, branchName)
	return executionError
}

// BranchExists reports whether a local branch exists. git rev-parse exits with 1 when the reference is unknown.
func (manager *RepositoryManager) BranchExists(executionContext context.Context, repositoryPath string, branchName string) (bool, error) {
	localReference := fmt.Sprintf(localBranchReferenceTemplateConstant, branchName)
	_, executionError := manager.run(executionContext, repositoryPath, false, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, localReference)
	if executionError == nil {
		return true, nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) && failedError.Result.ExitCode == revParseMissingExitCodeConstant {
		return false, nil
	}
	return false, executionError
}

// DeleteBranch force-deletes a local branch.
func (manager *RepositoryManager) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitBranchSubcommandConstant, gitForceDeleteFlagConstant, branchName)
	return executionError
}

// CreateBranch creates a branch at HEAD and switches to it.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitCheckoutSubcommandConstant, gitCheckoutCreateFlagConstant, branchName)
	return executionError
}

// StageAll stages every change in the working tree.
func (manager *RepositoryManager) StageAll(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitAddSubcommandConstant, gitAddAllPathspecConstant)
	return executionError
}

// Commit records the staged changes with the message.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) error {
	_, executionError := manager.run(executionContext, repositoryPath, false, gitCommitSubcommandConstant, gitMessageFlagConstant, message)
	return executionError
}

// Push publishes the branch to the remote and records it as the upstream of the local branch. Credential prompts stay
// enabled so the operator can answer them.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, PushCommand(repositoryPath, remoteName, branchName).Details)
	return executionError
}

// CommitCommand describes the git commit invocation Commit would run.
func CommitCommand(repositoryPath string, message string) execshell.ShellCommand {
	return gitCommand(repositoryPath, false, gitCommitSubcommandConstant, gitMessageFlagConstant, message)
}

// StageAllCommand describes the git add invocation StageAll would run.
func StageAllCommand(repositoryPath string) execshell.ShellCommand {
	return gitCommand(repositoryPath, false, gitAddSubcommandConstant, gitAddAllPathspecConstant)
}

// PushCommand describes the git push invocation Push would run.
func PushCommand(repositoryPath string, remoteName string, branchName string) execshell.ShellCommand {
	pushCommand := gitCommand(repositoryPath, true, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, remoteName, branchName)
	pushCommand.Details.EnvironmentVariables = nil
	return pushCommand
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, passthroughOutput bool, arguments ...string) (execshell.ExecutionResult, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}
	command := gitCommand(repositoryPath, passthroughOutput, arguments...)
	return manager.executor.ExecuteGit(executionContext, command.Details)
}

func gitCommand(repositoryPath string, passthroughOutput bool, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:            append([]string(nil), arguments...),
			WorkingDirectory:     repositoryPath,
			EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue},
			PassthroughOutput:    passthroughOutput,
		},
	}
}
