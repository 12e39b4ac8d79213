package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	exitCodeSuffixTemplateConstant          = " (exit code %d%s)"
	executionFailureSuffixTemplateConstant  = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitRemoteAddSubcommandNameConstant    = "add"
	gitRemoteSetURLSubcommandNameConstant = "set-url"
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitCheckoutSubcommandNameConstant     = "checkout"
	gitCheckoutCreateFlagConstant         = "-b"
	gitBranchSubcommandNameConstant       = "branch"
	gitBranchForceDeleteFlagConstant      = "-D"
	gitFetchSubcommandNameConstant        = "fetch"
	gitResetSubcommandNameConstant        = "reset"
	gitCleanSubcommandNameConstant        = "clean"
	gitPushSubcommandNameConstant         = "push"
	gitAddSubcommandNameConstant          = "add"
	gitCommitSubcommandNameConstant       = "commit"
	gitMessageFlagConstant                = "-m"
)

const (
	githubAuthSubcommandNameConstant          = "auth"
	githubAuthStatusSubcommandNameConstant    = "status"
	githubRepoSubcommandNameConstant          = "repo"
	githubRepoForkSubcommandNameConstant      = "fork"
	githubRepoCloneSubcommandNameConstant     = "clone"
	githubRepoSyncSubcommandNameConstant      = "sync"
	githubPullRequestSubcommandNameConstant   = "pr"
	githubPullRequestCreateSubcommandConstant = "create"
	githubRepoFlagConstant                    = "--repo"
	githubHeadFlagConstant                    = "--head"
	githubBaseFlagConstant                    = "--base"
	githubSourceFlagConstant                  = "--source"
)

// messageTemplates holds the four lifecycle templates of a single command family.
// Failure templates receive the exit code suffix; execution failure templates receive the cause suffix.
type messageTemplates struct {
	started         string
	succeeded       string
	failed          string
	executionFailed string
}

var (
	gitRemoteLookupTemplates = messageTemplates{
		started:         "Checking %s remote in %s",
		succeeded:       "Read %s remote in %s",
		failed:          "Failed to read %s remote in %s",
		executionFailed: "Unable to read %s remote in %s",
	}
	gitRemoteAddTemplates = messageTemplates{
		started:         "Adding %s remote in %s pointing to %s",
		succeeded:       "Added %s remote in %s pointing to %s",
		failed:          "Failed to add %s remote in %s pointing to %s",
		executionFailed: "Unable to add %s remote in %s pointing to %s",
	}
	gitRemoteUpdateTemplates = messageTemplates{
		started:         "Updating %s remote in %s to %s",
		succeeded:       "%s remote in %s now points to %s",
		failed:          "Failed to update %s remote in %s to %s",
		executionFailed: "Unable to update %s remote in %s to %s",
	}
	gitRevisionTemplates = messageTemplates{
		started:         "Resolving %s in %s",
		succeeded:       "Resolved %s in %s",
		failed:          "Could not resolve %s in %s",
		executionFailed: "Unable to resolve %s in %s",
	}
	gitCheckoutTemplates = messageTemplates{
		started:         "Switching %s to branch %s",
		succeeded:       "%s now on branch %s",
		failed:          "Failed to switch %s to branch %s",
		executionFailed: "Unable to switch %s to branch %s",
	}
	gitBranchCreationTemplates = messageTemplates{
		started:         "Creating branch %s in %s",
		succeeded:       "Created branch %s in %s",
		failed:          "Failed to create branch %s in %s",
		executionFailed: "Unable to create branch %s in %s",
	}
	gitBranchDeletionTemplates = messageTemplates{
		started:         "Force removing local branch %s in %s",
		succeeded:       "Removed local branch %s in %s",
		failed:          "Failed to remove local branch %s in %s",
		executionFailed: "Unable to remove local branch %s in %s",
	}
	gitFetchTemplates = messageTemplates{
		started:         "Fetching %s from %s in %s",
		succeeded:       "Fetched %s from %s in %s",
		failed:          "Failed to fetch %s from %s in %s",
		executionFailed: "Unable to fetch %s from %s in %s",
	}
	gitResetTemplates = messageTemplates{
		started:         "Resetting %s to %s",
		succeeded:       "Reset %s to %s",
		failed:          "Failed to reset %s to %s",
		executionFailed: "Unable to reset %s to %s",
	}
	gitCleanTemplates = messageTemplates{
		started:         "Removing untracked files in %s",
		succeeded:       "Removed untracked files in %s",
		failed:          "Failed to remove untracked files in %s",
		executionFailed: "Unable to remove untracked files in %s",
	}
	gitPushTemplates = messageTemplates{
		started:         "Pushing %s to %s from %s",
		succeeded:       "Pushed %s to %s from %s",
		failed:          "Failed to push %s to %s from %s",
		executionFailed: "Unable to push %s to %s from %s",
	}
	gitAddTemplates = messageTemplates{
		started:         "Staging %s in %s",
		succeeded:       "Staged %s in %s",
		failed:          "Failed to stage %s in %s",
		executionFailed: "Unable to stage %s in %s",
	}
	gitCommitTemplates = messageTemplates{
		started:         "Creating commit in %s with message %q",
		succeeded:       "Created commit in %s with message %q",
		failed:          "Failed to create commit in %s with message %q",
		executionFailed: "Unable to create commit in %s with message %q",
	}
	githubAuthStatusTemplates = messageTemplates{
		started:         "Checking GitHub CLI authentication",
		succeeded:       "GitHub CLI is authenticated",
		failed:          "GitHub CLI is not authenticated",
		executionFailed: "Unable to check GitHub CLI authentication",
	}
	githubRepoForkTemplates = messageTemplates{
		started:         "Ensuring a fork of %s exists",
		succeeded:       "Fork of %s is available",
		failed:          "Could not fork %s",
		executionFailed: "Unable to fork %s",
	}
	githubRepoCloneTemplates = messageTemplates{
		started:         "Cloning %s into %s",
		succeeded:       "Cloned %s into %s",
		failed:          "Failed to clone %s into %s",
		executionFailed: "Unable to clone %s into %s",
	}
	githubRepoSyncTemplates = messageTemplates{
		started:         "Syncing %s with %s",
		succeeded:       "Synced %s with %s",
		failed:          "Failed to sync %s with %s",
		executionFailed: "Unable to sync %s with %s",
	}
	githubPullRequestCreateTemplates = messageTemplates{
		started:         "Opening pull request from %s against %s on %s",
		succeeded:       "Opened pull request from %s against %s on %s",
		failed:          "Failed to open pull request from %s against %s on %s",
		executionFailed: "Unable to open pull request from %s against %s on %s",
	}
	curlDownloadTemplates = messageTemplates{
		started:         "Downloading %s",
		succeeded:       "Downloaded %s",
		failed:          "Failed to download %s",
		executionFailed: "Unable to download %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandCurl:
		return formatter.describeCurlMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(arguments[0])
	switch subcommand {
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitRevParseSubcommandNameConstant:
		revision := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		return formatter.renderStage(gitRevisionTemplates, stage, result, failure, revision, workingDirectory)
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		if containsArgument(arguments, gitCheckoutCreateFlagConstant) {
			return formatter.renderStage(gitBranchCreationTemplates, stage, result, failure, branchName, workingDirectory)
		}
		return formatter.renderStage(gitCheckoutTemplates, stage, result, failure, workingDirectory, branchName)
	case gitBranchSubcommandNameConstant:
		if !containsArgument(arguments, gitBranchForceDeleteFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		branchName := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		return formatter.renderStage(gitBranchDeletionTemplates, stage, result, failure, branchName, workingDirectory)
	case gitFetchSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(arguments[1:])
		return formatter.renderStage(gitFetchTemplates, stage, result, failure, formatter.ensureValue(strings.Join(references, ", ")), formatter.ensureValue(remoteName), workingDirectory)
	case gitResetSubcommandNameConstant:
		target := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		return formatter.renderStage(gitResetTemplates, stage, result, failure, workingDirectory, target)
	case gitCleanSubcommandNameConstant:
		return formatter.renderStage(gitCleanTemplates, stage, result, failure, workingDirectory)
	case gitPushSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(arguments[1:])
		return formatter.renderStage(gitPushTemplates, stage, result, failure, formatter.ensureValue(strings.Join(references, ", ")), formatter.ensureValue(remoteName), workingDirectory)
	case gitAddSubcommandNameConstant:
		target := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		return formatter.renderStage(gitAddTemplates, stage, result, failure, target, workingDirectory)
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.ensureValue(findFlagValue(arguments, gitMessageFlagConstant))
		return formatter.renderStage(gitCommitTemplates, stage, result, failure, workingDirectory, commitMessage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 3 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(arguments[2])
	remoteURL := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))

	switch strings.TrimSpace(arguments[1]) {
	case gitRemoteGetURLSubcommandNameConstant:
		return formatter.renderStage(gitRemoteLookupTemplates, stage, result, failure, remoteName, workingDirectory)
	case gitRemoteAddSubcommandNameConstant:
		return formatter.renderStage(gitRemoteAddTemplates, stage, result, failure, remoteName, workingDirectory, remoteURL)
	case gitRemoteSetURLSubcommandNameConstant:
		return formatter.renderStage(gitRemoteUpdateTemplates, stage, result, failure, remoteName, workingDirectory, remoteURL)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	primary := strings.TrimSpace(arguments[0])
	secondary := strings.TrimSpace(arguments[1])
	switch {
	case primary == githubAuthSubcommandNameConstant && secondary == githubAuthStatusSubcommandNameConstant:
		return formatter.renderStage(githubAuthStatusTemplates, stage, result, failure)
	case primary == githubRepoSubcommandNameConstant && secondary == githubRepoForkSubcommandNameConstant:
		repository := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		return formatter.renderStage(githubRepoForkTemplates, stage, result, failure, repository)
	case primary == githubRepoSubcommandNameConstant && secondary == githubRepoCloneSubcommandNameConstant:
		repository := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		destination := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))
		return formatter.renderStage(githubRepoCloneTemplates, stage, result, failure, repository, destination)
	case primary == githubRepoSubcommandNameConstant && secondary == githubRepoSyncSubcommandNameConstant:
		repository := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		source := formatter.ensureValue(findFlagValue(arguments, githubSourceFlagConstant))
		return formatter.renderStage(githubRepoSyncTemplates, stage, result, failure, repository, source)
	case primary == githubPullRequestSubcommandNameConstant && secondary == githubPullRequestCreateSubcommandConstant:
		head := formatter.ensureValue(findFlagValue(arguments, githubHeadFlagConstant))
		base := formatter.ensureValue(findFlagValue(arguments, githubBaseFlagConstant))
		repository := formatter.ensureValue(findFlagValue(arguments, githubRepoFlagConstant))
		return formatter.renderStage(githubPullRequestCreateTemplates, stage, result, failure, head, base, repository)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeCurlMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	target := formatter.extractLastNonFlagArgument(command.Details.Arguments)
	if len(target) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	return formatter.renderStage(curlDownloadTemplates, stage, result, failure, target)
}

func (formatter CommandMessageFormatter) renderStage(templates messageTemplates, stage messageStage, result ExecutionResult, failure error, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.started, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.succeeded, subjects...)
	case messageStageFailure:
		return fmt.Sprintf(templates.failed, subjects...) + fmt.Sprintf(exitCodeSuffixTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailed, subjects...) + fmt.Sprintf(executionFailureSuffixTemplateConstant, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractLastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		argument := strings.TrimSpace(arguments[index])
		if len(argument) == 0 || strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	remoteName := emptyStringConstant
	references := []string{}
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		if len(remoteName) == 0 {
			remoteName = trimmed
			continue
		}
		references = append(references, trimmed)
	}
	return remoteName, references
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
