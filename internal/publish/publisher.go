package publish

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/winget-publish/internal/execshell"
	"github.com/temirov/winget-publish/internal/githubcli"
	"github.com/temirov/winget-publish/internal/gitrepo"
)

const (
	commitMessageTemplateConstant      = "New version: %s version %s"
	headReferenceTemplateConstant      = "%s:%s"
	committingMessageConstant          = "Committing and pushing..."
	creatingPullRequestMessageConstant = "Creating pull request..."
	pullRequestCreatedTemplateConstant = "Pull request created: %s"
	dryRunHeaderMessageConstant        = "Dry run: skipping commit, push and pull request. Commands that would run:"
	dryRunCommandTemplateConstant      = "  $ %s\n"
	packageNameSeparatorConstant       = "/"
)

const pullRequestBodyTemplateConstant = `## Description
New version of %s.

## Checklist
- [x] Have you signed the [Contributor License Agreement](https://cla.opensource.microsoft.com/%[2]s)?
- [x] Have you checked that there aren't other open [pull requests](https://github.com/%[2]s/pulls) for the same manifest update/change?
- [x] This PR only modifies one (1) manifest
- [x] Have you validated your manifest locally with ` + "`winget validate --manifest <path>`" + `?
- [x] Have you tested your manifest locally with ` + "`winget install --manifest <path>`" + `?
`

// PublishRequest describes the commit and pull request for a generated version.
type PublishRequest struct {
	ClonePath     string
	Branch        string
	CommitMessage string
	PullRequest   githubcli.PullRequestOptions
}

// Publisher commits the generated manifests, pushes the branch to the fork and opens the pull request.
type Publisher struct {
	gitClient     GitClient
	hostingClient HostingClient
	output        io.Writer
}

// NewPublisher constructs a Publisher. A nil output discards progress lines.
func NewPublisher(gitClient GitClient, hostingClient HostingClient, output io.Writer) (*Publisher, error) {
	if gitClient == nil {
		return nil, ErrGitClientNotConfigured
	}
	if hostingClient == nil {
		return nil, ErrHostingClientNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	return &Publisher{gitClient: gitClient, hostingClient: hostingClient, output: output}, nil
}

// Publish stages, commits and pushes the branch, then opens the pull request and returns its URL.
func (publisher *Publisher) Publish(executionContext context.Context, request PublishRequest) (string, error) {
	fmt.Fprintln(publisher.output, committingMessageConstant)

	if stageError := publisher.gitClient.StageAll(executionContext, request.ClonePath); stageError != nil {
		return "", fmt.Errorf(publishChangesErrorTemplateConstant, stageError)
	}
	if commitError := publisher.gitClient.Commit(executionContext, request.ClonePath, request.CommitMessage); commitError != nil {
		return "", fmt.Errorf(publishChangesErrorTemplateConstant, commitError)
	}
	if pushError := publisher.gitClient.Push(executionContext, request.ClonePath, originRemoteNameConstant, request.Branch); pushError != nil {
		return "", fmt.Errorf(publishChangesErrorTemplateConstant, pushError)
	}

	fmt.Fprintln(publisher.output, creatingPullRequestMessageConstant)
	pullRequestURL, pullRequestError := publisher.hostingClient.CreatePullRequest(executionContext, request.PullRequest)
	if pullRequestError != nil {
		return "", fmt.Errorf(publishChangesErrorTemplateConstant, pullRequestError)
	}

	fmt.Fprintln(publisher.output)
	fmt.Fprintf(publisher.output, pullRequestCreatedTemplateConstant+"\n", pullRequestURL)
	return pullRequestURL, nil
}

// Describe prints the commands Publish would run without executing any of them.
func (publisher *Publisher) Describe(request PublishRequest) ([]execshell.ShellCommand, error) {
	pullRequestDetails, detailsError := githubcli.PullRequestCommandDetails(request.PullRequest)
	if detailsError != nil {
		return nil, detailsError
	}

	commands := []execshell.ShellCommand{
		gitrepo.StageAllCommand(request.ClonePath),
		gitrepo.CommitCommand(request.ClonePath, request.CommitMessage),
		gitrepo.PushCommand(request.ClonePath, originRemoteNameConstant, request.Branch),
		{Name: execshell.CommandGitHub, Details: pullRequestDetails},
	}

	fmt.Fprintln(publisher.output, dryRunHeaderMessageConstant)
	for _, command := range commands {
		fmt.Fprintf(publisher.output, dryRunCommandTemplateConstant, command)
	}
	return commands, nil
}

// CommitMessage renders the commit message and pull request title for a package version.
func CommitMessage(packageIdentifier string, version string) string {
	return fmt.Sprintf(commitMessageTemplateConstant, packageIdentifier, version)
}

// HeadReference renders the owner:branch form gh pr create expects for cross-repository pull requests.
func HeadReference(fork gitrepo.RepositoryIdentifier, branch string) string {
	return fmt.Sprintf(headReferenceTemplateConstant, fork.Owner, branch)
}

// PullRequestBody renders the pull request description with the manifest repository's compliance checklist. The
// package is named by the last segment of its manifest path.
func PullRequestBody(manifestPath string, upstream gitrepo.RepositoryIdentifier) string {
	trimmedPath := strings.Trim(manifestPath, packageNameSeparatorConstant)
	packageName := trimmedPath
	if separatorIndex := strings.LastIndex(trimmedPath, packageNameSeparatorConstant); separatorIndex >= 0 {
		packageName = trimmedPath[separatorIndex+1:]
	}
	return fmt.Sprintf(pullRequestBodyTemplateConstant, packageName, upstream.String())
}
