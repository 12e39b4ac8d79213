package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/winget-publish/internal/execshell"
)

const (
	authSubcommandConstant                  = "auth"
	statusSubcommandConstant                = "status"
	repoSubcommandConstant                  = "repo"
	viewSubcommandConstant                  = "view"
	forkSubcommandConstant                  = "fork"
	cloneSubcommandConstant                 = "clone"
	syncSubcommandConstant                  = "sync"
	pullRequestSubcommandConstant           = "pr"
	createSubcommandConstant                = "create"
	jsonFlagConstant                        = "--json"
	repoFlagConstant                        = "--repo"
	baseFlagConstant                        = "--base"
	headFlagConstant                        = "--head"
	titleFlagConstant                       = "--title"
	bodyFlagConstant                        = "--body"
	sourceFlagConstant                      = "--source"
	branchFlagConstant                      = "--branch"
	forceFlagConstant                       = "--force"
	noCloneFlagConstant                     = "--clone=false"
	repoViewJSONFieldsConstant              = "defaultBranchRef,nameWithOwner"
	repositoryFieldNameConstant             = "repository"
	destinationFieldNameConstant            = "destination"
	sourceRepositoryFieldNameConstant       = "source_repository"
	baseBranchFieldNameConstant             = "base_branch"
	headReferenceFieldNameConstant          = "head_reference"
	titleFieldNameConstant                  = "title"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	notAuthenticatedMessageConstant         = "github cli is not authenticated"
	emptyPullRequestURLMessageConstant      = "gh pr create printed no pull request URL"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	checkAuthenticationOperationConstant    = OperationName("CheckAuthentication")
	repositoryMetadataOperationNameConstant = OperationName("ResolveRepoMetadata")
	forkRepositoryOperationNameConstant     = OperationName("ForkRepository")
	cloneRepositoryOperationNameConstant    = OperationName("CloneRepository")
	syncForkOperationNameConstant           = OperationName("SyncFork")
	createPullRequestOperationNameConstant  = OperationName("CreatePullRequest")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	DefaultBranch string
}

// PullRequestOptions describes the pull request opened against the upstream repository.
type PullRequestOptions struct {
	Repository    string
	BaseBranch    string
	HeadReference string
	Title         string
	Body          string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrNotAuthenticated indicates gh auth status reported no usable login.
	ErrNotAuthenticated = errors.New(notAuthenticatedMessageConstant)
	// ErrEmptyPullRequestURL indicates gh pr create succeeded without printing the pull request address.
	ErrEmptyPullRequestURL = errors.New(emptyPullRequestURLMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates gh produced output the client could not interpret.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CheckAuthentication runs gh auth status. A non-zero exit yields ErrNotAuthenticated.
func (client *Client) CheckAuthentication(executionContext context.Context) error {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{authSubcommandConstant, statusSubcommandConstant},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError == nil {
		return nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return ErrNotAuthenticated
	}
	return OperationError{Operation: checkAuthenticationOperationConstant, Cause: executionError}
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh repo view.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repository string) (RepositoryMetadata, error) {
	repositoryIdentifier, validationError := requireValue(repositoryFieldNameConstant, repository)
	if validationError != nil {
		return RepositoryMetadata{}, validationError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: repositoryMetadataOperationNameConstant, Cause: executionError}
	}

	var response struct {
		NameWithOwner    string `json:"nameWithOwner"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: repositoryMetadataOperationNameConstant, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.NameWithOwner,
		DefaultBranch: response.DefaultBranchRef.Name,
	}, nil
}

// ForkRepository creates a fork of the repository under the authenticated account without cloning it.
func (client *Client) ForkRepository(executionContext context.Context, repository string) error {
	repositoryIdentifier, validationError := requireValue(repositoryFieldNameConstant, repository)
	if validationError != nil {
		return validationError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{repoSubcommandConstant, forkSubcommandConstant, repositoryIdentifier, noCloneFlagConstant},
	}

	if _, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: forkRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

// CloneRepository clones the repository into destinationPath, streaming gh progress to the terminal.
func (client *Client) CloneRepository(executionContext context.Context, repository string, destinationPath string) error {
	repositoryIdentifier, validationError := requireValue(repositoryFieldNameConstant, repository)
	if validationError != nil {
		return validationError
	}
	destination, destinationError := requireValue(destinationFieldNameConstant, destinationPath)
	if destinationError != nil {
		return destinationError
	}

	commandDetails := execshell.CommandDetails{
		Arguments:         []string{repoSubcommandConstant, cloneSubcommandConstant, repositoryIdentifier, destination},
		PassthroughOutput: true,
	}

	if _, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: cloneRepositoryOperationNameConstant, Cause: executionError}
	}
	return nil
}

// SyncFork force-syncs branch of the fork from the source repository on the GitHub side.
func (client *Client) SyncFork(executionContext context.Context, forkRepository string, sourceRepository string, branch string) error {
	forkIdentifier, forkError := requireValue(repositoryFieldNameConstant, forkRepository)
	if forkError != nil {
		return forkError
	}
	sourceIdentifier, sourceError := requireValue(sourceRepositoryFieldNameConstant, sourceRepository)
	if sourceError != nil {
		return sourceError
	}
	branchName, branchError := requireValue(baseBranchFieldNameConstant, branch)
	if branchError != nil {
		return branchError
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			syncSubcommandConstant,
			forkIdentifier,
			sourceFlagConstant,
			sourceIdentifier,
			branchFlagConstant,
			branchName,
			forceFlagConstant,
		},
	}

	if _, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails); executionError != nil {
		return OperationError{Operation: syncForkOperationNameConstant, Cause: executionError}
	}
	return nil
}

// PullRequestCommandDetails builds the gh pr create invocation for the options without running it.
func PullRequestCommandDetails(options PullRequestOptions) (execshell.CommandDetails, error) {
	repositoryIdentifier, repositoryError := requireValue(repositoryFieldNameConstant, options.Repository)
	if repositoryError != nil {
		return execshell.CommandDetails{}, repositoryError
	}
	baseBranch, baseError := requireValue(baseBranchFieldNameConstant, options.BaseBranch)
	if baseError != nil {
		return execshell.CommandDetails{}, baseError
	}
	headReference, headError := requireValue(headReferenceFieldNameConstant, options.HeadReference)
	if headError != nil {
		return execshell.CommandDetails{}, headError
	}
	title, titleError := requireValue(titleFieldNameConstant, options.Title)
	if titleError != nil {
		return execshell.CommandDetails{}, titleError
	}

	return execshell.CommandDetails{
		Arguments: []string{
			pullRequestSubcommandConstant,
			createSubcommandConstant,
			repoFlagConstant,
			repositoryIdentifier,
			baseFlagConstant,
			baseBranch,
			headFlagConstant,
			headReference,
			titleFlagConstant,
			title,
			bodyFlagConstant,
			options.Body,
		},
	}, nil
}

// CreatePullRequest opens the pull request and returns the URL gh prints.
func (client *Client) CreatePullRequest(executionContext context.Context, options PullRequestOptions) (string, error) {
	commandDetails, detailsError := PullRequestCommandDetails(options)
	if detailsError != nil {
		return "", detailsError
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	pullRequestURL := strings.TrimSpace(executionResult.StandardOutput)
	if len(pullRequestURL) == 0 {
		return "", ResponseDecodingError{Operation: createPullRequestOperationNameConstant, Cause: ErrEmptyPullRequestURL}
	}
	return pullRequestURL, nil
}

func requireValue(fieldName string, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", InvalidInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}
