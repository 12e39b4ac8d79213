package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	openRepositoryErrorTemplateConstant = "unable to open repository %s: %w"
	lookupRemoteErrorTemplateConstant   = "unable to read remote %s of %s: %w"
	remoteWithoutURLMessageConstant     = "remote has no configured url"
)

// ErrRemoteWithoutURL indicates the remote exists but lists no URL.
var ErrRemoteWithoutURL = errors.New(remoteWithoutURLMessageConstant)

// GoGitRemoteInspector reads remote definitions straight from the repository configuration without invoking git.
type GoGitRemoteInspector struct{}

// NewGoGitRemoteInspector constructs a GoGitRemoteInspector.
func NewGoGitRemoteInspector() *GoGitRemoteInspector {
	return &GoGitRemoteInspector{}
}

// RemoteURL returns the first URL configured for the remote, matching git remote get-url.
func (inspector *GoGitRemoteInspector) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return "", ErrRepositoryPathRequired
	}
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}

	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return "", fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}

	remote, remoteError := repository.Remote(remoteName)
	if remoteError != nil {
		return "", fmt.Errorf(lookupRemoteErrorTemplateConstant, remoteName, repositoryPath, remoteError)
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", fmt.Errorf(lookupRemoteErrorTemplateConstant, remoteName, repositoryPath, ErrRemoteWithoutURL)
	}
	return remoteURLs[0], nil
}
