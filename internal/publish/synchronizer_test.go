package publish

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"

	"github.com/temirov/winget-publish/internal/filesystem"
	"github.com/temirov/winget-publish/internal/gitrepo"
)

func testSynchronizeOptions(clonePath string) SynchronizeOptions {
	return SynchronizeOptions{
		ClonePath:     clonePath,
		Fork:          gitrepo.RepositoryIdentifier{Owner: "sinelaw", Repository: "winget-pkgs"},
		Upstream:      gitrepo.RepositoryIdentifier{Owner: "microsoft", Repository: "winget-pkgs"},
		DefaultBranch: "master",
	}
}

func newTestSynchronizer(testInstance *testing.T, recorder *workflowRecorder, inspector RemoteInspector, output *bytes.Buffer) *Synchronizer {
	testInstance.Helper()
	synchronizer, creationError := NewSynchronizer(SynchronizerDependencies{
		HostingClient:   recorder,
		GitClient:       recorder,
		RemoteInspector: inspector,
		FileSystem:      filesystem.OSFileSystem{},
		Output:          output,
	})
	require.NoError(testInstance, creationError)
	return synchronizer
}

func TestSynchronizerCreatesParentDirectoryBeforeCloning(testInstance *testing.T) {
	clonePath := filepath.Join(testInstance.TempDir(), "nested", "cache", testCloneDirectoryConstant)
	parentExisted := false
	recorder := &workflowRecorder{
		cloneHook: func(destinationPath string) error {
			info, statError := os.Stat(filepath.Dir(destinationPath))
			parentExisted = statError == nil && info.IsDir()
			return nil
		},
	}
	synchronizer := newTestSynchronizer(testInstance, recorder, recorder, &bytes.Buffer{})

	require.NoError(testInstance, synchronizer.Synchronize(context.Background(), testSynchronizeOptions(clonePath)))
	require.True(testInstance, parentExisted)
}

func TestSynchronizerAcceptsOriginVariants(testInstance *testing.T) {
	testCases := []struct {
		name      string
		originURL string
	}{
		{name: "https", originURL: "https://github.com/sinelaw/winget-pkgs.git"},
		{name: "ssh", originURL: "git@github.com:sinelaw/winget-pkgs.git"},
		{name: "ssh_scheme", originURL: "ssh://git@github.com/sinelaw/winget-pkgs"},
		{name: "mixed_case", originURL: "https://github.com/Sinelaw/Winget-Pkgs"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			clonePath := subtest.TempDir()
			recorder := &workflowRecorder{originURL: testCase.originURL}
			synchronizer := newTestSynchronizer(subtest, recorder, recorder, &bytes.Buffer{})

			require.NoError(subtest, synchronizer.Synchronize(context.Background(), testSynchronizeOptions(clonePath)))
			require.Equal(subtest, []string{"origin-url origin", "reset HEAD", "clean", "checkout master"}, recorder.calls[:4])
		})
	}
}

func TestSynchronizerRejectsForeignOriginWithGoGitInspector(testInstance *testing.T) {
	clonePath := testInstance.TempDir()
	repository, initError := git.PlainInit(clonePath, false)
	require.NoError(testInstance, initError)
	_, remoteError := repository.CreateRemote(&config.RemoteConfig{Name: originRemoteNameConstant, URLs: []string{testForeignOriginURLConstant}})
	require.NoError(testInstance, remoteError)

	recorder := &workflowRecorder{}
	synchronizer := newTestSynchronizer(testInstance, recorder, gitrepo.NewGoGitRemoteInspector(), &bytes.Buffer{})

	synchronizeError := synchronizer.Synchronize(context.Background(), testSynchronizeOptions(clonePath))
	var originError UnexpectedOriginError
	require.ErrorAs(testInstance, synchronizeError, &originError)
	require.Equal(testInstance, testForeignOriginURLConstant, originError.RemoteURL)
	require.Empty(testInstance, recorder.calls)
}

func TestSynchronizerStopsWhenFetchFails(testInstance *testing.T) {
	fetchFailure := errors.New("fatal: couldn't find remote ref master")
	recorder := &workflowRecorder{originURL: testForkOriginURLConstant, failures: map[string]error{"fetch upstream master": fetchFailure}}
	synchronizer := newTestSynchronizer(testInstance, recorder, recorder, &bytes.Buffer{})

	synchronizeError := synchronizer.Synchronize(context.Background(), testSynchronizeOptions(testInstance.TempDir()))
	require.ErrorIs(testInstance, synchronizeError, fetchFailure)
	require.NotContains(testInstance, recorder.calls, "reset upstream/master")
}

func TestSynchronizerPropagatesCloneFailure(testInstance *testing.T) {
	cloneFailure := errors.New("repository not found")
	recorder := &workflowRecorder{failures: map[string]error{"clone sinelaw/winget-pkgs": cloneFailure}}
	output := &bytes.Buffer{}
	synchronizer := newTestSynchronizer(testInstance, recorder, recorder, output)

	clonePath := filepath.Join(testInstance.TempDir(), testCloneDirectoryConstant)
	synchronizeError := synchronizer.Synchronize(context.Background(), testSynchronizeOptions(clonePath))
	require.ErrorIs(testInstance, synchronizeError, cloneFailure)
	require.Equal(testInstance, []string{"fork microsoft/winget-pkgs", "clone sinelaw/winget-pkgs"}, recorder.calls)
	require.Contains(testInstance, output.String(), "Forking/cloning winget-pkgs...")
}
