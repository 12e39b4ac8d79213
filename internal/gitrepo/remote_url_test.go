package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/winget-publish/internal/gitrepo"
)

const (
	testForkIdentifierConstant     = "sinelaw/winget-pkgs"
	testUpstreamIdentifierConstant = "microsoft/winget-pkgs"
	testForkHTTPSRemoteConstant    = "https://github.com/sinelaw/winget-pkgs.git"
	testForkSSHRemoteConstant      = "git@github.com:sinelaw/winget-pkgs.git"
	testUpperCaseSSHRemoteConstant = "git@github.com:SineLaw/Winget-Pkgs.git"
	testSSHSchemeRemoteConstant    = "ssh://git@github.com/sinelaw/winget-pkgs.git"
	testUpstreamHTTPSConstant      = "https://github.com/microsoft/winget-pkgs.git"
	testUnrelatedRemoteConstant    = "https://github.com/someone/winget-pkgs.git"
)

func TestParseRepositoryIdentifier(testInstance *testing.T) {
	testCases := []struct {
		name               string
		input              string
		expectedIdentifier gitrepo.RepositoryIdentifier
		expectError        bool
	}{
		{name: "owner_and_name", input: testForkIdentifierConstant, expectedIdentifier: gitrepo.RepositoryIdentifier{Owner: "sinelaw", Repository: "winget-pkgs"}},
		{name: "trims_git_suffix", input: " sinelaw/winget-pkgs.git ", expectedIdentifier: gitrepo.RepositoryIdentifier{Owner: "sinelaw", Repository: "winget-pkgs"}},
		{name: "missing_owner", input: "/winget-pkgs", expectError: true},
		{name: "missing_name", input: "sinelaw/", expectError: true},
		{name: "too_many_segments", input: "a/b/c", expectError: true},
		{name: "empty", input: "  ", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			identifier, parseError := gitrepo.ParseRepositoryIdentifier(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				require.IsType(testInstance, gitrepo.RemoteURLParseError{}, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedIdentifier, identifier)
			require.Equal(testInstance, testForkIdentifierConstant, identifier.String())
		})
	}
}

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedRemote gitrepo.RemoteURL
		expectError    bool
	}{
		{
			name:           "https",
			input:          testForkHTTPSRemoteConstant,
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "sinelaw", Repository: "winget-pkgs"},
		},
		{
			name:           "https_with_credentials",
			input:          "https://token@github.com/sinelaw/winget-pkgs",
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "sinelaw", Repository: "winget-pkgs"},
		},
		{
			name:           "scp_style",
			input:          testForkSSHRemoteConstant,
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "sinelaw", Repository: "winget-pkgs"},
		},
		{
			name:           "ssh_scheme",
			input:          testSSHSchemeRemoteConstant,
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "sinelaw", Repository: "winget-pkgs"},
		},
		{name: "unknown_scheme", input: "ftp://github.com/sinelaw/winget-pkgs", expectError: true},
		{name: "https_without_repository", input: "https://github.com/sinelaw", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			remote, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedRemote, remote)
		})
	}
}

func TestRemoteReferencesRepository(testInstance *testing.T) {
	forkIdentifier, parseError := gitrepo.ParseRepositoryIdentifier(testForkIdentifierConstant)
	require.NoError(testInstance, parseError)

	testCases := []struct {
		name     string
		remote   string
		expected bool
	}{
		{name: "https", remote: testForkHTTPSRemoteConstant, expected: true},
		{name: "scp_style", remote: testForkSSHRemoteConstant, expected: true},
		{name: "case_insensitive_parse", remote: testUpperCaseSSHRemoteConstant, expected: true},
		{name: "upstream", remote: testUpstreamHTTPSConstant, expected: false},
		{name: "other_owner", remote: testUnrelatedRemoteConstant, expected: false},
		{name: "garbage", remote: "not a url", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, gitrepo.RemoteReferencesRepository(testCase.remote, forkIdentifier))
		})
	}
}

func TestHTTPSRemoteURL(testInstance *testing.T) {
	upstreamIdentifier, parseError := gitrepo.ParseRepositoryIdentifier(testUpstreamIdentifierConstant)
	require.NoError(testInstance, parseError)

	remoteURL, formatError := gitrepo.HTTPSRemoteURL(upstreamIdentifier)
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, testUpstreamHTTPSConstant, remoteURL)

	_, unsupportedError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocol("ftp"), Host: "github.com", Owner: "a", Repository: "b"})
	require.IsType(testInstance, gitrepo.UnsupportedProtocolError{}, unsupportedError)
}
