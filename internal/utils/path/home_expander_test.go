package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/winget-publish/internal/utils/path"
)

const (
	testHomeDirectoryConstant       = "/home/operator"
	testCachePathConstant           = "~/.cache/winget-publish"
	testExpandedCachePathConstant   = "/home/operator/.cache/winget-publish"
	testAbsolutePathConstant        = "/var/cache/winget-publish"
	testTildeOtherUserPathConstant  = "~other/cache"
	testHomeLookupFailureConstant   = "home lookup failed"
	testExpandCaseTildeConstant     = "tilde_prefix"
	testExpandCaseBareTildeConstant = "bare_tilde"
	testExpandCaseAbsoluteConstant  = "absolute_path"
	testExpandCaseOtherUserConstant = "other_user_tilde"
	testExpandCaseEmptyConstant     = "empty_path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: testExpandCaseTildeConstant, input: testCachePathConstant, expectedPath: testExpandedCachePathConstant},
		{name: testExpandCaseBareTildeConstant, input: "~", expectedPath: testHomeDirectoryConstant},
		{name: testExpandCaseAbsoluteConstant, input: testAbsolutePathConstant, expectedPath: testAbsolutePathConstant},
		{name: testExpandCaseOtherUserConstant, input: testTildeOtherUserPathConstant, expectedPath: testTildeOtherUserPathConstant},
		{name: testExpandCaseEmptyConstant, input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderLeavesPathWhenHomeLookupFails(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New(testHomeLookupFailureConstant)
	})
	require.Equal(testInstance, testCachePathConstant, expander.Expand(testCachePathConstant))
}

func TestHomeExpanderExpandAbsolute(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	resolvedPath, resolveError := expander.ExpandAbsolute(" " + testCachePathConstant + " ")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, filepath.Clean(testExpandedCachePathConstant), resolvedPath)

	_, emptyError := expander.ExpandAbsolute("   ")
	require.ErrorIs(testInstance, emptyError, pathutils.ErrEmptyPath)
}
