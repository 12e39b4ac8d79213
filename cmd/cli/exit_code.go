package cli

import (
	"errors"

	"github.com/temirov/winget-publish/internal/execshell"
)

const genericFailureExitCodeConstant = 1

// ExitCode maps an execution error to the process exit status. Failed external commands propagate their own status.
func ExitCode(executionError error) int {
	if executionError == nil {
		return 0
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) && failedError.Result.ExitCode > 0 {
		return failedError.Result.ExitCode
	}

	return genericFailureExitCodeConstant
}
