package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/winget-publish/internal/execshell"
	"github.com/temirov/winget-publish/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant = "/tmp/winget-pkgs"
	testExecutionFailureReasonConstant  = "executable file not found in $PATH"
)

func TestCommandEchoPrinterWritesCommandLines(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"reset", "--hard", "upstream/master"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name           string
		invoke         func(printer *ui.CommandEchoPrinter)
		expectedOutput string
	}{
		{
			name: "command_started",
			invoke: func(printer *ui.CommandEchoPrinter) {
				printer.CommandStarted(command)
			},
			expectedOutput: "  $ git reset --hard upstream/master\n",
		},
		{
			name: "command_completed_success",
			invoke: func(printer *ui.CommandEchoPrinter) {
				printer.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedOutput: "",
		},
		{
			name: "command_completed_failure",
			invoke: func(printer *ui.CommandEchoPrinter) {
				printer.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 128})
			},
			expectedOutput: "  ! git exited with code 128\n",
		},
		{
			name: "command_execution_failure",
			invoke: func(printer *ui.CommandEchoPrinter) {
				printer.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedOutput: "  ! git could not start: " + testExecutionFailureReasonConstant + "\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			printer := ui.NewCommandEchoPrinter(outputBuffer)

			testCase.invoke(printer)

			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}
