package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/winget-publish/internal/execshell"
	"github.com/temirov/winget-publish/internal/utils"
)

const (
	commandEchoTemplateConstant             = "  $ %s\n"
	commandFailureEchoTemplateConstant      = "  ! %s exited with code %d\n"
	commandExecutionFailureTemplateConstant = "  ! %s could not start: %s\n"
	unknownFailureMessageConstant           = "unknown error"
)

// CommandEchoPrinter implements execshell.CommandEventObserver by printing each command line before it runs.
type CommandEchoPrinter struct {
	writer io.Writer
}

// NewCommandEchoPrinter constructs a printer writing to the provided writer. A nil writer discards output.
func NewCommandEchoPrinter(writer io.Writer) *CommandEchoPrinter {
	if writer == nil {
		writer = io.Discard
	}
	return &CommandEchoPrinter{writer: utils.NewFlushingWriter(writer)}
}

// CommandStarted prints the command line as it would be typed in a shell.
func (printer *CommandEchoPrinter) CommandStarted(command execshell.ShellCommand) {
	if printer == nil {
		return
	}
	fmt.Fprintf(printer.writer, commandEchoTemplateConstant, formatCommandLine(command))
}

// CommandCompleted reports non-zero exit codes so the operator can relate tool output to the failing step.
func (printer *CommandEchoPrinter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if printer == nil || result.ExitCode == 0 {
		return
	}
	fmt.Fprintf(printer.writer, commandFailureEchoTemplateConstant, command.Name, result.ExitCode)
}

// CommandExecutionFailed reports commands that could not be launched.
func (printer *CommandEchoPrinter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if printer == nil {
		return
	}
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	fmt.Fprintf(printer.writer, commandExecutionFailureTemplateConstant, command.Name, failureMessage)
}

func formatCommandLine(command execshell.ShellCommand) string {
	return strings.TrimSpace(command.String())
}
