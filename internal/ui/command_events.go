package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/RobinBoers/bix/internal/execshell"
)

const (
	statusPrefixConstant                   = "==> "
	commandStartedTemplateConstant         = "%s"
	commandFailedTemplateConstant          = "%s exited with code %d"
	commandExecutionFailedTemplateConstant = "%s could not run: %s"
	commandArgumentsJoinSeparatorConstant  = " "
	unknownFailureMessageConstant          = "unknown error"
	lineTerminatorConstant                 = "\n"
)

// StatusReporter prints command lifecycle events as short status lines.
type StatusReporter struct {
	writer       io.Writer
	accentColor  *color.Color
	successColor *color.Color
	failureColor *color.Color
	interactive  bool
}

// NewStatusReporter constructs a StatusReporter writing to the provided writer.
// Colors and progress spinners are disabled when colorEnabled is false regardless of terminal detection.
func NewStatusReporter(writer io.Writer, colorEnabled bool) *StatusReporter {
	if writer == nil {
		writer = io.Discard
	}
	reporter := &StatusReporter{
		writer:       writer,
		accentColor:  color.New(color.FgCyan, color.Bold),
		successColor: color.New(color.FgGreen),
		failureColor: color.New(color.FgRed, color.Bold),
		interactive:  colorEnabled,
	}
	if !colorEnabled {
		reporter.accentColor.DisableColor()
		reporter.successColor.DisableColor()
		reporter.failureColor.DisableColor()
	}
	return reporter
}

// CommandStarted implements execshell.CommandEventObserver; queries are not announced.
func (reporter *StatusReporter) CommandStarted(command execshell.ShellCommand) {
	if reporter == nil || command.Details.Query {
		return
	}
	reporter.printLine(reporter.accentColor, fmt.Sprintf(commandStartedTemplateConstant, formatCommandLabel(command)))
}

// CommandCompleted implements execshell.CommandEventObserver; only non-zero exits are reported.
func (reporter *StatusReporter) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if reporter == nil || result.ExitCode == 0 || command.Details.Query {
		return
	}
	reporter.printLine(reporter.failureColor, fmt.Sprintf(commandFailedTemplateConstant, formatCommandLabel(command), result.ExitCode))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (reporter *StatusReporter) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if reporter == nil {
		return
	}
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	reporter.printLine(reporter.failureColor, fmt.Sprintf(commandExecutionFailedTemplateConstant, formatCommandLabel(command), failureMessage))
}

// Success prints a status line announcing a finished step.
func (reporter *StatusReporter) Success(message string) {
	if reporter == nil {
		return
	}
	reporter.printLine(reporter.successColor, message)
}

// Notice prints an informational status line.
func (reporter *StatusReporter) Notice(message string) {
	if reporter == nil {
		return
	}
	reporter.printLine(reporter.accentColor, message)
}

func (reporter *StatusReporter) printLine(lineColor *color.Color, message string) {
	_, _ = lineColor.Fprint(reporter.writer, statusPrefixConstant+strings.TrimSpace(message))
	_, _ = io.WriteString(reporter.writer, lineTerminatorConstant)
}

func formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	commandParts = append(commandParts, command.Details.Arguments...)
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}
