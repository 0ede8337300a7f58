package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RobinBoers/bix/internal/execshell"
)

// ActionKind enumerates the outcomes of handler resolution.
type ActionKind int

// Resolution outcomes.
const (
	ActionFail ActionKind = iota
	ActionRunScript
	ActionRunManagerCommand
)

const (
	noHandlerTemplateConstant         = "no handler for %s: no override script at %s and no marker file (%s) in %s"
	scriptDescriptionTemplateConstant = "script %s"
	commandJoinSeparatorConstant      = " "
)

// ErrNoHandler indicates that neither an override script nor a package manager could serve a handler.
var ErrNoHandler = errors.New("no handler resolvable")

// NoHandlerError describes a failed resolution; it matches ErrNoHandler with errors.Is.
type NoHandlerError struct {
	Handler          Name
	ScriptPath       string
	WorkingDirectory string
}

// Error describes where bix looked for a handler.
func (failure NoHandlerError) Error() string {
	return fmt.Sprintf(noHandlerTemplateConstant, failure.Handler, failure.ScriptPath, describeMarkerFiles(), failure.WorkingDirectory)
}

// Unwrap exposes ErrNoHandler.
func (failure NoHandlerError) Unwrap() error {
	return ErrNoHandler
}

// Action is the resolved plan for a handler invocation.
type Action struct {
	Kind             ActionKind
	Handler          Name
	ScriptPath       string
	ScriptExecutable bool
	Manager          Manager
	Command          []string
	Arguments        []string
	WorkingDirectory string
	Failure          error
}

// Describe renders the action as a single human-readable line.
func (action Action) Describe() string {
	switch action.Kind {
	case ActionRunScript:
		return fmt.Sprintf(scriptDescriptionTemplateConstant, strings.Join(append([]string{action.ScriptPath}, action.Arguments...), commandJoinSeparatorConstant))
	case ActionRunManagerCommand:
		commandParts := append(append([]string{}, action.Command...), action.Arguments...)
		return strings.Join(commandParts, commandJoinSeparatorConstant)
	default:
		if action.Failure == nil {
			return ErrNoHandler.Error()
		}
		return action.Failure.Error()
	}
}

// ShellCommand converts the action into an interactive command; a failed action returns its failure.
func (action Action) ShellCommand() (execshell.ShellCommand, error) {
	switch action.Kind {
	case ActionRunScript:
		if action.ScriptExecutable {
			return execshell.ShellCommand{
				Name:    execshell.CommandName(action.ScriptPath),
				Details: action.commandDetails(action.Arguments),
			}, nil
		}
		return execshell.ShellCommand{
			Name:    execshell.CommandShell,
			Details: action.commandDetails(append([]string{action.ScriptPath}, action.Arguments...)),
		}, nil
	case ActionRunManagerCommand:
		if len(action.Command) == 0 {
			return execshell.ShellCommand{}, action.failure()
		}
		return execshell.ShellCommand{
			Name:    execshell.CommandName(action.Command[0]),
			Details: action.commandDetails(append(append([]string{}, action.Command[1:]...), action.Arguments...)),
		}, nil
	default:
		return execshell.ShellCommand{}, action.failure()
	}
}

func (action Action) commandDetails(arguments []string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: action.WorkingDirectory,
		Passthrough:      true,
	}
}

func (action Action) failure() error {
	if action.Failure != nil {
		return action.Failure
	}
	return NoHandlerError{Handler: action.Handler, ScriptPath: action.ScriptPath, WorkingDirectory: action.WorkingDirectory}
}
