package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitPushSubcommandNameConstant   = "push"
	gitSwitchSubcommandNameConstant = "switch"
	gitMergeSubcommandNameConstant  = "merge"
	gitCloneSubcommandNameConstant  = "clone"
	gitPullSubcommandNameConstant   = "pull"
	gitRemoteSubcommandNameConstant = "remote"
	gitInitSubcommandNameConstant   = "init"
	gitCreateBranchFlagConstant     = "-c"
	gitFlagPrefixConstant           = "-"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var gitSubcommandTemplates = map[string]stageTemplates{
	gitPushSubcommandNameConstant: {
		start:            "Pushing %s from %s",
		success:          "Pushed %s from %s",
		failure:          "Failed to push %s from %s (exit code %d%s)",
		executionFailure: "Unable to push %s from %s: %s",
	},
	gitSwitchSubcommandNameConstant: {
		start:            "Switching %s in %s",
		success:          "Switched %s in %s",
		failure:          "Failed to switch %s in %s (exit code %d%s)",
		executionFailure: "Unable to switch %s in %s: %s",
	},
	gitMergeSubcommandNameConstant: {
		start:            "Merging %s in %s",
		success:          "Merged %s in %s",
		failure:          "Failed to merge %s in %s (exit code %d%s)",
		executionFailure: "Unable to merge %s in %s: %s",
	},
	gitCloneSubcommandNameConstant: {
		start:            "Cloning %s into %s",
		success:          "Cloned %s into %s",
		failure:          "Failed to clone %s into %s (exit code %d%s)",
		executionFailure: "Unable to clone %s into %s: %s",
	},
	gitPullSubcommandNameConstant: {
		start:            "Pulling %s in %s",
		success:          "Pulled %s in %s",
		failure:          "Failed to pull %s in %s (exit code %d%s)",
		executionFailure: "Unable to pull %s in %s: %s",
	},
	gitRemoteSubcommandNameConstant: {
		start:            "Configuring remote %s in %s",
		success:          "Configured remote %s in %s",
		failure:          "Failed to configure remote %s in %s (exit code %d%s)",
		executionFailure: "Unable to configure remote %s in %s: %s",
	},
	gitInitSubcommandNameConstant: {
		start:            "Initializing repository %s in %s",
		success:          "Initialized repository %s in %s",
		failure:          "Failed to initialize repository %s in %s (exit code %d%s)",
		executionFailure: "Unable to initialize repository %s in %s: %s",
	},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	templates, known := gitSubcommandTemplates[subcommand]
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := formatter.describeGitSubject(subcommand, command.Details.Arguments[1:])
	location := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject, location)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject, location)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, location, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, subject, location, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitSubject(subcommand string, arguments []string) string {
	positional := formatter.positionalArguments(arguments)
	switch subcommand {
	case gitSwitchSubcommandNameConstant:
		if len(arguments) > 1 && arguments[0] == gitCreateBranchFlagConstant {
			return "to new branch " + arguments[1]
		}
		if len(positional) > 0 {
			return "to " + positional[0]
		}
	case gitRemoteSubcommandNameConstant:
		if len(positional) > 1 {
			return positional[1]
		}
	default:
		if len(positional) > 0 {
			return strings.Join(positional, " ")
		}
	}
	if subcommand == gitPushSubcommandNameConstant || subcommand == gitPullSubcommandNameConstant {
		return "current branch"
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, gitFlagPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := describeCommand(command) + formatter.formatWorkingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
