package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/dependencies"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	commandUseTemplateConstant       = "%s [arguments...]"
	commandLongTemplateConstant      = "%s runs %s from the script directory when it exists, otherwise the matching command of the package manager detected in the working directory (mix.exs, yarn.lock, package.json or Cargo.toml). Arguments after the handler are forwarded; use -- to forward arguments that start with a dash."
	flagDryRunNameConstant           = "dry-run"
	flagDryRunDescriptionConstant    = "Print the resolved command without running it"
	dryRunOutputTemplateConstant     = "%s\n"
	logMessageResolvedConstant       = "Resolved handler"
	logFieldHandlerConstant          = "handler"
	logFieldActionConstant           = "action"
	logFieldManagerConstant          = "manager"
	logFieldWorkingDirectoryConstant = "working_directory"
)

// ConfigurationProvider returns the router configuration for the current invocation.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the cobra command for one lifecycle handler.
type CommandBuilder struct {
	Handler               Name
	LoggerProvider        shared.LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              shared.CommandExecutor
	Reporter              shared.StatusReporter
	FileSystem            shared.FileSystem
	WorkingDirectory      string
}

// Build constructs the handler command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	handler, parseError := ParseName(string(builder.Handler))
	if parseError != nil {
		return nil, parseError
	}

	command := &cobra.Command{
		Use:   fmt.Sprintf(commandUseTemplateConstant, handler),
		Short: handler.Description(),
		Long:  fmt.Sprintf(commandLongTemplateConstant, handler, handler),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, handler, arguments)
		},
	}

	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().SetInterspersed(false)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, handler Name, arguments []string) error {
	workingDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(command.Context(), builder.WorkingDirectory)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	router := NewRouter(builder.resolveConfiguration(), workingDirectory, dependencies.ResolveFileSystem(builder.FileSystem))
	action := router.Resolve(handler, arguments)

	logger.Debug(logMessageResolvedConstant,
		zap.String(logFieldHandlerConstant, string(handler)),
		zap.String(logFieldActionConstant, action.Describe()),
		zap.String(logFieldManagerConstant, string(action.Manager)),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)

	shellCommand, commandError := action.ShellCommand()
	if commandError != nil {
		return commandError
	}

	dryRun, _ := command.Flags().GetBool(flagDryRunNameConstant)
	if dryRun {
		_, writeError := fmt.Fprintf(command.OutOrStdout(), dryRunOutputTemplateConstant, action.Describe())
		return writeError
	}

	reporter := dependencies.ResolveStatusReporter(builder.Reporter)
	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, reporter)
	if executorError != nil {
		return executorError
	}

	_, executionError := executor.Execute(command.Context(), shellCommand)
	return executionError
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}
