package branches

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RobinBoers/bix/internal/dependencies"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	pushUseConstant               = "push [branch]"
	pushShortDescriptionConstant  = "Push a branch and set its upstream"
	pushLongDescriptionConstant   = "push publishes the given branch, or the current one, to the configured remote with upstream tracking."
	newUseConstant                = "new <branch>"
	newShortDescriptionConstant   = "Start a branch from the updated default branch"
	newLongDescriptionConstant    = "new switches to the default branch, pulls it from the configured remote and creates the branch from it."
	mergeUseConstant              = "merge [branch]"
	mergeShortDescriptionConstant = "Merge a branch into the default branch"
	mergeLongDescriptionConstant  = "merge records a --no-ff merge of the given branch, or the current one, into the default branch, pushes the default branch and deletes the merged branch."
	flagKeepNameConstant          = "keep"
	flagKeepDescriptionConstant   = "Keep the merged branch"
)

// ConfigurationProvider returns the git configuration for the current invocation.
type ConfigurationProvider func() gitrepo.Configuration

// CommandBuilder assembles the push, new and merge commands.
type CommandBuilder struct {
	LoggerProvider        shared.LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              shared.CommandExecutor
	Reporter              shared.StatusReporter
	WorkingDirectory      string
}

// BuildPush constructs the push command.
func (builder *CommandBuilder) BuildPush() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pushUseConstant,
		Short: pushShortDescriptionConstant,
		Long:  pushLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, workingDirectory, serviceError := builder.prepare(command.Context())
			if serviceError != nil {
				return serviceError
			}
			_, pushError := service.Push(command.Context(), PushOptions{WorkingDirectory: workingDirectory, BranchName: firstArgument(arguments)})
			return pushError
		},
	}
	return command, nil
}

// BuildNew constructs the new command.
func (builder *CommandBuilder) BuildNew() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   newUseConstant,
		Short: newShortDescriptionConstant,
		Long:  newLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				return ErrBranchNameRequired
			}
			service, workingDirectory, serviceError := builder.prepare(command.Context())
			if serviceError != nil {
				return serviceError
			}
			return service.Start(command.Context(), StartOptions{WorkingDirectory: workingDirectory, BranchName: arguments[0]})
		},
	}
	return command, nil
}

// BuildMerge constructs the merge command.
func (builder *CommandBuilder) BuildMerge() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   mergeUseConstant,
		Short: mergeShortDescriptionConstant,
		Long:  mergeLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			keepBranch, _ := command.Flags().GetBool(flagKeepNameConstant)
			service, workingDirectory, serviceError := builder.prepare(command.Context())
			if serviceError != nil {
				return serviceError
			}
			return service.Merge(command.Context(), MergeOptions{
				WorkingDirectory: workingDirectory,
				BranchName:       firstArgument(arguments),
				KeepBranch:       keepBranch,
			})
		},
	}
	command.Flags().Bool(flagKeepNameConstant, false, flagKeepDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) prepare(executionContext context.Context) (*Service, string, error) {
	workingDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(executionContext, builder.WorkingDirectory)
	if workingDirectoryError != nil {
		return nil, "", workingDirectoryError
	}

	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	reporter := dependencies.ResolveStatusReporter(builder.Reporter)
	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, reporter)
	if executorError != nil {
		return nil, "", executorError
	}

	repositories, repositoriesError := gitrepo.NewRepositoryManager(executor)
	if repositoriesError != nil {
		return nil, "", repositoriesError
	}

	service, serviceError := NewService(builder.resolveConfiguration(), ServiceDependencies{
		Logger:       logger,
		Repositories: repositories,
		Reporter:     reporter,
	})
	if serviceError != nil {
		return nil, "", serviceError
	}
	return service, workingDirectory, nil
}

func (builder *CommandBuilder) resolveConfiguration() gitrepo.Configuration {
	if builder.ConfigurationProvider == nil {
		return gitrepo.DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func firstArgument(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	return arguments[0]
}
