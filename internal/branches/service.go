package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	branchNameRequiredMessageConstant       = "branch name required"
	pushedMessageTemplateConstant           = "Pushed %s to %s"
	createdMessageTemplateConstant          = "Created branch %s from %s"
	mergedMessageTemplateConstant           = "Merged %s into %s"
	deletedMessageTemplateConstant          = "Deleted branch %s"
	keptMessageTemplateConstant             = "Kept branch %s"
	logMessagePushConstant                  = "Pushing branch"
	logMessageStartBranchConstant           = "Starting branch"
	logMessageMergeConstant                 = "Merging branch"
	logFieldBranchConstant                  = "branch"
	logFieldRemoteConstant                  = "remote"
	logFieldDefaultBranchConstant           = "default_branch"
	logFieldWorkingDirectoryConstant        = "working_directory"
	stepSwitchDefaultTemplateConstant       = "switch to %s: %w"
	stepPullDefaultTemplateConstant         = "update %s: %w"
	stepCreateBranchTemplateConstant        = "create branch %s: %w"
	stepMergeTemplateConstant               = "merge %s: %w"
	stepPushTemplateConstant                = "push %s: %w"
	stepDeleteTemplateConstant              = "delete branch %s: %w"
	repositoryManagerMissingMessageConstant = "branch service requires a repository manager"
)

var (
	// ErrBranchNameRequired indicates an operation needs an explicit branch name.
	ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)
	// ErrMergeIntoItself indicates the branch to merge is the default branch.
	ErrMergeIntoItself = errors.New("cannot merge the default branch into itself")
	// ErrBranchIsDefault indicates a new branch would shadow the default branch.
	ErrBranchIsDefault = errors.New("branch name matches the default branch")
	// ErrRepositoryManagerNotConfigured indicates the service was constructed without git access.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)
)

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Repositories *gitrepo.RepositoryManager
	Reporter     shared.StatusReporter
}

// PushOptions configures Push.
type PushOptions struct {
	WorkingDirectory string
	BranchName       string
}

// StartOptions configures Start.
type StartOptions struct {
	WorkingDirectory string
	BranchName       string
}

// MergeOptions configures Merge.
type MergeOptions struct {
	WorkingDirectory string
	BranchName       string
	KeepBranch       bool
}

// Service coordinates branch workflows against the configured remote and default branch.
type Service struct {
	logger        *zap.Logger
	repositories  *gitrepo.RepositoryManager
	reporter      shared.StatusReporter
	configuration gitrepo.Configuration
}

// NewService constructs a Service.
func NewService(configuration gitrepo.Configuration, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repositories == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:        logger,
		repositories:  dependencies.Repositories,
		reporter:      dependencies.Reporter,
		configuration: configuration.Sanitize(),
	}, nil
}

// Push publishes the named or current branch with upstream tracking and returns the branch pushed.
func (service *Service) Push(executionContext context.Context, options PushOptions) (string, error) {
	branchName, branchError := service.targetBranch(executionContext, options.WorkingDirectory, options.BranchName)
	if branchError != nil {
		return "", branchError
	}

	service.logger.Info(logMessagePushConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldRemoteConstant, service.configuration.Remote),
		zap.String(logFieldWorkingDirectoryConstant, options.WorkingDirectory),
	)

	if pushError := service.repositories.Push(executionContext, options.WorkingDirectory, service.configuration.Remote, branchName); pushError != nil {
		return "", fmt.Errorf(stepPushTemplateConstant, branchName, pushError)
	}

	service.success(fmt.Sprintf(pushedMessageTemplateConstant, branchName, service.configuration.Remote))
	return branchName, nil
}

// Start updates the default branch and creates the new branch from it.
func (service *Service) Start(executionContext context.Context, options StartOptions) error {
	branchName := strings.TrimSpace(options.BranchName)
	if len(branchName) == 0 {
		return ErrBranchNameRequired
	}
	defaultBranch := service.configuration.DefaultBranch
	if branchName == defaultBranch {
		return fmt.Errorf("%w: %s", ErrBranchIsDefault, branchName)
	}

	service.logger.Info(logMessageStartBranchConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldDefaultBranchConstant, defaultBranch),
		zap.String(logFieldWorkingDirectoryConstant, options.WorkingDirectory),
	)

	if switchError := service.repositories.Switch(executionContext, options.WorkingDirectory, defaultBranch); switchError != nil {
		return fmt.Errorf(stepSwitchDefaultTemplateConstant, defaultBranch, switchError)
	}
	if pullError := service.repositories.Pull(executionContext, options.WorkingDirectory, service.configuration.Remote, defaultBranch); pullError != nil {
		return fmt.Errorf(stepPullDefaultTemplateConstant, defaultBranch, pullError)
	}
	if createError := service.repositories.CreateBranch(executionContext, options.WorkingDirectory, branchName); createError != nil {
		return fmt.Errorf(stepCreateBranchTemplateConstant, branchName, createError)
	}

	service.success(fmt.Sprintf(createdMessageTemplateConstant, branchName, defaultBranch))
	return nil
}

// Merge merges the named or current branch into the default branch, pushes it and
// removes the merged branch unless KeepBranch is set.
func (service *Service) Merge(executionContext context.Context, options MergeOptions) error {
	branchName, branchError := service.targetBranch(executionContext, options.WorkingDirectory, options.BranchName)
	if branchError != nil {
		return branchError
	}
	defaultBranch := service.configuration.DefaultBranch
	if branchName == defaultBranch {
		return fmt.Errorf("%w: %s", ErrMergeIntoItself, defaultBranch)
	}

	service.logger.Info(logMessageMergeConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldDefaultBranchConstant, defaultBranch),
		zap.String(logFieldWorkingDirectoryConstant, options.WorkingDirectory),
	)

	if switchError := service.repositories.Switch(executionContext, options.WorkingDirectory, defaultBranch); switchError != nil {
		return fmt.Errorf(stepSwitchDefaultTemplateConstant, defaultBranch, switchError)
	}
	if mergeError := service.repositories.MergeNoFastForward(executionContext, options.WorkingDirectory, branchName); mergeError != nil {
		return fmt.Errorf(stepMergeTemplateConstant, branchName, mergeError)
	}
	service.success(fmt.Sprintf(mergedMessageTemplateConstant, branchName, defaultBranch))

	if pushError := service.repositories.Push(executionContext, options.WorkingDirectory, service.configuration.Remote, defaultBranch); pushError != nil {
		return fmt.Errorf(stepPushTemplateConstant, defaultBranch, pushError)
	}
	service.success(fmt.Sprintf(pushedMessageTemplateConstant, defaultBranch, service.configuration.Remote))

	if options.KeepBranch {
		service.success(fmt.Sprintf(keptMessageTemplateConstant, branchName))
		return nil
	}
	if deleteError := service.repositories.DeleteBranch(executionContext, options.WorkingDirectory, branchName); deleteError != nil {
		return fmt.Errorf(stepDeleteTemplateConstant, branchName, deleteError)
	}
	service.success(fmt.Sprintf(deletedMessageTemplateConstant, branchName))
	return nil
}

func (service *Service) targetBranch(executionContext context.Context, workingDirectory string, requestedBranch string) (string, error) {
	if trimmedBranch := strings.TrimSpace(requestedBranch); len(trimmedBranch) > 0 {
		return trimmedBranch, nil
	}
	return service.repositories.CurrentBranch(executionContext, workingDirectory)
}

func (service *Service) success(message string) {
	if service.reporter == nil {
		return
	}
	service.reporter.Success(message)
}
