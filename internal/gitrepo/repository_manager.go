package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/RobinBoers/bix/internal/execshell"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	gitSymbolicRefSubcommandConstant     = "symbolic-ref"
	gitShortFlagConstant                 = "--short"
	gitHeadReferenceConstant             = "HEAD"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitInsideWorkTreeFlagConstant        = "--is-inside-work-tree"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitRemoteAddSubcommandConstant       = "add"
	gitRemoteSetURLSubcommandConstant    = "set-url"
	gitInitSubcommandConstant            = "init"
	gitInitialBranchFlagPrefixConstant   = "--initial-branch="
	gitSwitchSubcommandConstant          = "switch"
	gitCreateFlagConstant                = "-c"
	gitPullSubcommandConstant            = "pull"
	gitPushSubcommandConstant            = "push"
	gitSetUpstreamFlagConstant           = "--set-upstream"
	gitMergeSubcommandConstant           = "merge"
	gitNoFastForwardFlagConstant         = "--no-ff"
	gitNoEditFlagConstant                = "--no-edit"
	gitBranchSubcommandConstant          = "branch"
	gitDeleteFlagConstant                = "-d"
	gitCloneSubcommandConstant           = "clone"
	gitTrueOutputConstant                = "true"
	executorNotConfiguredMessageConstant = "git executor not configured"
	detachedHeadMessageConstant          = "HEAD is detached; pass a branch name explicitly"
)

var (
	// ErrExecutorNotConfigured indicates the manager was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrDetachedHead indicates the current branch cannot be determined.
	ErrDetachedHead = errors.New(detachedHeadMessageConstant)
)

// RepositoryManager issues git commands against a working copy.
type RepositoryManager struct {
	executor shared.CommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor shared.CommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsRepository reports whether the directory is inside a git work tree.
func (manager *RepositoryManager) IsRepository(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.query(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitInsideWorkTreeFlagConstant)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return false, nil
		}
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == gitTrueOutputConstant, nil
}

// CurrentBranch returns the checked out branch, including an unborn one.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.query(executionContext, repositoryPath, gitSymbolicRefSubcommandConstant, gitShortFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return "", ErrDetachedHead
		}
		return "", executionError
	}
	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(branchName) == 0 {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// RemoteURL returns the URL of the named remote; the boolean is false when the remote does not exist.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, bool, error) {
	executionResult, executionError := manager.query(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		if isCommandFailure(executionError) {
			return "", false, nil
		}
		return "", false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), true, nil
}

// AddRemote registers a new remote.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, remoteURL)
	return executionError
}

// SetRemoteURL repoints an existing remote.
func (manager *RepositoryManager) SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, remoteName, remoteURL)
	return executionError
}

// Init creates a repository whose first branch is initialBranch.
func (manager *RepositoryManager) Init(executionContext context.Context, repositoryPath string, initialBranch string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitInitSubcommandConstant, gitInitialBranchFlagPrefixConstant+initialBranch)
	return executionError
}

// Switch checks out an existing branch.
func (manager *RepositoryManager) Switch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitSwitchSubcommandConstant, branchName)
	return executionError
}

// CreateBranch creates and checks out a branch from HEAD.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitSwitchSubcommandConstant, gitCreateFlagConstant, branchName)
	return executionError
}

// Pull fetches and integrates the branch from the remote.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitPullSubcommandConstant, remoteName, branchName)
	return executionError
}

// Push publishes the branch to the remote and records it as upstream.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, remoteName, branchName)
	return executionError
}

// MergeNoFastForward merges the branch into HEAD, always recording a merge commit.
func (manager *RepositoryManager) MergeNoFastForward(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitMergeSubcommandConstant, gitNoFastForwardFlagConstant, gitNoEditFlagConstant, branchName)
	return executionError
}

// DeleteBranch removes a fully merged local branch.
func (manager *RepositoryManager) DeleteBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	_, executionError := manager.git(executionContext, repositoryPath, gitBranchSubcommandConstant, gitDeleteFlagConstant, branchName)
	return executionError
}

// Clone clones the remote into targetDirectory (or git's default when empty) below parentDirectory.
func (manager *RepositoryManager) Clone(executionContext context.Context, parentDirectory string, remoteURL string, targetDirectory string) error {
	arguments := []string{gitCloneSubcommandConstant, remoteURL}
	if trimmedTarget := strings.TrimSpace(targetDirectory); len(trimmedTarget) > 0 {
		arguments = append(arguments, trimmedTarget)
	}
	_, executionError := manager.git(executionContext, parentDirectory, arguments...)
	return executionError
}

func (manager *RepositoryManager) git(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
	})
}

func (manager *RepositoryManager) query(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		Query:            true,
	})
}

func isCommandFailure(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	return errors.As(executionError, &commandFailure)
}
