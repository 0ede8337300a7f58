package branches_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RobinBoers/bix/internal/branches"
	"github.com/RobinBoers/bix/internal/execshell"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/ui"
)

const (
	testWorkingDirectoryConstant = "/tmp/project"
	testConflictOutputConstant   = "Auto-merging f\nCONFLICT (content): Merge conflict in f\nAutomatic merge failed; fix conflicts and then commit the result.\n"
)

type recordingGitExecutor struct {
	currentBranch   string
	failingCommand  string
	recordedVectors []string
}

func (executor *recordingGitExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	vector := strings.Join(command.Details.Arguments, " ")
	executor.recordedVectors = append(executor.recordedVectors, vector)
	if vector == executor.failingCommand {
		failedResult := execshell.ExecutionResult{ExitCode: 1, StandardOutput: testConflictOutputConstant}
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: failedResult}
	}
	if vector == "symbolic-ref --short HEAD" {
		return execshell.ExecutionResult{StandardOutput: executor.currentBranch + "\n"}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.Execute(executionContext, execshell.ShellCommand{Name: execshell.CommandGit, Details: details})
}

func newTestService(testInstance *testing.T, executor *recordingGitExecutor, output *bytes.Buffer) *branches.Service {
	testInstance.Helper()
	repositories, repositoriesError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, repositoriesError)

	service, serviceError := branches.NewService(gitrepo.Configuration{DefaultBranch: "main", Remote: "origin"}, branches.ServiceDependencies{
		Repositories: repositories,
		Reporter:     ui.NewStatusReporter(output, false),
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestPushIssuesUpstreamPush(testInstance *testing.T) {
	testCases := []struct {
		name            string
		requestedBranch string
		currentBranch   string
		expectedVectors []string
		expectedBranch  string
	}{
		{
			name:            "explicit_branch",
			requestedBranch: "feature/login",
			expectedVectors: []string{"push --set-upstream origin feature/login"},
			expectedBranch:  "feature/login",
		},
		{
			name:            "current_branch",
			currentBranch:   "fix/typo",
			expectedVectors: []string{"symbolic-ref --short HEAD", "push --set-upstream origin fix/typo"},
			expectedBranch:  "fix/typo",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{currentBranch: testCase.currentBranch}
			output := &bytes.Buffer{}
			service := newTestService(testInstance, executor, output)

			pushedBranch, pushError := service.Push(context.Background(), branches.PushOptions{WorkingDirectory: testWorkingDirectoryConstant, BranchName: testCase.requestedBranch})

			require.NoError(testInstance, pushError)
			require.Equal(testInstance, testCase.expectedBranch, pushedBranch)
			require.Equal(testInstance, testCase.expectedVectors, executor.recordedVectors)
			require.Equal(testInstance, "==> Pushed "+testCase.expectedBranch+" to origin\n", output.String())
		})
	}
}

func TestStartCreatesBranchFromUpdatedDefault(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	service := newTestService(testInstance, executor, &bytes.Buffer{})

	require.NoError(testInstance, service.Start(context.Background(), branches.StartOptions{WorkingDirectory: testWorkingDirectoryConstant, BranchName: " feature/search "}))
	require.Equal(testInstance, []string{
		"switch main",
		"pull origin main",
		"switch -c feature/search",
	}, executor.recordedVectors)
}

func TestStartValidation(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	service := newTestService(testInstance, executor, &bytes.Buffer{})

	require.ErrorIs(testInstance, service.Start(context.Background(), branches.StartOptions{BranchName: "  "}), branches.ErrBranchNameRequired)
	require.ErrorIs(testInstance, service.Start(context.Background(), branches.StartOptions{BranchName: "main"}), branches.ErrBranchIsDefault)
	require.Empty(testInstance, executor.recordedVectors)
}

func TestMergeWorkflow(testInstance *testing.T) {
	testCases := []struct {
		name            string
		options         branches.MergeOptions
		currentBranch   string
		failingCommand  string
		expectedVectors []string
		expectedError   error
	}{
		{
			name:          "merge_current_branch_and_delete",
			options:       branches.MergeOptions{},
			currentBranch: "feature/login",
			expectedVectors: []string{
				"symbolic-ref --short HEAD",
				"switch main",
				"merge --no-ff --no-edit feature/login",
				"push --set-upstream origin main",
				"branch -d feature/login",
			},
		},
		{
			name:    "merge_named_branch_and_keep",
			options: branches.MergeOptions{BranchName: "release", KeepBranch: true},
			expectedVectors: []string{
				"switch main",
				"merge --no-ff --no-edit release",
				"push --set-upstream origin main",
			},
		},
		{
			name:            "reject_default_branch",
			currentBranch:   "main",
			expectedVectors: []string{"symbolic-ref --short HEAD"},
			expectedError:   branches.ErrMergeIntoItself,
		},
		{
			name:           "merge_conflict_stops_workflow",
			options:        branches.MergeOptions{BranchName: "feature"},
			failingCommand: "merge --no-ff --no-edit feature",
			expectedVectors: []string{
				"switch main",
				"merge --no-ff --no-edit feature",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{currentBranch: testCase.currentBranch, failingCommand: testCase.failingCommand}
			service := newTestService(testInstance, executor, &bytes.Buffer{})

			options := testCase.options
			options.WorkingDirectory = testWorkingDirectoryConstant
			mergeError := service.Merge(context.Background(), options)

			switch {
			case testCase.expectedError != nil:
				require.ErrorIs(testInstance, mergeError, testCase.expectedError)
			case len(testCase.failingCommand) > 0:
				require.ErrorAs(testInstance, mergeError, &execshell.CommandFailedError{})
				require.Contains(testInstance, mergeError.Error(), "CONFLICT (content): Merge conflict in f")
			default:
				require.NoError(testInstance, mergeError)
			}
			require.Equal(testInstance, testCase.expectedVectors, executor.recordedVectors)
		})
	}
}

func TestNewServiceRequiresRepositories(testInstance *testing.T) {
	_, serviceError := branches.NewService(gitrepo.DefaultConfiguration(), branches.ServiceDependencies{})
	require.ErrorIs(testInstance, serviceError, branches.ErrRepositoryManagerNotConfigured)
}
