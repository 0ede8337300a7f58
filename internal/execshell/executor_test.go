package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/RobinBoers/bix/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingObserver struct {
	started   int
	completed int
	failed    int
}

func (recorder *recordingObserver) CommandStarted(execshell.ShellCommand) { recorder.started++ }

func (recorder *recordingObserver) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {
	recorder.completed++
}

func (recorder *recordingObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	recorder.failed++
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name              string
		runnerResult      execshell.ExecutionResult
		runnerError       error
		expectErrorType   any
		expectedLogCount  int
		expectedCompleted int
		expectedFailed    int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount:  2,
			expectedCompleted: 1,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:   execshell.CommandFailedError{},
			expectedLogCount:  2,
			expectedCompleted: 1,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
			expectedFailed:   1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}
			eventObserver := &recordingObserver{}

			shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, recordingRunner, eventObserver)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
			require.Equal(testInstance, 1, eventObserver.started)
			require.Equal(testInstance, testCase.expectedCompleted, eventObserver.completed)
			require.Equal(testInstance, testCase.expectedFailed, eventObserver.failed)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)
		})
	}
}

func TestCommandFailedErrorIncludesStandardError(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"push"}}},
		Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "  rejected\n"},
	}
	require.Equal(testInstance, "git push failed with exit code 128: rejected", failure.Error())

	silentFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: "mix", Details: execshell.CommandDetails{Arguments: []string{"compile"}}},
		Result:  execshell.ExecutionResult{ExitCode: 2},
	}
	require.Equal(testInstance, "mix compile failed with exit code 2", silentFailure.Error())
}

func TestCommandFailedErrorIncludesStandardOutput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		result        execshell.ExecutionResult
		expectedError string
	}{
		{
			name: "stdout_only",
			result: execshell.ExecutionResult{
				ExitCode:       1,
				StandardOutput: "Auto-merging f\nCONFLICT (content): Merge conflict in f\n",
			},
			expectedError: "git merge --no-ff --no-edit feature failed with exit code 1: Auto-merging f\nCONFLICT (content): Merge conflict in f",
		},
		{
			name: "both_streams",
			result: execshell.ExecutionResult{
				ExitCode:       1,
				StandardError:  "error: could not apply\n",
				StandardOutput: "CONFLICT (content): Merge conflict in f\n",
			},
			expectedError: "git merge --no-ff --no-edit feature failed with exit code 1: error: could not apply\nCONFLICT (content): Merge conflict in f",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			failure := execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"merge", "--no-ff", "--no-edit", "feature"}}},
				Result:  testCase.result,
			}
			require.Equal(testInstance, testCase.expectedError, failure.Error())
		})
	}
}

func TestShellExecutorSurfacesStandardOutputOnFailure(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{ExitCode: 1, StandardOutput: "CONFLICT (content): Merge conflict in f\n"},
	}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"merge", "feature"}})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "CONFLICT (content): Merge conflict in f")

	var failure execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failure)
	require.Equal(testInstance, "CONFLICT (content): Merge conflict in f", failure.Output())
}

func TestCommandExecutionErrorUnwraps(testInstance *testing.T) {
	cause := errors.New("executable file not found")
	failure := execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: "yarn"}, Cause: cause}
	require.ErrorIs(testInstance, failure, cause)
	require.Contains(testInstance, failure.Error(), "yarn failed")
}
