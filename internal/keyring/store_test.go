package keyring_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RobinBoers/bix/internal/execshell"
	"github.com/RobinBoers/bix/internal/keyring"
)

type recordingExecutor struct {
	result           execshell.ExecutionResult
	executionError   error
	executedCommands []execshell.ShellCommand
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, command)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	if executor.result.ExitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: executor.result}
	}
	return executor.result, nil
}

func (executor *recordingExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.Execute(executionContext, execshell.ShellCommand{Name: execshell.CommandGit, Details: details})
}

func newStore(testInstance *testing.T, executor *recordingExecutor, platform string) *keyring.Store {
	testInstance.Helper()
	store, storeError := keyring.NewStoreForPlatform(executor, keyring.Configuration{Service: "bix"}, platform)
	require.NoError(testInstance, storeError)
	return store
}

func TestStoreGet(testInstance *testing.T) {
	testCases := []struct {
		name              string
		platform          string
		result            execshell.ExecutionResult
		expectedSecret    string
		expectedError     error
		expectedCommand   execshell.CommandName
		expectedArguments []string
	}{
		{
			name:              "linux_found",
			platform:          "linux",
			result:            execshell.ExecutionResult{StandardOutput: "token-value\n"},
			expectedSecret:    "token-value",
			expectedCommand:   execshell.CommandSecretTool,
			expectedArguments: []string{"lookup", "service", "bix", "account", "git.example.com"},
		},
		{
			name:              "linux_missing",
			platform:          "linux",
			result:            execshell.ExecutionResult{ExitCode: 1},
			expectedError:     keyring.ErrSecretNotFound,
			expectedCommand:   execshell.CommandSecretTool,
			expectedArguments: []string{"lookup", "service", "bix", "account", "git.example.com"},
		},
		{
			name:              "darwin_found",
			platform:          "darwin",
			result:            execshell.ExecutionResult{StandardOutput: "token-value"},
			expectedSecret:    "token-value",
			expectedCommand:   execshell.CommandSecurity,
			expectedArguments: []string{"find-generic-password", "-s", "bix", "-a", "git.example.com", "-w"},
		},
		{
			name:              "darwin_missing",
			platform:          "darwin",
			result:            execshell.ExecutionResult{ExitCode: 44},
			expectedError:     keyring.ErrSecretNotFound,
			expectedCommand:   execshell.CommandSecurity,
			expectedArguments: []string{"find-generic-password", "-s", "bix", "-a", "git.example.com", "-w"},
		},
		{
			name:              "empty_output",
			platform:          "linux",
			result:            execshell.ExecutionResult{StandardOutput: "  \n"},
			expectedError:     keyring.ErrSecretNotFound,
			expectedCommand:   execshell.CommandSecretTool,
			expectedArguments: []string{"lookup", "service", "bix", "account", "git.example.com"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingExecutor{result: testCase.result}
			store := newStore(testInstance, executor, testCase.platform)

			secret, getError := store.Get(context.Background(), " git.example.com ")

			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, getError, testCase.expectedError)
			} else {
				require.NoError(testInstance, getError)
				require.Equal(testInstance, testCase.expectedSecret, secret)
			}
			require.Len(testInstance, executor.executedCommands, 1)
			require.Equal(testInstance, testCase.expectedCommand, executor.executedCommands[0].Name)
			require.Equal(testInstance, testCase.expectedArguments, executor.executedCommands[0].Details.Arguments)
			require.True(testInstance, executor.executedCommands[0].Details.Query)
		})
	}
}

func TestStoreGetSurfacesOtherFailures(testInstance *testing.T) {
	executor := &recordingExecutor{result: execshell.ExecutionResult{ExitCode: 2, StandardError: "no secret service"}}
	_, getError := newStore(testInstance, executor, "linux").Get(context.Background(), "git.example.com")
	require.ErrorAs(testInstance, getError, &execshell.CommandFailedError{})
	require.NotErrorIs(testInstance, getError, keyring.ErrSecretNotFound)

	startFailure := errors.New("executable file not found")
	executor = &recordingExecutor{executionError: execshell.CommandExecutionError{Cause: startFailure}}
	_, getError = newStore(testInstance, executor, "linux").Get(context.Background(), "git.example.com")
	require.ErrorIs(testInstance, getError, startFailure)
}

func TestStoreSetKeepsSecretOutOfArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		platform          string
		expectedCommand   execshell.CommandName
		expectedArguments []string
		expectedInput     string
	}{
		{
			name:              "secret_tool",
			platform:          "linux",
			expectedCommand:   execshell.CommandSecretTool,
			expectedArguments: []string{"store", "--label=bix token for git.example.com", "service", "bix", "account", "git.example.com"},
			expectedInput:     "s3cr3t",
		},
		{
			name:              "security",
			platform:          "darwin",
			expectedCommand:   execshell.CommandSecurity,
			expectedArguments: []string{"-i"},
			expectedInput:     "add-generic-password -U -s \"bix\" -a \"git.example.com\" -l \"bix token for git.example.com\" -w \"s3cr3t\"\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingExecutor{}
			store := newStore(testInstance, executor, testCase.platform)

			require.NoError(testInstance, store.Set(context.Background(), "git.example.com", " s3cr3t\n"))
			require.Len(testInstance, executor.executedCommands, 1)
			executedCommand := executor.executedCommands[0]
			require.Equal(testInstance, testCase.expectedCommand, executedCommand.Name)
			require.Equal(testInstance, testCase.expectedArguments, executedCommand.Details.Arguments)
			require.Equal(testInstance, testCase.expectedInput, string(executedCommand.Details.StandardInput))
			require.NotContains(testInstance, executedCommand.Details.Arguments, "s3cr3t")
		})
	}
}

func TestStoreDeleteIgnoresMissingSecret(testInstance *testing.T) {
	executor := &recordingExecutor{result: execshell.ExecutionResult{ExitCode: 1}}
	store := newStore(testInstance, executor, "linux")

	require.NoError(testInstance, store.Delete(context.Background(), "git.example.com"))
	require.Equal(testInstance, []string{"clear", "service", "bix", "account", "git.example.com"}, executor.executedCommands[0].Details.Arguments)
}

func TestStoreValidation(testInstance *testing.T) {
	_, executorError := keyring.NewStoreForPlatform(nil, keyring.DefaultConfiguration(), "linux")
	require.ErrorIs(testInstance, executorError, keyring.ErrExecutorNotConfigured)

	_, platformError := keyring.NewStoreForPlatform(&recordingExecutor{}, keyring.DefaultConfiguration(), "plan9")
	require.ErrorIs(testInstance, platformError, keyring.ErrUnsupportedPlatform)

	executor := &recordingExecutor{}
	store := newStore(testInstance, executor, "linux")
	_, accountError := store.Get(context.Background(), "line\nbreak")
	require.ErrorIs(testInstance, accountError, keyring.ErrInvalidAttribute)
	require.ErrorIs(testInstance, store.Set(context.Background(), " ", "secret"), keyring.ErrInvalidAttribute)
	require.Empty(testInstance, executor.executedCommands)

	require.Equal(testInstance, "bix", keyring.Configuration{Service: "  "}.Sanitize().Service)
	require.Equal(testInstance, "bix", store.Service())
}

func TestNewStoreUsesRunningPlatform(testInstance *testing.T) {
	store, storeError := keyring.NewStore(&recordingExecutor{}, keyring.Configuration{Service: "bix-test"})
	switch runtime.GOOS {
	case "linux", "darwin":
		require.NoError(testInstance, storeError)
		require.Equal(testInstance, "bix-test", store.Service())
	default:
		require.ErrorIs(testInstance, storeError, keyring.ErrUnsupportedPlatform)
	}
}
