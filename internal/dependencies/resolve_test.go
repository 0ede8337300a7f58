package dependencies_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/dependencies"
	"github.com/RobinBoers/bix/internal/shared"
	"github.com/RobinBoers/bix/internal/utils"
)

func TestResolveWorkingDirectoryPrecedence(testInstance *testing.T) {
	processDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	invocationContext := utils.NewCommandContextAccessor().WithInvocation(context.Background(), utils.Invocation{WorkingDirectory: "/from/invocation"})

	testCases := []struct {
		name              string
		executionContext  context.Context
		explicitDirectory string
		expectedDirectory string
	}{
		{name: "explicit", executionContext: invocationContext, explicitDirectory: " /explicit ", expectedDirectory: "/explicit"},
		{name: "invocation", executionContext: invocationContext, expectedDirectory: "/from/invocation"},
		{name: "process", executionContext: context.Background(), expectedDirectory: processDirectory},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolvedDirectory, resolveError := dependencies.ResolveWorkingDirectory(testCase.executionContext, testCase.explicitDirectory)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedDirectory, resolvedDirectory)
		})
	}
}

func TestResolveLoggerFallsBackToNop(testInstance *testing.T) {
	require.NotNil(testInstance, dependencies.ResolveLogger(nil))
	require.NotNil(testInstance, dependencies.ResolveLogger(func() *zap.Logger { return nil }))

	providedLogger := zap.NewExample()
	require.Same(testInstance, providedLogger, dependencies.ResolveLogger(func() *zap.Logger { return providedLogger }))
}

func TestResolveDefaults(testInstance *testing.T) {
	require.Equal(testInstance, shared.OSFileSystem{}, dependencies.ResolveFileSystem(nil))

	reporter := dependencies.ResolveStatusReporter(nil)
	require.NotNil(testInstance, reporter)

	executor, executorError := dependencies.ResolveCommandExecutor(nil, zap.NewNop(), reporter)
	require.NoError(testInstance, executorError)
	require.NotNil(testInstance, executor)
}
