package branches_test

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/RobinBoers/bix/internal/branches"
	"github.com/RobinBoers/bix/internal/gitrepo"
)

func TestBranchCommandsIssueGitVectors(testInstance *testing.T) {
	testCases := []struct {
		name            string
		build           func(builder *branches.CommandBuilder) (*cobra.Command, error)
		arguments       []string
		expectedVectors []string
	}{
		{
			name:            "push",
			build:           (*branches.CommandBuilder).BuildPush,
			arguments:       []string{"topic"},
			expectedVectors: []string{"push --set-upstream gitea topic"},
		},
		{
			name:            "new",
			build:           (*branches.CommandBuilder).BuildNew,
			arguments:       []string{"topic"},
			expectedVectors: []string{"switch trunk", "pull gitea trunk", "switch -c topic"},
		},
		{
			name:            "merge_keep",
			build:           (*branches.CommandBuilder).BuildMerge,
			arguments:       []string{"--keep", "topic"},
			expectedVectors: []string{"switch trunk", "merge --no-ff --no-edit topic", "push --set-upstream gitea trunk"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{}
			builder := &branches.CommandBuilder{
				ConfigurationProvider: func() gitrepo.Configuration {
					return gitrepo.Configuration{DefaultBranch: "trunk", Remote: "gitea"}
				},
				Executor:         executor,
				WorkingDirectory: testWorkingDirectoryConstant,
			}
			command, buildError := testCase.build(builder)
			require.NoError(testInstance, buildError)

			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)
			require.NoError(testInstance, command.Execute())
			require.Equal(testInstance, testCase.expectedVectors, executor.recordedVectors)
		})
	}
}

func TestNewCommandRequiresBranch(testInstance *testing.T) {
	builder := &branches.CommandBuilder{Executor: &recordingGitExecutor{}, WorkingDirectory: testWorkingDirectoryConstant}
	command, buildError := builder.BuildNew()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SilenceUsage = true
	command.SilenceErrors = true

	require.ErrorIs(testInstance, command.Execute(), branches.ErrBranchNameRequired)
}
