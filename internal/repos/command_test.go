package repos_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/RobinBoers/bix/internal/auth"
	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/repos"
)

const testEnvironmentTokenConstant = "environment-token"

func newRepositoryAPIServer(testInstance *testing.T, createdPaths *[]string) *httptest.Server {
	testInstance.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		if request.Header.Get("Authorization") != "token "+testEnvironmentTokenConstant {
			responseWriter.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(responseWriter, `{"message":"token is required"}`)
			return
		}
		switch {
		case request.Method == http.MethodGet && request.URL.Path == "/api/v1/user":
			_, _ = io.WriteString(responseWriter, `{"id":7,"login":"robin"}`)
		case request.Method == http.MethodPost && request.URL.Path == "/api/v1/user/repos":
			*createdPaths = append(*createdPaths, request.URL.Path)
			responseWriter.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(responseWriter, `{"id":3,"name":"bix","full_name":"robin/bix","owner":{"login":"robin"}}`)
		default:
			responseWriter.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(responseWriter, `{"message":"not found"}`)
		}
	}))
	testInstance.Cleanup(server.Close)
	return server
}

func tokenEnvironment(name string) (string, bool) {
	if name == auth.EnvironmentTokenVariable {
		return testEnvironmentTokenConstant, true
	}
	return "", false
}

func newRepositoryCommandBuilder(hostURL string, httpClient *http.Client, owner string, executor *scriptedGitExecutor) *repos.CommandBuilder {
	return &repos.CommandBuilder{
		ConfigurationProvider: func() repos.Configuration {
			return repos.Configuration{
				Git:  gitrepo.Configuration{DefaultBranch: "main", Remote: "origin"},
				Host: gitea.Configuration{URL: hostURL, Owner: owner},
			}
		},
		Executor:          executor,
		HTTPClient:        httpClient,
		EnvironmentLookup: tokenEnvironment,
		Platform:          "linux",
		WorkingDirectory:  testWorkingDirectoryConstant,
	}
}

func TestCreateRepoCommandCreatesAndLinks(testInstance *testing.T) {
	var createdPaths []string
	server := newRepositoryAPIServer(testInstance, &createdPaths)
	executor := &scriptedGitExecutor{}
	builder := newRepositoryCommandBuilder(server.URL, server.Client(), "", executor)

	command, buildError := builder.BuildCreate()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetArgs([]string{"--private", "bix"})
	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, []string{"/api/v1/user/repos"}, createdPaths)
	require.Equal(testInstance, []string{
		"rev-parse --is-inside-work-tree",
		"remote get-url origin",
		"remote add origin git@127.0.0.1:robin/bix.git",
		"push --set-upstream origin main",
	}, executor.recordedVectors)
}

func TestCreateRepoCommandWithoutLink(testInstance *testing.T) {
	var createdPaths []string
	server := newRepositoryAPIServer(testInstance, &createdPaths)
	executor := &scriptedGitExecutor{}
	builder := newRepositoryCommandBuilder(server.URL, server.Client(), "", executor)

	command, buildError := builder.BuildCreate()
	require.NoError(testInstance, buildError)
	command.SetContext(context.Background())
	command.SetArgs([]string{"--no-link", "bix"})
	require.NoError(testInstance, command.Execute())
	require.Len(testInstance, createdPaths, 1)
	require.Empty(testInstance, executor.recordedVectors)
}

func TestRepositoryCommandsWorkWithoutHostAPI(testInstance *testing.T) {
	testCases := []struct {
		name            string
		build           func(builder *repos.CommandBuilder) (*cobra.Command, error)
		arguments       []string
		expectedVectors []string
	}{
		{
			name:      "link_without_push",
			build:     (*repos.CommandBuilder).BuildLink,
			arguments: []string{"--no-push", "site"},
			expectedVectors: []string{
				"rev-parse --is-inside-work-tree",
				"remote get-url origin",
				"remote add origin git@git.example.com:tools/site.git",
			},
		},
		{
			name:            "clone_into_directory",
			build:           (*repos.CommandBuilder).BuildClone,
			arguments:       []string{"someone/site", "web"},
			expectedVectors: []string{"clone git@git.example.com:someone/site.git web"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{}
			builder := newRepositoryCommandBuilder("https://git.example.com", nil, "tools", executor)
			command, buildError := testCase.build(builder)
			require.NoError(testInstance, buildError)

			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)
			require.NoError(testInstance, command.Execute())
			require.Equal(testInstance, testCase.expectedVectors, executor.recordedVectors)
		})
	}
}

func TestRepositoryCommandsRequireName(testInstance *testing.T) {
	builders := []func(builder *repos.CommandBuilder) (*cobra.Command, error){
		(*repos.CommandBuilder).BuildCreate,
		(*repos.CommandBuilder).BuildLink,
		(*repos.CommandBuilder).BuildClone,
	}
	for _, build := range builders {
		command, buildError := build(newRepositoryCommandBuilder("https://git.example.com", nil, "tools", &scriptedGitExecutor{}))
		require.NoError(testInstance, buildError)
		command.SilenceUsage = true
		command.SilenceErrors = true
		command.SetContext(context.Background())
		command.SetArgs([]string{})
		require.ErrorIs(testInstance, command.Execute(), repos.ErrRepositoryNameRequired)
	}
}
