package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RobinBoers/bix/internal/handlers"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testFileConfigurationConstant     = "common:\n  log_level: info\ngit:\n  default_branch: trunk\n"
	testHostFileConfigurationConstant = "host:\n  owner: acme\n  ssh_user: gitea\n"
)

var isolatedEnvironmentVariables = []string{
	"BIX_COMMON_LOG_LEVEL",
	"BIX_COMMON_LOG_FORMAT",
	"BIX_GIT_DEFAULT_BRANCH",
	"BIX_DEFAULT_BRANCH",
	"BIX_HOST",
	"BIX_HOST_URL",
	"BIX_TOKEN",
}

type applicationHarness struct {
	application      *Application
	output           *bytes.Buffer
	diagnostics      *bytes.Buffer
	workingDirectory string
	configHome       string
}

func newApplicationHarness(t *testing.T) *applicationHarness {
	t.Helper()
	for _, variableName := range isolatedEnvironmentVariables {
		t.Setenv(variableName, "")
	}
	configHome := t.TempDir()
	t.Setenv(xdgConfigHomeEnvironmentConstant, configHome)
	t.Setenv("HOME", t.TempDir())

	harness := &applicationHarness{
		output:           &bytes.Buffer{},
		diagnostics:      &bytes.Buffer{},
		workingDirectory: t.TempDir(),
		configHome:       configHome,
	}
	return harness
}

// run builds the application after the test adjusted its environment, so search paths see it.
func (harness *applicationHarness) run(arguments ...string) error {
	harness.application = newApplication(harness.diagnostics, false)
	harness.application.workingDirectoryProvider = func() (string, error) { return harness.workingDirectory, nil }
	harness.application.rootCommand.SetOut(harness.output)
	harness.application.rootCommand.SetErr(harness.diagnostics)
	harness.application.rootCommand.SetArgs(append([]string{}, arguments...))
	return harness.application.Execute(context.Background())
}

func writeFile(t *testing.T, path string, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestConfigurationPrecedence(t *testing.T) {
	testCases := []struct {
		name             string
		environment      map[string]string
		useFile          bool
		fileContent      string
		useXDGFile       bool
		extraArguments   []string
		expectedFragment []string
	}{
		{
			name:             "EmbeddedDefaults",
			expectedFragment: []string{"  log_level: warn\n", "  log_format: console\n", "  default_branch: main\n", "  remote: origin\n", "  script_directory: bin\n", "  ssh_user: git\n", "  service: bix\n", "embedded defaults"},
		},
		{
			name:             "ExplicitFileOverridesDefaults",
			useFile:          true,
			expectedFragment: []string{"  log_level: info\n", "  default_branch: trunk\n", "  remote: origin\n"},
		},
		{
			name:             "XDGFileDiscovered",
			useXDGFile:       true,
			expectedFragment: []string{"  default_branch: trunk\n", filepath.Join("bix", testConfigurationFileNameConstant)},
		},
		{
			name:             "PrefixedEnvironmentOverridesFile",
			useFile:          true,
			environment:      map[string]string{"BIX_GIT_DEFAULT_BRANCH": "develop"},
			expectedFragment: []string{"  default_branch: develop\n"},
		},
		{
			name:             "EnvironmentAliases",
			environment:      map[string]string{"BIX_DEFAULT_BRANCH": "release", "BIX_HOST": "git.example.com"},
			expectedFragment: []string{"  default_branch: release\n", "  url: git.example.com\n", "  token_name: bix\n"},
		},
		{
			name:             "HostAliasKeepsFileSiblings",
			useFile:          true,
			fileContent:      testHostFileConfigurationConstant,
			environment:      map[string]string{"BIX_HOST": "git.example.com"},
			expectedFragment: []string{"  url: git.example.com\n", "  owner: acme\n", "  ssh_user: gitea\n", "  token_name: bix\n"},
		},
		{
			name:             "BlankValuesPrintedAsUsed",
			useFile:          true,
			fileContent:      "handlers:\n  script_directory: \"  \"\nhost:\n  ssh_user: \"\"\n  owner: \" acme \"\n",
			expectedFragment: []string{"  script_directory: bin\n", "  ssh_user: git\n", "  owner: acme\n"},
		},
		{
			name:             "PrefixedHostWinsOverAlias",
			environment:      map[string]string{"BIX_HOST": "git.example.com", "BIX_HOST_URL": "code.example.org"},
			expectedFragment: []string{"  url: code.example.org\n", "  ssh_user: git\n"},
		},
		{
			name:             "FlagOverridesEnvironment",
			environment:      map[string]string{"BIX_COMMON_LOG_LEVEL": "info"},
			extraArguments:   []string{"--log-level", "DEBUG"},
			expectedFragment: []string{"  log_level: debug\n"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newApplicationHarness(t)
			for variableName, variableValue := range testCase.environment {
				t.Setenv(variableName, variableValue)
			}

			arguments := []string{"config"}
			if testCase.useFile {
				configurationPath := filepath.Join(t.TempDir(), testConfigurationFileNameConstant)
				fileContent := testCase.fileContent
				if len(fileContent) == 0 {
					fileContent = testFileConfigurationConstant
				}
				writeFile(t, configurationPath, fileContent, 0o644)
				arguments = append(arguments, "--config", configurationPath)
			}
			if testCase.useXDGFile {
				writeFile(t, filepath.Join(harness.configHome, configurationDirectoryNameConstant, testConfigurationFileNameConstant), testFileConfigurationConstant, 0o644)
			}
			arguments = append(arguments, testCase.extraArguments...)

			require.NoError(t, harness.run(arguments...))
			for _, fragment := range testCase.expectedFragment {
				require.Contains(t, harness.output.String(), fragment)
			}
		})
	}
}

func TestApplicationRegistersEveryCommand(t *testing.T) {
	harness := newApplicationHarness(t)
	harness.application = newApplication(harness.diagnostics, false)

	registered := map[string]bool{}
	for _, command := range harness.application.rootCommand.Commands() {
		registered[command.Name()] = true
	}

	expectedCommands := []string{"push", "new", "merge", "create-repo", "link-repo", "clone", "auth", "config"}
	for _, handlerName := range handlers.Names() {
		expectedCommands = append(expectedCommands, string(handlerName))
	}
	for _, commandName := range expectedCommands {
		require.True(t, registered[commandName], commandName)
	}
}

func TestHandlerCommandResolvesInInvocationDirectory(t *testing.T) {
	testCases := []struct {
		name           string
		files          map[string]string
		arguments      []string
		expectedOutput string
		expectedError  error
	}{
		{
			name:           "MarkerFile",
			files:          map[string]string{"mix.exs": ""},
			arguments:      []string{"build", "--dry-run"},
			expectedOutput: "mix compile\n",
		},
		{
			name:           "ArgumentsForwarded",
			files:          map[string]string{"package.json": "{}"},
			arguments:      []string{"check", "--dry-run", "--", "--watch"},
			expectedOutput: "npm test --watch\n",
		},
		{
			name:          "NoHandler",
			arguments:     []string{"deploy", "--dry-run"},
			expectedError: handlers.ErrNoHandler,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newApplicationHarness(t)
			for fileName, content := range testCase.files {
				writeFile(t, filepath.Join(harness.workingDirectory, fileName), content, 0o644)
			}

			executionError := harness.run(testCase.arguments...)
			if testCase.expectedError != nil {
				require.ErrorIs(t, executionError, testCase.expectedError)
				return
			}
			require.NoError(t, executionError)
			require.Equal(t, testCase.expectedOutput, harness.output.String())
		})
	}
}

func TestScriptDirectoryFromEnvironment(t *testing.T) {
	harness := newApplicationHarness(t)
	t.Setenv("BIX_HANDLERS_SCRIPT_DIRECTORY", "scripts")
	scriptPath := filepath.Join(harness.workingDirectory, "scripts", "server")
	writeFile(t, scriptPath, "#!/bin/sh\n", 0o755)
	writeFile(t, filepath.Join(harness.workingDirectory, "mix.exs"), "", 0o644)

	require.NoError(t, harness.run("server", "--dry-run"))
	require.Equal(t, "script "+scriptPath+"\n", harness.output.String())
}

func TestInvalidLogLevelRejected(t *testing.T) {
	harness := newApplicationHarness(t)
	executionError := harness.run("--log-level", "verbose", "config")
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "verbose")
}

func TestUnknownCommandFails(t *testing.T) {
	harness := newApplicationHarness(t)
	require.Error(t, harness.run("compile"))
}

func TestVersionFlagPrintsVersion(t *testing.T) {
	originalVersion := Version
	t.Cleanup(func() { Version = originalVersion })
	Version = "v1.2.3"

	harness := newApplicationHarness(t)
	require.NoError(t, harness.run("--version"))
	require.Equal(t, "bix version: v1.2.3\n", harness.output.String())
}
