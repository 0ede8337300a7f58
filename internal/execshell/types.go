package execshell

import "context"

// CommandName identifies the executable to run.
type CommandName string

// Well-known executables.
const (
	CommandGit        CommandName = CommandName("git")
	CommandShell      CommandName = CommandName("sh")
	CommandSecretTool CommandName = CommandName("secret-tool")
	CommandSecurity   CommandName = CommandName("security")
)

// CommandDetails describes a single invocation of an executable.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// Passthrough attaches the process to the runner's terminal streams
	// instead of capturing its output.
	Passthrough bool
	// Query marks read-only lookups whose non-zero exits are an expected answer.
	Query bool
}

// ShellCommand combines an executable with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
// Output fields stay empty for passthrough commands.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
