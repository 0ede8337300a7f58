// Package shared declares the collaborator interfaces consumed by bix commands.
package shared

import (
	"context"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/execshell"
)

// LoggerProvider yields the application logger once configuration has been loaded.
type LoggerProvider func() *zap.Logger

// CommandExecutor exposes the subset of shell execution used by command services.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// StatusReporter prints user-facing progress lines and observes command execution.
type StatusReporter interface {
	execshell.CommandEventObserver
	Success(message string)
	Notice(message string)
	// Track marks the start of a slow step; the returned function reports its outcome.
	Track(message string) func(error)
}

// FileSystem exposes the filesystem lookups required by command services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

// OSFileSystem implements FileSystem using the os package.
type OSFileSystem struct{}

// Stat returns file information for the provided path.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
