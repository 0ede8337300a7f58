// Package dependencies supplies default collaborators for command builders
// that were not given explicit implementations.
package dependencies

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/execshell"
	"github.com/RobinBoers/bix/internal/shared"
	"github.com/RobinBoers/bix/internal/ui"
	"github.com/RobinBoers/bix/internal/utils"
)

// ResolveLogger returns the provider's logger or a no-op logger.
func ResolveLogger(provider shared.LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveStatusReporter returns the provided reporter or one that discards output.
func ResolveStatusReporter(existing shared.StatusReporter) shared.StatusReporter {
	if existing != nil {
		return existing
	}
	return ui.NewStatusReporter(io.Discard, false)
}

// ResolveCommandExecutor returns the provided executor or constructs an os/exec backed default.
func ResolveCommandExecutor(existing shared.CommandExecutor, logger *zap.Logger, reporter shared.StatusReporter) (shared.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observer execshell.CommandEventObserver
	if reporter != nil {
		observer = reporter
	}
	return execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return shared.OSFileSystem{}
}

// ResolveWorkingDirectory prefers the explicit directory, then the invocation
// stored in the context, then the process working directory.
func ResolveWorkingDirectory(executionContext context.Context, explicitDirectory string) (string, error) {
	if trimmedDirectory := strings.TrimSpace(explicitDirectory); len(trimmedDirectory) > 0 {
		return trimmedDirectory, nil
	}
	if invocation, available := utils.NewCommandContextAccessor().Invocation(executionContext); available && len(invocation.WorkingDirectory) > 0 {
		return invocation.WorkingDirectory, nil
	}
	return os.Getwd()
}
