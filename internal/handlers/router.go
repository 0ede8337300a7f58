package handlers

import (
	"path/filepath"
	"strings"

	"github.com/RobinBoers/bix/internal/shared"
	pathutils "github.com/RobinBoers/bix/internal/utils/path"
)

const (
	defaultScriptDirectoryConstant   = "bin"
	executablePermissionMaskConstant = 0o111
)

// Configuration captures the router settings loaded from bix configuration.
type Configuration struct {
	ScriptDirectory string `mapstructure:"script_directory"`
}

// DefaultConfiguration returns the router settings used when none are configured.
func DefaultConfiguration() Configuration {
	return Configuration{ScriptDirectory: defaultScriptDirectoryConstant}
}

// Sanitize trims the configuration and restores defaults for empty values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.ScriptDirectory = strings.TrimSpace(sanitized.ScriptDirectory)
	if len(sanitized.ScriptDirectory) == 0 {
		sanitized.ScriptDirectory = defaultScriptDirectoryConstant
	}
	return sanitized
}

// Router decides how a handler is served in a single working directory.
type Router struct {
	configuration    Configuration
	workingDirectory string
	fileSystem       shared.FileSystem
	homeExpander     *pathutils.HomeExpander
}

// NewRouter constructs a Router bound to the working directory.
func NewRouter(configuration Configuration, workingDirectory string, fileSystem shared.FileSystem) *Router {
	if fileSystem == nil {
		fileSystem = shared.OSFileSystem{}
	}
	return &Router{
		configuration:    configuration.Sanitize(),
		workingDirectory: workingDirectory,
		fileSystem:       fileSystem,
		homeExpander:     pathutils.NewHomeExpander(),
	}
}

// ScriptPath returns the override script location for the handler. A relative
// script directory is anchored at the working directory; "~/" is expanded.
func (router *Router) ScriptPath(handler Name) string {
	scriptDirectory := router.homeExpander.ResolveAgainst(router.workingDirectory, router.configuration.ScriptDirectory)
	return filepath.Join(scriptDirectory, string(handler))
}

// Resolve selects the override script when present, otherwise the detected manager command.
func (router *Router) Resolve(handler Name, arguments []string) Action {
	forwardedArguments := append([]string{}, arguments...)
	scriptPath := router.ScriptPath(handler)

	if scriptInfo, statError := router.fileSystem.Stat(scriptPath); statError == nil && !scriptInfo.IsDir() {
		return Action{
			Kind:             ActionRunScript,
			Handler:          handler,
			ScriptPath:       scriptPath,
			ScriptExecutable: scriptInfo.Mode().Perm()&executablePermissionMaskConstant != 0,
			Arguments:        forwardedArguments,
			WorkingDirectory: router.workingDirectory,
		}
	}

	manager := DetectManager(router.fileSystem, router.workingDirectory)
	if command, mapped := manager.Command(handler); mapped {
		return Action{
			Kind:             ActionRunManagerCommand,
			Handler:          handler,
			Manager:          manager,
			Command:          command,
			Arguments:        forwardedArguments,
			WorkingDirectory: router.workingDirectory,
		}
	}

	return Action{
		Kind:             ActionFail,
		Handler:          handler,
		ScriptPath:       scriptPath,
		Manager:          ManagerNone,
		Arguments:        forwardedArguments,
		WorkingDirectory: router.workingDirectory,
		Failure: NoHandlerError{
			Handler:          handler,
			ScriptPath:       scriptPath,
			WorkingDirectory: router.workingDirectory,
		},
	}
}
