package handlers

import (
	"path/filepath"
	"strings"

	"github.com/RobinBoers/bix/internal/shared"
)

// Manager identifies a package-manager ecosystem inferred from marker files.
type Manager string

// Known package managers.
const (
	ManagerMix   Manager = "mix"
	ManagerYarn  Manager = "yarn"
	ManagerNPM   Manager = "npm"
	ManagerCargo Manager = "cargo"
	ManagerNone  Manager = "none"
)

const (
	mixMarkerFileNameConstant            = "mix.exs"
	yarnMarkerFileNameConstant           = "yarn.lock"
	npmMarkerFileNameConstant            = "package.json"
	cargoMarkerFileNameConstant          = "cargo.toml"
	cargoCanonicalMarkerFileNameConstant = "Cargo.toml"
	markerListSeparatorConstant          = ", "
)

// markerPredicate reports whether a directory carries the markers of an ecosystem.
type markerPredicate func(fileSystem shared.FileSystem, directory string) bool

type detectionRule struct {
	matches markerPredicate
	manager Manager
}

// detectionRules is evaluated in order; the first matching rule wins.
var detectionRules = []detectionRule{
	{matches: regularFilePresent(mixMarkerFileNameConstant), manager: ManagerMix},
	{matches: regularFilePresent(yarnMarkerFileNameConstant), manager: ManagerYarn},
	{matches: regularFilePresent(npmMarkerFileNameConstant), manager: ManagerNPM},
	{matches: regularFilePresent(cargoMarkerFileNameConstant, cargoCanonicalMarkerFileNameConstant), manager: ManagerCargo},
}

var managerCommands = map[Manager]map[Name][]string{
	ManagerMix: {
		HandlerSetup:  {"mix", "deps.get"},
		HandlerBuild:  {"mix", "compile"},
		HandlerCheck:  {"mix", "test"},
		HandlerFormat: {"mix", "format"},
		HandlerDeploy: {"mix", "release"},
		HandlerServer: {"mix", "phx.server"},
	},
	ManagerYarn: {
		HandlerSetup:  {"yarn", "install"},
		HandlerBuild:  {"yarn", "build"},
		HandlerCheck:  {"yarn", "test"},
		HandlerFormat: {"yarn", "format"},
		HandlerDeploy: {"yarn", "deploy"},
		HandlerServer: {"yarn", "dev"},
	},
	ManagerNPM: {
		HandlerSetup:  {"npm", "install"},
		HandlerBuild:  {"npm", "run", "build"},
		HandlerCheck:  {"npm", "test"},
		HandlerFormat: {"npm", "run", "format"},
		HandlerDeploy: {"npm", "run", "deploy"},
		HandlerServer: {"npm", "run", "dev"},
	},
	ManagerCargo: {
		HandlerSetup:  {"cargo", "fetch"},
		HandlerBuild:  {"cargo", "build"},
		HandlerCheck:  {"cargo", "test"},
		HandlerFormat: {"cargo", "fmt"},
		HandlerDeploy: {"cargo", "publish"},
		HandlerServer: {"cargo", "run"},
	},
}

// DetectManager returns the first manager whose markers exist in the directory, or ManagerNone.
func DetectManager(fileSystem shared.FileSystem, directory string) Manager {
	for _, rule := range detectionRules {
		if rule.matches(fileSystem, directory) {
			return rule.manager
		}
	}
	return ManagerNone
}

// Command returns the program and arguments the manager runs for the handler.
func (manager Manager) Command(handler Name) ([]string, bool) {
	handlerCommands, known := managerCommands[manager]
	if !known {
		return nil, false
	}
	command, mapped := handlerCommands[handler]
	if !mapped {
		return nil, false
	}
	return append([]string{}, command...), true
}

func (manager Manager) String() string {
	return string(manager)
}

func regularFilePresent(fileNames ...string) markerPredicate {
	return func(fileSystem shared.FileSystem, directory string) bool {
		for _, fileName := range fileNames {
			fileInfo, statError := fileSystem.Stat(filepath.Join(directory, fileName))
			if statError == nil && !fileInfo.IsDir() {
				return true
			}
		}
		return false
	}
}

func describeMarkerFiles() string {
	return strings.Join([]string{
		mixMarkerFileNameConstant,
		yarnMarkerFileNameConstant,
		npmMarkerFileNameConstant,
		cargoMarkerFileNameConstant,
	}, markerListSeparatorConstant)
}
