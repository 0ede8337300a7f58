package handlers

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies a lifecycle handler.
type Name string

// Supported lifecycle handlers.
const (
	HandlerSetup  Name = "setup"
	HandlerBuild  Name = "build"
	HandlerCheck  Name = "check"
	HandlerFormat Name = "format"
	HandlerDeploy Name = "deploy"
	HandlerServer Name = "server"
)

// ErrUnknownHandler indicates a handler name outside the supported set.
var ErrUnknownHandler = errors.New("unknown handler")

var orderedHandlerNames = []Name{
	HandlerSetup,
	HandlerBuild,
	HandlerCheck,
	HandlerFormat,
	HandlerDeploy,
	HandlerServer,
}

var handlerDescriptions = map[Name]string{
	HandlerSetup:  "Install project dependencies",
	HandlerBuild:  "Build the project",
	HandlerCheck:  "Run the project test suite",
	HandlerFormat: "Format the project sources",
	HandlerDeploy: "Release or publish the project",
	HandlerServer: "Start the project development server",
}

// Names returns every supported handler in display order.
func Names() []Name {
	return append([]Name{}, orderedHandlerNames...)
}

// ParseName converts user input into a handler name.
func ParseName(value string) (Name, error) {
	candidate := Name(strings.ToLower(strings.TrimSpace(value)))
	if _, known := handlerDescriptions[candidate]; !known {
		return "", fmt.Errorf("%w %q", ErrUnknownHandler, value)
	}
	return candidate, nil
}

// Description returns the short help text for the handler.
func (name Name) Description() string {
	return handlerDescriptions[name]
}

func (name Name) String() string {
	return string(name)
}
