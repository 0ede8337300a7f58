// Package pathutils resolves user-supplied paths such as "~/.config/bix".
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant      = "~"
	tildeSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts leading tilde shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	resolveOnce           sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves "~" and "~/..." against the home directory. Other paths,
// including "~user" forms, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}

	relativePath, hasSlashPrefix := strings.CutPrefix(candidatePath, tildeSlashPrefixConstant)
	if !hasSlashPrefix {
		relativePath, hasSlashPrefix = strings.CutPrefix(candidatePath, tildeSymbolConstant+string(os.PathSeparator))
	}
	if !hasSlashPrefix {
		return candidatePath
	}
	return filepath.Join(homeDirectory, relativePath)
}

// ResolveAgainst expands candidatePath and anchors relative results at baseDirectory.
func (expander *HomeExpander) ResolveAgainst(baseDirectory string, candidatePath string) string {
	expandedPath := expander.Expand(strings.TrimSpace(candidatePath))
	if filepath.IsAbs(expandedPath) || len(baseDirectory) == 0 {
		return expandedPath
	}
	return filepath.Join(baseDirectory, expandedPath)
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.resolveOnce.Do(func() {
		homeDirectory, lookupError := expander.homeDirectoryProvider()
		if lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	return expander.homeDirectory
}
