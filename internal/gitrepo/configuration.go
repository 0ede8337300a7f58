package gitrepo

import "strings"

const (
	defaultBranchNameConstant = "main"
	defaultRemoteNameConstant = "origin"
)

// Configuration captures the git settings shared by branch and repository workflows.
type Configuration struct {
	DefaultBranch string `mapstructure:"default_branch"`
	Remote        string `mapstructure:"remote"`
}

// DefaultConfiguration returns the git settings used when none are configured.
func DefaultConfiguration() Configuration {
	return Configuration{DefaultBranch: defaultBranchNameConstant, Remote: defaultRemoteNameConstant}
}

// Sanitize trims values and restores defaults for empty ones.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		DefaultBranch: strings.TrimSpace(configuration.DefaultBranch),
		Remote:        strings.TrimSpace(configuration.Remote),
	}
	if len(sanitized.DefaultBranch) == 0 {
		sanitized.DefaultBranch = defaults.DefaultBranch
	}
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaults.Remote
	}
	return sanitized
}
