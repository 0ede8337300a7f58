package repos

import (
	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/keyring"
)

// Configuration captures the settings consumed by repository workflows.
type Configuration struct {
	Git     gitrepo.Configuration
	Host    gitea.Configuration
	Keyring keyring.Configuration
}

// DefaultConfiguration returns the settings used when none are configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		Git:     gitrepo.DefaultConfiguration(),
		Host:    gitea.DefaultConfiguration(),
		Keyring: keyring.DefaultConfiguration(),
	}
}

// Sanitize sanitizes every section.
func (configuration Configuration) Sanitize() Configuration {
	return Configuration{
		Git:     configuration.Git.Sanitize(),
		Host:    configuration.Host.Sanitize(),
		Keyring: configuration.Keyring.Sanitize(),
	}
}
