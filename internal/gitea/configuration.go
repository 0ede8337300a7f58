package gitea

import "strings"

const (
	defaultSSHUserConstant   = "git"
	defaultTokenNameConstant = "bix"
)

// Configuration captures the Git host settings.
type Configuration struct {
	URL       string `mapstructure:"url"`
	Owner     string `mapstructure:"owner"`
	SSHUser   string `mapstructure:"ssh_user"`
	TokenName string `mapstructure:"token_name"`
}

// DefaultConfiguration returns the host settings used when none are configured.
func DefaultConfiguration() Configuration {
	return Configuration{SSHUser: defaultSSHUserConstant, TokenName: defaultTokenNameConstant}
}

// Sanitize trims values and restores defaults for empty optional ones.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := Configuration{
		URL:       strings.TrimSpace(configuration.URL),
		Owner:     strings.TrimSpace(configuration.Owner),
		SSHUser:   strings.TrimSpace(configuration.SSHUser),
		TokenName: strings.TrimSpace(configuration.TokenName),
	}
	if len(sanitized.SSHUser) == 0 {
		sanitized.SSHUser = defaultSSHUserConstant
	}
	if len(sanitized.TokenName) == 0 {
		sanitized.TokenName = defaultTokenNameConstant
	}
	return sanitized
}
