package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	sshSchemePrefixConstant       = "ssh://"
	schemeDelimiterConstant       = "://"
	userDelimiterConstant         = "@"
	scpPathDelimiterConstant      = ":"
	pathSeparatorConstant         = "/"
	gitSuffixConstant             = ".git"
	sshRemoteTemplateConstant     = "%s@%s:%s/%s.git"
	parseErrorTemplateConstant    = "%s: %s"
	invalidRemoteMessageConstant  = "invalid remote url"
	requiredValueMessageConstant  = "value required"
	invalidHostURLMessageConstant = "invalid host url"
	defaultSSHUserConstant        = "git"
	defaultSSHPortConstant        = "22"
	sshPortRemoteTemplateConstant = "ssh://%s@%s:%s/%s/%s.git"
)

// RemoteURL identifies a repository reachable over SSH on a Git host.
type RemoteURL struct {
	User       string
	Host       string
	Port       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote or host string could not be interpreted.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// NewRemoteURL builds the remote for owner/repository on the host derived from hostURL.
func NewRemoteURL(hostURL string, sshUser string, owner string, repository string) (RemoteURL, error) {
	hostName, hostError := HostName(hostURL)
	if hostError != nil {
		return RemoteURL{}, hostError
	}
	remote := RemoteURL{
		User:       strings.TrimSpace(sshUser),
		Host:       hostName,
		Owner:      strings.TrimSpace(owner),
		Repository: strings.TrimSuffix(strings.TrimSpace(repository), gitSuffixConstant),
	}
	if len(remote.User) == 0 {
		remote.User = defaultSSHUserConstant
	}
	return remote, nil
}

// String formats the remote in scp-like syntax, for example git@host:owner/name.git.
// A non-default port needs the ssh:// form.
func (remote RemoteURL) String() string {
	if remote.sshPort() != defaultSSHPortConstant {
		return fmt.Sprintf(sshPortRemoteTemplateConstant, remote.User, remote.Host, remote.Port, remote.Owner, remote.Repository)
	}
	return fmt.Sprintf(sshRemoteTemplateConstant, remote.User, remote.Host, remote.Owner, remote.Repository)
}

// Validate reports missing components.
func (remote RemoteURL) Validate() error {
	for _, component := range []string{remote.Host, remote.Owner, remote.Repository} {
		if len(strings.TrimSpace(component)) == 0 {
			return RemoteURLParseError{Input: remote.String(), Message: requiredValueMessageConstant}
		}
	}
	return nil
}

// SameRepository reports whether both remotes point at the same host repository.
func (remote RemoteURL) SameRepository(other RemoteURL) bool {
	return strings.EqualFold(remote.Host, other.Host) &&
		strings.EqualFold(remote.Owner, other.Owner) &&
		strings.EqualFold(remote.Repository, other.Repository)
}

// SameSSHEndpoint reports whether both remotes connect as the same user on the same SSH port.
func (remote RemoteURL) SameSSHEndpoint(other RemoteURL) bool {
	return remote.User == other.User && remote.sshPort() == other.sshPort()
}

func (remote RemoteURL) sshPort() string {
	if trimmedPort := strings.TrimSpace(remote.Port); len(trimmedPort) > 0 {
		return trimmedPort
	}
	return defaultSSHPortConstant
}

// HostName extracts the host name from a configured host, which may be a bare
// name (git.example.com) or a URL (https://git.example.com:3000/).
func HostName(hostURL string) (string, error) {
	trimmedHost := strings.TrimSpace(hostURL)
	if len(trimmedHost) == 0 {
		return "", RemoteURLParseError{Input: hostURL, Message: requiredValueMessageConstant}
	}
	if !strings.Contains(trimmedHost, schemeDelimiterConstant) {
		trimmedHost = "https" + schemeDelimiterConstant + trimmedHost
	}
	parsedURL, parseError := url.Parse(trimmedHost)
	if parseError != nil || len(parsedURL.Hostname()) == 0 {
		return "", RemoteURLParseError{Input: hostURL, Message: invalidHostURLMessageConstant}
	}
	return parsedURL.Hostname(), nil
}

// ParseRemoteURL interprets scp-like, ssh:// and http(s):// remotes.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.Contains(trimmedRemote, schemeDelimiterConstant) {
		parsedURL, parseError := url.Parse(trimmedRemote)
		if parseError != nil || len(parsedURL.Hostname()) == 0 {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteMessageConstant}
		}
		owner, repository, pathError := splitRepositoryPath(remote, parsedURL.Path)
		if pathError != nil {
			return RemoteURL{}, pathError
		}
		parsedRemote := RemoteURL{Host: parsedURL.Hostname(), Owner: owner, Repository: repository}
		if strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant) && parsedURL.User != nil {
			parsedRemote.User = parsedURL.User.Username()
		}
		if strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant) {
			parsedRemote.Port = parsedURL.Port()
		}
		return parsedRemote, nil
	}

	userAndHost, repositoryPath, found := strings.Cut(trimmedRemote, scpPathDelimiterConstant)
	if !found {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteMessageConstant}
	}
	user, host, hasUser := strings.Cut(userAndHost, userDelimiterConstant)
	if !hasUser {
		host = user
		user = ""
	}
	if len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteMessageConstant}
	}
	owner, repository, pathError := splitRepositoryPath(remote, repositoryPath)
	if pathError != nil {
		return RemoteURL{}, pathError
	}
	return RemoteURL{User: user, Host: host, Owner: owner, Repository: repository}, nil
}

func splitRepositoryPath(input string, repositoryPath string) (string, string, error) {
	segments := strings.Split(strings.Trim(repositoryPath, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != 2 {
		return "", "", RemoteURLParseError{Input: input, Message: invalidRemoteMessageConstant}
	}
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(segments[0]) == 0 || len(repository) == 0 {
		return "", "", RemoteURLParseError{Input: input, Message: invalidRemoteMessageConstant}
	}
	return segments[0], repository, nil
}
