package repos

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/auth"
	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	ownerRepositorySeparatorConstant   = "/"
	createdMessageTemplateConstant     = "Created %s on %s"
	creatingMessageTemplateConstant    = "Creating %s"
	initializedMessageTemplateConstant = "Initialized repository in %s on branch %s"
	remoteAddedTemplateConstant        = "Added remote %s -> %s"
	remoteUpdatedTemplateConstant      = "Updated remote %s: %s -> %s"
	remoteUnchangedTemplateConstant    = "Remote %s already points to %s"
	pushedMessageTemplateConstant      = "Pushed %s to %s"
	clonedMessageTemplateConstant      = "Cloned %s into %s"
	stepInitTemplateConstant           = "initialize repository: %w"
	stepRemoteTemplateConstant         = "configure remote %s: %w"
	stepPushTemplateConstant           = "push %s: %w"
	stepCloneTemplateConstant          = "clone %s: %w"
	stepOwnerTemplateConstant          = "determine repository owner: %w"
	invalidNameTemplateConstant        = "%w: %q"
	logMessageCreateConstant           = "Creating repository"
	logMessageLinkConstant             = "Linking repository"
	logMessageCloneConstant            = "Cloning repository"
	logFieldOwnerConstant              = "owner"
	logFieldRepositoryConstant         = "repository"
	logFieldRemoteURLConstant          = "remote_url"
	logFieldWorkingDirectoryConstant   = "working_directory"
)

var (
	// ErrRepositoryNameRequired indicates a workflow was started without a repository name.
	ErrRepositoryNameRequired = gitea.ErrRepositoryNameRequired
	// ErrInvalidRepositoryName indicates a name with more than one owner separator or empty parts.
	ErrInvalidRepositoryName = errors.New("invalid repository name")
	// ErrRepositoryManagerNotConfigured indicates the service was constructed without git access.
	ErrRepositoryManagerNotConfigured = errors.New("repository service requires a repository manager")
)

// HostAPI is the subset of the Gitea client used by repository workflows.
type HostAPI interface {
	CurrentUser(executionContext context.Context, token string) (gitea.User, error)
	CreateRepository(executionContext context.Context, token string, options gitea.RepositoryOptions) (gitea.Repository, error)
}

// TokenResolver finds the API token for the host account.
type TokenResolver interface {
	Resolve(executionContext context.Context, account string) (auth.Token, error)
}

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Repositories *gitrepo.RepositoryManager
	API          HostAPI
	Tokens       TokenResolver
	Reporter     shared.StatusReporter
}

// CreateOptions configures Create.
type CreateOptions struct {
	WorkingDirectory string
	Name             string
	Description      string
	Private          bool
	Link             bool
	Push             bool
}

// LinkOptions configures Link.
type LinkOptions struct {
	WorkingDirectory string
	// Name is either name or owner/name.
	Name string
	Push bool
}

// CloneOptions configures Clone.
type CloneOptions struct {
	WorkingDirectory string
	// Name is either name or owner/name.
	Name      string
	Directory string
}

// LinkResult reports what Link changed.
type LinkResult struct {
	RemoteURL     string
	Initialized   bool
	RemoteChanged bool
	Pushed        bool
}

// Service coordinates repository workflows against the configured host.
type Service struct {
	logger        *zap.Logger
	repositories  *gitrepo.RepositoryManager
	api           HostAPI
	tokens        TokenResolver
	reporter      shared.StatusReporter
	configuration Configuration
}

// NewService constructs a Service.
func NewService(configuration Configuration, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repositories == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:        logger,
		repositories:  dependencies.Repositories,
		api:           dependencies.API,
		tokens:        dependencies.Tokens,
		reporter:      dependencies.Reporter,
		configuration: configuration.Sanitize(),
	}, nil
}

// Create creates the repository on the host and, when requested, links the working directory to it.
func (service *Service) Create(executionContext context.Context, options CreateOptions) (gitea.Repository, error) {
	repositoryName := strings.TrimSpace(options.Name)
	if len(repositoryName) == 0 {
		return gitea.Repository{}, ErrRepositoryNameRequired
	}
	if strings.Contains(repositoryName, ownerRepositorySeparatorConstant) {
		return gitea.Repository{}, fmt.Errorf(invalidNameTemplateConstant, ErrInvalidRepositoryName, repositoryName)
	}

	token, user, identityError := service.identity(executionContext)
	if identityError != nil {
		return gitea.Repository{}, identityError
	}

	organization := service.configuration.Host.Owner
	if strings.EqualFold(organization, user.Login) {
		organization = ""
	}

	service.logger.Info(logMessageCreateConstant,
		zap.String(logFieldOwnerConstant, firstNonEmpty(organization, user.Login)),
		zap.String(logFieldRepositoryConstant, repositoryName),
	)

	finishTracking := service.track(fmt.Sprintf(creatingMessageTemplateConstant, firstNonEmpty(organization, user.Login)+ownerRepositorySeparatorConstant+repositoryName))
	repository, createError := service.api.CreateRepository(executionContext, token.Value, gitea.RepositoryOptions{
		Organization:  organization,
		Name:          repositoryName,
		Description:   strings.TrimSpace(options.Description),
		Private:       options.Private,
		DefaultBranch: service.configuration.Git.DefaultBranch,
	})
	finishTracking(createError)
	if createError != nil {
		return gitea.Repository{}, createError
	}
	if len(repository.Owner) == 0 {
		repository.Owner = firstNonEmpty(organization, user.Login)
	}
	if len(repository.Name) == 0 {
		repository.Name = repositoryName
	}
	service.success(fmt.Sprintf(createdMessageTemplateConstant, repository.Owner+ownerRepositorySeparatorConstant+repository.Name, service.configuration.Host.URL))

	if !options.Link {
		return repository, nil
	}
	_, linkError := service.link(executionContext, options.WorkingDirectory, repository.Owner, repository.Name, options.Push)
	return repository, linkError
}

// Link points the configured remote of the working directory at the host repository.
func (service *Service) Link(executionContext context.Context, options LinkOptions) (LinkResult, error) {
	owner, repositoryName, nameError := service.resolveOwnerAndName(executionContext, options.Name)
	if nameError != nil {
		return LinkResult{}, nameError
	}
	return service.link(executionContext, options.WorkingDirectory, owner, repositoryName, options.Push)
}

// Clone clones the host repository over SSH.
func (service *Service) Clone(executionContext context.Context, options CloneOptions) (string, error) {
	owner, repositoryName, nameError := service.resolveOwnerAndName(executionContext, options.Name)
	if nameError != nil {
		return "", nameError
	}
	remote, remoteError := service.remoteFor(owner, repositoryName)
	if remoteError != nil {
		return "", remoteError
	}

	targetDirectory := strings.TrimSpace(options.Directory)
	if len(targetDirectory) == 0 {
		targetDirectory = repositoryName
	}

	service.logger.Info(logMessageCloneConstant,
		zap.String(logFieldRemoteURLConstant, remote.String()),
		zap.String(logFieldWorkingDirectoryConstant, options.WorkingDirectory),
	)
	if cloneError := service.repositories.Clone(executionContext, options.WorkingDirectory, remote.String(), targetDirectory); cloneError != nil {
		return "", fmt.Errorf(stepCloneTemplateConstant, remote.String(), cloneError)
	}

	clonedPath := targetDirectory
	if !filepath.IsAbs(clonedPath) {
		clonedPath = filepath.Join(options.WorkingDirectory, clonedPath)
	}
	service.success(fmt.Sprintf(clonedMessageTemplateConstant, remote.String(), clonedPath))
	return clonedPath, nil
}

func (service *Service) link(executionContext context.Context, workingDirectory string, owner string, repositoryName string, push bool) (LinkResult, error) {
	remote, remoteError := service.remoteFor(owner, repositoryName)
	if remoteError != nil {
		return LinkResult{}, remoteError
	}
	remoteName := service.configuration.Git.Remote
	defaultBranch := service.configuration.Git.DefaultBranch
	result := LinkResult{RemoteURL: remote.String()}

	service.logger.Info(logMessageLinkConstant,
		zap.String(logFieldRemoteURLConstant, result.RemoteURL),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)

	isRepository, repositoryError := service.repositories.IsRepository(executionContext, workingDirectory)
	if repositoryError != nil {
		return result, repositoryError
	}
	if !isRepository {
		if initError := service.repositories.Init(executionContext, workingDirectory, defaultBranch); initError != nil {
			return result, fmt.Errorf(stepInitTemplateConstant, initError)
		}
		result.Initialized = true
		service.success(fmt.Sprintf(initializedMessageTemplateConstant, workingDirectory, defaultBranch))
	}

	currentURL, remoteExists, lookupError := service.repositories.RemoteURL(executionContext, workingDirectory, remoteName)
	if lookupError != nil {
		return result, lookupError
	}
	switch {
	case !remoteExists:
		if addError := service.repositories.AddRemote(executionContext, workingDirectory, remoteName, result.RemoteURL); addError != nil {
			return result, fmt.Errorf(stepRemoteTemplateConstant, remoteName, addError)
		}
		result.RemoteChanged = true
		service.success(fmt.Sprintf(remoteAddedTemplateConstant, remoteName, result.RemoteURL))
	case pointsTo(currentURL, remote):
		service.notice(fmt.Sprintf(remoteUnchangedTemplateConstant, remoteName, currentURL))
	default:
		if setError := service.repositories.SetRemoteURL(executionContext, workingDirectory, remoteName, result.RemoteURL); setError != nil {
			return result, fmt.Errorf(stepRemoteTemplateConstant, remoteName, setError)
		}
		result.RemoteChanged = true
		service.success(fmt.Sprintf(remoteUpdatedTemplateConstant, remoteName, currentURL, result.RemoteURL))
	}

	if !push {
		return result, nil
	}
	if pushError := service.repositories.Push(executionContext, workingDirectory, remoteName, defaultBranch); pushError != nil {
		return result, fmt.Errorf(stepPushTemplateConstant, defaultBranch, pushError)
	}
	result.Pushed = true
	service.success(fmt.Sprintf(pushedMessageTemplateConstant, defaultBranch, remoteName))
	return result, nil
}

func (service *Service) resolveOwnerAndName(executionContext context.Context, name string) (string, string, error) {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return "", "", ErrRepositoryNameRequired
	}

	nameParts := strings.Split(trimmedName, ownerRepositorySeparatorConstant)
	switch {
	case len(nameParts) == 2 && len(nameParts[0]) > 0 && len(nameParts[1]) > 0:
		return nameParts[0], nameParts[1], nil
	case len(nameParts) != 1:
		return "", "", fmt.Errorf(invalidNameTemplateConstant, ErrInvalidRepositoryName, trimmedName)
	}

	if configuredOwner := service.configuration.Host.Owner; len(configuredOwner) > 0 {
		return configuredOwner, trimmedName, nil
	}
	_, user, identityError := service.identity(executionContext)
	if identityError != nil {
		return "", "", fmt.Errorf(stepOwnerTemplateConstant, identityError)
	}
	return user.Login, trimmedName, nil
}

func (service *Service) identity(executionContext context.Context) (auth.Token, gitea.User, error) {
	if len(service.configuration.Host.URL) == 0 {
		return auth.Token{}, gitea.User{}, gitea.ErrHostNotConfigured
	}
	if service.api == nil || service.tokens == nil {
		return auth.Token{}, gitea.User{}, gitea.ErrCredentialsRequired
	}
	account, accountError := gitrepo.HostName(service.configuration.Host.URL)
	if accountError != nil {
		return auth.Token{}, gitea.User{}, accountError
	}
	token, tokenError := service.tokens.Resolve(executionContext, account)
	if tokenError != nil {
		return auth.Token{}, gitea.User{}, tokenError
	}
	user, userError := service.api.CurrentUser(executionContext, token.Value)
	if userError != nil {
		return auth.Token{}, gitea.User{}, userError
	}
	return token, user, nil
}

func (service *Service) remoteFor(owner string, repositoryName string) (gitrepo.RemoteURL, error) {
	if len(service.configuration.Host.URL) == 0 {
		return gitrepo.RemoteURL{}, gitea.ErrHostNotConfigured
	}
	remote, remoteError := gitrepo.NewRemoteURL(service.configuration.Host.URL, service.configuration.Host.SSHUser, owner, repositoryName)
	if remoteError != nil {
		return gitrepo.RemoteURL{}, remoteError
	}
	if validationError := remote.Validate(); validationError != nil {
		return gitrepo.RemoteURL{}, validationError
	}
	return remote, nil
}

func (service *Service) success(message string) {
	if service.reporter != nil {
		service.reporter.Success(message)
	}
}

func (service *Service) track(message string) func(error) {
	if service.reporter == nil {
		return func(error) {}
	}
	return service.reporter.Track(message)
}

func (service *Service) notice(message string) {
	if service.reporter != nil {
		service.reporter.Notice(message)
	}
}

// pointsTo reports whether the current URL reaches the same repository over SSH as the same user and port.
func pointsTo(currentURL string, remote gitrepo.RemoteURL) bool {
	parsedRemote, parseError := gitrepo.ParseRemoteURL(currentURL)
	if parseError != nil {
		return false
	}
	return parsedRemote.SameRepository(remote) && parsedRemote.SameSSHEndpoint(remote)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if len(value) > 0 {
			return value
		}
	}
	return ""
}
