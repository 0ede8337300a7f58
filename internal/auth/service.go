package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	tokenNameTemplateConstant        = "%s-%s"
	tokenNameTimestampLayoutConstant = "20060102150405"
	storedMessageTemplateConstant    = "Stored token %s for %s in keyring service %s"
	issuingMessageTemplateConstant   = "Issuing token %s for %s"
	removedMessageTemplateConstant   = "Removed token for %s from keyring service %s"
	logMessageTokenIssuedConstant    = "Issued API token"
	logFieldAccountConstant          = "account"
	logFieldTokenNameConstant        = "token_name"
)

var (
	// ErrTokenIssuerNotConfigured indicates the service was constructed without an API client.
	ErrTokenIssuerNotConfigured = errors.New("auth service requires a token issuer")
	// ErrSecretStoreNotConfigured indicates the service was constructed without a keyring.
	ErrSecretStoreNotConfigured = errors.New("auth service requires a secret store")
	// ErrPrompterNotConfigured indicates login was attempted without a prompter.
	ErrPrompterNotConfigured = errors.New("auth service requires a credential prompter")
)

// TokenIssuer is the subset of the Gitea client used for authentication.
type TokenIssuer interface {
	CreateAccessToken(executionContext context.Context, credentials gitea.BasicCredentials, tokenName string, scopes []string) (gitea.AccessToken, error)
	CurrentUser(executionContext context.Context, token string) (gitea.User, error)
}

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Logger   *zap.Logger
	Issuer   TokenIssuer
	Store    SecretStore
	Resolver *TokenResolver
	Prompter CredentialPrompter
	Reporter shared.StatusReporter
	Clock    func() time.Time
}

// Status describes the token available for the host.
type Status struct {
	Account string
	Source  TokenSource
	User    gitea.User
}

// Service implements login, logout and status for the configured host.
type Service struct {
	logger         *zap.Logger
	issuer         TokenIssuer
	store          SecretStore
	resolver       *TokenResolver
	prompter       CredentialPrompter
	reporter       shared.StatusReporter
	clock          func() time.Time
	host           gitea.Configuration
	keyringService string
}

// NewService constructs a Service for the host.
func NewService(host gitea.Configuration, keyringService string, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Issuer == nil {
		return nil, ErrTokenIssuerNotConfigured
	}
	if dependencies.Store == nil {
		return nil, ErrSecretStoreNotConfigured
	}
	service := &Service{
		logger:         dependencies.Logger,
		issuer:         dependencies.Issuer,
		store:          dependencies.Store,
		resolver:       dependencies.Resolver,
		prompter:       dependencies.Prompter,
		reporter:       dependencies.Reporter,
		clock:          dependencies.Clock,
		host:           host.Sanitize(),
		keyringService: keyringService,
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.resolver == nil {
		service.resolver = NewTokenResolver(service.store, nil)
	}
	if service.clock == nil {
		service.clock = time.Now
	}
	return service, nil
}

// Account returns the keyring account of the configured host.
func (service *Service) Account() (string, error) {
	if len(service.host.URL) == 0 {
		return "", gitea.ErrHostNotConfigured
	}
	return gitrepo.HostName(service.host.URL)
}

// Login prompts for credentials, issues a token and stores it in the keyring.
func (service *Service) Login(executionContext context.Context) (gitea.User, error) {
	if service.prompter == nil {
		return gitea.User{}, ErrPrompterNotConfigured
	}
	account, accountError := service.Account()
	if accountError != nil {
		return gitea.User{}, accountError
	}

	credentials, promptError := service.prompter.PromptCredentials(account)
	if promptError != nil {
		return gitea.User{}, promptError
	}

	tokenName := fmt.Sprintf(tokenNameTemplateConstant, service.host.TokenName, service.clock().UTC().Format(tokenNameTimestampLayoutConstant))
	finishTracking := service.track(fmt.Sprintf(issuingMessageTemplateConstant, tokenName, account))
	accessToken, issueError := service.issuer.CreateAccessToken(executionContext, credentials, tokenName, gitea.DefaultTokenScopes)
	finishTracking(issueError)
	if issueError != nil {
		return gitea.User{}, issueError
	}
	service.logger.Info(logMessageTokenIssuedConstant, zap.String(logFieldAccountConstant, account), zap.String(logFieldTokenNameConstant, tokenName))

	if storeError := service.store.Set(executionContext, account, accessToken.Token); storeError != nil {
		return gitea.User{}, storeError
	}
	service.success(fmt.Sprintf(storedMessageTemplateConstant, tokenName, account, service.keyringService))

	return gitea.User{Login: credentials.Username}, nil
}

// Logout removes the stored token for the host.
func (service *Service) Logout(executionContext context.Context) error {
	account, accountError := service.Account()
	if accountError != nil {
		return accountError
	}
	if deleteError := service.store.Delete(executionContext, account); deleteError != nil {
		return deleteError
	}
	service.success(fmt.Sprintf(removedMessageTemplateConstant, account, service.keyringService))
	return nil
}

// Status resolves the token for the host and verifies it against the API.
func (service *Service) Status(executionContext context.Context) (Status, error) {
	account, accountError := service.Account()
	if accountError != nil {
		return Status{}, accountError
	}
	token, tokenError := service.resolver.Resolve(executionContext, account)
	if tokenError != nil {
		return Status{Account: account}, tokenError
	}
	status := Status{Account: account, Source: token.Source}

	user, userError := service.issuer.CurrentUser(executionContext, token.Value)
	if userError != nil {
		return status, userError
	}
	status.User = user
	return status, nil
}

func (service *Service) track(message string) func(error) {
	if service.reporter == nil {
		return func(error) {}
	}
	return service.reporter.Track(message)
}

func (service *Service) success(message string) {
	if service.reporter == nil {
		return
	}
	service.reporter.Success(message)
}
