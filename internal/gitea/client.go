package gitea

import (
	"context"
	"net/http"
	"strings"

	giteasdk "code.gitea.io/sdk/gitea"
	"go.uber.org/zap"
)

const (
	schemeDelimiterConstant     = "://"
	defaultSchemePrefixConstant = "https://"
	trailingSlashConstant       = "/"
	logMessageRequestConstant   = "Calling Gitea API"
	logFieldOperationConstant   = "operation"
	logFieldHostConstant        = "host"
	logFieldOwnerConstant       = "owner"
	logFieldRepositoryConstant  = "repository"
	repositoryScopeConstant     = "write:repository"
	userScopeConstant           = "read:user"
	organizationScopeConstant   = "read:organization"
)

// DefaultTokenScopes are requested for tokens issued by bix.
var DefaultTokenScopes = []string{repositoryScopeConstant, userScopeConstant, organizationScopeConstant}

// BasicCredentials authenticate token issuance.
type BasicCredentials struct {
	Username string
	Password string
}

// User is the authenticated account.
type User struct {
	Login    string
	FullName string
}

// RepositoryOptions describes a repository to create.
type RepositoryOptions struct {
	// Organization creates the repository under an organization; empty means the authenticated user.
	Organization  string
	Name          string
	Description   string
	Private       bool
	DefaultBranch string
}

// Repository is a repository as reported by the host.
type Repository struct {
	Owner    string
	Name     string
	FullName string
	SSHURL   string
	HTMLURL  string
	Private  bool
}

// AccessToken is a newly issued API token.
type AccessToken struct {
	Name  string
	Token string
}

// Client performs Gitea API operations against a single host.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Client for the configured host; a bare host name is served over https.
func NewClient(hostURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	baseURL, baseURLError := NormalizeBaseURL(hostURL)
	if baseURLError != nil {
		return nil, baseURLError
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// NormalizeBaseURL converts the configured host into an API base URL.
func NormalizeBaseURL(hostURL string) (string, error) {
	trimmedHost := strings.TrimSpace(hostURL)
	if len(trimmedHost) == 0 {
		return "", ErrHostNotConfigured
	}
	if !strings.Contains(trimmedHost, schemeDelimiterConstant) {
		trimmedHost = defaultSchemePrefixConstant + trimmedHost
	}
	return strings.TrimRight(trimmedHost, trailingSlashConstant), nil
}

// BaseURL returns the normalized host URL.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// CurrentUser returns the account owning the token.
func (client *Client) CurrentUser(executionContext context.Context, token string) (User, error) {
	sdkClient, connectError := client.tokenClient(executionContext, token)
	if connectError != nil {
		return User{}, connectError
	}
	client.logRequest(OperationCurrentUser)

	sdkUser, response, requestError := sdkClient.GetMyUserInfo()
	if requestError != nil {
		return User{}, newOperationError(OperationCurrentUser, response, requestError)
	}
	return User{Login: sdkUser.UserName, FullName: sdkUser.FullName}, nil
}

// CreateRepository creates the repository under the organization or the authenticated user.
func (client *Client) CreateRepository(executionContext context.Context, token string, options RepositoryOptions) (Repository, error) {
	repositoryName := strings.TrimSpace(options.Name)
	if len(repositoryName) == 0 {
		return Repository{}, ErrRepositoryNameRequired
	}
	sdkClient, connectError := client.tokenClient(executionContext, token)
	if connectError != nil {
		return Repository{}, connectError
	}

	createOptions := giteasdk.CreateRepoOption{
		Name:          repositoryName,
		Description:   options.Description,
		Private:       options.Private,
		DefaultBranch: options.DefaultBranch,
	}

	client.logRequest(OperationCreateRepository,
		zap.String(logFieldOwnerConstant, options.Organization),
		zap.String(logFieldRepositoryConstant, repositoryName),
	)

	var sdkRepository *giteasdk.Repository
	var response *giteasdk.Response
	var requestError error
	if organization := strings.TrimSpace(options.Organization); len(organization) > 0 {
		sdkRepository, response, requestError = sdkClient.CreateOrgRepo(organization, createOptions)
	} else {
		sdkRepository, response, requestError = sdkClient.CreateRepo(createOptions)
	}
	if requestError != nil {
		return Repository{}, newOperationError(OperationCreateRepository, response, requestError)
	}
	return convertRepository(sdkRepository), nil
}

// CreateAccessToken issues a named token using the account password.
func (client *Client) CreateAccessToken(executionContext context.Context, credentials BasicCredentials, tokenName string, scopes []string) (AccessToken, error) {
	if len(strings.TrimSpace(credentials.Username)) == 0 || len(credentials.Password) == 0 {
		return AccessToken{}, ErrCredentialsRequired
	}
	sdkClient, connectError := client.connect(executionContext, giteasdk.SetBasicAuth(strings.TrimSpace(credentials.Username), credentials.Password))
	if connectError != nil {
		return AccessToken{}, connectError
	}
	client.logRequest(OperationCreateAccessToken)

	tokenScopes := make([]giteasdk.AccessTokenScope, 0, len(scopes))
	for _, scope := range scopes {
		tokenScopes = append(tokenScopes, giteasdk.AccessTokenScope(scope))
	}

	sdkToken, response, requestError := sdkClient.CreateAccessToken(giteasdk.CreateAccessTokenOption{
		Name:   tokenName,
		Scopes: tokenScopes,
	})
	if requestError != nil {
		return AccessToken{}, newOperationError(OperationCreateAccessToken, response, requestError)
	}
	return AccessToken{Name: sdkToken.Name, Token: sdkToken.Token}, nil
}

func (client *Client) tokenClient(executionContext context.Context, token string) (*giteasdk.Client, error) {
	if len(strings.TrimSpace(token)) == 0 {
		return nil, ErrCredentialsRequired
	}
	return client.connect(executionContext, giteasdk.SetToken(strings.TrimSpace(token)))
}

func (client *Client) connect(executionContext context.Context, authentication giteasdk.ClientOption) (*giteasdk.Client, error) {
	sdkClient, creationError := giteasdk.NewClient(client.baseURL,
		authentication,
		giteasdk.SetHTTPClient(client.httpClient),
		giteasdk.SetContext(executionContext),
		giteasdk.SetGiteaVersion(""),
	)
	if creationError != nil {
		return nil, OperationError{Operation: OperationConnect, Cause: creationError}
	}
	return sdkClient, nil
}

func (client *Client) logRequest(operation string, fields ...zap.Field) {
	client.logger.Debug(logMessageRequestConstant, append([]zap.Field{
		zap.String(logFieldOperationConstant, operation),
		zap.String(logFieldHostConstant, client.baseURL),
	}, fields...)...)
}

func newOperationError(operation string, response *giteasdk.Response, cause error) OperationError {
	operationError := OperationError{Operation: operation, Cause: cause}
	if response != nil && response.Response != nil {
		operationError.StatusCode = response.StatusCode
	}
	return operationError
}

func convertRepository(sdkRepository *giteasdk.Repository) Repository {
	if sdkRepository == nil {
		return Repository{}
	}
	repository := Repository{
		Name:     sdkRepository.Name,
		FullName: sdkRepository.FullName,
		SSHURL:   sdkRepository.SSHURL,
		HTMLURL:  sdkRepository.HTMLURL,
		Private:  sdkRepository.Private,
	}
	if sdkRepository.Owner != nil {
		repository.Owner = sdkRepository.Owner.UserName
	}
	return repository
}
