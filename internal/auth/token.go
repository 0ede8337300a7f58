package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/RobinBoers/bix/internal/keyring"
)

// EnvironmentTokenVariable overrides the keyring token when set.
const EnvironmentTokenVariable = "BIX_TOKEN"

const tokenNotFoundTemplateConstant = "%w for %s"

// ErrTokenNotFound indicates no API token is available for the host.
var ErrTokenNotFound = errors.New("no API token found; run `bix auth` or set " + EnvironmentTokenVariable)

// TokenSource identifies where a token was found.
type TokenSource string

// Token sources in resolution order.
const (
	TokenSourceEnvironment TokenSource = "environment"
	TokenSourceKeyring     TokenSource = "keyring"
)

// Token is a resolved API token.
type Token struct {
	Value  string
	Source TokenSource
}

// SecretStore persists secrets per account.
type SecretStore interface {
	Get(executionContext context.Context, account string) (string, error)
	Set(executionContext context.Context, account string, secret string) error
	Delete(executionContext context.Context, account string) error
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(name string) (string, bool)

// TokenResolver finds the API token for a host account.
type TokenResolver struct {
	store             SecretStore
	lookupEnvironment EnvironmentLookup
}

// NewTokenResolver constructs a TokenResolver; a nil lookup reads the process environment.
func NewTokenResolver(store SecretStore, lookupEnvironment EnvironmentLookup) *TokenResolver {
	if lookupEnvironment == nil {
		lookupEnvironment = os.LookupEnv
	}
	return &TokenResolver{store: store, lookupEnvironment: lookupEnvironment}
}

// Resolve returns the environment token when set, otherwise the keyring token for the account.
func (resolver *TokenResolver) Resolve(executionContext context.Context, account string) (Token, error) {
	if environmentToken, present := resolver.lookupEnvironment(EnvironmentTokenVariable); present {
		if trimmedToken := strings.TrimSpace(environmentToken); len(trimmedToken) > 0 {
			return Token{Value: trimmedToken, Source: TokenSourceEnvironment}, nil
		}
	}

	if resolver.store == nil {
		return Token{}, fmt.Errorf(tokenNotFoundTemplateConstant, ErrTokenNotFound, account)
	}
	storedToken, storeError := resolver.store.Get(executionContext, account)
	if storeError != nil {
		if errors.Is(storeError, keyring.ErrSecretNotFound) {
			return Token{}, fmt.Errorf(tokenNotFoundTemplateConstant, ErrTokenNotFound, account)
		}
		return Token{}, storeError
	}
	return Token{Value: storedToken, Source: TokenSourceKeyring}, nil
}
