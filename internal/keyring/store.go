package keyring

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/RobinBoers/bix/internal/execshell"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	defaultServiceConstant              = "bix"
	secretLabelTemplateConstant         = "%s token for %s"
	unsupportedPlatformTemplateConstant = "%w: %s"
	invalidAttributeTemplateConstant    = "%w: %s"
)

var (
	// ErrSecretNotFound indicates the keyring has no secret for the service and account.
	ErrSecretNotFound = errors.New("secret not found in keyring")
	// ErrUnsupportedPlatform indicates no keyring utility is known for the operating system.
	ErrUnsupportedPlatform = errors.New("keyring not supported on this platform")
	// ErrInvalidAttribute indicates an empty or multi-line service or account.
	ErrInvalidAttribute = errors.New("invalid keyring attribute")
	// ErrExecutorNotConfigured indicates the store was constructed without an executor.
	ErrExecutorNotConfigured = errors.New("keyring executor not configured")
)

// Configuration captures keyring settings.
type Configuration struct {
	Service string `mapstructure:"service"`
}

// DefaultConfiguration returns the keyring settings used when none are configured.
func DefaultConfiguration() Configuration {
	return Configuration{Service: defaultServiceConstant}
}

// Sanitize trims the service and restores the default when empty.
func (configuration Configuration) Sanitize() Configuration {
	service := strings.TrimSpace(configuration.Service)
	if len(service) == 0 {
		service = defaultServiceConstant
	}
	return Configuration{Service: service}
}

// Store reads and writes secrets for a single keyring service.
type Store struct {
	executor shared.CommandExecutor
	backend  backend
	service  string
}

// NewStore constructs a Store for the running operating system.
func NewStore(executor shared.CommandExecutor, configuration Configuration) (*Store, error) {
	return NewStoreForPlatform(executor, configuration, runtime.GOOS)
}

// NewStoreForPlatform constructs a Store using the keyring utility of the named platform.
func NewStoreForPlatform(executor shared.CommandExecutor, configuration Configuration, platform string) (*Store, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	platformBackend, supported := backendForPlatform(platform)
	if !supported {
		return nil, fmt.Errorf(unsupportedPlatformTemplateConstant, ErrUnsupportedPlatform, platform)
	}
	return &Store{executor: executor, backend: platformBackend, service: configuration.Sanitize().Service}, nil
}

// Service returns the keyring service secrets are stored under.
func (store *Store) Service() string {
	return store.service
}

// Get returns the secret stored for the account.
func (store *Store) Get(executionContext context.Context, account string) (string, error) {
	validatedAccount, accountError := validateAttribute(account)
	if accountError != nil {
		return "", accountError
	}

	executionResult, executionError := store.executor.Execute(executionContext, execshell.ShellCommand{
		Name: store.backend.command,
		Details: execshell.CommandDetails{
			Arguments: store.backend.lookupArguments(store.service, validatedAccount),
			Query:     true,
		},
	})
	if executionError != nil {
		if store.isNotFound(executionError) {
			return "", ErrSecretNotFound
		}
		return "", executionError
	}

	secret := strings.TrimSpace(executionResult.StandardOutput)
	if len(secret) == 0 {
		return "", ErrSecretNotFound
	}
	return secret, nil
}

// Set stores or replaces the secret for the account.
func (store *Store) Set(executionContext context.Context, account string, secret string) error {
	validatedAccount, accountError := validateAttribute(account)
	if accountError != nil {
		return accountError
	}

	label := fmt.Sprintf(secretLabelTemplateConstant, store.service, validatedAccount)
	arguments, standardInput := store.backend.storeInvocation(store.service, validatedAccount, label, strings.TrimSpace(secret))
	_, executionError := store.executor.Execute(executionContext, execshell.ShellCommand{
		Name: store.backend.command,
		Details: execshell.CommandDetails{
			Arguments:     arguments,
			StandardInput: standardInput,
		},
	})
	return executionError
}

// Delete removes the secret for the account; a missing secret is not an error.
func (store *Store) Delete(executionContext context.Context, account string) error {
	validatedAccount, accountError := validateAttribute(account)
	if accountError != nil {
		return accountError
	}

	_, executionError := store.executor.Execute(executionContext, execshell.ShellCommand{
		Name: store.backend.command,
		Details: execshell.CommandDetails{
			Arguments: store.backend.deleteArguments(store.service, validatedAccount),
		},
	})
	if executionError != nil && !store.isNotFound(executionError) {
		return executionError
	}
	return nil
}

func (store *Store) isNotFound(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return false
	}
	return store.backend.isNotFound(commandFailure.Result.ExitCode)
}

func validateAttribute(value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 || strings.ContainsAny(trimmedValue, "\x00\r\n") {
		return "", fmt.Errorf(invalidAttributeTemplateConstant, ErrInvalidAttribute, value)
	}
	return trimmedValue, nil
}
