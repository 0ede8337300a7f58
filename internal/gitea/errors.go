package gitea

import (
	"errors"
	"fmt"
)

// Operation names reported in OperationError.
const (
	OperationCurrentUser       = "look up authenticated user"
	OperationCreateRepository  = "create repository"
	OperationCreateAccessToken = "create access token"
	OperationConnect           = "connect"
)

const (
	operationErrorTemplateConstant           = "gitea %s failed: %v"
	operationErrorWithStatusTemplateConstant = "gitea %s failed (HTTP %d): %v"
)

var (
	// ErrHostNotConfigured indicates no host URL was configured.
	ErrHostNotConfigured = errors.New("git host not configured; set host.url or BIX_HOST")
	// ErrCredentialsRequired indicates an operation was attempted without credentials.
	ErrCredentialsRequired = errors.New("gitea credentials required")
	// ErrRepositoryNameRequired indicates repository creation without a name.
	ErrRepositoryNameRequired = errors.New("repository name required")
)

// OperationError wraps a failed API operation.
type OperationError struct {
	Operation  string
	StatusCode int
	Cause      error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	if operationError.StatusCode > 0 {
		return fmt.Sprintf(operationErrorWithStatusTemplateConstant, operationError.Operation, operationError.StatusCode, operationError.Cause)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}
