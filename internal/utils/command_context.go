package utils

import "context"

type commandContextKey string

const invocationContextKeyConstant = commandContextKey("invocation")

// Invocation describes where and how the current command was started.
type Invocation struct {
	WorkingDirectory string
	ConfigFileUsed   string
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithInvocation attaches the invocation details to the provided context.
func (accessor CommandContextAccessor) WithInvocation(parentContext context.Context, invocation Invocation) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, invocationContextKeyConstant, invocation)
}

// Invocation extracts the invocation details from the provided context.
func (accessor CommandContextAccessor) Invocation(executionContext context.Context) (Invocation, bool) {
	if executionContext == nil {
		return Invocation{}, false
	}
	invocation, invocationAvailable := executionContext.Value(invocationContextKeyConstant).(Invocation)
	return invocation, invocationAvailable
}
