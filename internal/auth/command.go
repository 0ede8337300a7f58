package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RobinBoers/bix/internal/dependencies"
	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/keyring"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	commandUseConstant              = "auth"
	commandShortDescriptionConstant = "Store an API token for the Git host"
	commandLongDescriptionConstant  = "auth asks for the Git host username and password, issues an API token and stores it in the system keyring. The BIX_TOKEN environment variable takes precedence over the stored token."
	flagStatusNameConstant          = "status"
	flagStatusDescriptionConstant   = "Report whether a token is available without changing it"
	flagLogoutNameConstant          = "logout"
	flagLogoutDescriptionConstant   = "Remove the stored token from the keyring"
	statusOutputTemplateConstant    = "%s: authenticated as %s (token from %s)\n"
	loginOutputTemplateConstant     = "%s: authenticated as %s\n"
)

// Configuration captures the settings consumed by the auth command.
type Configuration struct {
	Host    gitea.Configuration
	Keyring keyring.Configuration
}

// ConfigurationProvider returns the auth configuration for the current invocation.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the auth command.
type CommandBuilder struct {
	LoggerProvider        shared.LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              shared.CommandExecutor
	Reporter              shared.StatusReporter
	Prompter              CredentialPrompter
	HTTPClient            *http.Client
	EnvironmentLookup     EnvironmentLookup
	Platform              string
}

// Build constructs the auth command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().Bool(flagStatusNameConstant, false, flagStatusDescriptionConstant)
	command.Flags().Bool(flagLogoutNameConstant, false, flagLogoutDescriptionConstant)
	command.MarkFlagsMutuallyExclusive(flagStatusNameConstant, flagLogoutNameConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	service, account, serviceError := builder.prepare(command)
	if serviceError != nil {
		return serviceError
	}

	statusRequested, _ := command.Flags().GetBool(flagStatusNameConstant)
	logoutRequested, _ := command.Flags().GetBool(flagLogoutNameConstant)

	switch {
	case statusRequested:
		status, statusError := service.Status(command.Context())
		if statusError != nil {
			return statusError
		}
		_, writeError := fmt.Fprintf(command.OutOrStdout(), statusOutputTemplateConstant, status.Account, status.User.Login, status.Source)
		return writeError
	case logoutRequested:
		return service.Logout(command.Context())
	default:
		user, loginError := service.Login(command.Context())
		if loginError != nil {
			return loginError
		}
		_, writeError := fmt.Fprintf(command.OutOrStdout(), loginOutputTemplateConstant, account, user.Login)
		return writeError
	}
}

func (builder *CommandBuilder) prepare(command *cobra.Command) (*Service, string, error) {
	configuration := builder.resolveConfiguration()
	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	reporter := dependencies.ResolveStatusReporter(builder.Reporter)

	client, clientError := gitea.NewClient(configuration.Host.URL, builder.HTTPClient, logger)
	if clientError != nil {
		return nil, "", clientError
	}

	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, reporter)
	if executorError != nil {
		return nil, "", executorError
	}
	store, storeError := builder.openStore(executor, configuration.Keyring)
	if storeError != nil {
		return nil, "", storeError
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = NewTerminalCredentialPrompter(os.Stdin, command.ErrOrStderr())
	}

	service, serviceError := NewService(configuration.Host, store.Service(), ServiceDependencies{
		Logger:   logger,
		Issuer:   client,
		Store:    store,
		Resolver: NewTokenResolver(store, builder.EnvironmentLookup),
		Prompter: prompter,
		Reporter: reporter,
	})
	if serviceError != nil {
		return nil, "", serviceError
	}
	account, accountError := service.Account()
	if accountError != nil {
		return nil, "", accountError
	}
	return service, account, nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return Configuration{Host: gitea.DefaultConfiguration(), Keyring: keyring.DefaultConfiguration()}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) openStore(executor shared.CommandExecutor, configuration keyring.Configuration) (*keyring.Store, error) {
	if platform := strings.TrimSpace(builder.Platform); len(platform) > 0 {
		return keyring.NewStoreForPlatform(executor, configuration, platform)
	}
	return keyring.NewStore(executor, configuration)
}
