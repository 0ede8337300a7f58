package repos

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RobinBoers/bix/internal/auth"
	"github.com/RobinBoers/bix/internal/dependencies"
	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/keyring"
	"github.com/RobinBoers/bix/internal/shared"
)

const (
	createUseConstant                  = "create-repo <name>"
	createShortDescriptionConstant     = "Create a repository on the Git host and link to it"
	createLongDescriptionConstant      = "create-repo creates the repository under the configured owner organization, or the authenticated user, then links the working directory to it and pushes the default branch."
	linkUseConstant                    = "link-repo <name|owner/name>"
	linkShortDescriptionConstant       = "Point the remote at a repository on the Git host"
	linkLongDescriptionConstant        = "link-repo adds or updates the configured remote so it points at the repository over SSH, initializing the working directory first when needed, and pushes the default branch with upstream tracking."
	cloneUseConstant                   = "clone <name|owner/name> [directory]"
	cloneShortDescriptionConstant      = "Clone a repository from the Git host"
	cloneLongDescriptionConstant       = "clone clones the repository from the Git host over SSH. A bare name is resolved against the configured owner, or the authenticated user."
	flagPrivateNameConstant            = "private"
	flagPrivateDescriptionConstant     = "Create a private repository"
	flagDescriptionNameConstant        = "description"
	flagDescriptionDescriptionConstant = "Repository description"
	flagNoLinkNameConstant             = "no-link"
	flagNoLinkDescriptionConstant      = "Only create the repository; leave the working directory untouched"
	flagNoPushNameConstant             = "no-push"
	flagNoPushDescriptionConstant      = "Configure the remote without pushing the default branch"
)

// ConfigurationProvider returns the repository configuration for the current invocation.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the create-repo, link-repo and clone commands.
type CommandBuilder struct {
	LoggerProvider        shared.LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              shared.CommandExecutor
	Reporter              shared.StatusReporter
	HTTPClient            *http.Client
	Tokens                TokenResolver
	EnvironmentLookup     auth.EnvironmentLookup
	Platform              string
	WorkingDirectory      string
}

// BuildCreate constructs the create-repo command.
func (builder *CommandBuilder) BuildCreate() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   createUseConstant,
		Short: createShortDescriptionConstant,
		Long:  createLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				return ErrRepositoryNameRequired
			}
			privateRepository, _ := command.Flags().GetBool(flagPrivateNameConstant)
			description, _ := command.Flags().GetString(flagDescriptionNameConstant)
			noLink, _ := command.Flags().GetBool(flagNoLinkNameConstant)
			noPush, _ := command.Flags().GetBool(flagNoPushNameConstant)

			service, workingDirectory, serviceError := builder.prepare(command.Context())
			if serviceError != nil {
				return serviceError
			}
			_, createError := service.Create(command.Context(), CreateOptions{
				WorkingDirectory: workingDirectory,
				Name:             arguments[0],
				Description:      description,
				Private:          privateRepository,
				Link:             !noLink,
				Push:             !noPush,
			})
			return createError
		},
	}
	command.Flags().Bool(flagPrivateNameConstant, false, flagPrivateDescriptionConstant)
	command.Flags().String(flagDescriptionNameConstant, "", flagDescriptionDescriptionConstant)
	command.Flags().Bool(flagNoLinkNameConstant, false, flagNoLinkDescriptionConstant)
	command.Flags().Bool(flagNoPushNameConstant, false, flagNoPushDescriptionConstant)
	return command, nil
}

// BuildLink constructs the link-repo command.
func (builder *CommandBuilder) BuildLink() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   linkUseConstant,
		Short: linkShortDescriptionConstant,
		Long:  linkLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				return ErrRepositoryNameRequired
			}
			noPush, _ := command.Flags().GetBool(flagNoPushNameConstant)

			service, workingDirectory, serviceError := builder.prepare(command.Context())
			if serviceError != nil {
				return serviceError
			}
			_, linkError := service.Link(command.Context(), LinkOptions{
				WorkingDirectory: workingDirectory,
				Name:             arguments[0],
				Push:             !noPush,
			})
			return linkError
		},
	}
	command.Flags().Bool(flagNoPushNameConstant, false, flagNoPushDescriptionConstant)
	return command, nil
}

// BuildClone constructs the clone command.
func (builder *CommandBuilder) BuildClone() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   cloneUseConstant,
		Short: cloneShortDescriptionConstant,
		Long:  cloneLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				return ErrRepositoryNameRequired
			}
			targetDirectory := ""
			if len(arguments) > 1 {
				targetDirectory = arguments[1]
			}

			service, workingDirectory, serviceError := builder.prepare(command.Context())
			if serviceError != nil {
				return serviceError
			}
			_, cloneError := service.Clone(command.Context(), CloneOptions{
				WorkingDirectory: workingDirectory,
				Name:             arguments[0],
				Directory:        targetDirectory,
			})
			return cloneError
		},
	}
	return command, nil
}

func (builder *CommandBuilder) prepare(executionContext context.Context) (*Service, string, error) {
	workingDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(executionContext, builder.WorkingDirectory)
	if workingDirectoryError != nil {
		return nil, "", workingDirectoryError
	}

	configuration := builder.resolveConfiguration()
	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	reporter := dependencies.ResolveStatusReporter(builder.Reporter)
	executor, executorError := dependencies.ResolveCommandExecutor(builder.Executor, logger, reporter)
	if executorError != nil {
		return nil, "", executorError
	}

	repositories, repositoriesError := gitrepo.NewRepositoryManager(executor)
	if repositoriesError != nil {
		return nil, "", repositoriesError
	}

	serviceDependencies := ServiceDependencies{
		Logger:       logger,
		Repositories: repositories,
		Tokens:       builder.Tokens,
		Reporter:     reporter,
	}

	// The API client is optional: link-repo and clone with an explicit owner work without a host token.
	if client, clientError := gitea.NewClient(configuration.Host.URL, builder.HTTPClient, logger); clientError == nil {
		serviceDependencies.API = client
	}
	if serviceDependencies.Tokens == nil {
		if store, storeError := builder.openStore(executor, configuration.Keyring); storeError == nil {
			serviceDependencies.Tokens = auth.NewTokenResolver(store, builder.EnvironmentLookup)
		} else {
			serviceDependencies.Tokens = auth.NewTokenResolver(nil, builder.EnvironmentLookup)
		}
	}

	service, serviceError := NewService(configuration, serviceDependencies)
	if serviceError != nil {
		return nil, "", serviceError
	}
	return service, workingDirectory, nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) openStore(executor shared.CommandExecutor, configuration keyring.Configuration) (*keyring.Store, error) {
	if platform := strings.TrimSpace(builder.Platform); len(platform) > 0 {
		return keyring.NewStoreForPlatform(executor, configuration, platform)
	}
	return keyring.NewStore(executor, configuration)
}
