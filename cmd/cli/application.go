package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/RobinBoers/bix/internal/auth"
	"github.com/RobinBoers/bix/internal/branches"
	"github.com/RobinBoers/bix/internal/gitea"
	"github.com/RobinBoers/bix/internal/gitrepo"
	"github.com/RobinBoers/bix/internal/handlers"
	"github.com/RobinBoers/bix/internal/keyring"
	"github.com/RobinBoers/bix/internal/repos"
	"github.com/RobinBoers/bix/internal/ui"
	"github.com/RobinBoers/bix/internal/utils"
	flagutils "github.com/RobinBoers/bix/internal/utils/flags"
	pathutils "github.com/RobinBoers/bix/internal/utils/path"
)

const (
	applicationNameConstant                 = "bix"
	applicationShortDescriptionConstant     = "Run project lifecycle tasks and git workflows"
	applicationLongDescriptionConstant      = "bix runs setup, build, check, format, deploy and server through a project script or the detected package manager, drives everyday git branch workflows, and manages repositories on a Gitea host."
	versionTemplateConstant                 = "bix version: {{.Version}}\n"
	developmentVersionConstant              = "dev"
	buildInfoDevelopmentVersionConstant     = "(devel)"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	gitDefaultBranchConfigKeyConstant       = "git.default_branch"
	hostURLConfigKeyConstant                = "host.url"
	defaultBranchEnvironmentAliasConstant   = "BIX_DEFAULT_BRANCH"
	hostEnvironmentAliasConstant            = "BIX_HOST"
	environmentPrefixConstant               = "BIX"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	xdgConfigHomeEnvironmentConstant        = "XDG_CONFIG_HOME"
	configurationDirectoryNameConstant      = applicationNameConstant
	homeConfigurationDirectoryConstant      = "~/.config/" + configurationDirectoryNameConstant
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant   = "unable to determine working directory: %w"
	rootCommandDebugMessageConstant         = "bix CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

var (
	// Version is stamped at build time with -ldflags "-X github.com/RobinBoers/bix/cmd/cli.Version=v1.2.3".
	Version = ""

	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Handlers handlers.Configuration         `mapstructure:"handlers"`
	Git      gitrepo.Configuration          `mapstructure:"git"`
	Host     gitea.Configuration            `mapstructure:"host"`
	Keyring  keyring.Configuration          `mapstructure:"keyring"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Sanitize returns the configuration with every section normalized the way its consumer sees it.
func (configuration ApplicationConfiguration) Sanitize() ApplicationConfiguration {
	return ApplicationConfiguration{
		Common: ApplicationCommonConfiguration{
			LogLevel:  strings.ToLower(strings.TrimSpace(configuration.Common.LogLevel)),
			LogFormat: strings.ToLower(strings.TrimSpace(configuration.Common.LogFormat)),
		},
		Handlers: configuration.Handlers.Sanitize(),
		Git:      configuration.Git.Sanitize(),
		Host:     configuration.Host.Sanitize(),
		Keyring:  configuration.Keyring.Sanitize(),
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand              *cobra.Command
	configurationLoader      *utils.ConfigurationLoader
	loggerFactory            *utils.LoggerFactory
	logger                   *zap.Logger
	reporter                 *ui.StatusReporter
	homeExpander             *pathutils.HomeExpander
	configuration            ApplicationConfiguration
	configurationMetadata    utils.LoadedConfiguration
	configurationFilePath    string
	logLevelFlagValue        string
	logFormatFlagValue       string
	commandContextAccessor   utils.CommandContextAccessor
	workingDirectoryProvider func() (string, error)
}

// NewApplication assembles a fully wired CLI application writing diagnostics to standard error.
func NewApplication() *Application {
	return newApplication(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

func newApplication(diagnosticOutput io.Writer, colorEnabled bool) *Application {
	homeExpander := pathutils.NewHomeExpander()
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(homeExpander),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetEnvironmentAliases(gitDefaultBranchConfigKeyConstant, defaultBranchEnvironmentAliasConstant)
	configurationLoader.SetEnvironmentAliases(hostURLConfigKeyConstant, hostEnvironmentAliasConstant)

	application := &Application{
		configurationLoader:      configurationLoader,
		loggerFactory:            utils.NewLoggerFactoryWithOutput(diagnosticOutput),
		logger:                   zap.NewNop(),
		reporter:                 ui.NewStatusReporter(diagnosticOutput, colorEnabled),
		homeExpander:             homeExpander,
		commandContextAccessor:   utils.NewCommandContextAccessor(),
		workingDirectoryProvider: os.Getwd,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logLevelFlagValue, logLevelFlagNameConstant, string(utils.LogLevelWarn), logLevelChoices, logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatConsole), logFormatChoices, logFormatFlagUsageConstant)

	for _, subcommand := range application.buildSubcommands() {
		cobraCommand.AddCommand(subcommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute(executionContext context.Context) error {
	return NewApplication().Execute(executionContext)
}

func (application *Application) buildSubcommands() []*cobra.Command {
	commands := make([]*cobra.Command, 0, len(handlers.Names())+8)
	appendCommand := func(build func() (*cobra.Command, error)) {
		if command, buildError := build(); buildError == nil {
			commands = append(commands, command)
		}
	}

	for _, handlerName := range handlers.Names() {
		handlerBuilder := &handlers.CommandBuilder{
			Handler:               handlerName,
			LoggerProvider:        application.currentLogger,
			ConfigurationProvider: func() handlers.Configuration { return application.configuration.Handlers },
			Reporter:              application.reporter,
		}
		appendCommand(handlerBuilder.Build)
	}

	branchBuilder := &branches.CommandBuilder{
		LoggerProvider:        application.currentLogger,
		ConfigurationProvider: func() gitrepo.Configuration { return application.configuration.Git },
		Reporter:              application.reporter,
	}
	appendCommand(branchBuilder.BuildPush)
	appendCommand(branchBuilder.BuildNew)
	appendCommand(branchBuilder.BuildMerge)

	repositoryBuilder := &repos.CommandBuilder{
		LoggerProvider: application.currentLogger,
		ConfigurationProvider: func() repos.Configuration {
			return repos.Configuration{Git: application.configuration.Git, Host: application.configuration.Host, Keyring: application.configuration.Keyring}
		},
		Reporter: application.reporter,
	}
	appendCommand(repositoryBuilder.BuildCreate)
	appendCommand(repositoryBuilder.BuildLink)
	appendCommand(repositoryBuilder.BuildClone)

	authBuilder := &auth.CommandBuilder{
		LoggerProvider: application.currentLogger,
		ConfigurationProvider: func() auth.Configuration {
			return auth.Configuration{Host: application.configuration.Host, Keyring: application.configuration.Keyring}
		},
		Reporter: application.reporter,
	}
	appendCommand(authBuilder.Build)

	configurationBuilder := &configurationCommandBuilder{
		ConfigurationProvider: func() ApplicationConfiguration { return application.configuration },
		MetadataProvider:      func() utils.LoadedConfiguration { return application.configurationMetadata },
	}
	appendCommand(configurationBuilder.Build)

	return commands
}

func (application *Application) currentLogger() *zap.Logger {
	return application.logger
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}

	configurationFilePath := application.homeExpander.Expand(strings.TrimSpace(application.configurationFilePath))
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	workingDirectory, workingDirectoryError := application.workingDirectoryProvider()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	if command != nil {
		updatedContext := application.commandContextAccessor.WithInvocation(command.Context(), utils.Invocation{
			WorkingDirectory: workingDirectory,
			ConfigFileUsed:   application.configurationMetadata.ConfigFileUsed,
		})
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths lists where config.yaml is looked up, most specific first.
func configurationSearchPaths(homeExpander *pathutils.HomeExpander) []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if configHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentConstant)); len(configHome) > 0 {
		searchPaths = append(searchPaths, filepath.Join(configHome, configurationDirectoryNameConstant))
	}
	return append(searchPaths, homeExpander.Expand(homeConfigurationDirectoryConstant))
}

func resolveVersion() string {
	if trimmedVersion := strings.TrimSpace(Version); len(trimmedVersion) > 0 {
		return trimmedVersion
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(buildInformation.Main.Version) == 0 || buildInformation.Main.Version == buildInfoDevelopmentVersionConstant {
		return developmentVersionConstant
	}
	return buildInformation.Main.Version
}
