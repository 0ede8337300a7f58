// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader, which layers the embedded defaults, an
// optional configuration file, and BIX_ environment variables through viper,
// and LoggerFactory, which builds the zap loggers used across the CLI.
package utils
