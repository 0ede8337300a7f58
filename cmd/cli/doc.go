// Package cli constructs the bix command-line interface, wiring the Cobra
// command hierarchy, the layered configuration loader and structured logging.
// Lifecycle handlers, git workflows, Git host repository commands and auth are
// registered as subcommands of a single root.
package cli
