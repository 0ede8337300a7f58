// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and typed
// errors. OSCommandRunner is the os/exec backed runner; it either captures
// process output or, for passthrough commands, attaches the process to the
// terminal streams. Every git, script, package manager, and keyring
// invocation in bix goes through this package.
package execshell
