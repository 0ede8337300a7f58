// Package handlers resolves lifecycle commands (setup, build, check, format,
// deploy and server) to a project override script or to the command of the
// package manager detected from marker files in the working directory.
package handlers
