// Package gitrepo wraps the git operations bix workflows issue against a
// working copy and formats the SSH remotes of the configured Git host.
package gitrepo
