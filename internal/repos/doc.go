// Package repos creates repositories on the Git host and connects working
// copies to them: create-repo, link-repo and clone.
package repos
