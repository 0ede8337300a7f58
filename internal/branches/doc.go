// Package branches implements the push, new and merge branch workflows.
package branches
