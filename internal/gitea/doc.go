// Package gitea talks to a Gitea-compatible host through the Gitea SDK:
// user lookup, repository creation and access token issuance.
package gitea
