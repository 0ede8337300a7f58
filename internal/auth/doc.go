// Package auth issues Gitea API tokens, keeps them in the system keyring and
// resolves the token used by repository workflows.
package auth
