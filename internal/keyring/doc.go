// Package keyring stores secrets in the system keyring through its command
// line utility: secret-tool (libsecret) on Linux and security (Keychain) on macOS.
package keyring
