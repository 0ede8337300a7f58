package keyring

import (
	"strings"

	"github.com/RobinBoers/bix/internal/execshell"
)

const (
	platformLinuxConstant  = "linux"
	platformDarwinConstant = "darwin"

	secretToolLookupConstant           = "lookup"
	secretToolStoreConstant            = "store"
	secretToolClearConstant            = "clear"
	secretToolLabelFlagPrefixConstant  = "--label="
	attributeServiceConstant           = "service"
	attributeAccountConstant           = "account"
	secretToolNotFoundExitCodeConstant = 1

	securityFindConstant              = "find-generic-password"
	securityAddConstant               = "add-generic-password"
	securityDeleteConstant            = "delete-generic-password"
	securityServiceFlagConstant       = "-s"
	securityAccountFlagConstant       = "-a"
	securityLabelFlagConstant         = "-l"
	securityPasswordFlagConstant      = "-w"
	securityUpdateFlagConstant        = "-U"
	securityNotFoundExitCodeConstant  = 44
	securityInteractiveFlagConstant   = "-i"
	securityArgumentSeparatorConstant = " "
	securityLineTerminatorConstant    = "\n"
	securityQuoteConstant             = `"`
	securityEscapedQuoteConstant      = `\"`
	securityBackslashConstant         = `\`
	securityEscapedBackslashConstant  = `\\`
)

// backend translates keyring operations into invocations of a platform utility.
type backend struct {
	command           execshell.CommandName
	lookupArguments   func(service string, account string) []string
	storeInvocation   func(service string, account string, label string, secret string) ([]string, []byte)
	deleteArguments   func(service string, account string) []string
	notFoundExitCodes []int
}

func (keyringBackend backend) isNotFound(exitCode int) bool {
	for _, notFoundExitCode := range keyringBackend.notFoundExitCodes {
		if exitCode == notFoundExitCode {
			return true
		}
	}
	return false
}

var secretToolBackend = backend{
	command: execshell.CommandSecretTool,
	lookupArguments: func(service string, account string) []string {
		return []string{secretToolLookupConstant, attributeServiceConstant, service, attributeAccountConstant, account}
	},
	storeInvocation: func(service string, account string, label string, secret string) ([]string, []byte) {
		return []string{secretToolStoreConstant, secretToolLabelFlagPrefixConstant + label, attributeServiceConstant, service, attributeAccountConstant, account}, []byte(secret)
	},
	deleteArguments: func(service string, account string) []string {
		return []string{secretToolClearConstant, attributeServiceConstant, service, attributeAccountConstant, account}
	},
	notFoundExitCodes: []int{secretToolNotFoundExitCodeConstant},
}

var securityBackend = backend{
	command: execshell.CommandSecurity,
	lookupArguments: func(service string, account string) []string {
		return []string{securityFindConstant, securityServiceFlagConstant, service, securityAccountFlagConstant, account, securityPasswordFlagConstant}
	},
	// security reads the command from standard input in interactive mode so the
	// secret never appears in the process arguments.
	storeInvocation: func(service string, account string, label string, secret string) ([]string, []byte) {
		interactiveCommand := strings.Join([]string{
			securityAddConstant,
			securityUpdateFlagConstant,
			securityServiceFlagConstant, quoteSecurityArgument(service),
			securityAccountFlagConstant, quoteSecurityArgument(account),
			securityLabelFlagConstant, quoteSecurityArgument(label),
			securityPasswordFlagConstant, quoteSecurityArgument(secret),
		}, securityArgumentSeparatorConstant)
		return []string{securityInteractiveFlagConstant}, []byte(interactiveCommand + securityLineTerminatorConstant)
	},
	deleteArguments: func(service string, account string) []string {
		return []string{securityDeleteConstant, securityServiceFlagConstant, service, securityAccountFlagConstant, account}
	},
	notFoundExitCodes: []int{securityNotFoundExitCodeConstant},
}

func backendForPlatform(platform string) (backend, bool) {
	switch platform {
	case platformLinuxConstant:
		return secretToolBackend, true
	case platformDarwinConstant:
		return securityBackend, true
	default:
		return backend{}, false
	}
}

func quoteSecurityArgument(value string) string {
	escapedValue := strings.ReplaceAll(value, securityBackslashConstant, securityEscapedBackslashConstant)
	escapedValue = strings.ReplaceAll(escapedValue, securityQuoteConstant, securityEscapedQuoteConstant)
	return securityQuoteConstant + escapedValue + securityQuoteConstant
}
