package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/RobinBoers/bix/internal/gitea"
)

const (
	usernamePromptTemplateConstant = "Username for %s: "
	passwordPromptTemplateConstant = "Password for %s@%s: "
	lineTerminatorConstant         = "\n"
)

// ErrUsernameRequired indicates an empty username answer.
var ErrUsernameRequired = errors.New("username required")

// CredentialPrompter asks the user for host credentials.
type CredentialPrompter interface {
	PromptCredentials(host string) (gitea.BasicCredentials, error)
}

// IOCredentialPrompter reads credentials from an input stream. Passwords are read
// without echo when the input is a terminal.
type IOCredentialPrompter struct {
	reader       *bufio.Reader
	writer       io.Writer
	readPassword func() ([]byte, error)
}

// NewIOCredentialPrompter constructs a prompter that reads both answers as lines.
func NewIOCredentialPrompter(input io.Reader, output io.Writer) *IOCredentialPrompter {
	prompter := &IOCredentialPrompter{reader: bufio.NewReader(input), writer: output}
	prompter.readPassword = prompter.readLine
	return prompter
}

// NewTerminalCredentialPrompter constructs a prompter that disables echo for the password on terminals.
func NewTerminalCredentialPrompter(input *os.File, output io.Writer) *IOCredentialPrompter {
	prompter := NewIOCredentialPrompter(input, output)
	fileDescriptor := int(input.Fd())
	if term.IsTerminal(fileDescriptor) {
		prompter.readPassword = func() ([]byte, error) {
			password, readError := term.ReadPassword(fileDescriptor)
			prompter.write(lineTerminatorConstant)
			return password, readError
		}
	}
	return prompter
}

// PromptCredentials asks for the username and password of the host account.
func (prompter *IOCredentialPrompter) PromptCredentials(host string) (gitea.BasicCredentials, error) {
	prompter.write(fmt.Sprintf(usernamePromptTemplateConstant, host))
	usernameAnswer, usernameError := prompter.readLine()
	if usernameError != nil {
		return gitea.BasicCredentials{}, usernameError
	}
	username := strings.TrimSpace(string(usernameAnswer))
	if len(username) == 0 {
		return gitea.BasicCredentials{}, ErrUsernameRequired
	}

	prompter.write(fmt.Sprintf(passwordPromptTemplateConstant, username, host))
	password, passwordError := prompter.readPassword()
	if passwordError != nil {
		return gitea.BasicCredentials{}, passwordError
	}

	return gitea.BasicCredentials{Username: username, Password: strings.TrimRight(string(password), "\r\n")}, nil
}

func (prompter *IOCredentialPrompter) readLine() ([]byte, error) {
	line, readError := prompter.reader.ReadString('\n')
	if readError != nil && !(errors.Is(readError, io.EOF) && len(line) > 0) {
		return nil, readError
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func (prompter *IOCredentialPrompter) write(message string) {
	if prompter.writer == nil {
		return
	}
	_, _ = io.WriteString(prompter.writer, message)
}
