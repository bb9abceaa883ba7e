package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/fitcompare/internal/models"
)

// promptLine prints label and reads one trimmed line.
func promptLine(in *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

// PromptCredentials reads an email and a password.
func PromptCredentials(in *bufio.Scanner, out io.Writer) (models.Credentials, bool) {
	var creds models.Credentials
	var ok bool
	if creds.Email, ok = promptLine(in, out, "Email: "); !ok {
		return creds, false
	}
	if creds.Password, ok = promptLine(in, out, "Password: "); !ok {
		return creds, false
	}
	return creds, true
}

// PromptSignup reads the fields of a new account. The name may be left empty.
func PromptSignup(in *bufio.Scanner, out io.Writer) (models.SignupRequest, bool) {
	creds, ok := PromptCredentials(in, out)
	if !ok {
		return models.SignupRequest{}, false
	}
	name, ok := promptLine(in, out, "Full name (optional): ")
	if !ok {
		return models.SignupRequest{}, false
	}
	return models.SignupRequest{Email: creds.Email, Password: creds.Password, FullName: name}, true
}
