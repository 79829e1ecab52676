package commands

import (
	"bufio"
	"context"
	"fmt"
	"inzetbooster/lib/platforms/inzetrooster"
	"inzetbooster/lib/restyutil"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

func promptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password given and stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func credentials() (string, string, error) {
	var err error
	user := globals.user
	if user == "" {
		user, err = promptLine("Username")
		if err != nil {
			return "", "", err
		}
	}
	password := globals.password
	if password == "" {
		password, err = promptPassword("Password")
		if err != nil {
			return "", "", err
		}
	}
	return user, password, nil
}

// login returns a client with an authenticated session for the configured
// organisation.
func login(ctx context.Context) (*inzetrooster.Client, error) {
	var output restyutil.InstrumentOutput
	if globals.dumpHttp != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(globals.dumpHttp)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}

	client, err := inzetrooster.NewClient(ctx, inzetrooster.ClientOptions{
		BaseUrl:          globals.baseUrl,
		Organisation:     globals.org,
		Logger:           slog.Default(),
		InstrumentOutput: output,
		BypassCloudflare: config.BypassCloudflare,
	})
	if err != nil {
		return nil, err
	}

	user, password, err := credentials()
	if err != nil {
		return nil, err
	}
	err = client.Login(ctx, user, password)
	if err != nil {
		return nil, fmt.Errorf("login to %s as %s: %w", globals.org, user, err)
	}
	return client, nil
}
