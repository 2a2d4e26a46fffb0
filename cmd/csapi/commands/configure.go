package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/pkg/csclient"
)

// NewConfigureCommand creates the interactive configure command.
func NewConfigureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Configure API endpoint and credentials",
		Long:  "Prompt for the API endpoint, API key and secret key and save them to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			api, err := prompt(out, reader, "API endpoint", config.API)
			if err != nil {
				return err
			}

			endpoint, err := csclient.NormalizeEndpoint(api)
			if err != nil {
				return err
			}

			apiKey, err := prompt(out, reader, "API key", config.APIKey)
			if err != nil {
				return err
			}

			secretKey, err := promptSecret(cmd, reader, "Secret key", config.SecretKey)
			if err != nil {
				return err
			}

			config.API = endpoint
			config.APIKey = apiKey
			config.SecretKey = secretKey

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, err = fmt.Fprintf(out, "Configuration saved for %s\n", endpoint)

			return err
		},
	}
}

// prompt reads one line, keeping current when the answer is empty.
func prompt(out io.Writer, reader *bufio.Reader, label, current string) (string, error) {
	return promptShowing(out, reader, label, current, current)
}

func promptShowing(out io.Writer, reader *bufio.Reader, label, shown, current string) (string, error) {
	if shown != "" {
		_, _ = fmt.Fprintf(out, "%s [%s]: ", label, shown)
	} else {
		_, _ = fmt.Fprintf(out, "%s: ", label)
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}

	return line, nil
}

// promptSecret reads a secret without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, label, current string) (string, error) {
	out := cmd.OutOrStdout()

	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(int(os.Stdin.Fd())) {
		shown := ""
		if current != "" {
			shown = constants.MaskedSecret
		}

		return promptShowing(out, reader, label, shown, current)
	}

	_, _ = fmt.Fprintf(out, "%s: ", label)

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	value := strings.TrimSpace(string(secret))
	if value == "" {
		return current, nil
	}

	return value, nil
}
