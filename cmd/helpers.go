package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

// parseParams turns repeated --param key=value flags into an operation
// parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}

	return params, nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password given and stdin is not a terminal")
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(raw), nil
}

func printResult(cmd *cobra.Command, result domain.OperationResult) {
	if result.Total > 1 {
		for i, attempt := range result.Attempts {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%d/%d] %s: %s\n", i+1, result.Total, outcomeLabel(attempt.Success), attempt.Message)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", outcomeLabel(result.Success), result.Message)
}

func outcomeLabel(success bool) string {
	if success {
		return "ok"
	}

	return "failed"
}

// operationsHelp lists the registry for command help text.
func operationsHelp() string {
	var b strings.Builder
	for _, def := range domain.Definitions() {
		names := make([]string, 0, len(def.Params))
		for _, param := range def.Params {
			names = append(names, param.Name)
		}
		fmt.Fprintf(&b, "  %-20s %s (params: %s)\n", def.Key, def.Name, strings.Join(names, ", "))
	}

	return b.String()
}
