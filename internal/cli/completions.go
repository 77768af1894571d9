package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/vset/internal/scaffold"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// completeTemplateNames provides shell completion for template names.
func completeTemplateNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	templates, err := scaffold.ListTemplates()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var matches []string
	for _, t := range templates {
		if strings.HasPrefix(t, toComplete) {
			matches = append(matches, t)
		}
	}

	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeSSLModes provides shell completion for the --sslmode flag.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, m := range sslModes {
		if strings.HasPrefix(m, toComplete) {
			matches = append(matches, m)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	for _, cmd := range []*cobra.Command{ingestCmd, serveCmd, checkCmd} {
		_ = cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)
	}
}
