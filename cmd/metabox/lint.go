package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-metabox/pkg/openapi"
	"github.com/spf13/cobra"
)

func (a *app) lintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <openapi-file>...",
		Short: "Check OpenAPI documents for unsupported metabox extensions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var count int
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return codeError(2, "read %s: %s", path, err)
				}
				violations, err := openapi.Lint(cmd.Context(), data)
				if err != nil {
					return codeError(2, "lint %s: %s", path, err)
				}
				for _, v := range violations {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, v)
				}
				count += len(violations)
			}
			if count > 0 {
				return codeError(1, "%d extension problem(s) found", count)
			}
			return nil
		},
	}
}
