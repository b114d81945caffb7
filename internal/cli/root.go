package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the firmforge command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "firmforge",
		Short:         "Synthetic consulting-firm data factory",
		Long:          "firmforge simulates a consulting firm's workforce and project delivery over a span of years and writes the result to SQLite plus derived report files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}
