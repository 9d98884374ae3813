// ABOUTME: Root CLI command for docqa
// ABOUTME: Wires all subcommands and global flags
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Document question answering over a vector-cached storage layer",
		Long: `docqa ingests documents, embeds them, and answers questions
against them using retrieval-augmented generation.

The CLI talks to a running docqa server (see DOCQA_SERVER_URL and
AUTH_TOKEN), except for the mcp command which runs the engine locally.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("server", "", "Server base URL (overrides DOCQA_SERVER_URL)")

	cmd.AddCommand(NewUploadCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewDocumentsCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
