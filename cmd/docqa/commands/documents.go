// ABOUTME: CLI commands to list and delete ingested documents
// ABOUTME: Tabular listing with status, chunk counts, and age
package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewDocumentsCmd creates the documents command group
func NewDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List and delete ingested documents",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all ingested documents",
		RunE:  runDocumentsList,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and all its stored artifacts",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocumentsDelete,
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(deleteCmd)

	return cmd
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var resp struct {
		Documents []struct {
			ID         string    `json:"id"`
			Filename   string    `json:"filename"`
			Status     string    `json:"status"`
			ChunkCount int       `json:"chunk_count"`
			CreatedAt  time.Time `json:"created_at"`
		} `json:"documents"`
	}
	if err := client.getJSON("/documents", &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(resp.Documents) == 0 {
		fmt.Fprintln(out, "No documents ingested.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tCHUNKS\tCREATED")
	for _, doc := range resp.Documents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			doc.ID, truncate(doc.Filename, 40), doc.Status, doc.ChunkCount, formatTime(doc.CreatedAt))
	}
	return w.Flush()
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var resp struct {
		Status     string `json:"status"`
		DocumentID string `json:"document_id"`
	}
	if err := client.delete("/documents/"+args[0], &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %s\n", resp.DocumentID)
	return nil
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}
