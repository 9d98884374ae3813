// ABOUTME: CLI command to upload and ingest a document
// ABOUTME: Posts a local file to the server's multipart upload endpoint
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uploadDocumentID string

// NewUploadCmd creates the upload command
func NewUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload and ingest a document",
		Long: `Upload a local file, chunk and embed it, and make it answerable.

Supported types: .pdf, .docx, .eml, .txt, .md

Examples:
  docqa upload policy.pdf
  docqa upload notes.md --id my-notes`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().StringVar(&uploadDocumentID, "id", "", "Pin the document id instead of minting one")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var resp struct {
		DocumentID    string `json:"document_id"`
		Status        string `json:"status"`
		ChunksCreated int    `json:"chunks_created"`
		SupabasePath  string `json:"supabase_path"`
	}
	if err := client.uploadFile(args[0], uploadDocumentID, &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Document:  %s\n", resp.DocumentID)
	fmt.Fprintf(out, "Status:    %s\n", resp.Status)
	fmt.Fprintf(out, "Chunks:    %d\n", resp.ChunksCreated)
	fmt.Fprintf(out, "Stored at: %s\n", resp.SupabasePath)
	return nil
}
