// ABOUTME: CLI command to ask questions against an ingested document
// ABOUTME: Prints answers with confidence and source citations
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askShowSources bool

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <document-id> <question> [question...]",
		Short: "Ask one or more questions against a document",
		Long: `Ask questions against an ingested document. Multiple questions
are answered concurrently by the server and printed in order.

Examples:
  docqa ask my-policy "What is the grace period?"
  docqa ask my-policy "What is covered?" "What is excluded?" --sources`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAsk,
	}

	cmd.Flags().BoolVar(&askShowSources, "sources", false, "Show source citations for each answer")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var resp struct {
		Answers []struct {
			Question        string  `json:"question"`
			Answer          string  `json:"answer"`
			Confidence      float64 `json:"confidence"`
			ConfidenceLabel string  `json:"confidence_label"`
			Sources         []struct {
				DocumentID string  `json:"document_id"`
				ChunkID    int     `json:"chunk_id"`
				Score      float64 `json:"similarity_score"`
				Preview    string  `json:"preview"`
			} `json:"sources"`
			Error string `json:"error"`
		} `json:"answers"`
		CacheHit   bool   `json:"cache_hit"`
		DocumentID string `json:"document_id"`
	}
	body := map[string]interface{}{
		"document_id": args[0],
		"questions":   args[1:],
	}
	if err := client.postJSON("/hackrx/run", body, &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, ans := range resp.Answers {
		if i > 0 {
			fmt.Fprintln(out, strings.Repeat("-", 60))
		}
		fmt.Fprintf(out, "Q: %s\n", ans.Question)
		if ans.Error != "" {
			fmt.Fprintf(out, "Failed: %s\n", ans.Error)
			continue
		}
		fmt.Fprintf(out, "A: %s\n", ans.Answer)
		fmt.Fprintf(out, "Confidence: %.2f (%s)\n", ans.Confidence, ans.ConfidenceLabel)
		if askShowSources {
			for _, src := range ans.Sources {
				fmt.Fprintf(out, "  [chunk %d, score %.3f] %s\n", src.ChunkID, src.Score, truncate(src.Preview, 100))
			}
		}
	}
	if !resp.CacheHit {
		fmt.Fprintln(out, "(document was loaded from storage for this request)")
	}
	return nil
}
