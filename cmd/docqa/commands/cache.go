// ABOUTME: CLI commands for vector cache administration
// ABOUTME: Stats, refresh, and clear against the running server
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the server's vector cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache metrics",
		RunE:  runCacheStats,
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Drop all cached entries and reload from storage",
		RunE:  runCacheRefresh,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached entries without reloading",
		RunE:  runCacheClear,
	}

	cmd.AddCommand(statsCmd)
	cmd.AddCommand(refreshCmd)
	cmd.AddCommand(clearCmd)

	return cmd
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var stats struct {
		TotalDocuments int    `json:"total_documents"`
		TotalChunks    int    `json:"total_chunks"`
		TotalVectors   int    `json:"total_vectors"`
		ApproxBytes    int64  `json:"approx_bytes"`
		RefreshMode    string `json:"refresh_mode"`
		LastRefresh    string `json:"last_refresh"`
		Entries        []struct {
			DocumentID   string `json:"document_id"`
			ChunkCount   int    `json:"chunk_count"`
			LastAccessed string `json:"last_accessed"`
		} `json:"entries"`
	}
	if err := client.getJSON("/cache/stats", &stats); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Documents:    %d\n", stats.TotalDocuments)
	fmt.Fprintf(out, "Chunks:       %d\n", stats.TotalChunks)
	fmt.Fprintf(out, "Vectors:      %d\n", stats.TotalVectors)
	fmt.Fprintf(out, "Approx bytes: %d\n", stats.ApproxBytes)
	fmt.Fprintf(out, "Refresh mode: %s\n", stats.RefreshMode)
	if stats.LastRefresh != "" {
		fmt.Fprintf(out, "Last refresh: %s\n", stats.LastRefresh)
	}

	if len(stats.Entries) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DOCUMENT\tCHUNKS\tLAST ACCESSED")
		for _, e := range stats.Entries {
			fmt.Fprintf(w, "%s\t%d\t%s\n", e.DocumentID, e.ChunkCount, e.LastAccessed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func runCacheRefresh(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var resp struct {
		Status string `json:"status"`
		Mode   string `json:"mode"`
	}
	if err := client.postJSON("/cache/refresh", nil, &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache refreshed (%s mode)\n", resp.Mode)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	var resp struct {
		Status  string `json:"status"`
		Dropped int    `json:"documents_dropped"`
	}
	if err := client.postJSON("/cache/clear", nil, &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared, %d documents dropped\n", resp.Dropped)
	return nil
}
