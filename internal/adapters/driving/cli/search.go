package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

var (
	searchLimit  int
	searchSource string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested content semantically",
	Long: `Embeds the query and returns the closest stored chunks from the
vector store, optionally restricted to one source system.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict results to one source (confluence, jira)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if embeddingService == nil {
		return errors.New("embedding service not configured")
	}
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	ctx := context.Background()
	query := args[0]

	vector, err := embeddingService.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	var filter map[string]string
	if searchSource != "" {
		filter = map[string]string{domain.MetaSource: searchSource}
	}

	hits, err := vectorStore.Search(ctx, vector, searchLimit, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		title, _ := hit.Payload[domain.MetaTitle].(string)
		if title == "" {
			title = hit.ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, hit.Score)

		if url, _ := hit.Payload[domain.MetaURL].(string); url != "" {
			cmd.Printf("      %s\n", url)
		}
		if content, _ := hit.Payload["content"].(string); content != "" {
			cmd.Printf("      %s\n", snippet(content, 120))
		}
		if mocked, _ := hit.Payload[domain.MetaEmbeddingMocked].(bool); mocked {
			cmd.Printf("      (placeholder embedding)\n")
		}
		cmd.Println()
	}
	return nil
}

// snippet truncates content for terminal display.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
