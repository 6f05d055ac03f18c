package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quill-labs/kbpull/internal/core/services"
	"github.com/quill-labs/kbpull/internal/logger"
)

var ingestNoFilter bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Retrieve wiki pages, render a digest, and store embeddings",
	Long: `Runs the full pipeline: retrieves pages like the wiki command,
writes the markdown digest, then chunks and embeds page content into
the configured Qdrant collection.

When the vector store is unreachable the run degrades to file-only
output with a warning instead of failing.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoFilter, "no-filter", false, "skip keyword filtering and ingest every page")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if newRetrieval == nil {
		return errors.New("retrieval pipeline not configured")
	}
	if ingestor == nil {
		return errors.New("ingestor not configured")
	}

	ctx := context.Background()
	filter := appConfig.Pipeline.FilterByKeywords && !ingestNoFilter
	spaceKey := appConfig.Confluence.SpaceKey

	cmd.Printf("Retrieving pages from space %s...\n", spaceKey)

	result, err := newRetrieval(filter).Run(ctx)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	digest := services.RenderWikiDigest(spaceKey, result.Pages, result.Stats, time.Now())
	path := appConfig.WikiPath()
	if err := writeDigest(path, digest); err != nil {
		return err
	}
	cmd.Printf("Wiki digest written to %s\n", path)

	// Pre-flight the store so an unreachable backend degrades to
	// file-only output instead of failing the whole run.
	if vectorStore == nil {
		logger.Warn("Vector store not configured, skipping ingestion")
		cmd.Println("Vector store not configured; digest written, ingestion skipped.")
		return nil
	}
	if err := vectorStore.Ping(ctx); err != nil {
		logger.Warn("Vector store unreachable, skipping ingestion: %v", err)
		cmd.Println("Vector store unreachable; digest written, ingestion skipped.")
		return nil
	}

	if err := vectorStore.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	cmd.Printf("Ingesting %d pages...\n", len(result.Pages))
	stats, err := ingestor.Ingest(ctx, result.Pages)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	cmd.Printf("Stored %d pages as %d chunks (%d skipped, %d failed).\n",
		stats.PagesStored, stats.Chunks, stats.PagesSkipped, stats.PagesFailed)
	if stats.MockedEmbeddings > 0 {
		cmd.Printf("Warning: %d chunks stored with placeholder embeddings.\n", stats.MockedEmbeddings)
	}
	return nil
}
