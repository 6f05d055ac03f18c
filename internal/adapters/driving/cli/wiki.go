package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quill-labs/kbpull/internal/core/services"
)

var wikiNoFilter bool

var wikiCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Retrieve wiki pages and render a markdown digest",
	Long: `Lists every page in the configured Confluence space, optionally
filters them by keywords extracted from a reference document, fetches
the full content of the survivors and writes a combined markdown
digest.`,
	RunE: runWiki,
}

func init() {
	wikiCmd.Flags().BoolVar(&wikiNoFilter, "no-filter", false, "skip keyword filtering and fetch every page")
	rootCmd.AddCommand(wikiCmd)
}

func runWiki(cmd *cobra.Command, _ []string) error {
	if newRetrieval == nil {
		return errors.New("retrieval pipeline not configured")
	}

	filter := appConfig.Pipeline.FilterByKeywords && !wikiNoFilter
	spaceKey := appConfig.Confluence.SpaceKey

	cmd.Printf("Retrieving pages from space %s...\n", spaceKey)

	result, err := newRetrieval(filter).Run(context.Background())
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	digest := services.RenderWikiDigest(spaceKey, result.Pages, result.Stats, time.Now())
	path := appConfig.WikiPath()
	if err := writeDigest(path, digest); err != nil {
		return err
	}

	cmd.Printf("Retrieved %d of %d pages (%d failed).\n",
		result.Stats.Fetched, result.Stats.Listed, result.Stats.Failed)
	cmd.Printf("Wiki digest written to %s\n", path)
	return nil
}
