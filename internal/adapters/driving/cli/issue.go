package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/quill-labs/kbpull/internal/core/services"
)

var issueCmd = &cobra.Command{
	Use:   "issue [issue-key]",
	Short: "Fetch a Jira issue and render it as markdown",
	Long: `Fetches a single Jira issue by key and writes a markdown digest
with its summary, description and details table.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssue,
}

func init() {
	rootCmd.AddCommand(issueCmd)
}

func runIssue(cmd *cobra.Command, args []string) error {
	if ticketService == nil {
		return errors.New("ticket service not configured")
	}

	key := args[0]
	cmd.Printf("Fetching issue %s...\n", key)

	issue, err := ticketService.GetIssue(context.Background(), key)
	if err != nil {
		return fmt.Errorf("fetch issue %s: %w", key, err)
	}

	digest := services.RenderIssueDigest(issue, time.Now())
	path := appConfig.IssuePath()
	if err := writeDigest(path, digest); err != nil {
		return err
	}

	cmd.Printf("Issue digest written to %s\n", path)
	return nil
}

// writeDigest writes rendered markdown, creating the output directory
// when needed.
func writeDigest(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
