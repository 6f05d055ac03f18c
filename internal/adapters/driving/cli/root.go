// Package cli provides the command-line interface for kbpull.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/quill-labs/kbpull/internal/adapters/driven/config/file"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
	"github.com/quill-labs/kbpull/internal/core/ports/driving"
	"github.com/quill-labs/kbpull/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Populated by Setup before Execute runs.
var (
	ticketService    driven.TicketService
	embeddingService driven.EmbeddingService
	vectorStore      driven.VectorStore
	ingestor         driving.Ingestor
	appConfig        *file.Config

	// newRetrieval builds a retrieval pipeline for one run. A factory
	// rather than an instance because the --no-filter flag changes how
	// the pipeline is wired.
	newRetrieval RetrievalFactory
)

// RetrievalFactory builds a retrieval pipeline with filtering turned
// on or off.
type RetrievalFactory func(filterByKeywords bool) driving.RetrievalPipeline

// Services bundles everything the commands need.
type Services struct {
	Tickets      driven.TicketService
	Embedder     driven.EmbeddingService
	VectorStore  driven.VectorStore
	Ingestor     driving.Ingestor
	NewRetrieval RetrievalFactory
	Config       *file.Config
}

// Setup injects service implementations into the CLI commands.
func Setup(s Services) {
	ticketService = s.Tickets
	embeddingService = s.Embedder
	vectorStore = s.VectorStore
	ingestor = s.Ingestor
	newRetrieval = s.NewRetrieval
	appConfig = s.Config
}

var (
	verboseFlag bool
	configFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "kbpull",
	Short: "Pull Jira issues and Confluence pages into markdown and a vector store",
	Long: `kbpull retrieves Jira issues and Confluence wiki pages, renders
them as markdown digests, and optionally embeds page content into a
Qdrant collection for semantic search.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (read before command parsing)")
}

// ConfigPathArg extracts the --config value from raw arguments. The
// config file decides how services are wired, so it must be read
// before cobra parses the command line.
func ConfigPathArg(args []string) string {
	const flag = "--config"
	for i, arg := range args {
		switch {
		case arg == flag && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, flag+"="):
			return strings.TrimPrefix(arg, flag+"=")
		}
	}
	return ""
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
