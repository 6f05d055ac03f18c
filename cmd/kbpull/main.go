// Command kbpull pulls Jira issues and Confluence wiki pages into
// markdown digests and a Qdrant vector collection.
package main

import (
	"fmt"
	"os"

	configfile "github.com/quill-labs/kbpull/internal/adapters/driven/config/file"
	embeddingopenai "github.com/quill-labs/kbpull/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/quill-labs/kbpull/internal/adapters/driven/llm/openai"
	"github.com/quill-labs/kbpull/internal/adapters/driven/tickets/jira"
	"github.com/quill-labs/kbpull/internal/adapters/driven/vector/qdrant"
	"github.com/quill-labs/kbpull/internal/adapters/driven/wiki/confluence"
	"github.com/quill-labs/kbpull/internal/adapters/driving/cli"
	"github.com/quill-labs/kbpull/internal/core/ports/driven"
	"github.com/quill-labs/kbpull/internal/core/ports/driving"
	"github.com/quill-labs/kbpull/internal/core/services"
	"github.com/quill-labs/kbpull/internal/logger"
	"github.com/quill-labs/kbpull/internal/postprocessors/chunker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.Load(cli.ConfigPathArg(os.Args[1:]))
	if err != nil {
		return err
	}

	cli.Setup(buildServices(cfg))
	return cli.Execute()
}

// buildServices constructs every adapter the configuration allows.
// Sources with missing credentials are left unconfigured; the commands
// that need them report this instead of failing at startup.
func buildServices(cfg *configfile.Config) cli.Services {
	s := cli.Services{Config: cfg}

	if tickets, err := jira.NewClient(jira.Config{
		BaseURL: cfg.Jira.BaseURL,
		Email:   cfg.Jira.Email,
		Token:   cfg.Jira.Token,
	}); err == nil {
		s.Tickets = tickets
	} else {
		logger.Debug("Jira client not configured: %v", err)
	}

	var wikiSvc driven.WikiService
	if w, err := confluence.NewClient(confluence.Config{
		BaseURL: cfg.Confluence.BaseURL,
		Token:   cfg.Confluence.Token,
	}); err == nil {
		wikiSvc = w
	} else {
		logger.Debug("Confluence client not configured: %v", err)
	}

	var llm driven.LLMService
	var embedder driven.EmbeddingService
	if cfg.OpenAI.APIKey != "" {
		llm, _ = llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Model:          cfg.OpenAI.Model,
			FallbackModels: cfg.OpenAI.FallbackModels,
		})
		embedder, _ = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.EmbeddingModel,
			Dimensions: cfg.OpenAI.Dimensions,
		})
	}
	s.Embedder = embedder

	store, _ := qdrant.NewStore(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		Collection: cfg.Qdrant.Collection,
		VectorDim:  cfg.Qdrant.VectorDim,
	})
	s.VectorStore = store

	extractor := services.NewKeywordExtractor(llm, services.KeywordExtractorConfig{
		UseAI:         cfg.Pipeline.UseAIKeywords,
		StopOnAIError: cfg.Pipeline.StopOnAIError,
		SurvivorsPath: cfg.SurvivorsPath(),
	})

	if wikiSvc != nil {
		s.NewRetrieval = func(filterByKeywords bool) driving.RetrievalPipeline {
			return services.NewRetrievalOrchestrator(wikiSvc, extractor, services.RetrievalConfig{
				SpaceKey:         cfg.Confluence.SpaceKey,
				FilterByKeywords: filterByKeywords,
				ReferencePath:    cfg.Pipeline.ReferencePath,
				ListLimit:        cfg.Pipeline.PageLimit,
			})
		}
	}

	if embedder != nil {
		s.Ingestor = services.NewIngestPipeline(embedder, store,
			chunker.New(
				chunker.WithChunkSize(cfg.Pipeline.ChunkSize),
				chunker.WithOverlap(cfg.Pipeline.ChunkOverlap),
			),
			services.IngestConfig{})
	}

	return s
}
