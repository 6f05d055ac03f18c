package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-labs/kbpull/internal/core/ports/driven"
)

func TestSearchCmd_PrintsResults(t *testing.T) {
	_, _, _, store := setupTestServices(t)
	store.hits = []driven.VectorHit{
		{
			ID:    "hit-1",
			Score: 0.93,
			Payload: map[string]any{
				"title":   "Deployment Guide",
				"url":     "https://wiki.example.com/42",
				"content": "Use the pipeline to deploy.",
			},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "how do I deploy"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Deployment Guide")
	assert.Contains(t, buf.String(), "0.93")
	assert.Contains(t, buf.String(), "Use the pipeline to deploy.")
	assert.Equal(t, 10, store.lastLimit)
	assert.Nil(t, store.lastFilter)
}

func TestSearchCmd_SourceFlagFilters(t *testing.T) {
	_, _, _, store := setupTestServices(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--source", "confluence", "query"})
	t.Cleanup(func() { searchSource = "" })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, map[string]string{"source": "confluence"}, store.lastFilter)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestSearchCmd_LimitFlag(t *testing.T) {
	_, _, _, store := setupTestServices(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "-n", "5", "query"})
	t.Cleanup(func() { searchLimit = 10 })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 5, store.lastLimit)
}

func TestSearchCmd_FlagsMockedHits(t *testing.T) {
	_, _, _, store := setupTestServices(t)
	store.hits = []driven.VectorHit{
		{ID: "hit-1", Score: 0.5, Payload: map[string]any{"embedding_mocked": true}},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "query"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "(placeholder embedding)")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	embeddingService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "query"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service not configured")
}
