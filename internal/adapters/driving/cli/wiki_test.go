package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWikiCmd_WritesDigest(t *testing.T) {
	setupTestServices(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"wiki"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Retrieved 1 of 1 pages")
	assert.Contains(t, buf.String(), "Wiki digest written to")

	data, err := os.ReadFile(appConfig.WikiPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Wiki Digest: ENG")
}

func TestWikiCmd_NoFilterFlagDisablesFiltering(t *testing.T) {
	_, retrieval, _, _ := setupTestServices(t)
	appConfig.Pipeline.FilterByKeywords = true

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"wiki", "--no-filter"})
	t.Cleanup(func() { wikiNoFilter = false })

	require.NoError(t, rootCmd.Execute())
	require.NotNil(t, retrieval.filterRequested)
	assert.False(t, *retrieval.filterRequested)
}

func TestWikiCmd_FilterFollowsConfig(t *testing.T) {
	_, retrieval, _, _ := setupTestServices(t)
	appConfig.Pipeline.FilterByKeywords = true

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"wiki"})

	require.NoError(t, rootCmd.Execute())
	require.NotNil(t, retrieval.filterRequested)
	assert.True(t, *retrieval.filterRequested)
}

func TestWikiCmd_RetrievalError(t *testing.T) {
	_, retrieval, _, _ := setupTestServices(t)
	retrieval.result = nil
	retrieval.err = errBoom

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"wiki"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval failed")
}
