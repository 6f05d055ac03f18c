package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-labs/kbpull/internal/core/domain"
)

func TestIssueCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"issue"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIssueCmd_WritesDigest(t *testing.T) {
	tickets, _, _, _ := setupTestServices(t)
	tickets.issue = &domain.Issue{
		Key:     "ABC-123",
		Summary: "Add login API",
		Type:    "Story",
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"issue", "ABC-123"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Issue digest written to")

	data, err := os.ReadFile(appConfig.IssuePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "# JIRA Issue: ABC-123")
	assert.Contains(t, string(data), "Add login API")
}

func TestIssueCmd_FetchError(t *testing.T) {
	tickets, _, _, _ := setupTestServices(t)
	tickets.issue = nil
	tickets.err = errBoom

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"issue", "ABC-123"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch issue ABC-123")
}

func TestIssueCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	ticketService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"issue", "ABC-123"})

	err := rootCmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ticket service not configured")
}
