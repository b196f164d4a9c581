package utils

import (
	"context"
	"testing"

	"github.com/opensdd/relnotes/core/query"
	"github.com/opensdd/relnotes/core/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJiraPing_Integration(t *testing.T) {
	env := testutil.RequireIntegEnv(t, "RELNOTES_TEST_JIRA_URL", "RELNOTES_TEST_JIRA_TOKEN")

	c := &JiraClient{BaseURL: env["RELNOTES_TEST_JIRA_URL"], Token: env["RELNOTES_TEST_JIRA_TOKEN"]}
	require.NoError(t, c.Ping(context.Background()))
}

func TestJiraFetchIssues_Integration(t *testing.T) {
	env := testutil.RequireIntegEnv(t, "RELNOTES_TEST_JIRA_URL", "RELNOTES_TEST_JIRA_TOKEN", "RELNOTES_TEST_JIRA_JQL")

	c := &JiraClient{
		BaseURL:   env["RELNOTES_TEST_JIRA_URL"],
		Token:     env["RELNOTES_TEST_JIRA_TOKEN"],
		NoteField: testutil.IntegEnv("RELNOTES_TEST_JIRA_NOTE_FIELD"),
	}
	tickets, err := c.FetchIssues(context.Background(), query.Descriptor{Kind: query.KindJQL, Value: env["RELNOTES_TEST_JIRA_JQL"]})
	require.NoError(t, err)
	require.NotEmpty(t, tickets)
	for _, tk := range tickets {
		assert.NotEmpty(t, tk.Key)
		assert.Contains(t, tk.URL, "/browse/"+tk.Key)
	}

	_, err = c.FetchRemoteLinks(context.Background(), tickets[0].Key)
	require.NoError(t, err)
}

func TestConfluenceGet_Integration(t *testing.T) {
	env := testutil.RequireIntegEnv(t, "RELNOTES_TEST_CONFLUENCE_URL", "RELNOTES_TEST_CONFLUENCE_TOKEN", "RELNOTES_TEST_CONFLUENCE_PAGE")

	c := &ConfluenceClient{BaseURL: env["RELNOTES_TEST_CONFLUENCE_URL"], Token: env["RELNOTES_TEST_CONFLUENCE_TOKEN"]}
	doc, err := c.Get(context.Background(), env["RELNOTES_TEST_CONFLUENCE_PAGE"])
	require.NoError(t, err)
	assert.Positive(t, doc.Version)
	assert.NotEmpty(t, doc.Title)
}
