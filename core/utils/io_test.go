package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCommand_Empty(t *testing.T) {
	t.Parallel()
	_, err := ExecuteCommand(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command cannot be empty")
}

func TestResolveSecret_FromEnv(t *testing.T) {
	t.Setenv("RELNOTES_TEST_TOKEN", " from-env ")
	secret, err := ResolveSecret(context.Background(), "RELNOTES_TEST_TOKEN", "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", secret)
}

func TestResolveSecret_NothingConfigured(t *testing.T) {
	t.Setenv("RELNOTES_TEST_TOKEN", "")
	secret, err := ResolveSecret(context.Background(), "RELNOTES_TEST_TOKEN", "")
	require.NoError(t, err)
	assert.Empty(t, secret)
}
