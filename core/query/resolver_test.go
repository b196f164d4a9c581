package query

import (
	"errors"
	"testing"

	"github.com/opensdd/relnotes/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_JQL(t *testing.T) {
	t.Parallel()
	d, err := Resolve("?jql=X")
	require.NoError(t, err)
	assert.Equal(t, Descriptor{Kind: KindJQL, Value: "X"}, d)
	assert.Equal(t, "X", d.JQL())
}

func TestResolve_SavedFilter(t *testing.T) {
	t.Parallel()
	d, err := Resolve("?filter=7")
	require.NoError(t, err)
	assert.Equal(t, Descriptor{Kind: KindSavedFilter, Value: "7"}, d)
	assert.Equal(t, "filter=7", d.JQL())
}

func TestResolve_BothPrefersJQLWithWarning(t *testing.T) {
	t.Parallel()
	d, err := Resolve("?jql=X&filter=7")
	require.NoError(t, err)
	assert.Equal(t, KindJQL, d.Kind)
	assert.Equal(t, "X", d.Value)
	assert.Contains(t, d.Warning, "filter=7")
}

func TestResolve_NoQueryParameter(t *testing.T) {
	t.Parallel()
	_, err := Resolve("?other=1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidQueryURL))
}

func TestResolve_EmptyValuesAreAbsent(t *testing.T) {
	t.Parallel()
	_, err := Resolve("https://jira.example.com/issues/?jql=")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidQueryURL))

	_, err = Resolve("?jql=%20%20&filter=")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidQueryURL))

	// A blank jql does not shadow a usable filter.
	d, err := Resolve("?jql=&filter=10400")
	require.NoError(t, err)
	assert.Equal(t, Descriptor{Kind: KindSavedFilter, Value: "10400"}, d)
}

func TestResolve_FullTrackerURL(t *testing.T) {
	t.Parallel()
	d, err := Resolve("https://jira.example.com/issues/?jql=project%20%3D%20RN%20AND%20fixVersion%20%3D%20%222.4%22")
	require.NoError(t, err)
	assert.Equal(t, KindJQL, d.Kind)
	assert.Equal(t, `project = RN AND fixVersion = "2.4"`, d.Value)
	assert.Empty(t, d.Warning)
}

func TestResolve_Unparseable(t *testing.T) {
	t.Parallel()
	_, err := Resolve("http://[::1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidQueryURL))
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "jql", KindJQL.String())
	assert.Equal(t, "filter", KindSavedFilter.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
