package links

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAggregator() *Aggregator {
	return &Aggregator{
		AllowList:  AllowList{"projekt.nak.hu", "rt5.nak.hu"},
		BrowseBase: "https://projekt.nak.hu/jira/",
	}
}

func TestAllowList_Allows(t *testing.T) {
	t.Parallel()
	a := AllowList{"projekt.nak.hu", "rt5.nak.hu"}

	assert.True(t, a.Allows("https://projekt.nak.hu/issues/1"))
	assert.True(t, a.Allows("https://sub.projekt.nak.hu/issues/1"))
	assert.True(t, a.Allows("https://RT5.nak.hu:8443/Ticket/Display.html?id=5"))
	assert.False(t, a.Allows("https://evil.com/projekt.nak.hu"))
	assert.False(t, a.Allows("https://evilprojekt.nak.hu/"))
	assert.False(t, a.Allows("not a url"))
	assert.False(t, a.Allows(""))
	assert.False(t, AllowList{}.Allows("https://projekt.nak.hu/"))
}

func TestAggregate_OrderAndSources(t *testing.T) {
	t.Parallel()
	refs := newAggregator().Aggregate(Sources{
		Ticket:      "RN-1",
		IssueLinks:  []IssueLink{{Direction: Outward, Relation: "relates to", Key: "RN-2"}},
		WebLinks:    []WebLink{{URL: "https://rt5.nak.hu/t/10", Title: "RT #10"}},
		RemoteLinks: []WebLink{{URL: "https://projekt.nak.hu/redmine/issues/7"}},
	})

	require.Len(t, refs, 3)
	assert.Equal(t, CrossReference{URL: "https://projekt.nak.hu/jira/browse/RN-2", Title: "RN-2", Source: SourceInternal}, refs[0])
	assert.Equal(t, CrossReference{URL: "https://rt5.nak.hu/t/10", Title: "RT #10", Source: SourceWeb}, refs[1])
	// Missing titles fall back to the url.
	assert.Equal(t, CrossReference{URL: "https://projekt.nak.hu/redmine/issues/7", Title: "https://projekt.nak.hu/redmine/issues/7", Source: SourceRemote}, refs[2])
}

func TestAggregate_DeduplicatesFirstTitleWins(t *testing.T) {
	t.Parallel()
	refs := newAggregator().Aggregate(Sources{
		Ticket:      "RN-1",
		WebLinks:    []WebLink{{URL: "https://rt5.nak.hu/t/10", Title: "first"}},
		RemoteLinks: []WebLink{{URL: "https://rt5.nak.hu/t/10", Title: "second"}},
	})

	require.Len(t, refs, 1)
	assert.Equal(t, "first", refs[0].Title)
	assert.Equal(t, SourceWeb, refs[0].Source)
}

func TestAggregate_FiltersDomains(t *testing.T) {
	t.Parallel()
	refs := newAggregator().Aggregate(Sources{
		Ticket: "RN-1",
		WebLinks: []WebLink{
			{URL: "https://evil.com/x"},
			{URL: "https://sub.projekt.nak.hu/y"},
		},
	})

	require.Len(t, refs, 1)
	assert.Equal(t, "https://sub.projekt.nak.hu/y", refs[0].URL)
}

func TestAggregate_RemoteFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	refs := newAggregator().Aggregate(Sources{
		Ticket:      "RN-1",
		WebLinks:    []WebLink{{URL: "https://rt5.nak.hu/t/1"}},
		RemoteLinks: []WebLink{{URL: "https://rt5.nak.hu/t/2"}},
		RemoteErr:   errors.New("remote links: status 500"),
	})

	require.Len(t, refs, 1)
	assert.Equal(t, "https://rt5.nak.hu/t/1", refs[0].URL)
}

func TestAggregate_InwardLinks(t *testing.T) {
	t.Parallel()
	src := Sources{
		Ticket: "RN-1",
		IssueLinks: []IssueLink{
			{Direction: Inward, Key: "RN-9"},
			{Direction: Outward, Key: "RN-3"},
			{Direction: Outward},
		},
	}

	a := newAggregator()
	refs := a.Aggregate(src)
	require.Len(t, refs, 1)
	assert.Equal(t, "RN-3", refs[0].Title)

	a.IncludeInward = true
	refs = a.Aggregate(src)
	require.Len(t, refs, 2)
	assert.Equal(t, "RN-9", refs[0].Title)
	assert.Equal(t, "RN-3", refs[1].Title)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()
	refs := newAggregator().Aggregate(Sources{Ticket: "RN-1"})
	assert.Empty(t, refs)
	assert.NotNil(t, refs)
}

func TestSource_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "internal", SourceInternal.String())
	assert.Equal(t, "web", SourceWeb.String())
	assert.Equal(t, "remote", SourceRemote.String())
	assert.Equal(t, "unknown", Source(0).String())
}
