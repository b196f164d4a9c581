// Package query turns tracker search links and recipes into the query a run
// sends to the issue source.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/opensdd/relnotes/core"
)

// Kind tells how Descriptor.Value is interpreted by the tracker.
type Kind int

const (
	KindJQL Kind = iota + 1
	KindSavedFilter
)

func (k Kind) String() string {
	switch k {
	case KindJQL:
		return "jql"
	case KindSavedFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// Descriptor identifies the tickets of one run.
type Descriptor struct {
	Kind  Kind
	Value string
	// Warning is set when the source carried more than one usable query and
	// one of them was ignored.
	Warning string
}

// JQL returns the search expression for the tracker's search endpoint.
func (d Descriptor) JQL() string {
	if d.Kind == KindSavedFilter {
		return "filter=" + d.Value
	}
	return d.Value
}

// Resolve extracts the query from a tracker search URL. The jql parameter
// wins over filter. Parameters with a blank value count as absent.
func Resolve(rawURL string) (Descriptor, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", core.ErrInvalidQueryURL, err)
	}
	params := u.Query()
	jql := strings.TrimSpace(params.Get("jql"))
	filter := strings.TrimSpace(params.Get("filter"))

	switch {
	case jql != "" && filter != "":
		return Descriptor{
			Kind:    KindJQL,
			Value:   jql,
			Warning: fmt.Sprintf("url has both jql and filter parameters, using jql and ignoring filter=%s", filter),
		}, nil
	case jql != "":
		return Descriptor{Kind: KindJQL, Value: jql}, nil
	case filter != "":
		return Descriptor{Kind: KindSavedFilter, Value: filter}, nil
	}

	if params.Has("jql") || params.Has("filter") {
		return Descriptor{}, fmt.Errorf("%w: jql or filter parameter is empty", core.ErrInvalidQueryURL)
	}
	return Descriptor{}, fmt.Errorf("%w: expected a jql or filter parameter", core.ErrInvalidQueryURL)
}
