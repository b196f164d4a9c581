package query

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opensdd/osdd-api/clients/go/osdd/recipes"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"
	"gopkg.in/yaml.v3"
)

// FromRecipe builds a JQL descriptor from a Jira issues recipe: its projects
// and created/updated date windows.
func FromRecipe(src *recipes.JiraIssuesSource) (Descriptor, error) {
	if src == nil {
		return Descriptor{}, fmt.Errorf("jira issues source cannot be nil")
	}
	return Descriptor{Kind: KindJQL, Value: buildJQL(src.GetProjects(), src.GetFilter())}, nil
}

// LoadRecipe reads a JiraIssuesSource from a .yaml/.yml or .json file.
// YAML is converted to JSON first and both are decoded with protojson.
func LoadRecipe(path string, strict bool) (*recipes.JiraIssuesSource, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %s: %w", path, err)
	}

	b := content
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var y any
		if err := yaml.Unmarshal(content, &y); err != nil {
			return nil, fmt.Errorf("failed to parse YAML recipe: %w", err)
		}
		b, err = json.Marshal(y)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
		}
	}

	src := &recipes.JiraIssuesSource{}
	um := protojson.UnmarshalOptions{DiscardUnknown: !strict}
	if err := um.Unmarshal(b, src); err != nil {
		return nil, fmt.Errorf("failed to decode recipe %s: %w", path, err)
	}
	return src, nil
}

// buildJQL constructs a JQL query string from projects and filters.
func buildJQL(projects []string, filter *recipes.IssuesFilter) string {
	var clauses []string

	if len(projects) > 0 {
		quoted := make([]string, len(projects))
		for i, p := range projects {
			quoted[i] = `"` + p + `"`
		}
		clauses = append(clauses, fmt.Sprintf("project IN (%s)", strings.Join(quoted, ", ")))
	}

	if filter != nil {
		if filter.HasCreatedAtFilter() {
			cf := filter.GetCreatedAtFilter()
			if cf.HasFrom() {
				clauses = append(clauses, fmt.Sprintf("created >= %q", formatTimestampForJQL(cf.GetFrom())))
			}
			if cf.HasTo() {
				clauses = append(clauses, fmt.Sprintf("created <= %q", formatTimestampForJQL(cf.GetTo())))
			}
		}
		if filter.HasUpdatedAtFilter() {
			uf := filter.GetUpdatedAtFilter()
			if uf.HasFrom() {
				clauses = append(clauses, fmt.Sprintf("updated >= %q", formatTimestampForJQL(uf.GetFrom())))
			}
			if uf.HasTo() {
				clauses = append(clauses, fmt.Sprintf("updated <= %q", formatTimestampForJQL(uf.GetTo())))
			}
		}
	}

	if len(clauses) == 0 {
		// An unbounded release query is never what anyone wants.
		return "updated >= -30d ORDER BY key ASC"
	}
	return strings.Join(clauses, " AND ") + " ORDER BY key ASC"
}

func formatTimestampForJQL(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return ""
	}
	return ts.AsTime().UTC().Format("2006-01-02")
}
