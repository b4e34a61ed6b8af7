package portfolio

import (
	"testing"
)

func ids(projects []Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func TestLoadEmbeddedCatalogue(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Projects) != 15 {
		t.Fatalf("expected 15 projects, got %d", len(c.Projects))
	}
	if len(c.Experience) == 0 || len(c.Skills) == 0 {
		t.Fatalf("expected experience and skills, got %d/%d", len(c.Experience), len(c.Skills))
	}
	first := c.Projects[0]
	if first.ID != "portfolio-agent" || first.Impact == "" || len(first.TechStack) == 0 {
		t.Fatalf("unexpected first project %+v", first)
	}
}

func TestFilterMatchesTagsSummaryAndTitle(t *testing.T) {
	t.Parallel()

	projects := loadProjects(t)
	cases := []struct {
		term string
		want []string
	}{
		{"RAG", []string{"portfolio-agent"}},
		{"Agents", []string{"knowledge-bot"}},
		{"agent", []string{"portfolio-agent", "knowledge-bot"}},
		{"pinecone", []string{"portfolio-agent", "genai-content-hub", "knowledge-bot"}},
		{"Data Eng", []string{}},
	}
	for _, tc := range cases {
		got := ids(Filter(projects, tc.term))
		if len(got) != len(tc.want) {
			t.Fatalf("filter %q: expected %v, got %v", tc.term, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("filter %q: expected %v, got %v", tc.term, tc.want, got)
			}
		}
	}
}

func TestFilterEmptyReturnsAll(t *testing.T) {
	t.Parallel()

	projects := loadProjects(t)
	if got := Filter(projects, "  "); len(got) != len(projects) {
		t.Fatalf("expected all %d projects, got %d", len(projects), len(got))
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"projects":[{"id":"a"},{"id":"a"}]}`))
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := Parse([]byte(`{"projects":[{"title":"no id"}]}`)); err == nil {
		t.Fatalf("expected missing id error")
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestToggleCategory(t *testing.T) {
	t.Parallel()

	if got := ToggleCategory("", "RAG"); got != "RAG" {
		t.Fatalf("expected RAG, got %q", got)
	}
	if got := ToggleCategory("RAG", "RAG"); got != "" {
		t.Fatalf("expected cleared filter, got %q", got)
	}
	if got := ToggleCategory("RAG", "Agents"); got != "Agents" {
		t.Fatalf("expected Agents, got %q", got)
	}
}

func loadProjects(t *testing.T) []Project {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	return c.Projects
}
