// Package portfolio holds the static catalogue the console renders: case
// study projects, the experience log and the skills matrix.
package portfolio

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Preset filters offered by the project catalogue.
var Categories = []string{"RAG", "Agents", "Data Eng", "ML Ops"}

// Project is one case study.
type Project struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Year      string   `json:"year"`
	Category  string   `json:"category"`
	TechStack []string `json:"techStack"`
	Summary   string   `json:"summary"`
	Challenge string   `json:"challenge"`
	Solution  string   `json:"solution"`
	Impact    string   `json:"impact"`
}

// Experience is one role in the career log.
type Experience struct {
	Period   string `json:"period"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Metric   string `json:"metric"`
}

// Skill is one row of the skills matrix.
type Skill struct {
	Category string   `json:"category"`
	Status   string   `json:"status"`
	Score    int      `json:"score"`
	Tools    []string `json:"tools"`
	Details  string   `json:"details"`
}

// Catalogue bundles everything the presentation layer shows.
type Catalogue struct {
	Projects   []Project    `json:"projects"`
	Experience []Experience `json:"experience"`
	Skills     []Skill      `json:"skills"`
}

//go:embed catalogue.json
var catalogueJSON []byte

var (
	loadOnce sync.Once
	loaded   Catalogue
	loadErr  error
)

// Load parses the embedded catalogue once.
func Load() (Catalogue, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(catalogueJSON)
	})
	return loaded, loadErr
}

// Parse decodes catalogue JSON and checks project ids are present and unique.
func Parse(data []byte) (Catalogue, error) {
	var c Catalogue
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalogue{}, fmt.Errorf("decode catalogue: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Projects))
	for i, p := range c.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return Catalogue{}, fmt.Errorf("project %d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return Catalogue{}, fmt.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return c, nil
}

// Filter returns the projects whose tech stack tags, summary or title
// contain term, ignoring case. An empty term returns every project.
func Filter(projects []Project, term string) []Project {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return projects
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.matches(needle) {
			out = append(out, p)
		}
	}
	return out
}

func (p Project) matches(needle string) bool {
	for _, tag := range p.TechStack {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(p.Summary), needle) ||
		strings.Contains(strings.ToLower(p.Title), needle)
}

// ToggleCategory mirrors the preset buttons: picking the active preset again
// clears the filter.
func ToggleCategory(current, category string) string {
	if current == category {
		return ""
	}
	return category
}
