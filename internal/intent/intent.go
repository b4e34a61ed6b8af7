package intent

import (
	"strings"
	"unicode"
)

// Kind is the coarse routing decision for a query.
type Kind string

const (
	KindConverse Kind = "CONVERSE"
	KindNavigate Kind = "NAVIGATE"
)

// Project catalogue filters understood by the presentation layer. An empty
// filter means "show all".
const (
	FilterAll     = ""
	FilterRAG     = "RAG"
	FilterAgents  = "Agents"
	FilterDataEng = "Data Eng"
)

// Intent is the classified purpose of one query.
type Intent struct {
	Kind   Kind
	Filter string
}

// Navigate reports whether the query should be handled locally.
func (i Intent) Navigate() bool {
	return i.Kind == KindNavigate
}

// FilterRule maps any of its keywords to a catalogue filter.
type FilterRule struct {
	Keywords []string
	Filter   string
}

// Verbs, Targets and FilterRules form the rule table used by Classify.
// Verbs and targets match whole words (targets may span two words); filter
// keywords match word prefixes so plurals ("agents") are covered.
var (
	Verbs   = []string{"show", "view", "go", "list", "navigate"}
	Targets = []string{"project", "projects", "work", "works", "case study", "case studies"}

	FilterRules = []FilterRule{
		{Keywords: []string{"rag"}, Filter: FilterRAG},
		{Keywords: []string{"finance", "agent"}, Filter: FilterAgents},
		{Keywords: []string{"iot", "data"}, Filter: FilterDataEng},
	}
)

// Classify maps raw user text to an intent. A query navigates only when it
// carries both an action verb and a target noun; anything else is forwarded
// to the remote agent.
func Classify(text string) Intent {
	words := tokenize(text)
	if !hasVerb(words) || !hasTarget(words) {
		return Intent{Kind: KindConverse}
	}
	return Intent{Kind: KindNavigate, Filter: matchFilter(words)}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasVerb(words []string) bool {
	for _, word := range words {
		for _, verb := range Verbs {
			if word == verb {
				return true
			}
		}
	}
	return false
}

func hasTarget(words []string) bool {
	joined := " " + strings.Join(words, " ") + " "
	for _, target := range Targets {
		if strings.Contains(joined, " "+target+" ") {
			return true
		}
	}
	return false
}

func matchFilter(words []string) string {
	for _, rule := range FilterRules {
		for _, keyword := range rule.Keywords {
			for _, word := range words {
				if strings.HasPrefix(word, keyword) {
					return rule.Filter
				}
			}
		}
	}
	return FilterAll
}
