package intent

import "strings"

// Tool names the backend protocol a conversational query is expected to hit.
// It only affects how the turn is traced in the console log.
type Tool string

const (
	ToolRAG       Tool = "RAG"
	ToolJDMatcher Tool = "JD_MATCHER"
)

var jdKeywords = []string{"resume", "job", "hire", "jd"}

// SelectTool guesses which backend tool will answer the query.
func SelectTool(text string) Tool {
	lower := strings.ToLower(text)
	for _, keyword := range jdKeywords {
		if strings.Contains(lower, keyword) {
			return ToolJDMatcher
		}
	}
	return ToolRAG
}
