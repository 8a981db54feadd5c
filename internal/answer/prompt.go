package answer

import (
	"strings"

	"github.com/gurukul-labs/gurukul/internal/models"
)

// maxSnippetLen caps how much of a chunk's text is embedded in the prompt.
const maxSnippetLen = 1000

// BuildPrompt renders the grounded prompt for a question and its
// retrieved chunks. Chunk ids are shown verbatim so the model can cite
// them; the instructions forbid answering outside the provided context.
func BuildPrompt(question string, chunks []*models.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString("You are a school teacher assistant.\n")
	sb.WriteString("Use ONLY the context chunks below to answer.\n")
	sb.WriteString("DO NOT answer from memory.\n")
	sb.WriteString("If the context does not contain the answer, say: \"" + Refusal + "\"\n")
	sb.WriteString("Cite the chunk IDs you use, exactly as shown.\n\n")
	sb.WriteString("Context:\n")
	for _, c := range chunks {
		sb.WriteString("[")
		sb.WriteString(c.ID)
		sb.WriteString("]\n")
		sb.WriteString(snippet(c.Text))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:\n")
	return sb.String()
}

func snippet(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if len(text) > maxSnippetLen {
		return text[:maxSnippetLen] + "..."
	}
	return text
}

// ExtractCitations returns the retrieved ids that appear in the model's
// text, in retrieved order, deduplicated. Ids the model invents are not in
// the candidate list and therefore can never be returned.
func ExtractCitations(text string, retrievedIDs []string) []string {
	seen := make(map[string]bool, len(retrievedIDs))
	var cited []string
	for _, id := range retrievedIDs {
		if seen[id] {
			continue
		}
		if strings.Contains(text, id) {
			seen[id] = true
			cited = append(cited, id)
		}
	}
	return cited
}
