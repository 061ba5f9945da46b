package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/albumsearch/ai"
)

const canonicalizeResponseSchema = `{
  "type": "object",
  "properties": {
    "normalized_query": {"type": "string"},
    "subject": {"type": "string", "enum": [%s]},
    "plane": {"type": "string", "enum": [%s]},
    "keywords": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["normalized_query"],
  "additionalProperties": false
}`

const canonicalizePromptTemplate = `You help normalize teacher queries for a Montessori album retrieval system.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
or commentary. Start your response directly with the opening brace { and end with the closing brace }.

%s

Rules:
- normalized_query restates the observation in plain album vocabulary. Keep it short.
- Allowed subjects: %s.
- Allowed planes: %s.
- If unsure about subject or plane, omit the field.
- keywords are at most five single words or short phrases that an album passage on this topic would contain.

Example:
Input: {"q":"kid keeps mixing up b and d","subject_hint":null,"plane_hint":"0-6"}
Output:
{"normalized_query":"child reverses letters b and d","subject":"Language","plane":"0-6","keywords":["sandpaper letters","letter reversal"]}`

const rerankPrompt = `Re-rank the following candidate excerpts by relevance to the query.

Output ONLY valid JSON of the form {"order": ["<id>", ...]} listing candidate ids in best-to-worst order.
Use only ids that appear in the input. No commentary.`

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// buildCanonicalizePrompt creates the system prompt with the allowed subjects
// and planes embedded.
func buildCanonicalizePrompt() string {
	schema := fmt.Sprintf(canonicalizeResponseSchema, quoteAll(ai.Subjects), quoteAll(ai.Planes))
	return fmt.Sprintf(canonicalizePromptTemplate,
		schema,
		strings.Join(ai.Subjects, ", "),
		strings.Join(ai.Planes, ", "))
}
