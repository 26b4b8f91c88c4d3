package extraction

import (
	"fmt"
	"strings"

	"github.com/poiesic/hearsay/core"
)

const extractionPromptTemplate = `Extract the intent and the named entities from the transcribed voice message below and return them as JSON.

Output ONLY a single JSON object. Do not include any preamble, explanation, greeting, or acknowledgment.
Start your response directly with the opening brace { and end with the closing brace }.
Use EXACTLY this shape:

{"intent": "<one of the intents>", "entities": [{"text": "<span from the message>", "label": "<entity type>"}]}

Rules:
- intent must be exactly one of: %s.
- If unsure, use OTHER.
- entities lists people, places, organizations, devices, dates, times and reference numbers mentioned in the message, in the order they appear.
- label is a short uppercase entity type such as PERSON, LOCATION, ORGANIZATION, DEVICE, DATE, TIME or NUMBER.
- If there are no entities, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Message:
"""
%s
"""`

// BuildPrompt renders the extraction instruction for text.
func BuildPrompt(text string) string {
	labels := make([]string, len(core.Intents))
	for i, intent := range core.Intents {
		labels[i] = string(intent)
	}
	return fmt.Sprintf(extractionPromptTemplate, strings.Join(labels, ", "), text)
}
