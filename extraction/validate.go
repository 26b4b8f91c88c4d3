package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/hearsay/core"
)

// Classify runs the parse stages of one attempt over a raw model reply:
// a direct JSON parse, then a parse of the scanned {...} span, then a parse
// of the repaired span. A direct parse that yields something other than an
// object still falls through to the scan, so a reply wrapped in an array is
// not wasted. A parsed value is checked against the extraction schema.
func Classify(raw string) (core.Extraction, Outcome) {
	value, ok := parse(raw)
	if !ok {
		return core.Extraction{}, OutcomeParseFailed
	}
	extraction, err := toExtraction(value)
	if err != nil {
		return core.Extraction{}, OutcomeInvalidShape
	}
	return extraction, OutcomeValid
}

func parse(raw string) (any, bool) {
	var direct any
	directOK := json.Unmarshal([]byte(strings.TrimSpace(raw)), &direct) == nil
	if _, isObject := direct.(map[string]any); directOK && isObject {
		return direct, true
	}

	if candidate, found := ScanObject(raw); found {
		var value any
		if err := json.Unmarshal([]byte(candidate), &value); err == nil {
			return value, true
		}
		if err := json.Unmarshal([]byte(repairJSON(candidate)), &value); err == nil {
			return value, true
		}
	}
	if directOK {
		return direct, true
	}
	return nil, false
}

// toExtraction validates a decoded JSON value against the extraction schema:
// an object whose "intent" is a string naming an offered label and whose
// optional "entities" is a list of {text, label} string pairs. Unknown keys
// are ignored.
func toExtraction(value any) (core.Extraction, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return core.Extraction{}, fmt.Errorf("%w: top level is %T, not an object", ErrInvalidShape, value)
	}

	rawIntent, ok := obj["intent"].(string)
	if !ok {
		return core.Extraction{}, fmt.Errorf("%w: intent missing or not a string", ErrInvalidShape)
	}
	intent, ok := ParseOfferedIntent(rawIntent)
	if !ok {
		return core.Extraction{}, fmt.Errorf("%w: unknown intent %q", ErrInvalidShape, rawIntent)
	}

	entities := []core.Entity{}
	switch list := obj["entities"].(type) {
	case nil:
	case []any:
		for i, item := range list {
			entity, ok := item.(map[string]any)
			if !ok {
				return core.Extraction{}, fmt.Errorf("%w: entity %d is not an object", ErrInvalidShape, i)
			}
			text, textOK := entity["text"].(string)
			label, labelOK := entity["label"].(string)
			if !textOK || !labelOK {
				return core.Extraction{}, fmt.Errorf("%w: entity %d needs string text and label", ErrInvalidShape, i)
			}
			entities = append(entities, core.Entity{Text: text, Label: label})
		}
	default:
		return core.Extraction{}, fmt.Errorf("%w: entities is %T, not a list", ErrInvalidShape, list)
	}

	return core.Extraction{Intent: intent, Entities: entities}, nil
}

// ParseOfferedIntent is core.ParseIntent restricted to the labels a model may
// choose. The UNKNOWN sentinel is reserved for the fallback.
func ParseOfferedIntent(s string) (core.Intent, bool) {
	intent, ok := core.ParseIntent(s)
	if !ok || intent == core.IntentUnknown {
		return "", false
	}
	return intent, true
}
