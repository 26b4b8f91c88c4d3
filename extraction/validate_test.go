package extraction

import (
	"testing"

	"github.com/poiesic/hearsay/core"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantOutcome Outcome
		wantIntent  core.Intent
		wantEnts    []core.Entity
	}{
		{
			name:        "clean json",
			raw:         `{"intent":"SCHEDULE_MAINTENANCE","entities":[{"text":"boiler","label":"DEVICE"}]}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentScheduleMaintenance,
			wantEnts:    []core.Entity{{Text: "boiler", Label: "DEVICE"}},
		},
		{
			name:        "prose wrapped",
			raw:         `Sure, here you go: {"intent":"REQUEST_SUPPORT","entities":[]}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentRequestSupport,
			wantEnts:    []core.Entity{},
		},
		{
			name:        "misspelled label",
			raw:         `{"intent":"SCHEDULE_MAINTAINCE","entities":[]}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentScheduleMaintenance,
			wantEnts:    []core.Entity{},
		},
		{
			name:        "entities absent",
			raw:         `{"intent":"other"}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentOther,
			wantEnts:    []core.Entity{},
		},
		{
			name:        "entities null",
			raw:         `{"intent":"GENERAL_INQUIRY","entities":null}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentGeneralInquiry,
			wantEnts:    []core.Entity{},
		},
		{
			name:        "extra keys ignored",
			raw:         `{"intent":"OTHER","entities":[{"text":"x","label":"Y","score":0.9}],"confidence":1}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentOther,
			wantEnts:    []core.Entity{{Text: "x", Label: "Y"}},
		},
		{
			name:        "repaired key quotes",
			raw:         `Result: {intent":"OTHER", entities":[],}`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentOther,
			wantEnts:    []core.Entity{},
		},
		{
			name:        "object wrapped in array",
			raw:         `[{"intent":"OTHER","entities":[]}]`,
			wantOutcome: OutcomeValid,
			wantIntent:  core.IntentOther,
			wantEnts:    []core.Entity{},
		},
		{name: "array of two objects", raw: `[{"intent":"OTHER"},{"intent":"OTHER"}]`, wantOutcome: OutcomeInvalidShape},
		{name: "bare json string", raw: `"OTHER"`, wantOutcome: OutcomeInvalidShape},
		{name: "plain text", raw: "I think they want support.", wantOutcome: OutcomeParseFailed},
		{name: "broken object", raw: `{"intent": OTHER`, wantOutcome: OutcomeParseFailed},
		{name: "not an object", raw: `["OTHER"]`, wantOutcome: OutcomeInvalidShape},
		{name: "missing intent", raw: `{"entities":[]}`, wantOutcome: OutcomeInvalidShape},
		{name: "intent not string", raw: `{"intent":3}`, wantOutcome: OutcomeInvalidShape},
		{name: "unknown label", raw: `{"intent":"COMPLAINT","entities":[]}`, wantOutcome: OutcomeInvalidShape},
		{name: "sentinel not offered", raw: `{"intent":"UNKNOWN","entities":[]}`, wantOutcome: OutcomeInvalidShape},
		{name: "entities not list", raw: `{"intent":"OTHER","entities":"none"}`, wantOutcome: OutcomeInvalidShape},
		{name: "entity not object", raw: `{"intent":"OTHER","entities":["bob"]}`, wantOutcome: OutcomeInvalidShape},
		{name: "entity missing label", raw: `{"intent":"OTHER","entities":[{"text":"bob"}]}`, wantOutcome: OutcomeInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := Classify(tt.raw)
			assert.Equal(t, tt.wantOutcome, outcome, outcome.String())
			if tt.wantOutcome != OutcomeValid {
				return
			}
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.Equal(t, tt.wantEnts, got.Entities)
		})
	}
}

func TestClassifyNoisyEnvelope(t *testing.T) {
	envelopes := []struct{ before, after string }{
		{"", ""},
		{"Here is the JSON:\n", ""},
		{"", "\nLet me know if you need anything else."},
		{"```json\n", "\n```"},
		{"Answer -> ", " <- done"},
	}
	body := `{"intent":"GENERAL_INQUIRY","entities":[{"text":"Friday","label":"DATE"},{"text":"Acme","label":"ORGANIZATION"}]}`

	for _, env := range envelopes {
		got, outcome := Classify(env.before + body + env.after)
		assert.Equal(t, OutcomeValid, outcome)
		assert.Equal(t, core.IntentGeneralInquiry, got.Intent)
		assert.Equal(t, []core.Entity{{Text: "Friday", Label: "DATE"}, {Text: "Acme", Label: "ORGANIZATION"}}, got.Entities)
	}
}
