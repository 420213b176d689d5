package judge_test

import (
	"testing"

	"github.com/c360studio/vizjudge/judge"
	"github.com/stretchr/testify/assert"
)

func TestParseVerdict_WellFormed(t *testing.T) {
	v := judge.ParseVerdict(`{"status":"PASS","certainty":0.92,"reasoning":"box moved right"}`)

	assert.Equal(t, judge.StatusPass, v.Status)
	assert.Equal(t, 0.92, v.Certainty)
	assert.Equal(t, "box moved right", v.Reasoning)
}

func TestParseVerdict_Idempotent(t *testing.T) {
	raw := `{"status":"FAIL","certainty":0.4,"reasoning":"no visible change"}`

	first := judge.ParseVerdict(raw)
	second := judge.ParseVerdict(raw)

	assert.Equal(t, first, second)
}

func TestParseVerdict_NotJSON(t *testing.T) {
	v := judge.ParseVerdict("not json")

	assert.Equal(t, judge.StatusFail, v.Status)
	assert.Equal(t, 0.0, v.Certainty)
	assert.Contains(t, v.Reasoning, "parse")
	assert.Zero(t, v.Usage)
}

func TestParseVerdict_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"status\":\"PASS\",\"certainty\":0.9,\"reasoning\":\"moved as expected\"}\n```"

	v := judge.ParseVerdict(raw)

	assert.Equal(t, judge.StatusPass, v.Status)
	assert.Equal(t, 0.9, v.Certainty)
}

func TestParseVerdict_TrailingComma(t *testing.T) {
	v := judge.ParseVerdict(`{"status":"PASS","certainty":0.9,"reasoning":"ok",}`)

	assert.Equal(t, judge.StatusPass, v.Status)
}

func TestParseVerdict_Validation(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantReason string
	}{
		{
			name:       "missing status",
			raw:        `{"certainty":0.9,"reasoning":"ok"}`,
			wantReason: "status",
		},
		{
			name:       "invalid status enumerator",
			raw:        `{"status":"MAYBE","certainty":0.9,"reasoning":"ok"}`,
			wantReason: "MAYBE",
		},
		{
			name:       "lowercase status rejected",
			raw:        `{"status":"pass","certainty":0.9,"reasoning":"ok"}`,
			wantReason: "pass",
		},
		{
			name:       "missing certainty",
			raw:        `{"status":"PASS","reasoning":"ok"}`,
			wantReason: "certainty",
		},
		{
			name:       "certainty not numeric",
			raw:        `{"status":"PASS","certainty":"high","reasoning":"ok"}`,
			wantReason: "parse",
		},
		{
			name:       "certainty above range",
			raw:        `{"status":"PASS","certainty":1.5,"reasoning":"ok"}`,
			wantReason: "outside [0.0, 1.0]",
		},
		{
			name:       "certainty below range",
			raw:        `{"status":"PASS","certainty":-0.1,"reasoning":"ok"}`,
			wantReason: "outside [0.0, 1.0]",
		},
		{
			name:       "missing reasoning",
			raw:        `{"status":"PASS","certainty":0.9}`,
			wantReason: "reasoning",
		},
		{
			name:       "empty reasoning",
			raw:        `{"status":"PASS","certainty":0.9,"reasoning":"  "}`,
			wantReason: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := judge.ParseVerdict(tt.raw)

			// Every invalid payload becomes a synthetic failure, never a
			// partially-valid verdict.
			assert.Equal(t, judge.StatusFail, v.Status)
			assert.Equal(t, 0.0, v.Certainty)
			assert.Contains(t, v.Reasoning, tt.wantReason)
			assert.Zero(t, v.Usage)
		})
	}
}

func TestParseVerdict_BoundaryCertainty(t *testing.T) {
	v := judge.ParseVerdict(`{"status":"PASS","certainty":0.0,"reasoning":"unsure"}`)
	assert.Equal(t, judge.StatusPass, v.Status)
	assert.Equal(t, 0.0, v.Certainty)

	v = judge.ParseVerdict(`{"status":"FAIL","certainty":1.0,"reasoning":"definitely broken"}`)
	assert.Equal(t, judge.StatusFail, v.Status)
	assert.Equal(t, 1.0, v.Certainty)
}

func TestSyntheticFailure(t *testing.T) {
	v := judge.SyntheticFailure("timeout contacting judge")

	assert.Equal(t, judge.StatusFail, v.Status)
	assert.Equal(t, 0.0, v.Certainty)
	assert.Equal(t, "timeout contacting judge", v.Reasoning)
	assert.Zero(t, v.Usage)
}
