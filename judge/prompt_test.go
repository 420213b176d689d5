package judge_test

import (
	"testing"

	"github.com/c360studio/vizjudge/evidence"
	"github.com/c360studio/vizjudge/judge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contract() judge.TestContext {
	return judge.TestContext{
		Subject:       "the red crate",
		Action:        "pressed the D key",
		Expectation:   "the crate changes color to blue",
		Warnings:      []string{"lighting flickers occasionally"},
		PassCondition: "the crate is clearly blue in the final state",
		Notes:         "material swap landed in the last commit",
	}
}

func TestBuildRequest_EmbedsContract(t *testing.T) {
	tc := contract()
	req := judge.BuildRequest(evidence.FramePair([]byte("a"), []byte("b")), tc, "", judge.IntentAuto)

	assert.Contains(t, req.Instructions, tc.Subject)
	assert.Contains(t, req.Instructions, tc.Action)
	assert.Contains(t, req.Instructions, tc.Expectation)
	assert.Contains(t, req.Instructions, tc.Warnings[0])
	assert.Contains(t, req.Instructions, tc.PassCondition)
	assert.Contains(t, req.Instructions, tc.Notes)
	assert.Equal(t, evidence.KindFramePair, req.Evidence.Kind())
}

func TestBuildRequest_StrictOutputDirective(t *testing.T) {
	req := judge.BuildRequest(evidence.SingleImage([]byte("a")), contract(), "", judge.IntentAuto)

	assert.Contains(t, req.Instructions, `"status"`)
	assert.Contains(t, req.Instructions, `"certainty"`)
	assert.Contains(t, req.Instructions, `"reasoning"`)
	assert.Contains(t, req.Instructions, "single JSON object")
}

func TestBuildRequest_NoDiffPlaceholder(t *testing.T) {
	req := judge.BuildRequest(evidence.SingleImage([]byte("a")), contract(), "", judge.IntentAuto)
	assert.Contains(t, req.Instructions, "No code changes provided.")

	req = judge.BuildRequest(evidence.SingleImage([]byte("a")), contract(), "   \n", judge.IntentAuto)
	assert.Contains(t, req.Instructions, "No code changes provided.")
}

func TestBuildRequest_EmbedsDiffLiterally(t *testing.T) {
	diffText := "some opaque diff text the provider gave us"
	req := judge.BuildRequest(evidence.SingleImage([]byte("a")), contract(), diffText, judge.IntentAuto)

	assert.Contains(t, req.Instructions, diffText)
	assert.NotContains(t, req.Instructions, "No code changes provided.")
}

func TestBuildRequest_MovementDetection(t *testing.T) {
	tests := []struct {
		name         string
		expectation  string
		intent       judge.Intent
		wantMovement bool
	}{
		{
			name:         "moves triggers movement",
			expectation:  "the crate moves to the right",
			intent:       judge.IntentAuto,
			wantMovement: true,
		},
		{
			name:         "shifted triggers movement",
			expectation:  "the crate has shifted left by two units",
			intent:       judge.IntentAuto,
			wantMovement: true,
		},
		{
			name:         "slides triggers movement",
			expectation:  "the panel slides open",
			intent:       judge.IntentAuto,
			wantMovement: true,
		},
		{
			name:         "appearance wording stays appearance",
			expectation:  "the crate turns blue",
			intent:       judge.IntentAuto,
			wantMovement: false,
		},
		{
			name:         "movement word inside larger word does not trigger",
			expectation:  "the removable panel turns blue",
			intent:       judge.IntentAuto,
			wantMovement: false,
		},
		{
			name:         "explicit movement overrides appearance wording",
			expectation:  "the crate turns blue",
			intent:       judge.IntentMovement,
			wantMovement: true,
		},
		{
			name:         "explicit appearance overrides movement wording",
			expectation:  "the crate moves right",
			intent:       judge.IntentAppearance,
			wantMovement: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := contract()
			tc.Expectation = tt.expectation

			req := judge.BuildRequest(evidence.FramePair([]byte("a"), []byte("b")), tc, "", tt.intent)

			if tt.wantMovement {
				assert.Contains(t, req.Instructions, "positional change")
			} else {
				assert.Contains(t, req.Instructions, "position is stable")
			}
		})
	}
}

func TestBuildRequest_SequenceOrdering(t *testing.T) {
	ev, err := evidence.FrameSequence([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	require.NoError(t, err)

	req := judge.BuildRequest(ev, contract(), "", judge.IntentAuto)

	assert.Contains(t, req.Instructions, "3 frames")
	assert.Contains(t, req.Instructions, "initial state")
	assert.Contains(t, req.Instructions, "final state")
}

func TestBuildRequest_CameraWarningAddsIgnoreInstruction(t *testing.T) {
	ev, err := evidence.FrameSequence([][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)

	tc := contract()
	req := judge.BuildRequest(ev, tc, "", judge.IntentAuto)
	assert.NotContains(t, req.Instructions, "camera perspective between frames")

	tc.Warnings = append(tc.Warnings, "the camera perspective shifts between frames")
	req = judge.BuildRequest(ev, tc, "", judge.IntentAuto)
	assert.Contains(t, req.Instructions, "camera perspective between frames")
}

func TestBuildRequest_VideoPreamble(t *testing.T) {
	ev, err := evidence.Video([]byte("clip"), "webm", 24)
	require.NoError(t, err)

	req := judge.BuildRequest(ev, contract(), "", judge.IntentAuto)

	assert.Contains(t, req.Instructions, "webm")
	assert.Contains(t, req.Instructions, "24 fps")
}

// Empty contract fields pass through literally; the builder never fails.
func TestBuildRequest_EmptyContract(t *testing.T) {
	req := judge.BuildRequest(evidence.SingleImage([]byte("a")), judge.TestContext{}, "", judge.IntentAuto)

	assert.NotEmpty(t, req.Instructions)
	assert.Contains(t, req.Instructions, "Subject:")
}
