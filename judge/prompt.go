package judge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/vizjudge/evidence"
	"github.com/c360studio/vizjudge/gateway"
)

// Intent tells the context builder whether the expectation is about the
// subject moving or about its appearance. IntentAuto applies a keyword
// heuristic over the expectation text; callers with ambiguous wording should
// pass an explicit intent instead.
type Intent string

const (
	IntentAuto       Intent = "auto"
	IntentMovement   Intent = "movement"
	IntentAppearance Intent = "appearance"
)

// movementPattern matches translation vocabulary on word boundaries. Only
// verbs implying positional change count; appearance verbs never trigger
// movement mode.
var movementPattern = regexp.MustCompile(`(?i)\b(move[sd]?|moving|shift(s|ed|ing)?|slid(e|es|ing)?|translat(e|es|ed|ing)|travel(s|ed|ing)?|drift(s|ed|ing)?|pan(s|ned|ning)?|jump(s|ed|ing)?|glide[sd]?)\b`)

const noDiffPlaceholder = "No code changes provided."

// outputDirective is the strict response-format instruction appended to
// every request. The shape must match the verdict wire contract exactly.
const outputDirective = `Respond with a single JSON object and nothing else. No prose, no markdown fences. The object must have exactly these fields:
{"status": "PASS" or "FAIL", "certainty": <number from 0.0 to 1.0 expressing how certain you are>, "reasoning": "<one or two sentences explaining your judgment>"}`

// BuildRequest assembles the judge request for one scenario attempt: the
// evidence plus an instruction block selected by evidence kind and intent,
// embedding the literal test contract and diff text. It is a pure
// transformation and never fails; empty contract fields are passed through
// literally.
func BuildRequest(ev evidence.Evidence, tc TestContext, diffText string, intent Intent) *gateway.Request {
	var b strings.Builder

	b.WriteString("You are a visual regression judge for an interactive rendered scene. ")
	b.WriteString("Decide whether the captured evidence shows the expected visual change.\n\n")

	writeEvidencePreamble(&b, ev, tc)

	b.WriteString("Test contract:\n")
	fmt.Fprintf(&b, "- Subject: %s\n", tc.Subject)
	fmt.Fprintf(&b, "- Action performed: %s\n", tc.Action)
	fmt.Fprintf(&b, "- Expectation: %s\n", tc.Expectation)
	if len(tc.Warnings) > 0 {
		b.WriteString("- Ignore the following distractors:\n")
		for _, w := range tc.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	fmt.Fprintf(&b, "- Pass condition: %s\n", tc.PassCondition)
	if tc.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", tc.Notes)
	}
	b.WriteString("\n")

	if resolveIntent(intent, tc.Expectation) == IntentMovement {
		b.WriteString("The expectation involves movement. Estimate the positional change of the subject between the evidence states and report the estimated direction and magnitude in your reasoning. ")
		b.WriteString("Judge the movement itself, not rendering differences.\n\n")
	} else {
		b.WriteString("Assume the subject's position is stable. Focus on its appearance: color, shape, texture, visibility. ")
		b.WriteString("Do not report minor positional jitter as a change.\n\n")
	}

	b.WriteString("Code changes under review:\n")
	b.WriteString(renderDiffBlock(diffText))
	b.WriteString("\n\n")

	b.WriteString(outputDirective)

	return &gateway.Request{
		Evidence:     ev,
		Instructions: b.String(),
	}
}

// writeEvidencePreamble explains the evidence shape to the judge.
func writeEvidencePreamble(b *strings.Builder, ev evidence.Evidence, tc TestContext) {
	switch ev.Kind() {
	case evidence.KindSingleImage:
		b.WriteString("You are given a single frame of the scene, captured after the action.\n\n")
	case evidence.KindFramePair:
		b.WriteString("You are given two frames: the first was captured before the action, the second after it. Compare them.\n\n")
	case evidence.KindFrameSequence:
		fmt.Fprintf(b, "You are given %d frames in capture order. The first frame is the initial state, the last frame is the final state, and the frames between them show the progression of the action.\n", ev.FrameCount())
		if warnsAboutCamera(tc.Warnings) {
			b.WriteString("Ignore apparent size and position changes caused purely by camera perspective between frames.\n")
		}
		b.WriteString("\n")
	case evidence.KindVideo:
		fmt.Fprintf(b, "You are given a continuous %s video clip at %d fps spanning the action. Infer the visual change from the clip as a whole.\n\n", ev.Container(), ev.FPS())
	}
}

// resolveIntent applies the movement heuristic when the caller left intent
// on auto.
func resolveIntent(intent Intent, expectation string) Intent {
	if intent == IntentMovement || intent == IntentAppearance {
		return intent
	}
	if movementPattern.MatchString(expectation) {
		return IntentMovement
	}
	return IntentAppearance
}

func warnsAboutCamera(warnings []string) bool {
	for _, w := range warnings {
		lower := strings.ToLower(w)
		if strings.Contains(lower, "camera") || strings.Contains(lower, "perspective") || strings.Contains(lower, "angle") {
			return true
		}
	}
	return false
}
