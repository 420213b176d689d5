package judge

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// renderDiffBlock produces the diff section of the instruction block. Empty
// diff text becomes an explicit placeholder so the judge never guesses about
// absent changes. When the text parses as a unified diff, a changed-file
// summary is prepended so the judge can orient before reading hunks; text
// that does not parse is passed through literally.
func renderDiffBlock(diffText string) string {
	if strings.TrimSpace(diffText) == "" {
		return noDiffPlaceholder
	}

	summary := summarizeDiff(diffText)
	if summary == "" {
		return diffText
	}
	return summary + "\n\n" + diffText
}

// summarizeDiff returns a one-line-per-file summary of a unified diff, or
// empty when the text is not a parseable diff.
func summarizeDiff(diffText string) string {
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(diffText))
	if err != nil || len(fileDiffs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Changed files:")
	for _, fd := range fileDiffs {
		stat := fd.Stat()
		name := strings.TrimPrefix(fd.NewName, "b/")
		if name == "/dev/null" {
			name = strings.TrimPrefix(fd.OrigName, "a/") + " (deleted)"
		}
		fmt.Fprintf(&b, "\n- %s (+%d -%d)", name, stat.Added+stat.Changed, stat.Deleted+stat.Changed)
	}
	return b.String()
}
