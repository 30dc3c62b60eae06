// Package prompt assembles the model-facing system context for an editing
// session and trims conversation history to a token budget.
package prompt

import (
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/pkg/tokenizer"
)

const systemPreamble = `You are a video editing assistant. You edit the user's media by calling the provided tools; never invent tool names or parameters.

Rules:
- Operate on the active input file unless the user explicitly names a different file.
- Each tool call in a reply runs independently against the state listed below. To chain edits, wait for the result of one call before issuing the next.
- Edited files land in the output/ area. Refer to files by their sandbox-relative path (input/<name> or output/<name>).
- When a request cannot be done with the available tools, say so instead of guessing.`

// Sandbox carries the current sandbox contents rendered into the context.
type Sandbox struct {
	Input  []string
	Output []string
}

// SystemContext renders the per-turn system prompt: static guidance plus the
// project's file registry, sandbox contents, and active input.
func SystemContext(title string, state *model.ProjectState, sandbox *Sandbox) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Project: %s\n\n", title)

	b.WriteString("Files:\n")
	if len(state.Files) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, f := range state.Files {
		marker := ""
		if f.IsMainVideo {
			marker = " [main video]"
		}
		ref := f.BestReference()
		if f.Duration > 0 {
			fmt.Fprintf(&b, "  - %s (%s, %.1fs)%s -> %s\n", f.DisplayName, f.Kind, f.Duration, marker, ref.String())
		} else {
			fmt.Fprintf(&b, "  - %s (%s)%s -> %s\n", f.DisplayName, f.Kind, marker, ref.String())
		}
	}
	b.WriteString("\n")

	if sandbox != nil {
		b.WriteString("Sandbox:\n")
		writeArea(&b, "input", sandbox.Input)
		writeArea(&b, "output", sandbox.Output)
		b.WriteString("\n")
	}

	if active := state.ActiveInput(); active != nil {
		fmt.Fprintf(&b, "Active input: %s\n", active.String())
		b.WriteString("Use it as the input for edits unless the user names another file.\n")
	} else {
		b.WriteString("Active input: (none). Ask the user to upload a video before editing.\n")
	}

	return b.String()
}

func writeArea(b *strings.Builder, area string, names []string) {
	if len(names) == 0 {
		fmt.Fprintf(b, "  %s/: (none)\n", area)
		return
	}
	for _, n := range names {
		fmt.Fprintf(b, "  %s/%s\n", area, n)
	}
}

// TrimHistory drops the oldest messages until the remainder fits the token
// budget. The most recent message always survives so the turn keeps its
// user request.
func TrimHistory(history []model.Message, budgetTokens int) []model.Message {
	if budgetTokens <= 0 || len(history) <= 1 {
		return history
	}

	counts := make([]int, len(history))
	total := 0
	for i, m := range history {
		n, err := tokenizer.CountTokens(m.Text)
		if err != nil {
			// Codec failure: fall back to a crude estimate.
			n = len(m.Text) / 4
		}
		counts[i] = n
		total += n
	}
	if total <= budgetTokens {
		return history
	}

	start := 0
	for start < len(history)-1 && total > budgetTokens {
		total -= counts[start]
		start++
	}
	return history[start:]
}
