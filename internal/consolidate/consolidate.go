// Package consolidate asks a chat model how to merge each duplicate group
// into one shared implementation.
package consolidate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dupescan/internal/llm"
	"dupescan/internal/report"
)

const groupPrompt = `You are a senior frontend engineer reviewing near-duplicate code found by a similarity scan. Based ONLY on the code shown below, propose how to consolidate it.

Rules:
- ONLY describe what you can directly observe in the code
- Name the shared abstraction (component, hook, or helper) and its props or parameters
- List what differs between the copies and how the abstraction absorbs it
- If the copies should stay separate, say so and why

Keep it under 200 words. Answer in Markdown. Do not repeat the code.
`

// maxMemberChars bounds each member's code in the prompt.
const maxMemberChars = 4000

// ContentFunc returns the source of a chunk.
type ContentFunc func(id string) (string, bool)

// Prompt builds the request for one group.
func Prompt(g report.Group, content ContentFunc) string {
	var b strings.Builder
	b.WriteString(groupPrompt)
	fmt.Fprintf(&b, "\n## %d similar %s chunks (avg similarity %.2f)\n\n", len(g.Members), g.Kind, g.AvgSimilarity)

	for _, m := range g.Members {
		fmt.Fprintf(&b, "### %s  (%s:%d-%d)\n", m.Name, m.FilePath, m.StartLine, m.EndLine)
		code, ok := content(m.ID)
		if !ok {
			b.WriteString("(source unavailable)\n\n")
			continue
		}
		if len(code) > maxMemberChars {
			code = code[:maxMemberChars] + "\n// ..."
		}
		b.WriteString("```tsx\n")
		b.WriteString(code)
		b.WriteString("\n```\n\n")
	}
	return b.String()
}

// Advise fills in Advice for the first n groups. A failed request leaves
// that group without advice; the failures are returned together.
func Advise(ctx context.Context, gen llm.Generator, groups []report.Group, content ContentFunc, n int) error {
	var failed []string
	for i := range min(n, len(groups)) {
		g := &groups[i]
		fmt.Fprintf(os.Stderr, "  Asking for consolidation advice on group %d...\n", g.Number)

		reply, err := gen.Generate(ctx, []llm.Message{
			{Role: "user", Content: Prompt(*g, content)},
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed = append(failed, fmt.Sprintf("group %d: %v", g.Number, err))
			continue
		}
		g.Advice = stripThinking(strings.TrimSpace(reply))
	}
	if len(failed) > 0 {
		return fmt.Errorf("consolidation advice failed for %s", strings.Join(failed, "; "))
	}
	return nil
}

// stripThinking drops a leading <think>...</think> block some local models
// emit before their answer.
func stripThinking(s string) string {
	if !strings.HasPrefix(s, "<think>") {
		return s
	}
	if end := strings.Index(s, "</think>"); end >= 0 {
		return strings.TrimSpace(s[end+len("</think>"):])
	}
	return s
}
