package orchestrator

import (
	"fmt"
	"strconv"
	"strings"
)

// PromptInput is everything the decision prompt embeds for one object.
type PromptInput struct {
	Label         string
	Type          string
	SourceCulture string
	TargetCulture string
	Context       string // scene description, may be empty
	Candidates    []string
	AvoidList     []string
}

// BuildPrompt renders the per-object decision prompt.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder
	b.WriteString("You are a cultural adaptation expert.\n")
	fmt.Fprintf(&b, "Task: Decide whether to transform the object '%s' (Type: %s) found in a '%s' context to be appropriate for a '%s' setting.\n\n",
		in.Label, in.Type, in.SourceCulture, in.TargetCulture)
	fmt.Fprintf(&b, "Image Context: %s\n\n", in.Context)
	fmt.Fprintf(&b, "Knowledge Graph Candidates for %s: %s\n", in.TargetCulture, quoteList(in.Candidates))
	fmt.Fprintf(&b, "Avoid List: %s\n\n", quoteList(in.AvoidList))
	b.WriteString("Return JSON with:\n")
	b.WriteString(`- "action": "transform" or "preserve"` + "\n")
	b.WriteString(`- "target_object": The chosen substitute (pick from Candidates if suitable, or suggest a better culturally relevant one).` + "\n")
	b.WriteString(`- "rationale": Brief explanation of why this transformation or preservation is chosen.` + "\n")
	b.WriteString(`- "confidence": Float between 0 and 1.` + "\n")
	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
