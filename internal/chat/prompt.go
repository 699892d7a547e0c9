package chat

import (
	"fmt"
	"strings"

	"github.com/commercekit/shopchat/models"
)

const promptGuidelines = `You are a helpful e-commerce assistant.
Use the provided context from our knowledge base to answer accurately.
Be concise but informative. If you don't have enough information, acknowledge it politely.
For product recommendations, explain why you're suggesting them.`

// composePrompt renders the single prompt sent to the generation backend:
// prior exchanges as alternating turns, one headed context block per source
// with results (in the given order, never completion order), the current
// query, and the respond-in-language directive.
func composePrompt(history []models.Exchange, kctx KnowledgeContext, order []string, query, language string) string {
	var sb strings.Builder
	sb.WriteString(promptGuidelines)
	sb.WriteString("\n")

	if len(history) > 0 {
		sb.WriteString("\nPrevious conversation:\n")
		for _, ex := range history {
			fmt.Fprintf(&sb, "Customer: %s\nAssistant: %s\n", ex.Message, ex.Response)
		}
	}

	for _, name := range order {
		snippets, ok := kctx[name]
		if !ok || len(snippets) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", strings.ToUpper(name))
		for _, s := range snippets {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	fmt.Fprintf(&sb, "\nCustomer question: %s\n", query)
	fmt.Fprintf(&sb, "\nRespond in %s.\n", language)
	return sb.String()
}
