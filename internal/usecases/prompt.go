package usecases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"project_aceRelay/internal/entities"
	"strings"
)

// ReplyWordLimit caps how long a generated reply may be.
const ReplyWordLimit = 50

// PromptOptions carries the persona and offer details rendered into the system prompt.
type PromptOptions struct {
	AgentName   string
	ProductName string
	OfferLink   string
}

// ClosingSentence is the exact reply sent when a customer agrees to buy.
func ClosingSentence(offerLink string) string {
	return "Great choice. Here is your secure link: " + offerLink
}

// RenderCatalog serializes the playbook as a JSON object keyed by objection id,
// keeping catalog order and every field.
func RenderCatalog(catalog entities.Catalog) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	encode := func(v any) (string, error) {
		buf.Reset()
		if err := enc.Encode(v); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	}

	var sb strings.Builder
	sb.WriteString("{")
	for i, e := range catalog {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.TriggerKeywords == nil {
			e.TriggerKeywords = []string{}
		}
		key, err := encode(e.ID)
		if err != nil {
			return "", fmt.Errorf("encode objection id %q: %w", e.ID, err)
		}
		value, err := encode(e)
		if err != nil {
			return "", fmt.Errorf("encode objection %q: %w", e.ID, err)
		}
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
	}
	sb.WriteString("}")
	return sb.String(), nil
}

// BuildSystemPrompt renders the playbook and behavior rules into the model's system instruction.
// It is computed once at startup and shared by every request.
func BuildSystemPrompt(catalog entities.Catalog, opts PromptOptions) (string, error) {
	playbook, err := RenderCatalog(catalog)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are '%s', the elite sales AI for the book '%s'.\n", opts.AgentName, opts.ProductName)
	sb.WriteString("Your goal is to close the sale. You are helpful but authoritative.\n\n")
	sb.WriteString("Here is your STRICT Playbook (OBJECTION DATABASE):\n")
	sb.WriteString(playbook)
	sb.WriteString("\n\nINSTRUCTIONS:\n")
	sb.WriteString("1. Detect the Objection from the user's text based on the database keywords.\n")
	sb.WriteString("2. If a match is found, adapt the 'response' from the database.\n")
	sb.WriteString("3. If No Objection is found, answer briefly and ask: \"Ready to grab your copy?\"\n")
	fmt.Fprintf(&sb, "4. Keep messages under %d words.\n", ReplyWordLimit)
	fmt.Fprintf(&sb, "5. If the user agrees or says YES, strictly output: \"%s\"\n", ClosingSentence(opts.OfferLink))
	return sb.String(), nil
}
