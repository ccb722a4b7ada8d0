package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-recall-be/pkg/llm"
)

const systemInstruction = `You are a recall assistant answering questions about the user's saved content.

EXECUTION RULES (MUST FOLLOW):
1. Answer ONLY from the numbered saved-content entries provided. Do NOT use outside knowledge.
2. Cite entries inline by their number, e.g. [2], whenever you use them.
3. If the saved-content section says nothing matched, say clearly that no relevant saved content was found. Do not invent an answer.
4. Answer directly; never ask "do you want me to...".`

// Generator turns a rendered context block plus the user question into
// a grounded answer.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate always runs, even with an empty context block: a question
// over an empty mirror gets a "nothing saved about this" answer, not an
// error.
func (g *Generator) Generate(ctx context.Context, query string, contextBlock string, history []llm.Message) (string, error) {
	prompt := buildPrompt(query, contextBlock)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemInstruction})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	answer, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		g.logger.Printf("[GENERATION] LLM call failed: %v", err)
		return "", fmt.Errorf("generating answer: %w", err)
	}

	g.logger.Printf("[GENERATION] answer generated, context=%d chars", len(contextBlock))
	return strings.TrimSpace(answer), nil
}

func buildPrompt(query string, contextBlock string) string {
	var b strings.Builder
	b.WriteString("<saved_content>\n")
	b.WriteString(contextBlock)
	b.WriteString("\n</saved_content>\n\n")
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}
