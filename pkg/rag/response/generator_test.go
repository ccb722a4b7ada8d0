package response

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"ai-recall-be/pkg/llm"
	"ai-recall-be/pkg/rag/render"
)

type fakeLLM struct {
	calls    int
	lastMsgs []llm.Message
	reply    string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	f.lastMsgs = history
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestGenerateCallsModelEvenWithEmptyContext(t *testing.T) {
	fake := &fakeLLM{reply: "You have no saved content about this."}
	gen := NewGenerator(fake, log.New(io.Discard, "", 0))

	answer, err := gen.Generate(context.Background(), "what did I save about rust?", render.EmptyContext, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fake.calls != 1 {
		t.Fatalf("llm calls = %d, want 1", fake.calls)
	}
	if answer == "" {
		t.Error("empty answer")
	}

	var userMsg string
	for _, m := range fake.lastMsgs {
		if m.Role == "user" {
			userMsg = m.Content
		}
	}
	if !strings.Contains(userMsg, render.EmptyContext) {
		t.Errorf("prompt does not carry the explicit empty-context block:\n%s", userMsg)
	}
}

func TestGeneratePromptShape(t *testing.T) {
	fake := &fakeLLM{reply: "answer"}
	gen := NewGenerator(fake, log.New(io.Discard, "", 0))

	_, err := gen.Generate(context.Background(), "what is this?", "[1] (twitter) tweet by @a: hi", nil)
	if err != nil {
		t.Fatal(err)
	}

	if fake.lastMsgs[0].Role != "system" {
		t.Errorf("first message role = %s, want system", fake.lastMsgs[0].Role)
	}
	last := fake.lastMsgs[len(fake.lastMsgs)-1]
	if !strings.Contains(last.Content, "<saved_content>") || !strings.Contains(last.Content, "Question: what is this?") {
		t.Errorf("prompt shape wrong:\n%s", last.Content)
	}
}
