package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeGenerator struct {
	lastPrompt string
	answer     string
	err        error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.answer, f.err
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("What is the capital of France?", []string{"France is a country.", "Paris is its capital."})

	if !strings.Contains(prompt, "**Question:** What is the capital of France?") {
		t.Errorf("prompt missing verbatim question:\n%s", prompt)
	}
	if !strings.Contains(prompt, "France is a country.\n\nParis is its capital.") {
		t.Errorf("prompt missing joined context block:\n%s", prompt)
	}
	if !strings.Contains(prompt, "If the context does not contain enough information") {
		t.Errorf("prompt missing insufficiency instruction:\n%s", prompt)
	}
}

func TestBuildPromptEmptyContext(t *testing.T) {
	prompt := buildPrompt("Anything in here?", nil)

	if !strings.HasPrefix(prompt, "Context:\n\n") {
		t.Errorf("empty context should render an empty context block:\n%s", prompt)
	}
	if !strings.Contains(prompt, "**Question:** Anything in here?") {
		t.Errorf("prompt missing question:\n%s", prompt)
	}
}

func TestComposeSuccess(t *testing.T) {
	gen := &fakeGenerator{answer: "Paris."}
	composer := NewAnswerComposer(gen)

	answer, err := composer.Compose(context.Background(), "Capital of France?", []string{"Paris is the capital of France."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Paris." {
		t.Errorf("expected generated answer, got %q", answer)
	}
	if !strings.Contains(gen.lastPrompt, "Paris is the capital of France.") {
		t.Errorf("generator did not receive the context chunk:\n%s", gen.lastPrompt)
	}
}

func TestComposeGenerationError(t *testing.T) {
	cause := errors.New("model quota exceeded")
	composer := NewAnswerComposer(&fakeGenerator{err: cause})

	_, err := composer.Compose(context.Background(), "q", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Error("GenerationError should unwrap to the model error")
	}
}
