package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"

	"docqa/config"
)

// Generation settings carried over from the service's original deployment:
// temperature 0.7 trades a little reproducibility for natural-sounding
// answers, and the output cap keeps responses short.
const (
	answerTemperature = 0.7
	answerMaxTokens   = 150
)

// answerTemplate instructs the model to answer only from the supplied
// context and to say so when the context is insufficient. The retrieved
// chunks are substituted for %[1]s and the verbatim question for %[2]s.
const answerTemplate = `Context:
%[1]s

**Question:** %[2]s

Provide a concise and clear answer based on the context above. If the context does not contain enough information, indicate that politely.`

// Generator is the language-model completion boundary. Implementations wrap
// one provider SDK and return the generated text for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the Generator for the configured LLM provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("initializing openai completion client: %w", err)
		}
		return &openaiGenerator{llm: llm}, nil
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing gemini client: %w", err)
		}
		return &geminiGenerator{client: client, model: cfg.LLMModel}, nil
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown llm provider %q", cfg.LLMProvider)}
	}
}

type openaiGenerator struct {
	llm *openai.LLM
}

func (g *openaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(answerTemperature),
		llms.WithMaxTokens(answerMaxTokens),
	)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](answerTemperature),
		MaxOutputTokens: answerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// AnswerComposer assembles retrieved chunks and the question into the
// instruction template and invokes the language model.
type AnswerComposer struct {
	generator Generator
}

func NewAnswerComposer(g Generator) *AnswerComposer {
	return &AnswerComposer{generator: g}
}

// Compose renders the prompt and generates an answer. An empty context slice
// is allowed; the template's insufficiency instruction then governs what the
// model says. Model failures surface as GenerationError.
func (c *AnswerComposer) Compose(ctx context.Context, question string, contextChunks []string) (string, error) {
	answer, err := c.generator.Generate(ctx, buildPrompt(question, contextChunks))
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return answer, nil
}

func buildPrompt(question string, contextChunks []string) string {
	return fmt.Sprintf(answerTemplate, strings.Join(contextChunks, "\n\n"), question)
}
