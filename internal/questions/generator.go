// Package questions decomposes a claim into short investigative
// questions using an LLM.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lucasfrag/ollama4truth/internal/llm"
)

// QuestionSet is the decomposition of one claim.
type QuestionSet struct {
	Claim     string    `json:"claim"`
	Questions []string  `json:"questions"`
	Timestamp time.Time `json:"timestamp"`
}

// Generator produces fact-checking questions for claims.
type Generator struct {
	provider llm.Provider
}

// NewGenerator wraps an LLM provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

const promptTemplate = `Você é um assistente de checagem de fatos.
A seguinte afirmação precisa ser verificada:

Claim: %q

Gere de 3 a 5 perguntas curtas e objetivas que ajudariam a confirmar ou refutar essa claim.

Saída obrigatória: JSON no formato exato abaixo (sem texto explicativo, sem comentários):

{
  "questions": [
    "Pergunta 1",
    "Pergunta 2",
    "Pergunta 3"
  ]
}`

// Generate asks the model for questions about a claim. Model output that
// is not valid JSON degrades to line splitting, so a usable question set
// comes back whenever the model answered at all.
func (g *Generator) Generate(ctx context.Context, claim string) (*QuestionSet, error) {
	output, err := g.provider.Generate(ctx, fmt.Sprintf(promptTemplate, claim))
	if err != nil {
		return nil, fmt.Errorf("generating questions: %w", err)
	}

	parsed := ParseQuestions(output)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("model produced no usable questions")
	}

	slog.Debug("questions_generated",
		"claim_len", len(claim),
		"questions", len(parsed))

	return &QuestionSet{
		Claim:     claim,
		Questions: parsed,
		Timestamp: time.Now().UTC(),
	}, nil
}

// jsonBlockRegex grabs the outermost JSON object when the model wraps it
// in prose.
var jsonBlockRegex = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseQuestions extracts a question list from raw model output. It
// tries the JSON contract first and falls back to splitting lines,
// trimming list markers.
func ParseQuestions(output string) []string {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}

	candidate := output
	if block := jsonBlockRegex.FindString(output); block != "" {
		candidate = block
	}
	if qs := parseJSONQuestions(candidate); len(qs) > 0 {
		return qs
	}

	var questions []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "-•* ")
		if len(line) > 3 {
			questions = append(questions, line)
		}
	}
	return questions
}

func parseJSONQuestions(block string) []string {
	var wrapper struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(block), &wrapper); err == nil && len(wrapper.Questions) > 0 {
		return cleanQuestions(wrapper.Questions)
	}

	var list []string
	if err := json.Unmarshal([]byte(block), &list); err == nil {
		return cleanQuestions(list)
	}

	return nil
}

func cleanQuestions(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}
