package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lucasfrag/ollama4truth/internal/llm"
	"github.com/lucasfrag/ollama4truth/internal/search"
)

var validClasses = map[string]struct{}{
	ClassSupported:   {},
	ClassRefuted:     {},
	ClassNotEnough:   {},
	ClassConflicting: {},
}

const llmPromptTemplate = `Você é um sistema de checagem de fatos acadêmico. Sua tarefa é avaliar se uma CLAIM (afirmação) é verdadeira ou falsa, com base nas evidências fornecidas.

IMPORTANTE — LEIA COM ATENÇÃO:
- Você deve avaliar se a CLAIM EXATA fornecida é apoiada ou refutada pelas evidências.
- Preste muita atenção a NEGAÇÕES na claim. Exemplos:
  * "Vacinas NÃO causam autismo" → se as evidências dizem que é FALSO que vacinas causam autismo, então esta claim é SUPPORTED (apoiada), pois a claim nega algo que é de fato falso.
  * "Vacinas causam autismo" → se as evidências dizem que é FALSO, então esta claim é REFUTED.
- Os artigos de fact-checking frequentemente têm rótulos como "falso", "enganoso" etc. Esses rótulos se referem ao TÓPICO ORIGINAL da desinformação, NÃO necessariamente à claim que você está avaliando.
- Analise o SENTIDO SEMÂNTICO da claim e compare com o que as evidências dizem.

Claim: %q

Evidências coletadas:
%s

Classifique a claim em uma das categorias:
- Supported: a claim É VERDADEIRA segundo as evidências
- Refuted: a claim É FALSA segundo as evidências
- Not Enough Evidence: evidências insuficientes
- Conflicting Evidence/Cherry-picking: evidências contraditórias

Indique um nível de confiança (0 a 100%%).

Saída obrigatória: JSON no formato abaixo, sem texto adicional:

{
  "classification": "<Supported | Refuted | Not Enough Evidence | Conflicting Evidence/Cherry-picking>",
  "justification": "Texto explicativo curto",
  "confidence": <0-100>
}`

var verdictJSONRegex = regexp.MustCompile(`\{[\s\S]*\}`)

// LLMVerdict asks the generation model to classify the claim against the
// evidence. Uninterpretable model output degrades to an "unverified"
// verdict rather than an error.
func LLMVerdict(ctx context.Context, provider llm.Provider, claim string, evidences []search.QuestionResults) (*Verdict, error) {
	evidenceJSON, err := json.MarshalIndent(evidences, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding evidence: %w", err)
	}

	output, err := provider.Generate(ctx, fmt.Sprintf(llmPromptTemplate, claim, string(evidenceJSON)))
	if err != nil {
		return nil, fmt.Errorf("generating verdict: %w", err)
	}

	v := parseVerdictOutput(output)
	v.Claim = claim
	v.Strategy = StrategyLLM
	v.Timestamp = time.Now().UTC()

	slog.Debug("llm_verdict",
		"classification", v.Classification,
		"confidence", v.Confidence)
	return v, nil
}

func parseVerdictOutput(output string) *Verdict {
	output = strings.TrimSpace(output)
	if block := verdictJSONRegex.FindString(output); block != "" {
		output = block
	}

	var parsed struct {
		Classification string  `json:"classification"`
		Justification  string  `json:"justification"`
		Confidence     float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		justification := "Não foi possível interpretar a resposta do modelo."
		if output != "" {
			runes := []rune(output)
			if len(runes) > 300 {
				runes = runes[:300]
			}
			justification = string(runes)
		}
		return &Verdict{
			Classification: ClassUnverified,
			Justification:  justification,
			Confidence:     0,
		}
	}

	classification := strings.TrimSpace(parsed.Classification)
	if _, ok := validClasses[classification]; !ok {
		classification = ClassUnverified
	}

	return &Verdict{
		Classification: classification,
		Justification:  strings.TrimSpace(parsed.Justification),
		Confidence:     parsed.Confidence,
	}
}
