package verdict

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasfrag/ollama4truth/internal/corpus"
	"github.com/lucasfrag/ollama4truth/internal/search"
)

// LabelVote classifies by majority vote over the fact-check labels of
// the evidence articles. Web results carry no label and do not vote.
func LabelVote(claim string, evidences []search.QuestionResults) *Verdict {
	var falseCount, trueCount, otherCount, total int
	breakdown := make(map[string]int)

	for _, qr := range evidences {
		for _, r := range qr.Results {
			if r.Label == "" {
				continue
			}
			total++
			breakdown[r.Label]++

			switch {
			case corpus.IsFalseLabel(r.Label):
				falseCount++
			case corpus.IsTrueLabel(r.Label):
				trueCount++
			default:
				otherCount++
			}
		}
	}

	v := &Verdict{
		Claim:          claim,
		Strategy:       StrategyLabelVote,
		LabelBreakdown: breakdown,
		Timestamp:      time.Now().UTC(),
	}

	switch {
	case total == 0:
		v.Classification = ClassNotEnough
		v.Confidence = 0
		v.Justification = "Nenhum artigo com classificação encontrado nas evidências."

	case falseCount > trueCount && falseCount > otherCount:
		v.Classification = ClassRefuted
		v.Confidence = percent(falseCount, total)
		v.Justification = fmt.Sprintf("%d de %d artigos classificam como falso/enganoso.", falseCount, total)

	case trueCount > falseCount && trueCount > otherCount:
		v.Classification = ClassSupported
		v.Confidence = percent(trueCount, total)
		v.Justification = fmt.Sprintf("%d de %d artigos classificam como verdadeiro.", trueCount, total)

	default:
		v.Classification = ClassNotEnough
		v.Confidence = percent(max(falseCount, max(trueCount, otherCount)), total)
		v.Justification = fmt.Sprintf("Sem consenso claro: %d falso, %d verdadeiro, %d outro.",
			falseCount, trueCount, otherCount)
	}

	return v
}

// percent rounds count/total to one decimal percentage point.
func percent(count, total int) float64 {
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// HasLabels reports whether any evidence item carries an article label.
// Pure web evidence has none, which makes label voting meaningless.
func HasLabels(evidences []search.QuestionResults) bool {
	for _, qr := range evidences {
		for _, r := range qr.Results {
			if r.Label != "" {
				return true
			}
		}
	}
	return false
}
