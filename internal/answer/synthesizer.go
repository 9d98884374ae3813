// ABOUTME: Answer synthesizer: bounded context assembly, LLM call, confidence, citations
// ABOUTME: Confidence derives deterministically from the included similarity scores
package answer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa/internal/models"
)

const (
	// citationLimit bounds how many sources are attached to an answer
	citationLimit = 3
	// previewRunes bounds the citation preview length
	previewRunes = 200
)

// confidenceWeights favor the top-ranked included chunks
var confidenceWeights = []float64{1.0, 0.8, 0.6, 0.4, 0.2}

// Generator is the slice of the LLM gateway the synthesizer needs.
// Retry and backoff for transient failures live behind this interface.
type Generator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
}

// Synthesizer builds grounded answers from ranked chunks
type Synthesizer struct {
	generator       Generator
	maxContextChars int
	highThreshold   float64
	mediumThreshold float64
}

// NewSynthesizer wires a synthesizer with the given context budget and
// confidence bucket thresholds
func NewSynthesizer(generator Generator, maxContextChars int, highThreshold, mediumThreshold float64) *Synthesizer {
	return &Synthesizer{
		generator:       generator,
		maxContextChars: maxContextChars,
		highThreshold:   highThreshold,
		mediumThreshold: mediumThreshold,
	}
}

// Synthesize answers one question from the ranked chunks. The returned
// record carries the confidence figures and citations for the chunks that
// actually fit the context window.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, ranked []models.ScoredChunk) (models.AnswerRecord, error) {
	record := models.AnswerRecord{Question: question, ConfidenceLabel: models.ConfidenceLow}

	if len(ranked) == 0 {
		record.Answer = "No relevant content was found in the document scope for this question."
		return record, nil
	}

	contextText, included := BuildContext(ranked, s.maxContextChars)
	if len(included) == 0 {
		record.Answer = "The most relevant content is too large to fit the context window."
		return record, nil
	}

	text, err := s.generator.GenerateAnswer(ctx, question, contextText)
	if err != nil {
		return record, err
	}

	record.Answer = text
	record.TopSimilarityScore = included[0].Score
	record.AvgSimilarityScore = meanScore(included)
	record.Confidence = confidence(included)
	record.ConfidenceLabel = s.label(record.Confidence)
	record.Sources = citations(included)
	return record, nil
}

// BuildContext concatenates chunk texts in rank order until adding the next
// whole chunk would exceed the budget, then stops. Chunks are never
// truncated: one either fits entirely or ends the context. Returns the
// assembled context and the chunks it includes.
func BuildContext(ranked []models.ScoredChunk, maxChars int) (string, []models.ScoredChunk) {
	var parts []string
	var included []models.ScoredChunk
	total := 0

	for i, sc := range ranked {
		part := fmt.Sprintf("[Context %d]\n%s\n", i+1, sc.Chunk.Text)
		// Budget is characters, not bytes, and the joiner between
		// blocks counts against it
		cost := utf8.RuneCountInString(part)
		if len(parts) > 0 {
			cost++
		}
		if total+cost > maxChars {
			break
		}
		parts = append(parts, part)
		included = append(included, sc)
		total += cost
	}

	return strings.Join(parts, "\n"), included
}

// confidence is the weighted average of up to the top five included scores.
// Monotonic in every included score and stable across identical inputs.
func confidence(included []models.ScoredChunk) float64 {
	var totalScore, totalWeight float64
	for i, sc := range included {
		if i >= len(confidenceWeights) {
			break
		}
		totalScore += sc.Score * confidenceWeights[i]
		totalWeight += confidenceWeights[i]
	}
	if totalWeight == 0 {
		return 0
	}
	c := totalScore / totalWeight
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func meanScore(included []models.ScoredChunk) float64 {
	if len(included) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range included {
		sum += sc.Score
	}
	return sum / float64(len(included))
}

func (s *Synthesizer) label(c float64) models.ConfidenceLabel {
	switch {
	case c >= s.highThreshold:
		return models.ConfidenceHigh
	case c >= s.mediumThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func citations(included []models.ScoredChunk) []models.Citation {
	n := len(included)
	if n > citationLimit {
		n = citationLimit
	}
	cites := make([]models.Citation, n)
	for i := 0; i < n; i++ {
		sc := included[i]
		cites[i] = models.Citation{
			DocumentID: sc.DocumentID,
			ChunkID:    sc.Chunk.ChunkID,
			Rank:       i + 1,
			Score:      sc.Score,
			Preview:    preview(sc.Chunk.Text),
		}
	}
	return cites
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
