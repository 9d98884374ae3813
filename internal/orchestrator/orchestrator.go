// ABOUTME: Fans multi-question requests out concurrently over a document scope
// ABOUTME: Bounded parallelism, results collected by index, per-question failure isolation
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"docqa/internal/answer"
	"docqa/internal/cache"
	"docqa/internal/models"
	"docqa/internal/retrieval"
)

// Embedder is the slice of the LLM gateway used for query vectors
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Orchestrator answers question batches against cached document scopes
type Orchestrator struct {
	cache         *cache.Manager
	retriever     *retrieval.Engine
	synthesizer   *answer.Synthesizer
	embedder      Embedder
	topK          int
	maxConcurrent int64
}

// New wires the orchestrator
func New(cacheMgr *cache.Manager, retriever *retrieval.Engine, synthesizer *answer.Synthesizer, embedder Embedder, topK, maxConcurrent int) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		cache:         cacheMgr,
		retriever:     retriever,
		synthesizer:   synthesizer,
		embedder:      embedder,
		topK:          topK,
		maxConcurrent: int64(maxConcurrent),
	}
}

// BatchResult is the outcome of answering one multi-question request
type BatchResult struct {
	Answers  []models.AnswerRecord
	CacheHit bool
}

// AnswerAll answers every question against the scoped documents.
// Questions run concurrently up to the configured bound; answers come back
// in input order. A failing question yields a failed record in its slot and
// never affects its siblings.
func (o *Orchestrator) AnswerAll(ctx context.Context, docIDs []string, questions []string) (*BatchResult, error) {
	if len(docIDs) == 0 {
		return nil, fmt.Errorf("%w: empty document scope", models.ErrValidation)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", models.ErrValidation)
	}
	for i, q := range questions {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("%w: question %d is empty", models.ErrValidation, i)
		}
	}

	// The whole request counts as a cache hit only when every scoped
	// document was already resident before any loading happens.
	cacheHit := true
	for _, id := range docIDs {
		if !o.cache.Resident(id) {
			cacheHit = false
			break
		}
	}

	// Resolve the scope up front so unknown ids fail the request instead
	// of failing every question individually.
	for _, id := range docIDs {
		if _, err := o.cache.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	sem := semaphore.NewWeighted(o.maxConcurrent)
	var wg sync.WaitGroup
	answers := make([]models.AnswerRecord, len(questions))

	for i, question := range questions {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Request cancelled: mark the remaining slots failed
			for j := i; j < len(questions); j++ {
				answers[j] = failedRecord(questions[j], err)
			}
			break
		}

		wg.Add(1)
		go func(i int, question string) {
			defer wg.Done()
			defer sem.Release(1)
			answers[i] = o.answerOne(ctx, docIDs, question)
		}(i, question)
	}

	wg.Wait()
	return &BatchResult{Answers: answers, CacheHit: cacheHit}, nil
}

// answerOne embeds, retrieves, and synthesizes a single question.
// Failures are folded into the record rather than returned.
func (o *Orchestrator) answerOne(ctx context.Context, docIDs []string, question string) models.AnswerRecord {
	vectors, err := o.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		log.Printf("[Orchestrator] Embedding failed for question %q: %v", truncate(question, 60), err)
		return failedRecord(question, err)
	}

	ranked, err := o.retriever.Retrieve(ctx, vectors[0], docIDs, o.topK)
	if err != nil {
		log.Printf("[Orchestrator] Retrieval failed for question %q: %v", truncate(question, 60), err)
		return failedRecord(question, err)
	}

	record, err := o.synthesizer.Synthesize(ctx, question, ranked)
	if err != nil {
		log.Printf("[Orchestrator] Synthesis failed for question %q: %v", truncate(question, 60), err)
		return failedRecord(question, err)
	}
	return record
}

// GlobalResult is the outcome of a cross-document query
type GlobalResult struct {
	Answer            models.AnswerRecord
	ChunksSearched    int
	DocumentsSearched int
	CacheHit          bool
}

// GlobalQuery answers one question across many documents. The scope is the
// given ids, or every known document when none are given, capped at maxDocs.
func (o *Orchestrator) GlobalQuery(ctx context.Context, query string, topK, maxDocs int, docIDs []string) (*GlobalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", models.ErrValidation)
	}
	if topK <= 0 {
		topK = o.topK
	}

	scope := docIDs
	if len(scope) == 0 {
		known, err := o.cache.KnownIDs(ctx)
		if err != nil {
			return nil, err
		}
		scope = known
	}
	if len(scope) == 0 {
		return nil, fmt.Errorf("%w: no documents available to search", models.ErrNotFound)
	}
	if maxDocs > 0 && len(scope) > maxDocs {
		scope = scope[:maxDocs]
	}

	cacheHit := true
	for _, id := range scope {
		if !o.cache.Resident(id) {
			cacheHit = false
			break
		}
	}

	vectors, err := o.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	ranked, err := o.retriever.Retrieve(ctx, vectors[0], scope, topK)
	if err != nil {
		return nil, err
	}

	record, err := o.synthesizer.Synthesize(ctx, query, ranked)
	if err != nil {
		return nil, err
	}

	chunks, err := o.retriever.ChunksInScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &GlobalResult{
		Answer:            record,
		ChunksSearched:    chunks,
		DocumentsSearched: len(scope),
		CacheHit:          cacheHit,
	}, nil
}

func failedRecord(question string, err error) models.AnswerRecord {
	return models.AnswerRecord{
		Question:        question,
		ConfidenceLabel: models.ConfidenceLow,
		Error:           fmt.Sprintf("%s: %v", models.ErrorKind(err), err),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
