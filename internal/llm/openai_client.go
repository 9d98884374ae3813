// ABOUTME: OpenAI gateway for batched embeddings and grounded answer generation
// ABOUTME: All upstream calls run through the retry policy and a shared rate limiter
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"docqa/internal/models"
	"docqa/internal/util"
)

const (
	// DefaultChatModel is the default model for answer generation
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	// DefaultEmbedBatchSize bounds the payload of one embeddings request
	DefaultEmbedBatchSize = 64
)

// ClientConfig holds configuration for the OpenAI gateway
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	EmbedBatchSize int
	RequestsPerSec float64
	Retry          util.RetryPolicy
}

// Client wraps the OpenAI API with retries, batching, and rate limiting
type Client struct {
	api            *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	batchSize      int
	limiter        *rate.Limiter
	retry          util.RetryPolicy
}

// NewClient creates a gateway from config, filling in defaults
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 8
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = util.DefaultRetryPolicy()
	}

	return &Client{
		api:            openai.NewClient(cfg.APIKey),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		batchSize:      cfg.EmbedBatchSize,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		retry:          cfg.Retry,
	}, nil
}

// EmbeddingModel returns the model name used for embeddings
func (c *Client) EmbeddingModel() string {
	return string(c.embeddingModel)
}

// EmbedTexts returns one vector per input text, order preserved.
// Inputs are sent upstream in batches to bound payload size.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", models.ErrValidation)
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: text %d is empty", models.ErrValidation, i)
		}
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	var vectors [][]float64

	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: batch,
			Model: c.embeddingModel,
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Data) != len(batch) {
			return fmt.Errorf("%w: got %d embeddings for %d inputs", models.ErrUpstream, len(resp.Data), len(batch))
		}

		vectors = make([][]float64, len(resp.Data))
		for _, d := range resp.Data {
			vec := make([]float64, len(d.Embedding))
			for j, v := range d.Embedding {
				vec[j] = float64(v)
			}
			vectors[d.Index] = vec
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch of %d: %w", len(batch), err)
	}
	return vectors, nil
}

// GenerateAnswer asks the chat model to answer a question grounded in the
// retrieved context. Returns the raw answer text.
func (c *Client) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", models.ErrValidation)
	}

	var answer string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(question, contextText)},
			},
			Temperature: 0.3,
			MaxTokens:   500,
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: no completion choices returned", models.ErrUpstream)
		}

		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}

const answerSystemPrompt = `You are a helpful assistant that answers questions about uploaded documents.

Rules:
- Answer only from the provided context. If the context does not contain the answer, say so plainly and describe what the document does cover.
- Start with a direct answer, then add supporting detail from the context.
- Use Markdown formatting: bold for key terms, bullet points for lists, short sections for complex answers.
- Never invent information that is not in the context.
- Do not use phrases like "according to the context" or "the document states".`

func buildUserPrompt(question, contextText string) string {
	return fmt.Sprintf("Relevant excerpts from the document:\n\n%s\n\n---\n\nQuestion: %s\n\nAnswer based only on the excerpts above:", contextText, question)
}

// classify maps OpenAI SDK errors onto the engine's error taxonomy.
// Input and credential errors are permanent; everything else is retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 400, 404, 413, 422:
			return fmt.Errorf("%w: %v", models.ErrValidation, err)
		case 401, 403:
			// Rejected credentials never recover on retry
			return fmt.Errorf("openai authentication rejected: %v", err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrUpstream, err)
}
