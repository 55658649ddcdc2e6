package embeddings

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
)

const (
	// embeddingModel is the OpenAI model used for generating embeddings.
	embeddingModel = "text-embedding-3-small"

	// batchSize bounds texts per request. Corpora here are tens to low
	// hundreds of documents, so a single batch is the common case.
	batchSize = 256
)

// OpenAIProvider generates embeddings via the OpenAI API.
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAI constructs an OpenAI embeddings provider with the given API key.
func NewOpenAI(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name identifies the provider and model.
func (p *OpenAIProvider) Name() string {
	return "openai:" + embeddingModel
}

// Embed returns one vector per input text, batching requests and retrying
// transient failures.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		vectors, err := p.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to embed batch %d-%d", start, end)
		}
		out = append(out, vectors...)
	}

	return out, nil
}

func (p *OpenAIProvider) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	err := retry.Do(
		func() error {
			resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
				Input: openai.EmbeddingNewParamsInputUnion{
					OfArrayOfStrings: texts,
				},
				Model: embeddingModel,
			})
			if err != nil {
				return err
			}
			if len(resp.Data) != len(texts) {
				return retry.Unrecoverable(errors.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
			}

			vectors = make([][]float32, len(resp.Data))
			for i, data := range resp.Data {
				vectors[i] = toFloat32(data.Embedding)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	return vectors, nil
}

func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
