package semantic

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/tendermatch/backend/internal/domain"
)

// Config holds the embedding backend settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// RequestsPerSecond throttles embedding calls; zero disables the limiter.
	RequestsPerSecond float64
	// MaxBatchSize splits large candidate lists into separate API calls.
	MaxBatchSize int
}

// EmbeddingProvider scores tender/product text similarity via an
// OpenAI-compatible embeddings API.
type EmbeddingProvider struct {
	embedder  embeddings.Embedder
	limiter   *rate.Limiter
	batchSize int
}

// NewEmbeddingProvider creates the provider. An empty API key is replaced
// with a placeholder for local backends that skip authentication.
func NewEmbeddingProvider(config Config) (*EmbeddingProvider, error) {
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.Model),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	batchSize := config.MaxBatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	return &EmbeddingProvider{
		embedder:  embedder,
		limiter:   limiter,
		batchSize: batchSize,
	}, nil
}

// Score embeds the query and all candidate texts and returns their cosine
// similarities clamped to [0,1], one per candidate, in candidate order.
func (p *EmbeddingProvider) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVec, err := p.embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSemanticUnavailable, err)
	}
	if len(queryVec) != 1 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrSemanticUnavailable)
	}

	scores := make([]float64, len(candidates))
	for offset := 0; offset < len(candidates); offset += p.batchSize {
		end := offset + p.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		vecs, err := p.embed(ctx, candidates[offset:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSemanticUnavailable, err)
		}
		if len(vecs) != end-offset {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrSemanticUnavailable, len(vecs), end-offset)
		}
		for i, vec := range vecs {
			scores[offset+i] = clampScore(CosineSimilarity(queryVec[0], vec))
		}
	}

	log.Debug().Int("candidates", len(candidates)).Msg("semantic scores computed")
	return scores, nil
}

func (p *EmbeddingProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return p.embedder.EmbedDocuments(ctx, texts)
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
