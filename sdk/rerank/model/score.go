package model

import (
	"context"
	"fmt"
	"time"

	"github.com/hybridgroup/yzma/pkg/llama"
	"github.com/rerankd/rerankd/sdk/rerank/observ/metrics"
)

// Scores computes a relevance score for each document against the question.
// Every pair is rendered with the configured template, pushed through the
// model in a single forward pass and read back from the rank pooling head.
// The scores are raw model logits, not probabilities. Higher means more
// relevant. The KV cache is cleared between documents so each score is
// independent of the others.
func (m *Model) Scores(ctx context.Context, question string, documents []string) ([]float64, Usage, error) {
	if question == "" {
		return nil, Usage{}, fmt.Errorf("scores: question cannot be empty")
	}

	if len(documents) == 0 {
		return nil, Usage{}, fmt.Errorf("scores: documents cannot be empty")
	}

	m.activeStreams.Add(1)
	defer m.activeStreams.Add(-1)

	lctx, err := llama.InitFromModel(m.model, m.ctxParams)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("scores: unable to init from model: %w", err)
	}

	defer func() {
		llama.Synchronize(lctx)
		llama.Free(lctx)
	}()

	mem, err := llama.GetMemory(lctx)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("scores: unable to get memory: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, Usage{}, ctx.Err()

	default:
	}

	maxTokens := int(llama.NUBatch(lctx))
	ctxTokens := int(llama.NCtx(lctx))
	if ctxTokens < maxTokens {
		maxTokens = ctxTokens
	}

	// -------------------------------------------------------------------------

	// Tokenize all pairs upfront. The template carries the special tokens
	// so the tokenizer must not add its own.
	allTokens := make([][]llama.Token, len(documents))
	for i, document := range documents {
		pair := renderPair(m.cfg.PairTemplate, question, document)

		tokens := llama.Tokenize(m.vocab, pair, false, true)

		if len(tokens) > maxTokens {
			originalLen := len(tokens)
			tokens = truncateTokens(tokens, maxTokens)

			m.log(ctx, "scores", "status", "truncated pair", "index", i, "original_tokens", originalLen, "max_tokens", maxTokens)
		}

		allTokens[i] = tokens
	}

	// -------------------------------------------------------------------------

	// Score each pair sequentially within the same context.

	scores := make([]float64, len(documents))
	totalPromptTokens := 0

	for i, tokens := range allTokens {
		select {
		case <-ctx.Done():
			return nil, Usage{}, ctx.Err()

		default:
		}

		totalPromptTokens += len(tokens)

		now := time.Now()

		batch := llama.BatchGetOne(tokens)

		ret, err := llama.Decode(lctx, batch)
		if err != nil {
			return nil, Usage{}, fmt.Errorf("scores: decode failed for document[%d]: %w", i, err)
		}

		if ret != 0 {
			return nil, Usage{}, fmt.Errorf("scores: decode returned non-zero for document[%d]: %d", i, ret)
		}

		// With rank pooling the sequence embedding is a single value, the
		// relevance score.
		rawVec, err := llama.GetEmbeddingsSeq(lctx, 0, 1)
		if err != nil {
			return nil, Usage{}, fmt.Errorf("scores: unable to get score for document[%d]: %w", i, err)
		}

		if len(rawVec) == 0 {
			return nil, Usage{}, fmt.Errorf("scores: empty score for document[%d]", i)
		}

		scores[i] = float64(rawVec[0])

		metrics.AddScoreTime(time.Since(now))

		// Clear KV cache before the next pair.
		llama.MemoryClear(mem, true)
	}

	usage := Usage{
		PromptTokens: totalPromptTokens,
		TotalTokens:  totalPromptTokens,
	}

	return scores, usage, nil
}

// renderPair renders the question and document into the single sequence the
// cross-encoder scores.
func renderPair(template string, question string, document string) string {
	return fmt.Sprintf(template, question, document)
}

// truncateTokens cuts a token sequence down to max tokens, keeping the
// front of the sequence where the question lives.
func truncateTokens(tokens []llama.Token, max int) []llama.Token {
	if len(tokens) <= max {
		return tokens
	}

	return tokens[:max]
}
