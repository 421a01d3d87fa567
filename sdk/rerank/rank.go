package rerank

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rerankd/rerankd/sdk/rerank/model"
	"github.com/rerankd/rerankd/sdk/rerank/observ/metrics"
	"golang.org/x/sync/errgroup"
)

// RankRequest represents a request to rank documents against a question.
// TopK of 0 returns all documents.
type RankRequest struct {
	Question  string
	Documents []string
	TopK      int
}

// RankResult represents the ranked documents with their parallel scores,
// ordered by relevance descending.
type RankResult struct {
	RankedDocuments []string
	Scores          []float64
	Usage           model.Usage
	CacheHits       int
}

// ValidationError indicates the caller provided a request the engine
// cannot score.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Reason)
}

func validateRequest(rr RankRequest) error {
	if strings.TrimSpace(rr.Question) == "" {
		return &ValidationError{Field: "question", Reason: "question cannot be empty"}
	}

	if len(rr.Documents) == 0 {
		return &ValidationError{Field: "documents", Reason: "no documents provided"}
	}

	if rr.TopK < 0 {
		return &ValidationError{Field: "top_k", Reason: "top_k must be >= 1"}
	}

	return nil
}

// =============================================================================

// Rank scores every document against the question and returns them ordered
// by relevance descending, truncated to TopK when set. Documents with equal
// scores retain their original relative order. Each score depends only on
// the question and that document, never on the rest of the batch.
func (r *Reranker) Rank(ctx context.Context, rr RankRequest) (RankResult, error) {
	if err := validateRequest(rr); err != nil {
		return RankResult{}, err
	}

	now := time.Now()

	// -------------------------------------------------------------------------

	// Satisfy what we can from the score cache and collect the rest.

	scores := make([]float64, len(rr.Documents))

	var missIdx []int
	var missDocs []string
	var cacheHits int

	switch r.scores {
	case nil:
		missIdx = make([]int, len(rr.Documents))
		for i := range rr.Documents {
			missIdx[i] = i
		}
		missDocs = rr.Documents

	default:
		for i, doc := range rr.Documents {
			if score, exists := r.scores.Lookup(rr.Question, doc); exists {
				scores[i] = score
				cacheHits++
				continue
			}

			missIdx = append(missIdx, i)
			missDocs = append(missDocs, doc)
		}
	}

	// -------------------------------------------------------------------------

	var usage model.Usage

	if len(missDocs) > 0 {
		missScores, u, err := r.score(ctx, rr.Question, missDocs)
		if err != nil {
			return RankResult{}, fmt.Errorf("rank: %w", err)
		}

		usage = u

		for j, idx := range missIdx {
			scores[idx] = missScores[j]

			if r.scores != nil {
				r.scores.Store(rr.Question, rr.Documents[idx], missScores[j])
			}
		}
	}

	// -------------------------------------------------------------------------

	metrics.AddCacheHits(cacheHits)
	metrics.AddRankTime(time.Since(now))
	metrics.AddRankUsage(len(rr.Documents), usage.TotalTokens)

	ranked, rankedScores := rankScored(rr.Documents, scores, rr.TopK)

	result := RankResult{
		RankedDocuments: ranked,
		Scores:          rankedScores,
		Usage:           usage,
		CacheHits:       cacheHits,
	}

	return result, nil
}

// rankScored orders documents by score descending. Equal scores keep their
// input order. A topK of 0 or larger than the document count returns all
// documents, fully sorted.
func rankScored(documents []string, scores []float64, topK int) ([]string, []float64) {
	idx := make([]int, len(documents))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})

	if topK <= 0 || topK > len(documents) {
		topK = len(documents)
	}

	ranked := make([]string, topK)
	rankedScores := make([]float64, topK)

	for i := range topK {
		ranked[i] = documents[idx[i]]
		rankedScores[i] = scores[idx[i]]
	}

	return ranked, rankedScores
}

// =============================================================================

type scoreFunc func(ctx context.Context, question string, documents []string) ([]float64, model.Usage, error)

// poolScores shards the documents across the model instances. With a single
// instance this is a plain sequential pass.
func (r *Reranker) poolScores(ctx context.Context, question string, documents []string) ([]float64, model.Usage, error) {
	shards := r.instances
	if shards > len(documents) {
		shards = len(documents)
	}

	if shards <= 1 {
		m, err := r.acquireModel(ctx)
		if err != nil {
			return nil, model.Usage{}, err
		}
		defer r.releaseModel(m)

		return m.Scores(ctx, question, documents)
	}

	// -------------------------------------------------------------------------

	scores := make([]float64, len(documents))
	usages := make([]model.Usage, shards)

	g, gctx := errgroup.WithContext(ctx)

	chunk := (len(documents) + shards - 1) / shards

	for s := range shards {
		start := s * chunk
		end := min(start+chunk, len(documents))
		if start >= end {
			continue
		}

		g.Go(func() error {
			m, err := r.acquireModel(gctx)
			if err != nil {
				return err
			}
			defer r.releaseModel(m)

			ss, u, err := m.Scores(gctx, question, documents[start:end])
			if err != nil {
				return err
			}

			copy(scores[start:end], ss)
			usages[s] = u

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, model.Usage{}, err
	}

	var usage model.Usage
	for _, u := range usages {
		usage.PromptTokens += u.PromptTokens
		usage.TotalTokens += u.TotalTokens
	}

	return scores, usage, nil
}
