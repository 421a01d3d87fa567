package rerank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rerankd/rerankd/sdk/rerank/cache"
	"github.com/rerankd/rerankd/sdk/rerank/model"
	"golang.org/x/sync/errgroup"
)

// newTestReranker builds an engine whose scoring is a deterministic stub,
// so ranking behavior can be tested without a loaded model.
func newTestReranker(t *testing.T, score scoreFunc, opts ...Option) *Reranker {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var scores *cache.Cache
	if o.cacheCfg != nil {
		var err error
		scores, err = cache.New(*o.cacheCfg)
		if err != nil {
			t.Fatalf("creating cache: %s", err)
		}
	}

	r := Reranker{
		instances: 1,
		scores:    scores,
	}
	r.score = score

	return &r
}

// lengthScore gives longer documents higher scores. Deterministic and easy
// to reason about in assertions.
func lengthScore(ctx context.Context, question string, documents []string) ([]float64, model.Usage, error) {
	scores := make([]float64, len(documents))
	tokens := 0

	for i, doc := range documents {
		scores[i] = float64(len(doc))
		tokens += len(doc)
	}

	return scores, model.Usage{PromptTokens: tokens, TotalTokens: tokens}, nil
}

func Test_Rank(t *testing.T) {
	r := newTestReranker(t, lengthScore)

	result, err := r.Rank(context.Background(), RankRequest{
		Question:  "what is long",
		Documents: []string{"aa", "aaaa", "a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	wantDocs := []string{"aaaa", "aa", "a"}
	if diff := cmp.Diff(wantDocs, result.RankedDocuments); diff != "" {
		t.Errorf("ranked documents mismatch (-want +got):\n%s", diff)
	}

	wantScores := []float64{4, 2, 1}
	if diff := cmp.Diff(wantScores, result.Scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func Test_Rank_TopK(t *testing.T) {
	r := newTestReranker(t, lengthScore)

	tests := []struct {
		name string
		topK int
		want int
	}{
		{name: "truncates", topK: 2, want: 2},
		{name: "zero returns all", topK: 0, want: 3},
		{name: "larger than docs returns all", topK: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Rank(context.Background(), RankRequest{
				Question:  "q",
				Documents: []string{"aa", "aaaa", "a"},
				TopK:      tt.topK,
			})
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if len(result.RankedDocuments) != tt.want {
				t.Errorf("got %d documents, want %d", len(result.RankedDocuments), tt.want)
			}

			if len(result.Scores) != len(result.RankedDocuments) {
				t.Errorf("scores not parallel to documents: %d vs %d", len(result.Scores), len(result.RankedDocuments))
			}
		})
	}
}

func Test_Rank_StableTies(t *testing.T) {
	r := newTestReranker(t, lengthScore)

	result, err := r.Rank(context.Background(), RankRequest{
		Question:  "q",
		Documents: []string{"ab", "cd", "ef"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// Equal scores must keep the input order.
	wantDocs := []string{"ab", "cd", "ef"}
	if diff := cmp.Diff(wantDocs, result.RankedDocuments); diff != "" {
		t.Errorf("tied documents reordered (-want +got):\n%s", diff)
	}
}

func Test_Rank_Validation(t *testing.T) {
	r := newTestReranker(t, lengthScore)

	tests := []struct {
		name string
		rr   RankRequest
	}{
		{name: "empty question", rr: RankRequest{Question: "  ", Documents: []string{"a"}}},
		{name: "empty documents", rr: RankRequest{Question: "q"}},
		{name: "negative top_k", rr: RankRequest{Question: "q", Documents: []string{"a"}, TopK: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Rank(context.Background(), tt.rr)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func Test_Rank_ScoreCache(t *testing.T) {
	var calls int

	counting := func(ctx context.Context, question string, documents []string) ([]float64, model.Usage, error) {
		calls += len(documents)
		return lengthScore(ctx, question, documents)
	}

	r := newTestReranker(t, counting, WithScoreCache(cache.Config{MaxEntries: 32, TTL: time.Minute}))

	rr := RankRequest{Question: "q", Documents: []string{"aa", "aaaa", "a"}}

	first, err := r.Rank(context.Background(), rr)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if first.CacheHits != 0 {
		t.Errorf("first run: got %d cache hits, want 0", first.CacheHits)
	}

	second, err := r.Rank(context.Background(), rr)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if second.CacheHits != 3 {
		t.Errorf("second run: got %d cache hits, want 3", second.CacheHits)
	}

	if calls != 3 {
		t.Errorf("got %d scoring calls, want 3", calls)
	}

	if diff := cmp.Diff(first.RankedDocuments, second.RankedDocuments); diff != "" {
		t.Errorf("cached run changed ranking (-first +second):\n%s", diff)
	}

	if diff := cmp.Diff(first.Scores, second.Scores); diff != "" {
		t.Errorf("cached run changed scores (-first +second):\n%s", diff)
	}
}

func Test_Rank_Concurrent(t *testing.T) {
	r := newTestReranker(t, lengthScore)

	g := errgroup.Group{}

	for range 8 {
		g.Go(func() error {
			result, err := r.Rank(context.Background(), RankRequest{
				Question:  "q",
				Documents: []string{"aa", "aaaa", "a"},
				TopK:      2,
			})
			if err != nil {
				return err
			}

			if result.RankedDocuments[0] != "aaaa" {
				return errors.New("wrong top document")
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent rank: %s", err)
	}
}

func Test_rankScored(t *testing.T) {
	documents := []string{"d0", "d1", "d2", "d3"}
	scores := []float64{0.1, 0.9, 0.9, 0.5}

	ranked, rankedScores := rankScored(documents, scores, 0)

	wantDocs := []string{"d1", "d2", "d3", "d0"}
	if diff := cmp.Diff(wantDocs, ranked); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	wantScores := []float64{0.9, 0.9, 0.5, 0.1}
	if diff := cmp.Diff(wantScores, rankedScores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}

	ranked, _ = rankScored(documents, scores, 2)
	if len(ranked) != 2 || ranked[0] != "d1" || ranked[1] != "d2" {
		t.Errorf("topK truncation wrong: %v", ranked)
	}
}
