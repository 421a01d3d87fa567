package rankapi_test

import (
	"context"
	"sort"
	"testing"

	"github.com/rerankd/rerankd/app/sdk/apitest"
	"github.com/rerankd/rerankd/sdk/rerank"
	"github.com/rerankd/rerankd/sdk/rerank/model"
)

func Test_API(t *testing.T) {
	test := apitest.New(t, "Test_API", apitest.Config{
		Engine: &stubEngine{scores: pandaScores},
		Diag:   cpuDiag(),
	})

	test.Run(t, rank200(), "rank-200")
	test.Run(t, rank400(), "rank-400")
	test.Run(t, selfTest200(), "selftest-200")
	test.Run(t, healthz200(), "healthz-200")
	test.Run(t, root200(), "root-200")
}

func Test_API_Debug(t *testing.T) {
	test := apitest.New(t, "Test_API_Debug", apitest.Config{
		Engine: &stubEngine{scores: pandaScores},
		Diag:   cpuDiag(),
		Debug:  true,
	})

	test.Run(t, healthzDebug200(), "healthz-debug-200")
}

func Test_API_EngineFailure(t *testing.T) {
	test := apitest.New(t, "Test_API_EngineFailure", apitest.Config{
		Engine: &stubEngine{err: errModelDown},
		Diag:   cpuDiag(),
	})

	test.Run(t, rank500(), "rank-500")
	test.Run(t, selfTest500(), "selftest-500")
}

// =============================================================================

var (
	pandaQuestion  = "What is a panda?"
	pandaDocuments = []string{
		"The giant panda is a bear native to China.",
		"Python is a programming language.",
		"Pandas eat bamboo as their main food source.",
	}

	pandaScores = map[string]float64{
		pandaDocuments[0]: 8.1,
		pandaDocuments[1]: -2.3,
		pandaDocuments[2]: 6.4,
	}
)

type engineError string

func (e engineError) Error() string { return string(e) }

const errModelDown = engineError("model invocation failed: decode returned 1")

// stubEngine scores documents from a fixed table so tests stay deterministic.
type stubEngine struct {
	scores map[string]float64
	err    error
}

func (s *stubEngine) Rank(ctx context.Context, rr rerank.RankRequest) (rerank.RankResult, error) {
	if s.err != nil {
		return rerank.RankResult{}, s.err
	}

	scores := make([]float64, len(rr.Documents))
	for i, doc := range rr.Documents {
		scores[i] = s.scores[doc]
	}

	idx := make([]int, len(rr.Documents))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	n := len(idx)
	if rr.TopK > 0 && rr.TopK < n {
		n = rr.TopK
	}

	result := rerank.RankResult{
		RankedDocuments: make([]string, n),
		Scores:          make([]float64, n),
	}

	for i := range n {
		result.RankedDocuments[i] = rr.Documents[idx[i]]
		result.Scores[i] = scores[idx[i]]
	}

	return result, nil
}

func (s *stubEngine) SelfTest(ctx context.Context) (rerank.SelfTestResult, error) {
	if s.err != nil {
		return rerank.SelfTestResult{}, s.err
	}

	result, err := s.Rank(ctx, rerank.RankRequest{
		Question:  pandaQuestion,
		Documents: pandaDocuments,
	})
	if err != nil {
		return rerank.SelfTestResult{}, err
	}

	return rerank.SelfTestResult{
		Question: pandaQuestion,
		Result:   result,
		Passed:   true,
	}, nil
}

// stubDiag reports a fixed device selection for health tests.
type stubDiag struct {
	sel     rerank.Selection
	mi      model.ModelInfo
	streams int
}

func (s *stubDiag) Devices() rerank.Selection  { return s.sel }
func (s *stubDiag) ModelInfo() model.ModelInfo { return s.mi }
func (s *stubDiag) ActiveStreams() int         { return s.streams }

func (s *stubDiag) SystemInfo() map[string]string {
	return map[string]string{"AVX": "1"}
}

func cpuDiag() *stubDiag {
	return &stubDiag{
		sel: rerank.Selection{
			Available: false,
			Count:     0,
			Selected:  -1,
		},
		mi: model.ModelInfo{
			ID:   "bge-reranker-v2-m3-Q4_K_M",
			Size: 512,
		},
	}
}
