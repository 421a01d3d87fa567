package rerank

import (
	"context"
	"fmt"
)

// Fixed inputs for the self test. The panda documents must outrank the
// programming one for any reasonable reranker checkpoint.
var (
	selfTestQuestion = "What is a panda?"

	selfTestDocuments = []string{
		"The giant panda is a bear native to China.",
		"Python is a programming language.",
		"Pandas eat bamboo as their main food source.",
	}
)

// SelfTestResult carries the outcome of a self test run. The rank fields
// have the same shape as a regular ranking call.
type SelfTestResult struct {
	Question string
	Result   RankResult
	Passed   bool
}

// SelfTest runs a fixed ranking request through the engine to verify the
// model is loaded and responsive. The test passes when both panda documents
// rank above the unrelated one.
func (r *Reranker) SelfTest(ctx context.Context) (SelfTestResult, error) {
	result, err := r.Rank(ctx, RankRequest{
		Question:  selfTestQuestion,
		Documents: selfTestDocuments,
	})
	if err != nil {
		return SelfTestResult{}, fmt.Errorf("self-test: %w", err)
	}

	str := SelfTestResult{
		Question: selfTestQuestion,
		Result:   result,
		Passed:   len(result.RankedDocuments) == len(selfTestDocuments) && result.RankedDocuments[len(result.RankedDocuments)-1] == selfTestDocuments[1],
	}

	return str, nil
}
