package rankapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rerankd/rerankd/sdk/rerank"
)

// RankRequest represents the payload for a ranking call. TopK is optional,
// omitting it returns all documents.
type RankRequest struct {
	Question  string   `json:"question"`
	Documents []string `json:"documents"`
	TopK      *int     `json:"top_k,omitempty"`
}

// Validate checks the request payload before it reaches the engine.
func (req RankRequest) Validate() error {
	if req.Question == "" {
		return errors.New("question cannot be empty")
	}

	if len(req.Documents) == 0 {
		return errors.New("no documents provided")
	}

	for i, doc := range req.Documents {
		if doc == "" {
			return fmt.Errorf("documents[%d] cannot be empty", i)
		}
	}

	if req.TopK != nil && *req.TopK < 1 {
		return errors.New("top_k must be >= 1")
	}

	return nil
}

// RankResponse carries the ranked documents with their parallel scores.
type RankResponse struct {
	ID              string    `json:"id"`
	RankedDocuments []string  `json:"ranked_documents"`
	Scores          []float64 `json:"scores"`
	ExecutionTime   float64   `json:"execution_time"`
}

// Encode implements the encoder interface.
func (app RankResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toRankResponse(result rerank.RankResult, elapsed time.Duration) RankResponse {
	return RankResponse{
		ID:              "rank-" + uuid.NewString(),
		RankedDocuments: result.RankedDocuments,
		Scores:          result.Scores,
		ExecutionTime:   elapsed.Seconds(),
	}
}

// SelfTestResponse reports a self test run. The ranking fields have the
// same shape as a regular ranking response.
type SelfTestResponse struct {
	Question        string    `json:"question"`
	RankedDocuments []string  `json:"ranked_documents"`
	Scores          []float64 `json:"scores"`
	ExecutionTime   float64   `json:"execution_time"`
	Passed          bool      `json:"passed"`
}

// Encode implements the encoder interface.
func (app SelfTestResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toSelfTestResponse(str rerank.SelfTestResult, elapsed time.Duration) SelfTestResponse {
	return SelfTestResponse{
		Question:        str.Question,
		RankedDocuments: str.Result.RankedDocuments,
		Scores:          str.Result.Scores,
		ExecutionTime:   elapsed.Seconds(),
		Passed:          str.Passed,
	}
}
