// Package rankapp provides the document ranking api endpoints.
package rankapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rerankd/rerankd/app/sdk/errs"
	"github.com/rerankd/rerankd/foundation/logger"
	"github.com/rerankd/rerankd/foundation/web"
	"github.com/rerankd/rerankd/sdk/rerank"
)

// Engine defines what the handlers need from the ranking engine.
type Engine interface {
	Rank(ctx context.Context, rr rerank.RankRequest) (rerank.RankResult, error)
	SelfTest(ctx context.Context) (rerank.SelfTestResult, error)
}

type app struct {
	log    *logger.Logger
	engine Engine
}

func newApp(cfg Config) *app {
	return &app{
		log:    cfg.Log,
		engine: cfg.Engine,
	}
}

func (a *app) rank(ctx context.Context, r *http.Request) web.Encoder {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	if err := req.Validate(); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	topK := 0
	if req.TopK != nil {
		topK = *req.TopK
	}

	a.log.Info(ctx, "rank", "documents", len(req.Documents), "top_k", topK)

	now := time.Now()

	result, err := a.engine.Rank(ctx, rerank.RankRequest{
		Question:  req.Question,
		Documents: req.Documents,
		TopK:      topK,
	})
	if err != nil {
		var ve *rerank.ValidationError
		if errors.As(err, &ve) {
			return errs.New(errs.InvalidArgument, ve)
		}

		return errs.New(errs.Internal, err)
	}

	return toRankResponse(result, time.Since(now))
}

func (a *app) selfTest(ctx context.Context, r *http.Request) web.Encoder {
	a.log.Info(ctx, "self-test", "status", "started")

	now := time.Now()

	str, err := a.engine.SelfTest(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	a.log.Info(ctx, "self-test", "status", "completed", "passed", str.Passed)

	return toSelfTestResponse(str, time.Since(now))
}
