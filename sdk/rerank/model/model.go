// Package model provides the low-level api for scoring with reranker models.
package model

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hybridgroup/yzma/pkg/llama"
	"github.com/rerankd/rerankd/sdk/rerank/observ/metrics"
)

// Model represents a reranker model and provides a low-level API for
// scoring question/document pairs with it.
type Model struct {
	cfg           Config
	log           Logger
	model         llama.Model
	vocab         llama.Vocab
	ctxParams     llama.ContextParams
	modelInfo     ModelInfo
	activeStreams atomic.Int32
}

// NewModel loads the reranker model file into memory and prepares it for
// scoring. The model is bound to the configured device when one is set.
func NewModel(cfg Config) (*Model, error) {
	l := cfg.Log
	if l == nil {
		l = func(ctx context.Context, msg string, args ...any) {}
	}

	if err := validateConfig(cfg, l); err != nil {
		return nil, fmt.Errorf("new-model: unable to validate config: %w", err)
	}

	mparams := llama.ModelDefaultParams()
	if cfg.Device != "" {
		dev := llama.GGMLBackendDeviceByName(cfg.Device)
		if dev == 0 {
			return nil, fmt.Errorf("new-model: unknown device: %s", cfg.Device)
		}
		mparams.SetDevices([]llama.GGMLBackendDevice{dev})
	}

	now := time.Now()

	mdl, err := llama.ModelLoadFromFile(cfg.ModelFile, mparams)
	if err != nil {
		return nil, fmt.Errorf("new-model: unable to load model: %w", err)
	}

	metrics.AddModelFileLoadTime(time.Since(now))

	cfg = adjustConfig(cfg, mdl)
	vocab := llama.ModelGetVocab(mdl)

	m := Model{
		cfg:       cfg,
		log:       l,
		model:     mdl,
		vocab:     vocab,
		ctxParams: modelCtxParams(cfg),
		modelInfo: toModelInfo(cfg, mdl),
	}

	return &m, nil
}

// Unload waits for active scoring calls to drain and releases the model.
func (m *Model) Unload(ctx context.Context) error {
	if _, exists := ctx.Deadline(); !exists {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	for m.activeStreams.Load() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("unload: cannot unload %d active streams: %w", m.activeStreams.Load(), ctx.Err())

		case <-time.After(100 * time.Millisecond):
		}
	}

	llama.ModelFree(m.model)

	return nil
}

// Config returns the adjusted configuration the model runs with.
func (m *Model) Config() Config {
	return m.cfg
}

// ModelInfo returns the model's card information.
func (m *Model) ModelInfo() ModelInfo {
	return m.modelInfo
}
