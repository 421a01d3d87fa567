// Package rerank provides a concurrently safe api for scoring and ranking
// documents against a question using llama.cpp via yzma.
package rerank

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hybridgroup/yzma/pkg/llama"
	"github.com/rerankd/rerankd/sdk/rerank/cache"
	"github.com/rerankd/rerankd/sdk/rerank/model"
)

// Version contains the current version of the rerank package.
const Version = "0.3.0"

// =============================================================================

type options struct {
	deviceIndex    int
	visibleDevices []int
	cacheCfg       *cache.Config
}

// Option represents options for configuring the Reranker.
type Option func(*options)

// WithDeviceIndex selects which accelerator to bind the model to. The index
// is applied after the visible device mask. When the index lands outside the
// set of available devices, the engine runs on CPU.
func WithDeviceIndex(index int) Option {
	return func(o *options) {
		o.deviceIndex = index
	}
}

// WithVisibleDevices restricts which accelerators the engine may see. The
// ordinals index the probed device list.
func WithVisibleDevices(ordinals []int) Option {
	return func(o *options) {
		o.visibleDevices = ordinals
	}
}

// WithScoreCache enables caching of computed scores.
func WithScoreCache(cfg cache.Config) Option {
	return func(o *options) {
		o.cacheCfg = &cfg
	}
}

// =============================================================================

// Reranker provides a concurrently safe api for ranking documents with a
// cross-encoder model.
type Reranker struct {
	cfg           model.Config
	models        chan *model.Model
	instances     int
	activeStreams atomic.Int32
	shutdown      sync.Mutex
	shutdownFlag  bool
	modelInfo     model.ModelInfo
	selection     Selection
	scores        *cache.Cache
	score         scoreFunc
}

// New loads the reranker model and provides the ability to rank documents
// in a concurrently safe way.
//
// modelInstances represents the number of instances of the model to create.
// Unless you have more than 1 GPU, the recommended number of instances is 1.
func New(modelInstances int, cfg model.Config, opts ...Option) (*Reranker, error) {
	if libraryLocation == "" {
		return nil, fmt.Errorf("the Init() function has not been called")
	}

	if modelInstances <= 0 {
		return nil, fmt.Errorf("instances must be > 0, got %d", modelInstances)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// -------------------------------------------------------------------------

	selection := selectDevice(ProbeDevices(), o.deviceIndex, o.visibleDevices)
	if selection.Selected >= 0 {
		cfg.Device = selection.SelectedName
	}

	var scores *cache.Cache
	if o.cacheCfg != nil {
		var err error
		scores, err = cache.New(*o.cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("score cache: %w", err)
		}
	}

	// -------------------------------------------------------------------------

	ctx := context.Background()

	models := make(chan *model.Model, modelInstances)
	var firstModel *model.Model

	for range modelInstances {
		m, err := model.NewModel(cfg)
		if err != nil {
			close(models)
			for mdl := range models {
				mdl.Unload(ctx)
			}

			return nil, err
		}

		models <- m

		if firstModel == nil {
			firstModel = m
		}
	}

	if firstModel == nil {
		return nil, fmt.Errorf("no models loaded")
	}

	r := Reranker{
		cfg:       firstModel.Config(),
		models:    models,
		instances: modelInstances,
		modelInfo: firstModel.ModelInfo(),
		selection: selection,
		scores:    scores,
	}

	r.score = r.poolScores

	return &r, nil
}

// ModelConfig returns a copy of the configuration being used. This may be
// different from the configuration passed to New() if the model has
// overridden any of the settings.
func (r *Reranker) ModelConfig() model.Config {
	return r.cfg
}

// ModelInfo returns the model information.
func (r *Reranker) ModelInfo() model.ModelInfo {
	return r.modelInfo
}

// Devices returns the accelerator selection the engine runs with.
func (r *Reranker) Devices() Selection {
	return r.selection
}

// ActiveStreams returns the number of active scoring calls.
func (r *Reranker) ActiveStreams() int {
	return int(r.activeStreams.Load())
}

// SystemInfo returns system information.
func (r *Reranker) SystemInfo() map[string]string {
	result := make(map[string]string)

	for part := range strings.SplitSeq(llama.PrintSystemInfo(), "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Remove the "= 1" or similar suffix
		if idx := strings.Index(part, "="); idx != -1 {
			part = strings.TrimSpace(part[:idx])
		}

		// Check for "Key : Value" pattern
		switch kv := strings.SplitN(part, ":", 2); len(kv) {
		case 2:
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			result[key] = value
		default:
			result[part] = "on"
		}
	}

	return result
}

// Unload will close down all loaded models. You should call this only when
// you are completely done using the engine.
func (r *Reranker) Unload(ctx context.Context) error {
	if _, exists := ctx.Deadline(); !exists {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	// -------------------------------------------------------------------------

	err := func() error {
		r.shutdown.Lock()
		defer r.shutdown.Unlock()

		if r.shutdownFlag {
			return fmt.Errorf("unload: already unloaded")
		}

		for r.activeStreams.Load() > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("unload: cannot unload: %d active streams: %w", r.activeStreams.Load(), ctx.Err())

			case <-time.After(100 * time.Millisecond):
			}
		}

		r.shutdownFlag = true
		return nil
	}()

	if err != nil {
		return err
	}

	// -------------------------------------------------------------------------

	var sb strings.Builder

	close(r.models)
	for mdl := range r.models {
		if err := mdl.Unload(ctx); err != nil {
			sb.WriteString(fmt.Sprintf("unload: failed to unload model: %s: %v\n", mdl.ModelInfo().ID, err))
		}
	}

	if r.scores != nil {
		r.scores.Clear()
	}

	llama.BackendFree()

	if sb.Len() > 0 {
		return fmt.Errorf("%s", sb.String())
	}

	return nil
}

// =============================================================================

func (r *Reranker) acquireModel(ctx context.Context) (*model.Model, error) {
	err := func() error {
		r.shutdown.Lock()
		defer r.shutdown.Unlock()

		if r.shutdownFlag {
			return fmt.Errorf("acquire-model: reranker has been unloaded")
		}

		r.activeStreams.Add(1)
		return nil
	}()

	if err != nil {
		return nil, err
	}

	// -------------------------------------------------------------------------

	select {
	case <-ctx.Done():
		r.activeStreams.Add(-1)
		return nil, ctx.Err()

	case m := <-r.models:
		return m, nil
	}
}

func (r *Reranker) releaseModel(m *model.Model) {
	r.models <- m
	r.activeStreams.Add(-1)
}
