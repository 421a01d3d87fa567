package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hybridgroup/yzma/pkg/llama"
)

const (
	defContextWindow = 4 * 1024
	defNBatch        = 2 * 1024
	defNUBatch       = 512
)

// defPairTemplate renders a question/document pair for a BGE style reranker.
// The tokenizer is asked not to add special tokens since the template
// carries them.
const defPairTemplate = "<s>%s</s><s>%s</s>"

// Logger provides a function for logging messages from different APIs.
type Logger func(ctx context.Context, msg string, args ...any)

// =============================================================================

// Config represents model level configuration. These values if configured
// incorrectly can cause the system to panic. The defaults are used when these
// values are set to 0.
//
// ModelFile is the path to the reranker model file. This is mandatory to
// provide.
//
// Device is the device to use for the model. If not set, the default device
// will be used. To see what devices are available, run the following command
// which will be found where you installed llama.cpp.
// $ llama-bench --list-devices
//
// PairTemplate is the printf style template used to render a question and a
// document into the single sequence the cross-encoder scores. The template
// must contain exactly two %s verbs, question first. When empty, a BGE style
// template is used.
//
// ContextWindow is the maximum number of tokens the model can process in a
// single scoring pass. A rendered pair longer than this is truncated from the
// right, keeping the question intact.
// When set to 0, the value from the model metadata is used.
//
// NBatch is the logical batch size or the maximum number of tokens that can be
// in a single forward pass through the model at any given time.
// When set to 0, the default value is 2048.
//
// NUBatch is the physical batch size or the maximum number of tokens processed
// together during prompt ingestion.
// When set to 0, the default value is 512.
//
// NThreads is the number of threads to use for generation. When set to 0, the
// default llama.cpp value is used.
//
// NThreadsBatch is the number of threads to use for batch processing. When set
// to 0, the default llama.cpp value is used.
//
// IgnoreIntegrityCheck is a boolean that determines if the system should ignore
// a model integrity check before trying to use it.
type Config struct {
	Log                  Logger
	ModelFile            string
	Device               string
	PairTemplate         string
	ContextWindow        int
	NBatch               int
	NUBatch              int
	NThreads             int
	NThreadsBatch        int
	IgnoreIntegrityCheck bool
}

func validateConfig(cfg Config, log Logger) error {
	if cfg.ModelFile == "" {
		return fmt.Errorf("validate-config: model file is required")
	}

	if cfg.PairTemplate != "" {
		if strings.Count(cfg.PairTemplate, "%s") != 2 {
			return fmt.Errorf("validate-config: pair template must contain exactly two %%s verbs")
		}
	}

	if !cfg.IgnoreIntegrityCheck {
		log(context.Background(), "checking-model-integrity", "model-file", cfg.ModelFile)

		if err := CheckModel(cfg.ModelFile, true); err != nil {
			return fmt.Errorf("validate-config: checking-model-integrity: %w", err)
		}
	}

	return nil
}

func adjustConfig(cfg Config, model llama.Model) Config {
	cfg = adjustContextWindow(cfg, model)

	if cfg.PairTemplate == "" {
		cfg.PairTemplate = defPairTemplate
	}

	if cfg.NBatch <= 0 {
		cfg.NBatch = defNBatch
	}

	if cfg.NUBatch <= 0 {
		cfg.NUBatch = defNUBatch
	}

	if cfg.NThreads < 0 {
		cfg.NThreads = 0
	}

	if cfg.NThreadsBatch < 0 {
		cfg.NThreadsBatch = 0
	}

	// NBatch is generally greater than or equal to NUBatch. The entire
	// NUBatch of tokens must fit into a physical batch for processing.
	if cfg.NUBatch > cfg.NBatch {
		cfg.NUBatch = cfg.NBatch
	}

	return cfg
}

func adjustContextWindow(cfg Config, model llama.Model) Config {
	modelCW := defContextWindow
	v, found := searchModelMeta(model, "context_length")
	if found {
		ctxLen, err := strconv.Atoi(v)
		if err == nil {
			modelCW = ctxLen
		}
	}

	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = modelCW
	}

	return cfg
}

func modelCtxParams(cfg Config) llama.ContextParams {
	ctxParams := llama.ContextDefaultParams()

	// Rank pooling makes the model emit a single relevance score per
	// sequence instead of a token distribution.
	ctxParams.Embeddings = 1
	ctxParams.PoolingType = llama.PoolingTypeRank

	if cfg.ContextWindow > 0 {
		ctxParams.NBatch = uint32(cfg.NBatch)
		ctxParams.NUbatch = uint32(cfg.NUBatch)
		ctxParams.NCtx = uint32(cfg.ContextWindow)
		ctxParams.NThreads = int32(cfg.NThreads)
		ctxParams.NThreadsBatch = int32(cfg.NThreadsBatch)
	}

	return ctxParams
}

func searchModelMeta(model llama.Model, find string) (string, bool) {
	count := llama.ModelMetaCount(model)

	for i := range count {
		key, ok := llama.ModelMetaKeyByIndex(model, i)
		if !ok {
			continue
		}

		if strings.Contains(key, find) {
			value, ok := llama.ModelMetaValStrByIndex(model, i)
			if !ok {
				continue
			}

			return value, true
		}
	}

	return "", false
}
