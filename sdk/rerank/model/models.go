package model

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// ModelInfo represents the model's card information.
type ModelInfo struct {
	ID         string
	Desc       string
	Size       uint64
	Embd       int
	HasEncoder bool
	HasDecoder bool
	Metadata   map[string]string
}

// Usage represents the token accounting for a scoring call.
type Usage struct {
	PromptTokens int
	TotalTokens  int
}

func toModelInfo(cfg Config, model llama.Model) ModelInfo {
	desc := llama.ModelDesc(model)
	size := llama.ModelSize(model)
	embd := int(llama.ModelNEmbd(model))
	encoder := llama.ModelHasEncoder(model)
	decoder := llama.ModelHasDecoder(model)
	count := llama.ModelMetaCount(model)
	metadata := make(map[string]string)

	for i := range count {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					return
				}
			}()

			key, ok := llama.ModelMetaKeyByIndex(model, i)
			if !ok {
				return
			}

			value, ok := llama.ModelMetaValStrByIndex(model, i)
			if !ok {
				return
			}

			metadata[key] = value
		}()
	}

	filename := filepath.Base(cfg.ModelFile)
	modelID := strings.TrimSuffix(filename, path.Ext(filename))

	return ModelInfo{
		ID:         modelID,
		Desc:       desc,
		Size:       size,
		Embd:       embd,
		HasEncoder: encoder,
		HasDecoder: decoder,
		Metadata:   metadata,
	}
}
