// Package models provides support for tooling around reranker model files.
package models

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Logger represents a logger for capturing events.
type Logger func(ctx context.Context, msg string, args ...any)

// Path provides the location of a model on disk.
type Path struct {
	ModelFile  string
	Downloaded bool
}

// Models manages the on disk model store.
type Models struct {
	modelsPath string
}

// New constructs a Models value rooted at the specified base path. The
// directory is created when it doesn't exist.
func New(basePath string) (*Models, error) {
	modelsPath := filepath.Join(basePath, "models")

	if err := os.MkdirAll(modelsPath, 0755); err != nil {
		return nil, fmt.Errorf("models: unable to create models directory: %w", err)
	}

	return &Models{modelsPath: modelsPath}, nil
}

// Resolve returns the local path for a model reference. A reference that
// points to an existing file is used as is. A url is downloaded into the
// model store, reusing a previously downloaded copy when one exists.
func (m *Models) Resolve(ctx context.Context, log Logger, modelRef string) (Path, error) {
	if info, err := os.Stat(modelRef); err == nil && !info.IsDir() {
		return Path{ModelFile: modelRef}, nil
	}

	u, err := url.Parse(modelRef)
	if err != nil || u.Scheme == "" {
		return Path{}, fmt.Errorf("resolve: model ref is neither a file nor a url: %q", modelRef)
	}

	return m.download(ctx, log, modelRef)
}

// =============================================================================

func (m *Models) modelFilePathAndName(modelFileURL string) (string, string, error) {
	mURL, err := url.Parse(modelFileURL)
	if err != nil {
		return "", "", fmt.Errorf("model-file-path-and-name: unable to parse fileURL: %w", err)
	}

	parts := strings.Split(mURL.Path, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("model-file-path-and-name: invalid huggingface url: %q", mURL.Path)
	}

	modelFilePath := filepath.Join(m.modelsPath, parts[1], parts[2])
	modelFileName := filepath.Join(modelFilePath, path.Base(mURL.Path))

	return modelFilePath, modelFileName, nil
}

func extractModelID(modelFileName string) string {
	return strings.TrimSuffix(path.Base(modelFileName), path.Ext(modelFileName))
}

func fileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}
