package models

import (
	"path/filepath"
	"testing"
)

func Test_modelFilePathAndName(t *testing.T) {
	m := Models{modelsPath: "/base/models"}

	url := "https://huggingface.co/gpustack/bge-reranker-v2-m3-GGUF/resolve/main/bge-reranker-v2-m3-Q4_K_M.gguf"

	gotPath, gotName, err := m.modelFilePathAndName(url)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	wantPath := filepath.Join("/base/models", "gpustack", "bge-reranker-v2-m3-GGUF")
	if gotPath != wantPath {
		t.Errorf("path: got %q, want %q", gotPath, wantPath)
	}

	wantName := filepath.Join(wantPath, "bge-reranker-v2-m3-Q4_K_M.gguf")
	if gotName != wantName {
		t.Errorf("name: got %q, want %q", gotName, wantName)
	}

	if _, _, err := m.modelFilePathAndName("https://host/justone"); err == nil {
		t.Error("expected error for url with too few path parts")
	}
}

func Test_extractModelID(t *testing.T) {
	got := extractModelID("https://huggingface.co/org/repo/resolve/main/bge-reranker-v2-m3-Q4_K_M.gguf")
	want := "bge-reranker-v2-m3-Q4_K_M"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
