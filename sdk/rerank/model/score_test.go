package model

import (
	"context"
	"testing"

	"github.com/hybridgroup/yzma/pkg/llama"
)

func Test_renderPair(t *testing.T) {
	tests := []struct {
		name     string
		template string
		question string
		document string
		want     string
	}{
		{
			name:     "bge",
			template: defPairTemplate,
			question: "What is a panda?",
			document: "The giant panda is a bear species endemic to China.",
			want:     "<s>What is a panda?</s><s>The giant panda is a bear species endemic to China.</s>",
		},
		{
			name:     "custom",
			template: "query: %s document: %s",
			question: "q",
			document: "d",
			want:     "query: q document: d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderPair(tt.template, tt.question, tt.document)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_truncateTokens(t *testing.T) {
	tokens := []llama.Token{1, 2, 3, 4, 5}

	got := truncateTokens(tokens, 3)
	if len(got) != 3 {
		t.Fatalf("got %d tokens, want 3", len(got))
	}

	for i, tkn := range []llama.Token{1, 2, 3} {
		if got[i] != tkn {
			t.Errorf("token[%d]: got %d, want %d", i, got[i], tkn)
		}
	}

	got = truncateTokens(tokens, 10)
	if len(got) != 5 {
		t.Fatalf("got %d tokens, want 5", len(got))
	}
}

func Test_validateConfig(t *testing.T) {
	nop := func(ctx context.Context, msg string, args ...any) {}

	cfg := Config{
		ModelFile:            "model.gguf",
		PairTemplate:         "only one %s verb",
		IgnoreIntegrityCheck: true,
	}

	if err := validateConfig(cfg, nop); err == nil {
		t.Fatal("expected error for template with one verb")
	}

	cfg.PairTemplate = "q: %s d: %s"
	if err := validateConfig(cfg, nop); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	cfg.ModelFile = ""
	if err := validateConfig(cfg, nop); err == nil {
		t.Fatal("expected error for missing model file")
	}
}
