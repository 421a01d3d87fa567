package rankapp

import (
	"strings"
	"testing"
)

func Test_RankRequest_Validate(t *testing.T) {
	topK := func(v int) *int { return &v }

	tests := []struct {
		name    string
		req     RankRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  RankRequest{Question: "q", Documents: []string{"a", "b"}},
		},
		{
			name: "valid with top_k",
			req:  RankRequest{Question: "q", Documents: []string{"a"}, TopK: topK(1)},
		},
		{
			name:    "empty question",
			req:     RankRequest{Documents: []string{"a"}},
			wantErr: "question cannot be empty",
		},
		{
			name:    "no documents",
			req:     RankRequest{Question: "q"},
			wantErr: "no documents provided",
		},
		{
			name:    "empty document entry",
			req:     RankRequest{Question: "q", Documents: []string{"a", ""}},
			wantErr: "documents[1] cannot be empty",
		},
		{
			name:    "zero top_k",
			req:     RankRequest{Question: "q", Documents: []string{"a"}, TopK: topK(0)},
			wantErr: "top_k must be >= 1",
		},
		{
			name:    "negative top_k",
			req:     RankRequest{Question: "q", Documents: []string{"a"}, TopK: topK(-3)},
			wantErr: "top_k must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}

			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
