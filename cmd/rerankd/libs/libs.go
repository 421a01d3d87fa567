// Package libs provides the libs command code.
package libs

import (
	"context"
	"fmt"
	"time"

	"github.com/rerankd/rerankd/sdk/rerank"
	"github.com/rerankd/rerankd/sdk/tools/libs"
)

// Run executes the libs command.
func Run(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	lbs, err := libs.New()
	if err != nil {
		return err
	}

	if _, err := lbs.Download(ctx, rerank.FmtLogger); err != nil {
		return fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	if err := rerank.Init(); err != nil {
		return fmt.Errorf("libs: installation invalid: %w", err)
	}

	return nil
}
