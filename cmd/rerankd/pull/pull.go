// Package pull provides the pull command code.
package pull

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rerankd/rerankd/sdk/rerank"
	"github.com/rerankd/rerankd/sdk/tools/defaults"
	"github.com/rerankd/rerankd/sdk/tools/models"
)

// Run executes the pull command.
func Run(args []string) error {
	modelURL := args[0]

	if _, err := url.ParseRequestURI(modelURL); err != nil {
		return fmt.Errorf("invalid URL: %s", modelURL)
	}

	mdls, err := models.New(defaults.BaseDir(""))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	mp, err := mdls.Resolve(ctx, rerank.FmtLogger, modelURL)
	if err != nil {
		return err
	}

	if !mp.Downloaded {
		fmt.Println("Already downloaded:", mp.ModelFile)
		return nil
	}

	fmt.Println("Download Completed:", mp.ModelFile)
	return nil
}
