package models

import (
	"context"
	"fmt"
	"os"

	"github.com/rerankd/rerankd/sdk/tools/downloader"
)

// download performs a complete workflow for downloading and installing
// the specified model.
func (m *Models) download(ctx context.Context, log Logger, modelURL string) (Path, error) {
	modelID := extractModelID(modelURL)

	log(ctx, "download-model", "model-url", modelURL, "model-id", modelID)

	progress := func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool) {
		log(ctx, fmt.Sprintf("\x1b[1A\r\x1b[Kdownload-model: Downloading %s... %d MiB of %d MiB (%.2f MiB/s)", src, currentSize/(1024*1024), totalSize/(1024*1024), mibPerSec))
	}

	mp, errOrg := m.pullModel(ctx, modelURL, progress)
	if errOrg != nil {
		log(ctx, "download-model", "ERROR", errOrg, "model-file-url", modelURL)

		// A copy on disk from a previous run is good enough to start with.
		if _, modelFileName, err := m.modelFilePathAndName(modelURL); err == nil {
			size, err := fileSize(modelFileName)
			if err == nil && size > 0 {
				log(ctx, "download-model", "status", "using installed version of model")
				return Path{ModelFile: modelFileName}, nil
			}

			if err == nil && size == 0 {
				os.Remove(modelFileName)
			}
		}

		return Path{}, fmt.Errorf("download-model: unable to download model: %w", errOrg)
	}

	switch mp.Downloaded {
	case true:
		log(ctx, "download-model", "status", "downloaded")

	default:
		log(ctx, "download-model", "status", "already exists")
	}

	return mp, nil
}

func (m *Models) pullModel(ctx context.Context, modelFileURL string, progress downloader.ProgressFunc) (Path, error) {
	modelFilePath, modelFileName, err := m.modelFilePathAndName(modelFileURL)
	if err != nil {
		return Path{}, fmt.Errorf("pull-model: unable to extract file-path: %w", err)
	}

	downloaded, err := downloader.Download(ctx, modelFileURL, modelFilePath, progress, downloader.SizeIntervalMIB100)
	if err != nil {
		return Path{}, fmt.Errorf("pull-model: unable to download model: %w", err)
	}

	return Path{ModelFile: modelFileName, Downloaded: downloaded}, nil
}
