package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"mindcare-go/internal/config"
	"mindcare-go/internal/inference"
	"mindcare-go/pkg/storage"
)

// loadClassifier reads both artifacts from the configured source.
func loadClassifier(ctx context.Context, cfg config.Config) (*inference.LinearClassifier, error) {
	open := openFile
	if cfg.Model.Source == "minio" {
		if err := storage.InitMinIO(cfg.MinIO); err != nil {
			return nil, err
		}
		open = func(name string) (io.ReadCloser, error) {
			return storage.FetchObject(ctx, cfg.MinIO.BucketName, name)
		}
	} else if cfg.Model.Source != "file" {
		return nil, fmt.Errorf("unknown model source %q", cfg.Model.Source)
	}

	vec, err := open(cfg.Model.VectorizerPath)
	if err != nil {
		return nil, err
	}
	defer vec.Close()

	pred, err := open(cfg.Model.PredictorPath)
	if err != nil {
		return nil, err
	}
	defer pred.Close()

	return inference.LoadClassifier(vec, pred)
}

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}
