// Package storage fetches classifier artifacts from MinIO object storage.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mindcare-go/internal/config"
	"mindcare-go/pkg/log"
)

// MinioClient is set by InitMinIO.
var MinioClient *minio.Client

// InitMinIO creates the MinIO client and checks that the artifact bucket exists.
// Unlike the database clients it returns an error, since a missing model must
// not stop the process.
func InitMinIO(cfg config.MinIOConfig) error {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("init MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), cfg.BucketName)
	if err != nil {
		return fmt.Errorf("check MinIO bucket %q: %w", cfg.BucketName, err)
	}
	if !exists {
		return fmt.Errorf("MinIO bucket %q does not exist", cfg.BucketName)
	}

	MinioClient = client
	log.Infof("MinIO client ready, bucket '%s'", cfg.BucketName)
	return nil
}

// FetchObject opens objectName in bucketName. The caller closes the reader.
func FetchObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	if MinioClient == nil {
		return nil, fmt.Errorf("MinIO client is not initialised")
	}
	obj, err := MinioClient.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucketName, objectName, err)
	}
	// GetObject is lazy; Stat surfaces a missing object here rather than on first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("stat object %s/%s: %w", bucketName, objectName, err)
	}
	return obj, nil
}
