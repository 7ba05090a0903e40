package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"voicepad/internal/config"
	"voicepad/internal/logger"
)

// Open builds the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageLocal:
		l, err := NewLocal(cfg.StorageLocalDir, cfg.StoragePublicURL)
		if err != nil {
			return nil, err
		}
		logger.Info("local storage ready", zap.String("root", l.Root()))
		return l, nil

	case config.StorageS3:
		s, err := NewS3(S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("s3 storage ready", zap.String("endpoint", cfg.S3Endpoint), zap.String("bucket", cfg.S3Bucket))
		return s, nil

	case config.StorageMinio:
		m, err := NewMinio(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("minio storage ready", zap.String("endpoint", cfg.MinioEndpoint), zap.String("bucket", cfg.MinioBucket))
		return m, nil

	case config.StorageMemory:
		logger.Warn("memory storage selected, files are lost on restart")
		return NewMemory(cfg.StoragePublicURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
