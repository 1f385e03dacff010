// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the cycle report archive
// can be tested against core/storage/mocks. Both AWS S3 and self-hosted MinIO work.
//
// # Operations
//
//   - BucketExists / MakeBucket: EnsureBucket creates the archive bucket on first use.
//   - PutObject: Uploads one JSON report per cycle.
//   - GetObject: Reads an archived report back.
//   - ListObjects / RemoveObject: Retention pruning of old reports.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
