package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"inventree-connect/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver persists finished reports.
type Archiver interface {
	Archive(ctx context.Context, r *Report) error
	// Latest returns the newest archived report, or nil when there is none.
	Latest(ctx context.Context) (*Report, error)
}

// NopArchiver discards reports.
type NopArchiver struct{}

// Archive implements Archiver.
func (NopArchiver) Archive(context.Context, *Report) error { return nil }

// Latest implements Archiver.
func (NopArchiver) Latest(context.Context) (*Report, error) { return nil, nil }

// StorageArchiver writes reports as JSON objects and keeps the newest
// retention of them.
type StorageArchiver struct {
	client    storage.Client
	bucket    string
	prefix    string
	retention int
	logger    *zap.Logger
}

// NewStorageArchiver creates an archiver for the bucket and prefix of cfg.
func NewStorageArchiver(client storage.Client, cfg storage.Config, logger *zap.Logger) *StorageArchiver {
	return &StorageArchiver{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		retention: cfg.Retention,
		logger:    logger.Named("report"),
	}
}

// objectName sorts chronologically: the start time leads the name.
func (a *StorageArchiver) objectName(r *Report) string {
	return path.Join(a.prefix, r.StartedAt.Format("20060102T150405Z")+"-"+r.CycleID+".json")
}

// Archive implements Archiver.
func (a *StorageArchiver) Archive(ctx context.Context, r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	name := a.objectName(r)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload report %s: %w", name, err)
	}
	return a.prune(ctx)
}

// listPrefix is empty when reports live at the bucket root.
func (a *StorageArchiver) listPrefix() string {
	if a.prefix == "" {
		return ""
	}
	return a.prefix + "/"
}

func (a *StorageArchiver) list(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.listPrefix(), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list reports: %w", obj.Err)
		}
		if path.Ext(obj.Key) == ".json" {
			names = append(names, obj.Key)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (a *StorageArchiver) prune(ctx context.Context) error {
	if a.retention <= 0 {
		return nil
	}
	names, err := a.list(ctx)
	if err != nil {
		return err
	}
	if len(names) <= a.retention {
		return nil
	}
	for _, name := range names[:len(names)-a.retention] {
		if err := a.client.RemoveObject(ctx, a.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove report %s: %w", name, err)
		}
		a.logger.Debug("Old report removed", zap.String("object", name))
	}
	return nil
}

// Latest implements Archiver.
func (a *StorageArchiver) Latest(ctx context.Context) (*Report, error) {
	names, err := a.list(ctx)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	name := names[len(names)-1]
	body, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download report %s: %w", name, err)
	}
	defer body.Close()

	var r Report
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", name, err)
	}
	return &r, nil
}
