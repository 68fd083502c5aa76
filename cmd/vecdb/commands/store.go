package commands

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecdb/blobstore"
	minioblob "github.com/hupe1980/vecdb/blobstore/minio"
	s3blob "github.com/hupe1980/vecdb/blobstore/s3"
	"github.com/hupe1980/vecdb/internal/config"
)

// openStore returns the snapshot store of cfg, or nil when snapshots are disabled.
func openStore(ctx context.Context, cfg config.Snapshot) (blobstore.BlobStore, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "local":
		return blobstore.NewLocalStore(cfg.Path)
	case "s3":
		return s3blob.New(ctx, cfg.Bucket, func(o *s3blob.Options) {
			o.Prefix = cfg.Prefix
			o.Region = cfg.Region
			o.Endpoint = cfg.Endpoint
			o.UsePathStyle = cfg.UsePathStyle
		})
	case "minio":
		return minioblob.New(cfg.Endpoint, cfg.Bucket, func(o *minioblob.Options) {
			o.AccessKey = cfg.AccessKey
			o.SecretKey = cfg.SecretKey
			o.Region = cfg.Region
			o.Secure = cfg.Secure
			o.Prefix = cfg.Prefix
			o.PathStyle = cfg.UsePathStyle
		})
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
