// Package minio stores vecdb snapshots in MinIO or another S3-compatible
// service through minio-go, without the AWS SDK.
//
//	store, err := minio.New("localhost:9000", "snapshots", func(o *minio.Options) {
//	    o.AccessKey = "minioadmin"
//	    o.SecretKey = "minioadmin"
//	})
//	if err != nil {
//	    return err
//	}
//	err = db.SaveSnapshot(ctx, store, "vecdb.snap")
//
// NewStore wraps an existing *minio.Client.
package minio
