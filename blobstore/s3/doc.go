// Package s3 stores vecdb snapshots in Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "vecdb/"
//	    o.Region = "eu-central-1"
//	})
//	if err != nil {
//	    return err
//	}
//	err = db.SaveSnapshot(ctx, store, "vecdb.snap")
//
// Reads are ranged GETs, Create streams through the multipart upload
// manager, and several databases can share a bucket through Options.Prefix.
// Endpoint and UsePathStyle point the client at LocalStack or similar.
package s3
