// Package open builds an objectstore.Client from configuration. It is the
// only place that imports every provider.
package open

import (
	"context"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/logger"
	"github.com/koustreak/bucketfs/internal/objectstore"
	"github.com/koustreak/bucketfs/internal/objectstore/awss3"
	"github.com/koustreak/bucketfs/internal/objectstore/bolt"
	"github.com/koustreak/bucketfs/internal/objectstore/memory"
	"github.com/koustreak/bucketfs/internal/objectstore/minio"
	"github.com/koustreak/bucketfs/internal/objectstore/sqlstore"
)

// Open connects to the provider named by cfg.Provider. When cfg.DefaultBucket
// is set and the provider can create buckets, the bucket is created if
// missing.
func Open(ctx context.Context, cfg *objectstore.Config) (objectstore.Client, error) {
	if cfg == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "object store config is required")
	}
	log := logger.FromContext(ctx)

	var (
		client objectstore.Client
		err    error
	)
	switch cfg.Provider {
	case objectstore.ProviderMinIO, "":
		client, err = minio.New(ctx, cfg)
	case objectstore.ProviderS3:
		client, err = awss3.New(ctx, cfg)
	case objectstore.ProviderMemory:
		client = memory.New()
	case objectstore.ProviderBolt:
		client, err = bolt.Open(cfg.Path)
	case objectstore.ProviderPostgres, objectstore.ProviderMySQL, objectstore.ProviderSQLite:
		dsn := cfg.DSN
		if dsn == "" && cfg.Provider == objectstore.ProviderSQLite {
			dsn = cfg.Path
		}
		client, err = sqlstore.Open(ctx, cfg.Provider, dsn, sqlstore.WithLogger(log))
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown object store provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DefaultBucket != "" {
		if bc, ok := client.(objectstore.BucketCreator); ok && ensureBucket(cfg.Provider) {
			if err := bc.CreateBucket(ctx, cfg.DefaultBucket); err != nil {
				client.Close()
				return nil, err
			}
		}
	}

	log.InfoWith("object store opened", map[string]interface{}{
		"provider": string(cfg.Provider),
		"bucket":   cfg.DefaultBucket,
	})
	return client, nil
}

// ensureBucket reports whether Open creates the default bucket. Cloud
// buckets are provisioned out of band.
func ensureBucket(p objectstore.Provider) bool {
	switch p {
	case objectstore.ProviderS3:
		return false
	default:
		return true
	}
}
