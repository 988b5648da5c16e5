package open

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

func TestOpen_LocalProviders(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  objectstore.Config
	}{
		{"memory", objectstore.Config{Provider: objectstore.ProviderMemory}},
		{"bolt", objectstore.Config{Provider: objectstore.ProviderBolt, Path: filepath.Join(dir, "b.db")}},
		{"sqlite path", objectstore.Config{Provider: objectstore.ProviderSQLite, Path: filepath.Join(dir, "s.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := tt.cfg
			cfg.DefaultBucket = "media"

			client, err := Open(ctx, &cfg)
			require.NoError(t, err)
			defer client.Close()

			page, err := client.ListObjects(ctx, &objectstore.ListInput{Bucket: "media"})
			require.NoError(t, err)
			assert.Empty(t, page.Rows)
		})
	}
}

func TestOpen_Invalid(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = Open(ctx, &objectstore.Config{Provider: "ftp"})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = Open(ctx, &objectstore.Config{Provider: objectstore.ProviderBolt})
	assert.True(t, errs.IsInvalidInput(err))
}
