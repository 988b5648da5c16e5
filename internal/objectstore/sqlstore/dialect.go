package sqlstore

import (
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// dialect carries the per-engine differences. Statements are written with
// "?" placeholders and rebound for engines that number them.
type dialect struct {
	name       string
	driver     string
	goose      goose.Dialect
	numbered   bool
	upsert     string
	bucketSkip string
}

const objectColumns = `bucket, object_key, body, size, content_type, cache_control,
	content_disposition, content_encoding, metadata, storage_class, etag, acl, modified_at`

const insertObject = `INSERT INTO objects (` + objectColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

var (
	dialectPostgres = &dialect{
		name:     "postgres",
		driver:   "pgx",
		goose:    goose.DialectPostgres,
		numbered: true,
		upsert: insertObject + ` ON CONFLICT (bucket, object_key) DO UPDATE SET
			body = excluded.body, size = excluded.size, content_type = excluded.content_type,
			cache_control = excluded.cache_control, content_disposition = excluded.content_disposition,
			content_encoding = excluded.content_encoding, metadata = excluded.metadata,
			storage_class = excluded.storage_class, etag = excluded.etag, acl = excluded.acl,
			modified_at = excluded.modified_at`,
		bucketSkip: `INSERT INTO buckets (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
	}

	dialectMySQL = &dialect{
		name:   "mysql",
		driver: "mysql",
		goose:  goose.DialectMySQL,
		upsert: insertObject + ` ON DUPLICATE KEY UPDATE
			body = VALUES(body), size = VALUES(size), content_type = VALUES(content_type),
			cache_control = VALUES(cache_control), content_disposition = VALUES(content_disposition),
			content_encoding = VALUES(content_encoding), metadata = VALUES(metadata),
			storage_class = VALUES(storage_class), etag = VALUES(etag), acl = VALUES(acl),
			modified_at = VALUES(modified_at)`,
		bucketSkip: `INSERT IGNORE INTO buckets (name, created_at) VALUES (?, ?)`,
	}

	dialectSQLite = &dialect{
		name:   "sqlite",
		driver: "sqlite",
		goose:  goose.DialectSQLite3,
		upsert: insertObject + ` ON CONFLICT (bucket, object_key) DO UPDATE SET
			body = excluded.body, size = excluded.size, content_type = excluded.content_type,
			cache_control = excluded.cache_control, content_disposition = excluded.content_disposition,
			content_encoding = excluded.content_encoding, metadata = excluded.metadata,
			storage_class = excluded.storage_class, etag = excluded.etag, acl = excluded.acl,
			modified_at = excluded.modified_at`,
		bucketSkip: `INSERT INTO buckets (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
	}
)

// rebind rewrites "?" placeholders into "$1", "$2" and so on for numbered dialects.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
