// Package store abstracts where uploaded media bytes live: S3 in production,
// the local uploads/ directory in development.
package store

import "context"

type FileStorage interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	GetURL(ctx context.Context, key string) (string, error)
}
