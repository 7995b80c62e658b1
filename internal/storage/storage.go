package storage

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/config"
)

const (
	// TypeLocal stores media on the local filesystem.
	TypeLocal = "local"
	// TypeS3 targets Amazon S3 or a compatible service.
	TypeS3 = "s3"
	// TypeOSS targets Aliyun OSS.
	TypeOSS = "oss"
	// TypeCOS targets Tencent COS.
	TypeCOS = "cos"
	// TypeR2 targets Cloudflare R2.
	TypeR2 = "r2"
)

// SaveOptions controls how a backend lays out an object.
//
// Category groups objects under a top-level folder. Extension is the
// preferred file extension without the leading dot; "bin" is used when it is
// empty. When SkipIfExists is set and BaseName is stable, an existing object
// with the same key is reused instead of uploaded again.
type SaveOptions struct {
	Category     string
	Extension    string
	BaseName     string
	SkipIfExists bool
}

// Storage persists product media and returns a backend-specific key that is
// stored in products.media_paths.
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
	Delete(ctx context.Context, key string) error
}

// LocalBaseDirProvider is implemented by backends whose files can be served
// straight from disk.
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage builds the backend named by cfg.StorageType.
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
