package storage

import (
	"context"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// Catalog is the media metadata repository.
type Catalog interface {
	Insert(ctx context.Context, record media.Record, kind media.Kind) error
	List(ctx context.Context) (images []media.Record, videos []media.Record, err error)
	Keys(ctx context.Context) (map[string]struct{}, error)
}
