package application

import (
	"context"

	"github.com/sportsin/sportsin/internal/domain/entity"
)

// ProfileIndexer pushes profiles into the discover search index. It is
// optional everywhere it is injected; indexing failures never fail the
// surrounding operation.
type ProfileIndexer interface {
	Index(ctx context.Context, p *entity.Profile) error
	Search(ctx context.Context, query string, size int) ([]map[string]any, error)
}
