package resolver

import (
	"context"

	"github.com/iconidentify/ytgrab/internal/domain"
)

// Resolver turns a video link into download metadata.
type Resolver interface {
	// Resolve issues exactly one request for url in the given format.
	// Errors wrap domain.ErrTimeout, domain.ErrUnreachable or
	// domain.ErrNoDownloadLink, or are a *domain.BackendError.
	Resolve(ctx context.Context, url string, format domain.Format) (*domain.VideoInfo, error)
}
