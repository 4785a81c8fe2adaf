package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/models"
	"github.com/dmitrijs2005/impify/internal/client/repositories/previews"
	"github.com/dmitrijs2005/impify/internal/filex"
	"github.com/dmitrijs2005/impify/internal/logging"
	"github.com/dmitrijs2005/impify/internal/netx"
)

// PreviewService renders stored files as data URLs. Small files are cached
// in the preview repository, which outlives the login session.
type PreviewService interface {
	// Load returns the cached preview for fileID or downloads url.
	Load(ctx context.Context, fileID, url string) (*models.Preview, bool, error)
	// Retry drops the cached entry and downloads again.
	Retry(ctx context.Context, fileID, url string) (*models.Preview, error)
	Invalidate(ctx context.Context, fileID string) error
}

type previewService struct {
	repo        previews.Repository
	http        *http.Client
	cacheMax    int64
	downloadMax int64
	log         logging.Logger
	now         func() time.Time
}

// NewPreviewService caches previews smaller than cacheMax bytes. Downloads
// larger than MaxUploadSize are refused.
func NewPreviewService(repo previews.Repository, httpClient *http.Client, cacheMax int64, log logging.Logger) PreviewService {
	return &previewService{
		repo:        repo,
		http:        httpClient,
		cacheMax:    cacheMax,
		downloadMax: MaxUploadSize,
		log:         log.With("service", "previews"),
		now:         time.Now,
	}
}

func (s *previewService) Load(ctx context.Context, fileID, url string) (*models.Preview, bool, error) {
	cached, err := s.repo.Get(ctx, fileID)
	if err != nil {
		s.log.Warn(ctx, "preview cache read failed", "file_id", fileID, "error", err)
	}
	if cached != nil {
		return cached, true, nil
	}

	data, contentType, err := netx.Download(ctx, s.http, url, s.downloadMax)
	if err != nil {
		return nil, false, fmt.Errorf("load preview %s: %w", fileID, err)
	}

	p := &models.Preview{
		FileID:    fileID,
		DataURL:   filex.DataURL(contentType, data),
		Size:      int64(len(data)),
		CreatedAt: s.now().UTC(),
	}
	if p.Size < s.cacheMax {
		if err := s.repo.Put(ctx, p); err != nil {
			s.log.Warn(ctx, "preview cache write failed", "file_id", fileID, "error", err)
		}
	}
	return p, false, nil
}

func (s *previewService) Retry(ctx context.Context, fileID, url string) (*models.Preview, error) {
	if err := s.Invalidate(ctx, fileID); err != nil {
		return nil, err
	}
	p, _, err := s.Load(ctx, fileID, url)
	return p, err
}

func (s *previewService) Invalidate(ctx context.Context, fileID string) error {
	if err := s.repo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("invalidate preview %s: %w", fileID, err)
	}
	return nil
}
