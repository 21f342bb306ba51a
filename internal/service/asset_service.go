package service

import (
	"context"
	"strings"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/timeutil"
	"github.com/xxxsen/mslide/internal/repo"
)

// AssetService keeps metadata rows for uploaded files (images and media
// referenced from slides). The blob itself lives in the filestore; the
// handler saves it there and records the row here.
type AssetService struct {
	assets *repo.AssetRepo
}

func NewAssetService(assets *repo.AssetRepo) *AssetService {
	return &AssetService{assets: assets}
}

func (s *AssetService) RecordUpload(ctx context.Context, userID, fileKey, url, name, contentType string, size int64) error {
	if userID == "" || fileKey == "" {
		return nil
	}
	now := timeutil.NowUnix()
	asset := &model.Asset{
		ID:          newID(),
		UserID:      userID,
		FileKey:     fileKey,
		URL:         url,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Ctime:       now,
		Mtime:       now,
	}
	return s.assets.UpsertByFileKey(ctx, asset)
}

func (s *AssetService) List(ctx context.Context, userID, query string, limit, offset uint) ([]model.Asset, error) {
	return s.assets.ListByUser(ctx, userID, strings.TrimSpace(query), limit, offset)
}

func (s *AssetService) Get(ctx context.Context, userID, assetID string) (*model.Asset, error) {
	return s.assets.GetByID(ctx, userID, assetID)
}

// Delete removes the metadata row only; the stored blob stays behind so
// decks already embedding its URL keep working.
func (s *AssetService) Delete(ctx context.Context, userID, assetID string) error {
	return s.assets.DeleteByID(ctx, userID, assetID)
}
