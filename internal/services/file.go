package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/types"
)

// ArtifactStore answers artifact-presence questions for workflow gating.
// The workflow service only ever consumes this interface; tests swap in a
// fake.
type ArtifactStore interface {
	HasArtifact(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, fileType types.FileType) (bool, error)
	ListArtifacts(ctx context.Context, tx *gorm.DB, shortID uuid.UUID) ([]types.FileType, error)
}

type FileService interface {
	ArtifactStore
	UploadShortFile(ctx context.Context, shortID uuid.UUID, fileType types.FileType, originalName, mimeType string, sizeBytes int64, reader io.Reader) (*types.ShortFile, error)
	ListShortFiles(ctx context.Context, shortID uuid.UUID) ([]*types.ShortFile, error)
	DownloadURL(ctx context.Context, shortID uuid.UUID, fileType types.FileType) (string, error)
}

type fileService struct {
	db            *gorm.DB
	log           *logger.Logger
	shortRepo     repos.ShortRepo
	shortFileRepo repos.ShortFileRepo
	bucketService BucketService
}

func NewFileService(
	db *gorm.DB,
	baseLog *logger.Logger,
	shortRepo repos.ShortRepo,
	shortFileRepo repos.ShortFileRepo,
	bucketService BucketService,
) FileService {
	serviceLog := baseLog.With("service", "FileService")
	return &fileService{
		db:            db,
		log:           serviceLog,
		shortRepo:     shortRepo,
		shortFileRepo: shortFileRepo,
		bucketService: bucketService,
	}
}

func (fs *fileService) HasArtifact(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, fileType types.FileType) (bool, error) {
	return fs.shortFileRepo.ExistsByShortAndType(ctx, tx, shortID, fileType)
}

func (fs *fileService) ListArtifacts(ctx context.Context, tx *gorm.DB, shortID uuid.UUID) ([]types.FileType, error) {
	files, err := fs.shortFileRepo.GetByShortID(ctx, tx, shortID)
	if err != nil {
		return nil, err
	}
	seen := map[types.FileType]bool{}
	var out []types.FileType
	for _, f := range files {
		if !seen[f.FileType] {
			seen[f.FileType] = true
			out = append(out, f.FileType)
		}
	}
	return out, nil
}

func (fs *fileService) UploadShortFile(ctx context.Context, shortID uuid.UUID, fileType types.FileType, originalName, mimeType string, sizeBytes int64, reader io.Reader) (*types.ShortFile, error) {
	if !fileType.Valid() {
		return nil, apierr.Validation("unknown file type %q", fileType)
	}
	short, err := fs.shortRepo.GetByID(ctx, nil, shortID)
	if err != nil {
		return nil, fmt.Errorf("load short: %w", err)
	}
	if short == nil {
		return nil, apierr.NotFound("short %s not found", shortID)
	}

	fileID := uuid.New()
	storageKey := fmt.Sprintf("shorts/%s/%s/%s", shortID.String(), string(fileType), fileID.String())
	if fs.bucketService != nil && reader != nil {
		if err := fs.bucketService.UploadFile(ctx, storageKey, reader); err != nil {
			return nil, fmt.Errorf("upload artifact bytes: %w", err)
		}
	}

	now := time.Now()
	row := &types.ShortFile{
		ID:           fileID,
		ShortID:      shortID,
		FileType:     fileType,
		OriginalName: originalName,
		StorageKey:   storageKey,
		MimeType:     mimeType,
		SizeBytes:    sizeBytes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := fs.shortFileRepo.Create(ctx, nil, []*types.ShortFile{row}); err != nil {
		return nil, fmt.Errorf("create short file record: %w", err)
	}
	fs.log.Info("UploadShortFile", "short_id", shortID, "file_type", fileType, "storage_key", storageKey)
	return row, nil
}

func (fs *fileService) ListShortFiles(ctx context.Context, shortID uuid.UUID) ([]*types.ShortFile, error) {
	return fs.shortFileRepo.GetByShortID(ctx, nil, shortID)
}

func (fs *fileService) DownloadURL(ctx context.Context, shortID uuid.UUID, fileType types.FileType) (string, error) {
	files, err := fs.shortFileRepo.GetByShortID(ctx, nil, shortID)
	if err != nil {
		return "", fmt.Errorf("list short files: %w", err)
	}
	for _, f := range files {
		if f.FileType == fileType {
			if fs.bucketService == nil {
				return "", fmt.Errorf("bucket service not configured")
			}
			return fs.bucketService.SignedDownloadURL(f.StorageKey, 15*time.Minute)
		}
	}
	return "", apierr.NotFound("short %s has no %s artifact", shortID, fileType)
}
