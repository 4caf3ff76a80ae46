package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"backend-practicelog/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("image not found")
	ErrForbidden  = errors.New("image belongs to another user")
)

const maxImageBytes = 8 << 20

// Image is a stored sheet-music upload. Bytes live in the images table;
// the hash lets the analysis layer dedupe identical uploads.
type Image struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Hash        string    `json:"hash"`
	ContentType string    `json:"content_type"`
	SizeBytes   int       `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type UploadInput struct {
	ImageBase64 string `json:"image_base64"`
	ContentType string `json:"content_type"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveImage(ctx context.Context, userID string, in UploadInput) (Image, error) {
	if in.ImageBase64 == "" {
		return Image{}, fmt.Errorf("%w: image_base64 is required", ErrValidation)
	}
	data, err := base64.StdEncoding.DecodeString(in.ImageBase64)
	if err != nil {
		return Image{}, fmt.Errorf("%w: image_base64 is not valid base64", ErrValidation)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: image is empty", ErrValidation)
	}
	if len(data) > maxImageBytes {
		return Image{}, fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, maxImageBytes)
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	sum := sha256.Sum256(data)
	img := Image{
		ID:          uuid.NewString(),
		UserID:      userID,
		Hash:        hex.EncodeToString(sum[:]),
		ContentType: in.ContentType,
		SizeBytes:   len(data),
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO sheet_images (id, user_id, hash, content_type, size_bytes, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, img.ID, img.UserID, img.Hash, img.ContentType, img.SizeBytes, data).Scan(&img.CreatedAt)
	if err != nil {
		return Image{}, fmt.Errorf("saving image: %w", err)
	}
	return img, nil
}

// GetImage returns the stored bytes for re-analysis or download.
func (s *Service) GetImage(ctx context.Context, userID, id string) (Image, []byte, error) {
	var img Image
	var data []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, hash, content_type, size_bytes, data, created_at
		FROM sheet_images
		WHERE id = $1
	`, id).Scan(&img.ID, &img.UserID, &img.Hash, &img.ContentType, &img.SizeBytes, &data, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Image{}, nil, ErrNotFound
	}
	if err != nil {
		return Image{}, nil, fmt.Errorf("getting image: %w", err)
	}
	if img.UserID != userID {
		return Image{}, nil, ErrForbidden
	}
	return img, data, nil
}
