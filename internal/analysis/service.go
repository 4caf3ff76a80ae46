package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend-practicelog/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("analysis not found")
	ErrForbidden  = errors.New("analysis belongs to another user")
)

const (
	maxImageBytes = 8 << 20
	cacheTTL      = 24 * time.Hour
)

type Service struct {
	db     db.Querier
	redis  *redis.Client
	vision VisionClient
}

func NewService(db db.Querier, redisClient *redis.Client, vision VisionClient) *Service {
	return &Service{db: db, redis: redisClient, vision: vision}
}

// Analyze decodes the uploaded image, runs it through the vision service
// and stores the result. Identical images hit the redis cache instead of
// the vision provider.
func (s *Service) Analyze(ctx context.Context, userID string, in AnalyzeInput) (Analysis, error) {
	if in.ImageBase64 == "" {
		return Analysis{}, fmt.Errorf("%w: image_base64 is required", ErrValidation)
	}

	image, err := base64.StdEncoding.DecodeString(in.ImageBase64)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: image_base64 is not valid base64", ErrValidation)
	}
	if len(image) == 0 {
		return Analysis{}, fmt.Errorf("%w: image is empty", ErrValidation)
	}
	if len(image) > maxImageBytes {
		return Analysis{}, fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, maxImageBytes)
	}

	sum := sha256.Sum256(image)
	hash := hex.EncodeToString(sum[:])

	result, cached := s.cachedResult(ctx, hash)
	if !cached {
		result, err = s.vision.Analyze(ctx, image)
		if err != nil {
			return Analysis{}, fmt.Errorf("analyzing image: %w", err)
		}
		s.cacheResult(ctx, hash, result)
	}

	a := Analysis{
		ID:        uuid.NewString(),
		UserID:    userID,
		ImageHash: hash,
		Result:    result,
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO sheet_analyses (id, user_id, image_hash, result)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.UserID, a.ImageHash, []byte(a.Result)).Scan(&a.CreatedAt)
	if err != nil {
		return Analysis{}, fmt.Errorf("saving analysis: %w", err)
	}
	return a, nil
}

func (s *Service) ListAnalyses(ctx context.Context, userID string) ([]Analysis, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, image_hash, result, created_at
		FROM sheet_analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		var a Analysis
		var result []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.ImageHash, &result, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		a.Result = json.RawMessage(result)
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func (s *Service) GetAnalysis(ctx context.Context, userID, id string) (Analysis, error) {
	var a Analysis
	var result []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, image_hash, result, created_at
		FROM sheet_analyses
		WHERE id = $1
	`, id).Scan(&a.ID, &a.UserID, &a.ImageHash, &result, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, fmt.Errorf("getting analysis: %w", err)
	}
	if a.UserID != userID {
		return Analysis{}, ErrForbidden
	}
	a.Result = json.RawMessage(result)
	return a, nil
}

func (s *Service) cachedResult(ctx context.Context, hash string) (json.RawMessage, bool) {
	if s.redis == nil {
		return nil, false
	}
	payload, err := s.redis.Get(ctx, cacheKey(hash)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("analysis cache get error: %v", err)
		}
		return nil, false
	}
	return json.RawMessage(payload), true
}

func (s *Service) cacheResult(ctx context.Context, hash string, result json.RawMessage) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(hash), []byte(result), cacheTTL).Err(); err != nil {
		log.Printf("analysis cache set error: %v", err)
	}
}

func cacheKey(hash string) string {
	return "analysis:" + hash
}
