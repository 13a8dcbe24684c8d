package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

// ReviewResult is what a reviewer sees after submitting a guess.
type ReviewResult struct {
	Actual     float64 `json:"actual"`
	Guess      float64 `json:"guess"`
	AbsError   float64 `json:"abs_error"`
	SignedDiff float64 `json:"signed_diff"`
}

type WindowStats struct {
	Count    int     `json:"count"`
	AvgError float64 `json:"avg_error"`
	MinError float64 `json:"min_error"`
	MaxError float64 `json:"max_error"`
}

type ReviewStats struct {
	Last10  WindowStats `json:"last_10"`
	Last30  WindowStats `json:"last_30"`
	AllTime WindowStats `json:"all_time"`
}

type ReviewService interface {
	// PercentileOf returns the item's percentile rank in the corpus,
	// computing and caching it on first use. First computation wins: a
	// cached value is never recomputed. Returns nil when the qualifying
	// corpus is empty.
	PercentileOf(ctx context.Context, tx *gorm.DB, item *types.AnalyzedShort) (*float64, error)
	// PickRandomUnrated samples a corpus item with a transcript that this
	// user has not already reviewed.
	PickRandomUnrated(ctx context.Context, userID uuid.UUID) (*types.AnalyzedShort, error)
	SubmitReview(ctx context.Context, itemID, userID uuid.UUID, guessPercentile float64, notes string) (*ReviewResult, error)
	StatsFor(ctx context.Context, userID uuid.UUID) (*ReviewStats, error)
	// SeedCorpus is the admin path for loading benchmark videos.
	SeedCorpus(ctx context.Context, items []*types.AnalyzedShort) ([]*types.AnalyzedShort, error)
}

type reviewService struct {
	db         *gorm.DB
	log        *logger.Logger
	corpusRepo repos.AnalyzedShortRepo
}

func NewReviewService(db *gorm.DB, baseLog *logger.Logger, corpusRepo repos.AnalyzedShortRepo) ReviewService {
	serviceLog := baseLog.With("service", "ReviewService")
	return &reviewService{db: db, log: serviceLog, corpusRepo: corpusRepo}
}

func (rs *reviewService) PercentileOf(ctx context.Context, tx *gorm.DB, item *types.AnalyzedShort) (*float64, error) {
	if item == nil {
		return nil, apierr.Validation("a corpus item is required")
	}
	if item.Percentile != nil {
		return item.Percentile, nil
	}

	qualifying, err := rs.corpusRepo.CountWithViews(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("count qualifying corpus: %w", err)
	}
	if qualifying == 0 {
		// Nothing to rank against; leave the cache empty.
		return nil, nil
	}
	below, err := rs.corpusRepo.CountViewsBelow(ctx, tx, item.Views)
	if err != nil {
		return nil, fmt.Errorf("count lower-view corpus: %w", err)
	}

	percentile := float64(below) / float64(qualifying) * 100
	item.Percentile = &percentile
	item.UpdatedAt = time.Now()
	if err := rs.corpusRepo.Save(ctx, tx, item); err != nil {
		return nil, fmt.Errorf("persist percentile: %w", err)
	}
	return item.Percentile, nil
}

func (rs *reviewService) PickRandomUnrated(ctx context.Context, userID uuid.UUID) (*types.AnalyzedShort, error) {
	item, err := rs.corpusRepo.PickRandomUnreviewedBy(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("pick random corpus item: %w", err)
	}
	if item == nil {
		return nil, apierr.NotFound("no unreviewed corpus items remain for this user")
	}
	return item, nil
}

func (rs *reviewService) SubmitReview(ctx context.Context, itemID, userID uuid.UUID, guessPercentile float64, notes string) (*ReviewResult, error) {
	if guessPercentile < 0 || guessPercentile > 100 {
		return nil, apierr.Validation("guess percentile must be between 0 and 100, got %v", guessPercentile)
	}

	var result *ReviewResult
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := rs.corpusRepo.GetByID(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("load corpus item: %w", err)
		}
		if item == nil {
			return apierr.NotFound("corpus item %s not found", itemID)
		}

		actual, err := rs.PercentileOf(ctx, tx, item)
		if err != nil {
			return err
		}
		if actual == nil {
			return apierr.Validation("percentile cannot be computed over an empty corpus")
		}

		now := time.Now()
		item.UserGuessPercentile = &guessPercentile
		item.ReviewNotes = notes
		item.ReviewedAt = &now
		item.ReviewUserID = &userID
		item.UpdatedAt = now
		if err := rs.corpusRepo.Save(ctx, tx, item); err != nil {
			return fmt.Errorf("save review: %w", err)
		}

		result = &ReviewResult{
			Actual:     *actual,
			Guess:      guessPercentile,
			AbsError:   math.Abs(guessPercentile - *actual),
			SignedDiff: guessPercentile - *actual,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	rs.log.Info("SubmitReview", "item_id", itemID, "user_id", userID, "abs_error", result.AbsError)
	return result, nil
}

func (rs *reviewService) StatsFor(ctx context.Context, userID uuid.UUID) (*ReviewStats, error) {
	reviewed, err := rs.corpusRepo.ListReviewedByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviewed corpus items: %w", err)
	}

	var errors []float64
	for _, item := range reviewed {
		if item.UserGuessPercentile == nil || item.Percentile == nil {
			continue
		}
		errors = append(errors, math.Abs(*item.UserGuessPercentile-*item.Percentile))
	}

	return &ReviewStats{
		Last10:  windowStats(errors, 10),
		Last30:  windowStats(errors, 30),
		AllTime: windowStats(errors, len(errors)),
	}, nil
}

// windowStats aggregates the first n errors of a most-recent-first slice.
// An empty window yields zeros, not an error.
func windowStats(errors []float64, n int) WindowStats {
	if n > len(errors) {
		n = len(errors)
	}
	if n == 0 {
		return WindowStats{}
	}
	window := errors[:n]
	sum := window[0]
	min := window[0]
	max := window[0]
	for _, e := range window[1:] {
		sum += e
		if e < min {
			min = e
		}
		if e > max {
			max = e
		}
	}
	return WindowStats{
		Count:    n,
		AvgError: sum / float64(n),
		MinError: min,
		MaxError: max,
	}
}

func (rs *reviewService) SeedCorpus(ctx context.Context, items []*types.AnalyzedShort) ([]*types.AnalyzedShort, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can seed the review corpus")
	}
	now := time.Now()
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.CreatedAt = now
		item.UpdatedAt = now
	}
	created, err := rs.corpusRepo.Create(ctx, nil, items)
	if err != nil {
		return nil, fmt.Errorf("seed corpus: %w", err)
	}
	return created, nil
}
