package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewService interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error)
	Delete(ctx context.Context, productID, reviewID uuid.UUID) error
}

type reviewService struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, productRepo: productRepo}
}

func (s *reviewService) Create(ctx context.Context, review *models.Review) error {
	if review.Rating < 0.5 || review.Rating > 5 {
		return &ValidationError{Field: "rating", Message: "must be between 0.5 and 5"}
	}
	if _, err := s.productRepo.GetByID(ctx, review.ProductID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to load product: %w", err)
	}

	review.ID = uuid.New()
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return err
	}
	return s.recomputeStars(ctx, review.ProductID)
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.reviewRepo.ListByProduct(ctx, productID)
}

func (s *reviewService) Delete(ctx context.Context, productID, reviewID uuid.UUID) error {
	if _, err := s.reviewRepo.GetByID(ctx, productID, reviewID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.recomputeStars(ctx, productID)
}

// recomputeStars stores the review average rounded to two decimals.
func (s *reviewService) recomputeStars(ctx context.Context, productID uuid.UUID) error {
	avg, err := s.reviewRepo.AverageRating(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to compute average rating: %w", err)
	}
	stars := math.Round(avg*100) / 100
	return s.productRepo.UpdateStars(ctx, productID, stars)
}
