package repositories

import (
	"context"

	"meeplemart/internal/models"

	"github.com/google/uuid"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, productID, id uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error)
	AverageRating(ctx context.Context, productID uuid.UUID) (float64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewRepo struct {
	db Database
}

func NewReviewRepo(db Database) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, review.ID, review.ProductID, review.UserID, review.Rating, review.Comment)
	return err
}

func (r *reviewRepo) GetByID(ctx context.Context, productID, id uuid.UUID) (*models.Review, error) {
	review := &models.Review{}
	query := `SELECT id, product_id, user_id, rating, comment, created_at FROM reviews WHERE product_id = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, productID, id).Scan(
		&review.ID, &review.ProductID, &review.UserID, &review.Rating, &review.Comment, &review.CreatedAt)
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {
	query := `SELECT id, product_id, user_id, rating, comment, created_at FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review := &models.Review{}
		if err := rows.Scan(&review.ID, &review.ProductID, &review.UserID, &review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *reviewRepo) AverageRating(ctx context.Context, productID uuid.UUID) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = $1`
	if err := r.db.QueryRow(ctx, query, productID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}
