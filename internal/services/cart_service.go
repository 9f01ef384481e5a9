package services

import (
	"context"
	"errors"
	"fmt"

	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartService interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.CartItemDetail, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	item := &models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]*models.CartItemDetail, error) {
	return s.cartRepo.ListByUser(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	if _, err := s.cartRepo.GetByID(ctx, userID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return err
	}
	return s.cartRepo.UpdateQuantity(ctx, itemID, quantity)
}

func (s *cartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.cartRepo.GetByID(ctx, userID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return err
	}
	return s.cartRepo.Delete(ctx, itemID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.ClearUser(ctx, userID)
}
