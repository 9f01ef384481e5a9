package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"meeplemart/internal/email"
	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID uuid.UUID, status string) error
	CreatePaymentIntent(ctx context.Context, userID, orderID uuid.UUID) (*PaymentIntent, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	stripe      StripeService
	mailer      email.Sender
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	stripe StripeService,
	mailer email.Sender,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		stripe:      stripe,
		mailer:      mailer,
	}
}

// Checkout turns the user's cart into a pending order: items are priced at
// the current discounted price, stock is decremented, the cart is cleared
// and a confirmation email goes out best-effort.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	cartItems, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	var total int64
	items := make([]*models.OrderItem, 0, len(cartItems))
	for _, cartItem := range cartItems {
		if cartItem.Product.Stock < cartItem.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, cartItem.Product.Name)
		}
		unitPrice := cartItem.Product.DiscountedPriceCents()
		total += unitPrice * int64(cartItem.Quantity)
		items = append(items, &models.OrderItem{
			ID:             uuid.New(),
			ProductID:      cartItem.ProductID,
			Quantity:       cartItem.Quantity,
			UnitPriceCents: unitPrice,
		})
	}

	order := &models.Order{
		ID:               uuid.New(),
		UserID:           userID,
		TotalAmountCents: total,
		Status:           models.OrderStatusPending,
		Items:            items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		if err := s.productRepo.UpdateStock(ctx, item.ProductID, -item.Quantity); err != nil {
			log.Printf("failed to decrement stock for product %s: %v", item.ProductID, err)
		}
	}
	if err := s.cartRepo.ClearUser(ctx, userID); err != nil {
		log.Printf("failed to clear cart for user %s: %v", userID, err)
	}

	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		if err := s.mailer.SendOrderConfirmation(user.Email, order.ID.String(), order.TotalAmountCents); err != nil {
			log.Printf("failed to send order confirmation for %s: %v", order.ID, err)
		}
	}

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.orderRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *orderService) UpdateStatus(ctx context.Context, userID, orderID uuid.UUID, status string) error {
	order, err := s.GetByID(ctx, userID, orderID)
	if err != nil {
		return err
	}
	if !models.ValidStatusTransition(order.Status, status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("cannot move from %s to %s", order.Status, status)}
	}
	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}

func (s *orderService) CreatePaymentIntent(ctx context.Context, userID, orderID uuid.UUID) (*PaymentIntent, error) {
	order, err := s.GetByID(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, &ValidationError{Field: "status", Message: "order is not awaiting payment"}
	}
	return s.stripe.CreatePaymentIntent(ctx, order.TotalAmountCents, "usd", order.ID.String())
}
