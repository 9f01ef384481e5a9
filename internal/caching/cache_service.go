package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meeplemart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func productKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID.String())
}

func (s *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	data, err := s.client.Get(ctx, productKey(productID)).Result()
	if err == redis.Nil {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}

	product := &models.Product{}
	if err := json.Unmarshal([]byte(data), product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, productKey(product.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return s.client.Del(ctx, productKey(productID)).Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}

func (s *redisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
