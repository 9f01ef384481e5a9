package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNamedEntityRepository struct {
	mock.Mock
}

func (m *MockNamedEntityRepository) Create(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockNamedEntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*repositories.NamedEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.NamedEntity), args.Error(1)
}

func (m *MockNamedEntityRepository) GetByName(ctx context.Context, name string) (*repositories.NamedEntity, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.NamedEntity), args.Error(1)
}

func (m *MockNamedEntityRepository) Update(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockNamedEntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNamedEntityRepository) List(ctx context.Context) ([]*repositories.NamedEntity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.NamedEntity), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, productID uuid.UUID, filename string, r io.Reader, params UploadParams) (*models.ProductImage, error) {
	args := m.Called(ctx, productID, filename, r, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductImage), args.Error(1)
}

func (m *MockImageService) List(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProductImage), args.Error(1)
}

func (m *MockImageService) Delete(ctx context.Context, productID, imageID uuid.UUID) error {
	args := m.Called(ctx, productID, imageID)
	return args.Error(0)
}

func (m *MockImageService) Reorder(ctx context.Context, productID uuid.UUID, orders []ImageOrder) error {
	args := m.Called(ctx, productID, orders)
	return args.Error(0)
}

type productServiceFixture struct {
	productRepo  *MockProductRepository
	brandRepo    *MockNamedEntityRepository
	categoryRepo *MockCategoryRepository
	imageService *MockImageService
	cache        *MockCacheService
	service      ProductService
}

func newProductServiceFixture() *productServiceFixture {
	f := &productServiceFixture{
		productRepo:  new(MockProductRepository),
		brandRepo:    new(MockNamedEntityRepository),
		categoryRepo: new(MockCategoryRepository),
		imageService: new(MockImageService),
		cache:        new(MockCacheService),
	}
	f.service = NewProductService(f.productRepo, f.brandRepo, f.categoryRepo, f.imageService, f.cache)
	return f
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "terraforming-mars", Slugify("Terraforming Mars"))
	assert.Equal(t, "7-wonders-duel", Slugify("7 Wonders: Duel!"))
	assert.Equal(t, "azul", Slugify("  Azul  "))
}

func TestCreateProductGeneratesSlugAndLinks(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	brandID := uuid.New()
	categoryID := uuid.New()

	product := &models.Product{
		Name:        "Terraforming Mars",
		BrandID:     brandID,
		PriceCents:  6500,
		Stock:       10,
		CategoryIDs: []uuid.UUID{categoryID},
	}

	f.brandRepo.On("GetByID", ctx, brandID).Return(&repositories.NamedEntity{ID: brandID, Name: "FryxGames"}, nil)
	f.productRepo.On("Create", ctx, product).Return(nil)
	f.productRepo.On("SetCategories", ctx, mock.Anything, product.CategoryIDs).Return(nil)
	f.productRepo.On("SetGameTypes", ctx, mock.Anything, mock.Anything).Return(nil)
	f.productRepo.On("SetAudiences", ctx, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.service.Create(ctx, product))
	assert.Equal(t, "terraforming-mars", product.Slug)
	assert.NotEqual(t, uuid.Nil, product.ID)
}

func TestCreateProductUnknownBrand(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	brandID := uuid.New()

	f.brandRepo.On("GetByID", ctx, brandID).Return(nil, pgx.ErrNoRows)

	err := f.service.Create(ctx, &models.Product{Name: "Root", BrandID: brandID, PriceCents: 5000})
	assert.ErrorIs(t, err, ErrBrandNotFound)
	f.productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProductValidation(t *testing.T) {
	f := newProductServiceFixture()

	cases := []struct {
		name    string
		product *models.Product
		field   string
	}{
		{"empty name", &models.Product{PriceCents: 100}, "name"},
		{"zero price", &models.Product{Name: "Root"}, "price_cents"},
		{"negative stock", &models.Product{Name: "Root", PriceCents: 100, Stock: -1}, "stock"},
		{"discount over 100", &models.Product{Name: "Root", PriceCents: 100, Discount: 101}, "discount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.service.Create(context.Background(), tc.product)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestGetByIDCacheHitSkipsRepo(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	cached := &models.Product{ID: productID, Name: "Cached"}

	f.cache.On("GetProduct", ctx, productID).Return(cached, nil)

	got, err := f.service.GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	f.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetByIDCacheMissFillsCache(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	stored := &models.Product{ID: productID, Name: "Stored"}

	f.cache.On("GetProduct", ctx, productID).Return(nil, nil)
	f.productRepo.On("GetByID", ctx, productID).Return(stored, nil)
	f.cache.On("SetProduct", ctx, stored, productCacheTTL).Return(nil).Once()

	got, err := f.service.GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	f.cache.AssertExpectations(t)
}

func TestGetByIDCacheErrorFallsThrough(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	stored := &models.Product{ID: productID}

	f.cache.On("GetProduct", ctx, productID).Return(nil, errors.New("redis down"))
	f.productRepo.On("GetByID", ctx, productID).Return(stored, nil)
	f.cache.On("SetProduct", ctx, stored, productCacheTTL).Return(errors.New("redis down"))

	got, err := f.service.GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestGetByIDUnknownProduct(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.cache.On("GetProduct", ctx, productID).Return(nil, nil)
	f.productRepo.On("GetByID", ctx, productID).Return(nil, pgx.ErrNoRows)

	_, err := f.service.GetByID(ctx, productID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProductRemovesImagesFirst(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	firstImage := uuid.New()
	secondImage := uuid.New()

	f.imageService.On("List", ctx, productID).Return([]*models.ProductImage{
		{ID: firstImage, ProductID: productID},
		{ID: secondImage, ProductID: productID},
	}, nil)
	f.imageService.On("Delete", ctx, productID, firstImage).Return(nil).Once()
	f.imageService.On("Delete", ctx, productID, secondImage).Return(errors.New("storage down")).Once()
	f.productRepo.On("Delete", ctx, productID).Return(nil).Once()
	f.cache.On("DeleteProduct", ctx, productID).Return(nil)

	// One failed image delete does not block the product delete.
	require.NoError(t, f.service.Delete(ctx, productID))
	f.imageService.AssertExpectations(t)
	f.productRepo.AssertExpectations(t)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	existing := &models.Product{ID: productID, Name: "Old Name", Slug: "old-name"}
	updated := &models.Product{ID: productID, Name: "New Name", BrandID: uuid.New(), PriceCents: 100}

	f.productRepo.On("GetByID", ctx, productID).Return(existing, nil)
	f.productRepo.On("Update", ctx, updated).Return(nil)
	f.productRepo.On("SetCategories", ctx, productID, mock.Anything).Return(nil)
	f.productRepo.On("SetGameTypes", ctx, productID, mock.Anything).Return(nil)
	f.productRepo.On("SetAudiences", ctx, productID, mock.Anything).Return(nil)
	f.cache.On("DeleteProduct", ctx, productID).Return(nil).Once()

	require.NoError(t, f.service.Update(ctx, updated))
	assert.Equal(t, "new-name", updated.Slug)
	f.cache.AssertExpectations(t)
}
