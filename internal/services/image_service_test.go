package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"meeplemart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStars(ctx context.Context, id uuid.UUID, stars float64) error {
	args := m.Called(ctx, id, stars)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) SetCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	args := m.Called(ctx, productID, categoryIDs)
	return args.Error(0)
}

func (m *MockProductRepository) SetGameTypes(ctx context.Context, productID uuid.UUID, gameTypeIDs []uuid.UUID) error {
	args := m.Called(ctx, productID, gameTypeIDs)
	return args.Error(0)
}

func (m *MockProductRepository) SetAudiences(ctx context.Context, productID uuid.UUID, audienceIDs []uuid.UUID) error {
	args := m.Called(ctx, productID, audienceIDs)
	return args.Error(0)
}

type MockProductImageRepository struct {
	mock.Mock
}

func (m *MockProductImageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockProductImageRepository) GetByID(ctx context.Context, productID, id uuid.UUID) (*models.ProductImage, error) {
	args := m.Called(ctx, productID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) NextSortIndex(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockProductImageRepository) UpdateSort(ctx context.Context, id uuid.UUID, sortIndex int) error {
	args := m.Called(ctx, id, sortIndex)
	return args.Error(0)
}

func (m *MockProductImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductImageRepository) DeleteAllByProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) URL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) KeyFromURL(rawURL string) string {
	args := m.Called(rawURL)
	return args.String(0)
}

type MockVariantGenerator struct {
	mock.Mock
}

func (m *MockVariantGenerator) Generate(r io.Reader) ([]Variant, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Variant), args.Error(1)
}

type MockCDNInvalidator struct {
	mock.Mock
}

func (m *MockCDNInvalidator) Invalidate(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

type imageServiceFixture struct {
	productRepo *MockProductRepository
	imageRepo   *MockProductImageRepository
	storage     *MockObjectStorage
	generator   *MockVariantGenerator
	invalidator *MockCDNInvalidator
	service     *imageService
}

func newImageServiceFixture() *imageServiceFixture {
	f := &imageServiceFixture{
		productRepo: new(MockProductRepository),
		imageRepo:   new(MockProductImageRepository),
		storage:     new(MockObjectStorage),
		generator:   new(MockVariantGenerator),
		invalidator: new(MockCDNInvalidator),
	}
	f.service = &imageService{
		productRepo: f.productRepo,
		imageRepo:   f.imageRepo,
		storage:     f.storage,
		generator:   f.generator,
		invalidator: f.invalidator,
		suffix:      func() string { return "abcd1234" },
	}
	return f
}

func stubVariants() []Variant {
	return []Variant{
		{Tag: SizeTagLarge, Data: []byte("lg-bytes"), Width: 1200, Height: 900},
		{Tag: SizeTagMedium, Data: []byte("md-bytes"), Width: 600, Height: 450},
		{Tag: SizeTagSmall, Data: []byte("sm-bytes"), Width: 300, Height: 225},
	}
}

func TestUploadStoresVariantsAndOriginal(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.productRepo.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil)
	f.generator.On("Generate", mock.Anything).Return(stubVariants(), nil)

	expectedKeys := []string{
		fmt.Sprintf("products/lg/%s_box-art_lg_abcd1234.jpg", productID),
		fmt.Sprintf("products/md/%s_box-art_md_abcd1234.jpg", productID),
		fmt.Sprintf("products/sm/%s_box-art_sm_abcd1234.jpg", productID),
		fmt.Sprintf("products/original/%s_box-art_original_abcd1234.png", productID),
	}
	for _, key := range expectedKeys {
		f.storage.On("Save", ctx, key, mock.Anything, mock.Anything).Return(key, nil).Once()
		f.storage.On("URL", key).Return("https://cdn.example.com/" + key)
	}

	f.imageRepo.On("NextSortIndex", ctx, productID).Return(1, nil)
	f.imageRepo.On("Create", ctx, mock.AnythingOfType("*models.ProductImage")).Return(nil)

	image, err := f.service.Upload(ctx, productID, "box-art.png", strings.NewReader("png-bytes"), UploadParams{AltText: "Box art"})
	require.NoError(t, err)

	assert.Equal(t, productID, image.ProductID)
	assert.Equal(t, "Box art", image.AltText)
	assert.Equal(t, 1, image.SortIndex)
	assert.Equal(t, "https://cdn.example.com/"+expectedKeys[0], image.URLLarge)
	assert.Equal(t, "https://cdn.example.com/"+expectedKeys[1], image.URLMedium)
	assert.Equal(t, "https://cdn.example.com/"+expectedKeys[2], image.URLSmall)
	assert.Equal(t, "https://cdn.example.com/"+expectedKeys[3], image.URLOriginal)

	// All four URLs are distinct and non-empty.
	seen := map[string]bool{}
	for _, u := range image.URLs() {
		assert.NotEmpty(t, u)
		assert.False(t, seen[u])
		seen[u] = true
	}
	f.storage.AssertExpectations(t)
	f.imageRepo.AssertExpectations(t)
}

func TestUploadSortIndexAppends(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.productRepo.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil)
	f.generator.On("Generate", mock.Anything).Return(stubVariants(), nil)
	f.storage.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("key", nil)
	f.storage.On("URL", mock.Anything).Return("https://cdn.example.com/key")
	f.imageRepo.On("NextSortIndex", ctx, productID).Return(3, nil)
	f.imageRepo.On("Create", ctx, mock.Anything).Return(nil)

	image, err := f.service.Upload(ctx, productID, "second.png", strings.NewReader("data"), UploadParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, image.SortIndex)
}

func TestUploadSortOverrideSkipsNextSortIndex(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	override := 7

	f.productRepo.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil)
	f.generator.On("Generate", mock.Anything).Return(stubVariants(), nil)
	f.storage.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("key", nil)
	f.storage.On("URL", mock.Anything).Return("https://cdn.example.com/key")
	f.imageRepo.On("Create", ctx, mock.Anything).Return(nil)

	image, err := f.service.Upload(ctx, productID, "hero.png", strings.NewReader("data"), UploadParams{SortOverride: &override})
	require.NoError(t, err)
	assert.Equal(t, 7, image.SortIndex)
	f.imageRepo.AssertNotCalled(t, "NextSortIndex", mock.Anything, mock.Anything)
}

func TestUploadUnknownProduct(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.productRepo.On("GetByID", ctx, productID).Return(nil, pgx.ErrNoRows)

	_, err := f.service.Upload(ctx, productID, "art.png", strings.NewReader("data"), UploadParams{})
	assert.ErrorIs(t, err, ErrProductNotFound)
	f.generator.AssertNotCalled(t, "Generate", mock.Anything)
	f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadAltTextTooLong(t *testing.T) {
	f := newImageServiceFixture()

	_, err := f.service.Upload(context.Background(), uuid.New(), "art.png",
		strings.NewReader("data"), UploadParams{AltText: strings.Repeat("x", 256)})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "alt_text", validationErr.Field)
	f.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUploadNegativeSortOverride(t *testing.T) {
	f := newImageServiceFixture()
	negative := -1

	_, err := f.service.Upload(context.Background(), uuid.New(), "art.png",
		strings.NewReader("data"), UploadParams{SortOverride: &negative})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "sort", validationErr.Field)
}

func TestUploadInvalidImageCreatesNothing(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.productRepo.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil)
	f.generator.On("Generate", mock.Anything).Return(nil, fmt.Errorf("%w: bad data", ErrInvalidImage))

	_, err := f.service.Upload(ctx, productID, "notes.txt", strings.NewReader("plain text"), UploadParams{})
	assert.ErrorIs(t, err, ErrInvalidImage)
	f.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.imageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadStorageFailureAborts(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.productRepo.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil)
	f.generator.On("Generate", mock.Anything).Return(stubVariants(), nil)
	f.storage.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket unavailable"))

	_, err := f.service.Upload(ctx, productID, "art.png", strings.NewReader("data"), UploadParams{})
	require.Error(t, err)
	f.imageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func storedImage(productID uuid.UUID) *models.ProductImage {
	return &models.ProductImage{
		ID:          uuid.New(),
		ProductID:   productID,
		URLOriginal: "https://cdn.example.com/products/original/orig.png",
		URLLarge:    "https://cdn.example.com/products/lg/a.jpg",
		URLMedium:   "https://cdn.example.com/products/md/b.jpg",
		URLSmall:    "https://cdn.example.com/products/sm/c.jpg",
	}
}

func TestDeleteRemovesBlobsRowAndInvalidates(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	image := storedImage(productID)

	f.imageRepo.On("GetByID", ctx, productID, image.ID).Return(image, nil)
	keys := []string{"products/lg/a.jpg", "products/md/b.jpg", "products/sm/c.jpg", "products/original/orig.png"}
	f.storage.On("KeyFromURL", image.URLLarge).Return(keys[0])
	f.storage.On("KeyFromURL", image.URLMedium).Return(keys[1])
	f.storage.On("KeyFromURL", image.URLSmall).Return(keys[2])
	f.storage.On("KeyFromURL", image.URLOriginal).Return(keys[3])
	for _, key := range keys {
		f.storage.On("Delete", ctx, key).Return(nil)
	}
	f.imageRepo.On("Delete", ctx, image.ID).Return(nil)
	f.invalidator.On("Invalidate", ctx, []string{
		"/" + keys[0], "/" + keys[1], "/" + keys[2], "/" + keys[3],
	}).Return(nil).Once()

	require.NoError(t, f.service.Delete(ctx, productID, image.ID))
	f.invalidator.AssertExpectations(t)
}

func TestDeleteBlobFailuresStillDeleteRow(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	image := storedImage(productID)

	f.imageRepo.On("GetByID", ctx, productID, image.ID).Return(image, nil)
	f.storage.On("KeyFromURL", mock.Anything).Return("some/key")
	f.storage.On("Delete", ctx, mock.Anything).Return(errors.New("storage down"))
	f.imageRepo.On("Delete", ctx, image.ID).Return(nil).Once()
	// Nothing was deleted, so there is nothing to invalidate.
	f.invalidator.On("Invalidate", ctx, []string(nil)).Return(nil)

	require.NoError(t, f.service.Delete(ctx, productID, image.ID))
	f.imageRepo.AssertExpectations(t)
}

func TestDeletePartialBlobFailureInvalidatesOnlyDeleted(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	image := storedImage(productID)

	f.imageRepo.On("GetByID", ctx, productID, image.ID).Return(image, nil)
	f.storage.On("KeyFromURL", image.URLLarge).Return("products/lg/a.jpg")
	f.storage.On("KeyFromURL", image.URLMedium).Return("products/md/b.jpg")
	f.storage.On("KeyFromURL", image.URLSmall).Return("products/sm/c.jpg")
	f.storage.On("KeyFromURL", image.URLOriginal).Return("products/original/orig.png")
	f.storage.On("Delete", ctx, "products/lg/a.jpg").Return(nil)
	f.storage.On("Delete", ctx, "products/md/b.jpg").Return(errors.New("timeout"))
	f.storage.On("Delete", ctx, "products/sm/c.jpg").Return(nil)
	f.storage.On("Delete", ctx, "products/original/orig.png").Return(nil)
	f.imageRepo.On("Delete", ctx, image.ID).Return(nil)
	f.invalidator.On("Invalidate", ctx, []string{
		"/products/lg/a.jpg", "/products/sm/c.jpg", "/products/original/orig.png",
	}).Return(nil).Once()

	require.NoError(t, f.service.Delete(ctx, productID, image.ID))
	f.invalidator.AssertExpectations(t)
}

func TestDeleteInvalidationFailureSwallowed(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	image := storedImage(productID)

	f.imageRepo.On("GetByID", ctx, productID, image.ID).Return(image, nil)
	f.storage.On("KeyFromURL", mock.Anything).Return("k")
	f.storage.On("Delete", ctx, mock.Anything).Return(nil)
	f.imageRepo.On("Delete", ctx, image.ID).Return(nil)
	f.invalidator.On("Invalidate", ctx, mock.Anything).Return(errors.New("cdn unavailable"))

	assert.NoError(t, f.service.Delete(ctx, productID, image.ID))
}

func TestDeleteUnknownImage(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	imageID := uuid.New()

	f.imageRepo.On("GetByID", ctx, productID, imageID).Return(nil, pgx.ErrNoRows)

	err := f.service.Delete(ctx, productID, imageID)
	assert.ErrorIs(t, err, ErrImageNotFound)
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReorderAppliesEachPair(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	f.imageRepo.On("GetByID", ctx, productID, first).Return(&models.ProductImage{ID: first, ProductID: productID}, nil)
	f.imageRepo.On("GetByID", ctx, productID, second).Return(&models.ProductImage{ID: second, ProductID: productID}, nil)
	f.imageRepo.On("UpdateSort", ctx, first, 2).Return(nil).Once()
	f.imageRepo.On("UpdateSort", ctx, second, 1).Return(nil).Once()

	err := f.service.Reorder(ctx, productID, []ImageOrder{
		{ID: first, Sort: 2},
		{ID: second, Sort: 1},
	})
	require.NoError(t, err)
	f.imageRepo.AssertExpectations(t)
}

func TestReorderForeignImageAbortsNamingID(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	owned := uuid.New()
	foreign := uuid.New()

	f.imageRepo.On("GetByID", ctx, productID, owned).Return(&models.ProductImage{ID: owned, ProductID: productID}, nil)
	f.imageRepo.On("UpdateSort", ctx, owned, 1).Return(nil)
	f.imageRepo.On("GetByID", ctx, productID, foreign).Return(nil, pgx.ErrNoRows)

	err := f.service.Reorder(ctx, productID, []ImageOrder{
		{ID: owned, Sort: 1},
		{ID: foreign, Sort: 2},
	})

	var reorderErr *ReorderValidationError
	require.ErrorAs(t, err, &reorderErr)
	assert.Equal(t, foreign, reorderErr.ImageID)
	// The pair before the foreign id was already applied.
	f.imageRepo.AssertCalled(t, "UpdateSort", ctx, owned, 1)
	f.imageRepo.AssertNotCalled(t, "UpdateSort", ctx, foreign, 2)
}

func TestReorderNegativeSortRejected(t *testing.T) {
	f := newImageServiceFixture()

	err := f.service.Reorder(context.Background(), uuid.New(), []ImageOrder{
		{ID: uuid.New(), Sort: -1},
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "sort", validationErr.Field)
}

func TestListUnknownProduct(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()

	f.productRepo.On("GetByID", ctx, productID).Return(nil, pgx.ErrNoRows)

	_, err := f.service.List(ctx, productID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListReturnsImagesInOrder(t *testing.T) {
	f := newImageServiceFixture()
	ctx := context.Background()
	productID := uuid.New()
	images := []*models.ProductImage{
		{ID: uuid.New(), ProductID: productID, SortIndex: 1},
		{ID: uuid.New(), ProductID: productID, SortIndex: 2},
	}

	f.productRepo.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil)
	f.imageRepo.On("ListByProduct", ctx, productID).Return(images, nil)

	got, err := f.service.List(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, images, got)
}
