package background

import (
	"context"
	"log"
	"time"

	"meeplemart/internal/caching"
	"meeplemart/internal/models"
	"meeplemart/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

const staleCartAge = 30 * 24 * time.Hour

// JobScheduler runs the periodic maintenance jobs: sweeping abandoned
// carts and keeping hot product cache entries warm.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	cacheSvc    caching.CacheService
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewJobScheduler(cacheSvc caching.CacheService, cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		cacheSvc:    cacheSvc,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.sweepStaleCarts, context.Background()),
		gocron.WithName("stale-cart-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		log.Printf("Failed to create stale cart job: %v", err)
	}

	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.warmBestSellers, context.Background()),
		gocron.WithName("best-seller-cache-warm"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		log.Printf("Failed to create cache warm job: %v", err)
	}
}

// sweepStaleCarts drops cart rows that have not been touched in 30 days.
func (js *JobScheduler) sweepStaleCarts(ctx context.Context) {
	cutoff := time.Now().Add(-staleCartAge)
	removed, err := js.cartRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		log.Printf("Stale cart sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Stale cart sweep removed %d items", removed)
	}
}

// warmBestSellers refills the product cache with the current top-rated
// products so storefront reads stay hot across cache restarts.
func (js *JobScheduler) warmBestSellers(ctx context.Context) {
	filter := &models.ProductSearchFilter{OrderBy: "stars", Descending: true, Limit: 50}
	products, err := js.productRepo.Search(ctx, filter)
	if err != nil {
		log.Printf("Cache warm query failed: %v", err)
		return
	}
	for _, product := range products {
		if err := js.cacheSvc.SetProduct(ctx, product, 15*time.Minute); err != nil {
			log.Printf("Failed to warm cache for product %s: %v", product.ID, err)
		}
	}
}
