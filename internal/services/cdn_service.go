package services

import (
	"context"
	"fmt"

	"meeplemart/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudfront"
	"github.com/google/uuid"
)

// CDNInvalidator purges edge-cached paths after blob deletion. Purging is
// best-effort: callers log failures and move on, and a deployment without a
// distribution id gets a no-op implementation.
type CDNInvalidator interface {
	Invalidate(ctx context.Context, paths []string) error
}

// cloudFrontAPI is the slice of the CloudFront client the invalidator uses;
// tests substitute a fake.
type cloudFrontAPI interface {
	CreateInvalidationWithContext(ctx aws.Context, input *cloudfront.CreateInvalidationInput, opts ...request.Option) (*cloudfront.CreateInvalidationOutput, error)
}

type cloudFrontInvalidator struct {
	client         cloudFrontAPI
	distributionID string
}

func NewCloudFrontInvalidator(cfg config.CDNConfig) (CDNInvalidator, error) {
	// Without a distribution id invalidation is deliberately disabled.
	if cfg.DistributionID == "" {
		return &cloudFrontInvalidator{}, nil
	}

	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudFront session: %w", err)
	}

	return &cloudFrontInvalidator{
		client:         cloudfront.New(sess),
		distributionID: cfg.DistributionID,
	}, nil
}

// Invalidate submits one invalidation batch. A single attempt, no retries;
// stale cache is an acceptable degraded state.
func (c *cloudFrontInvalidator) Invalidate(ctx context.Context, paths []string) error {
	if c.distributionID == "" || len(paths) == 0 {
		return nil
	}

	input := &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(c.distributionID),
		InvalidationBatch: &cloudfront.InvalidationBatch{
			CallerReference: aws.String("invalidation-" + uuid.NewString()),
			Paths: &cloudfront.Paths{
				Quantity: aws.Int64(int64(len(paths))),
				Items:    aws.StringSlice(paths),
			},
		},
	}

	if _, err := c.client.CreateInvalidationWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to create CloudFront invalidation: %w", err)
	}
	return nil
}
