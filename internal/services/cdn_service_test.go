package services

import (
	"context"
	"testing"

	"meeplemart/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudfront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudFront struct {
	calls  int
	inputs []*cloudfront.CreateInvalidationInput
	err    error
}

func (f *fakeCloudFront) CreateInvalidationWithContext(ctx aws.Context, input *cloudfront.CreateInvalidationInput, opts ...request.Option) (*cloudfront.CreateInvalidationOutput, error) {
	f.calls++
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &cloudfront.CreateInvalidationOutput{}, nil
}

func TestInvalidateSubmitsOneBatch(t *testing.T) {
	fake := &fakeCloudFront{}
	invalidator := &cloudFrontInvalidator{client: fake, distributionID: "E123EXAMPLE"}

	paths := []string{"/products/lg/a.jpg", "/products/original/a.png"}
	require.NoError(t, invalidator.Invalidate(context.Background(), paths))

	require.Equal(t, 1, fake.calls)
	input := fake.inputs[0]
	assert.Equal(t, "E123EXAMPLE", aws.StringValue(input.DistributionId))
	assert.Equal(t, int64(2), aws.Int64Value(input.InvalidationBatch.Paths.Quantity))
	assert.Equal(t, paths, aws.StringValueSlice(input.InvalidationBatch.Paths.Items))
	assert.NotEmpty(t, aws.StringValue(input.InvalidationBatch.CallerReference))
}

func TestInvalidateNoOpWithoutDistribution(t *testing.T) {
	fake := &fakeCloudFront{}
	invalidator := &cloudFrontInvalidator{client: fake}

	require.NoError(t, invalidator.Invalidate(context.Background(), []string{"/products/lg/a.jpg"}))
	assert.Zero(t, fake.calls)
}

func TestInvalidateNoOpWithoutPaths(t *testing.T) {
	fake := &fakeCloudFront{}
	invalidator := &cloudFrontInvalidator{client: fake, distributionID: "E123EXAMPLE"}

	require.NoError(t, invalidator.Invalidate(context.Background(), nil))
	assert.Zero(t, fake.calls)
}

func TestNewCloudFrontInvalidatorDisabledWithoutID(t *testing.T) {
	invalidator, err := NewCloudFrontInvalidator(config.CDNConfig{})
	require.NoError(t, err)
	assert.NoError(t, invalidator.Invalidate(context.Background(), []string{"/anything"}))
}
