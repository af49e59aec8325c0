// internal/common/aws/aws.go

// Package aws holds the thin SES and SNS clients the review workers
// notify through. Credentials come from the SDK default chain (env,
// shared config, instance role); only the region is configured here.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}
