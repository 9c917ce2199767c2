package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const SchemeS3 = "s3"

// S3GetObjectAPI is the slice of the S3 client used to stream objects.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// OpenS3 streams s3://bucket/key using the default AWS credential chain.
func OpenS3(ctx context.Context, location string) (io.ReadCloser, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return NewS3Opener(s3.NewFromConfig(cfg))(ctx, location)
}

// NewS3Opener returns an Opener bound to an existing client.
func NewS3Opener(client S3GetObjectAPI) Opener {
	return func(ctx context.Context, location string) (io.ReadCloser, error) {
		bucket, key, err := splitBucketURI(location)
		if err != nil {
			return nil, err
		}

		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var noSuchKey *types.NoSuchKey
			var noSuchBucket *types.NoSuchBucket
			if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
			}
			return nil, fmt.Errorf("get object %s: %w", location, err)
		}
		return out.Body, nil
	}
}
