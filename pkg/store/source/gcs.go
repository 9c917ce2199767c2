package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

const SchemeGCS = "gs"

// OpenGCS streams gs://bucket/object with application default credentials.
// Closing the returned reader also closes the storage client.
func OpenGCS(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, object, err := splitBucketURI(location)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}

	return &clientReader{ReadCloser: r, closeClient: client.Close}, nil
}

type clientReader struct {
	io.ReadCloser
	closeClient func() error
}

func (c *clientReader) Close() error {
	return errors.Join(c.ReadCloser.Close(), c.closeClient())
}
