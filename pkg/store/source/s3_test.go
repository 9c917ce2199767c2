package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(params.Bucket), aws.ToString(params.Key))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func TestS3Opener(t *testing.T) {
	client := new(mockS3)
	client.On("GetObject", mock.Anything, "stats-nz", "trade/output.csv").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("time_ref\n"))}, nil)
	client.On("GetObject", mock.Anything, "stats-nz", "missing.csv").
		Return(nil, &types.NoSuchKey{})
	client.On("GetObject", mock.Anything, "stats-nz", "denied.csv").
		Return(nil, errors.New("access denied"))

	open := NewS3Opener(client)

	rc, err := open(context.Background(), "s3://stats-nz/trade/output.csv")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "time_ref\n", string(data))

	_, err = open(context.Background(), "s3://stats-nz/missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = open(context.Background(), "s3://stats-nz/denied.csv")
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = open(context.Background(), "s3://stats-nz")
	assert.Error(t, err)

	client.AssertExpectations(t)
}
