package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func stubSDK(t *testing.T, fp *fakePutter, loadErr error) *s3.Options {
	t.Helper()

	origLoad, origNew := loadDefaultAWSConfig, newS3Client
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3Client = origNew
	})

	var captured s3.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		return aws.Config{}, loadErr
	}
	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(&captured)
		}
		return fp
	}

	return &captured
}

func testConfig() S3Config {
	return S3Config{
		AccessKey:    "minio",
		SecretKey:    "minio123",
		Bucket:       "vault-backups",
		Region:       "eu-central-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	}
}

func TestNewS3Store_AppliesOptions(t *testing.T) {
	fp := &fakePutter{}
	opts := stubSDK(t, fp, nil)

	s, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, s)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_Errors(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)

	stubSDK(t, &fakePutter{}, errors.New("no creds"))
	_, err = NewS3Store(context.Background(), testConfig())
	assert.ErrorContains(t, err, "no creds")
}

func TestS3Store_PutObject(t *testing.T) {
	fp := &fakePutter{}
	stubSDK(t, fp, nil)

	s, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)

	require.NoError(t, s.PutObject(context.Background(), "backups/u/x.json", []byte(`{}`), "application/json"))
	assert.Equal(t, "vault-backups", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "backups/u/x.json", aws.ToString(fp.in.Key))
	assert.Equal(t, "application/json", aws.ToString(fp.in.ContentType))
	assert.Equal(t, []byte(`{}`), fp.body)

	fp.err = errors.New("denied")
	err = s.PutObject(context.Background(), "k", nil, "application/json")
	assert.ErrorContains(t, err, "denied")
}
