// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// clientMaxAttempts bounds the SDK's own retries. The extension-point
// protocol retries at a higher level through exit code 31.
const clientMaxAttempts = 2

// NewClient builds an S3 client from config. The client is created once
// per process and handed to [NewAWSObjectStore].
func NewClient(ctx context.Context, config Config) (*s3.Client, error) {
	var options []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		options = append(options, awsconfig.WithRegion(config.Region))
	}
	if config.Profile != "" {
		options = append(options, awsconfig.WithSharedConfigProfile(config.Profile))
	}
	if config.AccessKeyID != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.RetryMaxAttempts = clientMaxAttempts
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// AWSObjectStore is an ObjectStore backed by one S3 bucket.
type AWSObjectStore struct {
	client *s3.Client
	bucket string
}

// NewAWSObjectStore wraps client for bucket.
func NewAWSObjectStore(client *s3.Client, bucket string) *AWSObjectStore {
	return &AWSObjectStore{client: client, bucket: bucket}
}

func (s *AWSObjectStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	var entries []Entry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if key == "" || object.LastModified == nil {
				continue
			}
			entries = append(entries, Entry{
				Key:          key,
				LastModified: aws.ToTime(object.LastModified),
				Size:         aws.ToInt64(object.Size),
			})
		}
	}
	return entries, nil
}

func (s *AWSObjectStore) Upload(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	return err
}

func (s *AWSObjectStore) Download(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()
	return io.ReadAll(output.Body)
}

// Delete removes keys with one DeleteObjects call. Per-key failures
// other than a missing key are reported as the first such failure.
func (s *AWSObjectStore) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) > maxDeleteBatch {
		return fmt.Errorf("cannot delete %d keys in one request (limit %d)", len(keys), maxDeleteBatch)
	}
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
	}
	output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return err
	}
	for _, failure := range output.Errors {
		failureErr := &smithy.GenericAPIError{
			Code:    aws.ToString(failure.Code),
			Message: aws.ToString(failure.Key) + ": " + aws.ToString(failure.Message),
		}
		if !IsNotFound(failureErr) {
			return failureErr
		}
	}
	return nil
}
