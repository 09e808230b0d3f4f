package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentStore keeps customer ID documents and generated reports in an
// S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type DocumentStore struct {
	client *s3.Client
	bucket string
}

type Options struct {
	Endpoint  string // empty for plain AWS S3
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

func NewDocumentStore(ctx context.Context, opts Options) (*DocumentStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)),
		awsconfig.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure storage client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &DocumentStore{client: client, bucket: opts.Bucket}, nil
}

// Put uploads a document and returns its object key.
func (d *DocumentStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	log.Printf("[Storage] Uploaded %s (%d bytes)", key, len(body))
	return key, nil
}

// Get fetches a stored document.
func (d *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer result.Body.Close()
	return io.ReadAll(result.Body)
}

// Delete removes a stored document.
func (d *DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	return err
}
