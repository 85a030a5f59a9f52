package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const reportContentType = "application/json"

// PutObjectAPI is the part of *s3.Client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3 compatible bucket, for example Cloudflare R2.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	AccessKey string
	SecretKey string
}

// S3Exporter uploads reports to a bucket.
type S3Exporter struct {
	logger *zap.Logger
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Exporter builds a client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Exporter(ctx context.Context, logger *zap.Logger, cfg S3Config) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ExporterWithClient(logger, client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3ExporterWithClient(logger *zap.Logger, client PutObjectAPI, bucket, prefix string) *S3Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Exporter{
		logger: logger,
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (e *S3Exporter) Export(ctx context.Context, report Report) (string, error) {
	data, err := report.encode()
	if err != nil {
		return "", err
	}

	key := path.Join(e.prefix, fmt.Sprintf("%s_%d.json", report.name(), report.ExportedAt.Unix()))

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(reportContentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading report to s3://%s/%s: %w", e.bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", e.bucket, key)
	e.logger.Debug("report exported", zap.String("location", location))

	return location, nil
}
