package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// S3Archive writes every report payload as JSONL to an S3-compatible bucket
// under <prefix>/<label>/<runID>.jsonl, one entry per line.
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive creates an archive. If endpoint is non-empty, path-style
// addressing is enabled (for MinIO and similar).
func NewS3Archive(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Archive, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	return NewS3ArchiveFromClient(s3.NewFromConfig(cfg, s3opts...), bucket, prefix), nil
}

// NewS3ArchiveFromClient wraps an existing client.
func NewS3ArchiveFromClient(client *s3.Client, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for payload.
func (a *S3Archive) Key(payload model.ReportPayload) string {
	runID := payload.RunID
	if runID == "" {
		runID = "run-" + time.Now().UTC().Format("20060102T150405Z")
	}
	return path.Join(a.prefix, payload.Target.Label, runID+".jsonl")
}

func (a *S3Archive) Submit(ctx context.Context, payload model.ReportPayload) error {
	if len(payload.Entries) == 0 {
		return nil
	}
	data, err := encodeJSONL(payload.Entries)
	if err != nil {
		return err
	}

	contentType := "application/x-ndjson"
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(payload)),
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

func encodeJSONL(entries []model.ReportEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encoding report entry %s: %w", e.Identifier, err)
		}
	}
	return buf.Bytes(), nil
}
